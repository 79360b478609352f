package scheduling

import (
	"context"
	"fmt"

	bookingRepo "meetsync/database/repository/booking"
	"meetsync/models"
)

// ConflictDetector finds overlaps between a candidate and existing binding
// bookings. It is a pure reader: given a stable store snapshot the result is
// deterministic, and an empty result means no known conflicts at read time,
// not a guarantee against concurrent writers.
type ConflictDetector struct {
	Store bookingRepo.BookingStore
}

// Detect returns one conflict per shared entity against every Approved or
// Confirmed booking overlapping the candidate's window under the half-open
// test. excludeID, when non-empty, keeps a booking from conflicting with its
// own prior version during edits. Distinct entity hits against the same
// other booking are reported separately, once per shared entity.
func (d *ConflictDetector) Detect(ctx context.Context, candidate *models.Booking, excludeID string) ([]models.Conflict, error) {
	var conflicts []models.Conflict

	for _, p := range candidate.Participants {
		hits, err := d.Store.FindOverlapping(ctx, models.EntityParticipant, p.ID,
			candidate.Start, candidate.End, models.BindingStatuses, excludeID)
		if err != nil {
			return nil, fmt.Errorf("participant overlap query for %s: %w", p.ID, err)
		}
		for _, hit := range hits {
			start, end := models.OverlapWindow(candidate.Start, candidate.End, hit.Start, hit.End)
			conflicts = append(conflicts, models.Conflict{
				BookingID:    hit.ID,
				EntityKind:   models.EntityParticipant,
				EntityKey:    p.ID,
				OverlapStart: start,
				OverlapEnd:   end,
			})
		}
	}

	for _, r := range candidate.Resources {
		hits, err := d.Store.FindOverlapping(ctx, models.EntityResource, r.Key(),
			candidate.Start, candidate.End, models.BindingStatuses, excludeID)
		if err != nil {
			return nil, fmt.Errorf("resource overlap query for %s: %w", r.Key(), err)
		}
		for _, hit := range hits {
			start, end := models.OverlapWindow(candidate.Start, candidate.End, hit.Start, hit.End)
			conflicts = append(conflicts, models.Conflict{
				BookingID:    hit.ID,
				EntityKind:   models.EntityResource,
				EntityKey:    r.Key(),
				OverlapStart: start,
				OverlapEnd:   end,
			})
		}
	}

	return conflicts, nil
}
