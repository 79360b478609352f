package scheduling_test

import (
	"context"
	"testing"
	"time"

	"meetsync/models"
	"meetsync/services/scheduling"
)

func seedConfirmed(store *memStore, id string, start, end time.Time, participants []string, resources ...models.Resource) {
	ps := make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		ps = append(ps, models.Participant{ID: p})
	}
	store.seed(models.Booking{
		ID:           id,
		Status:       models.StatusConfirmed,
		Start:        start,
		End:          end,
		Participants: ps,
		Resources:    resources,
	})
}

func TestDetectRoomOverlap(t *testing.T) {
	store := newMemStore()
	detector := &scheduling.ConflictDetector{Store: store}
	room := models.Resource{Type: "room", Name: "R101"}

	// Booking X: 09:00-10:00 in R101, Confirmed.
	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	seedConfirmed(store, "X", day.Add(9*time.Hour), day.Add(10*time.Hour), []string{"xavier"}, room)

	// Candidate Y: 09:30-10:30 in the same room.
	y := &models.Booking{
		Start:        day.Add(9*time.Hour + 30*time.Minute),
		End:          day.Add(10*time.Hour + 30*time.Minute),
		Participants: []models.Participant{{ID: "yvonne"}},
		Resources:    []models.Resource{room},
	}

	conflicts, err := detector.Detect(context.Background(), y, "")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(conflicts) != 1 {
		t.Fatalf("expected exactly one conflict, got %d", len(conflicts))
	}
	c := conflicts[0]
	if c.BookingID != "X" || c.EntityKind != models.EntityResource || c.EntityKey != "room/R101" {
		t.Fatalf("unexpected conflict: %+v", c)
	}
	if !c.OverlapStart.Equal(day.Add(9*time.Hour+30*time.Minute)) || !c.OverlapEnd.Equal(day.Add(10*time.Hour)) {
		t.Fatalf("unexpected overlap window: %v - %v", c.OverlapStart, c.OverlapEnd)
	}
}

func TestDetectHalfOpenBoundaries(t *testing.T) {
	store := newMemStore()
	detector := &scheduling.ConflictDetector{Store: store}
	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	seedConfirmed(store, "morning", day.Add(9*time.Hour), day.Add(10*time.Hour), []string{"alice"})

	// Back-to-back: candidate starts exactly when the existing one ends.
	backToBack := &models.Booking{
		Start:        day.Add(10 * time.Hour),
		End:          day.Add(11 * time.Hour),
		Participants: []models.Participant{{ID: "alice"}},
	}
	conflicts, err := detector.Detect(context.Background(), backToBack, "")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("adjacent intervals must not conflict under the half-open test, got %+v", conflicts)
	}
}

func TestDetectOnlyBindingStatuses(t *testing.T) {
	store := newMemStore()
	detector := &scheduling.ConflictDetector{Store: store}
	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	for _, status := range []models.BookingStatus{
		models.StatusDraft, models.StatusPendingApproval,
		models.StatusRejected, models.StatusCancelled, models.StatusCompleted,
	} {
		store.seed(models.Booking{
			ID:           "b-" + string(status),
			Status:       status,
			Start:        day.Add(9 * time.Hour),
			End:          day.Add(10 * time.Hour),
			Participants: []models.Participant{{ID: "alice"}},
		})
	}

	cand := &models.Booking{
		Start:        day.Add(9 * time.Hour),
		End:          day.Add(10 * time.Hour),
		Participants: []models.Participant{{ID: "alice"}},
	}
	conflicts, err := detector.Detect(context.Background(), cand, "")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("non-binding statuses must not hold entities, got %+v", conflicts)
	}
}

func TestDetectOnePerSharedEntity(t *testing.T) {
	store := newMemStore()
	detector := &scheduling.ConflictDetector{Store: store}
	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	room := models.Resource{Type: "room", Name: "R101"}

	// One existing booking sharing both a participant and a resource with
	// the candidate: two conflicts, one per shared entity.
	seedConfirmed(store, "both", day.Add(9*time.Hour), day.Add(10*time.Hour), []string{"alice"}, room)

	cand := &models.Booking{
		Start:        day.Add(9 * time.Hour),
		End:          day.Add(10 * time.Hour),
		Participants: []models.Participant{{ID: "alice"}},
		Resources:    []models.Resource{room},
	}
	conflicts, err := detector.Detect(context.Background(), cand, "")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(conflicts) != 2 {
		t.Fatalf("expected one conflict per shared entity, got %d: %+v", len(conflicts), conflicts)
	}
}

func TestDetectOrderIndependent(t *testing.T) {
	store := newMemStore()
	detector := &scheduling.ConflictDetector{Store: store}
	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	roomA := models.Resource{Type: "room", Name: "A"}
	roomB := models.Resource{Type: "room", Name: "B"}

	seedConfirmed(store, "one", day.Add(9*time.Hour), day.Add(10*time.Hour), []string{"alice"}, roomA)
	seedConfirmed(store, "two", day.Add(9*time.Hour), day.Add(10*time.Hour), []string{"bob"}, roomB)

	cand1 := &models.Booking{
		Start:        day.Add(9 * time.Hour),
		End:          day.Add(10 * time.Hour),
		Participants: []models.Participant{{ID: "alice"}, {ID: "bob"}},
		Resources:    []models.Resource{roomA, roomB},
	}
	cand2 := &models.Booking{
		Start:        day.Add(9 * time.Hour),
		End:          day.Add(10 * time.Hour),
		Participants: []models.Participant{{ID: "bob"}, {ID: "alice"}},
		Resources:    []models.Resource{roomB, roomA},
	}

	set := func(cs []models.Conflict) map[string]bool {
		out := make(map[string]bool)
		for _, c := range cs {
			out[c.BookingID+"|"+string(c.EntityKind)+"|"+c.EntityKey] = true
		}
		return out
	}

	c1, err := detector.Detect(context.Background(), cand1, "")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	c2, err := detector.Detect(context.Background(), cand2, "")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	s1, s2 := set(c1), set(c2)
	if len(s1) != len(s2) {
		t.Fatalf("permuted inputs yielded different conflict sets: %v vs %v", s1, s2)
	}
	for k := range s1 {
		if !s2[k] {
			t.Fatalf("conflict %s missing after permutation", k)
		}
	}
}

func TestDetectExcludesOwnID(t *testing.T) {
	store := newMemStore()
	detector := &scheduling.ConflictDetector{Store: store}
	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	seedConfirmed(store, "self", day.Add(9*time.Hour), day.Add(10*time.Hour), []string{"alice"})

	// Re-checking the booking against itself during an edit.
	cand := &models.Booking{
		ID:           "self",
		Start:        day.Add(9 * time.Hour),
		End:          day.Add(10 * time.Hour),
		Participants: []models.Participant{{ID: "alice"}},
	}
	conflicts, err := detector.Detect(context.Background(), cand, "self")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("booking conflicted with its own prior version: %+v", conflicts)
	}
}

func TestDetectResourceOnlyCandidate(t *testing.T) {
	store := newMemStore()
	detector := &scheduling.ConflictDetector{Store: store}
	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	room := models.Resource{Type: "room", Name: "R101"}

	seedConfirmed(store, "held", day.Add(9*time.Hour), day.Add(10*time.Hour), []string{"alice"}, room)

	// No participants: only the resource half of detection runs and nothing
	// panics.
	cand := &models.Booking{
		Start:     day.Add(9 * time.Hour),
		End:       day.Add(10 * time.Hour),
		Resources: []models.Resource{room},
	}
	conflicts, err := detector.Detect(context.Background(), cand, "")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].EntityKind != models.EntityResource {
		t.Fatalf("expected the single resource conflict, got %+v", conflicts)
	}
}
