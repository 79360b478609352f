package models

import "time"

// EntityKind names which side of a booking a conflict was detected on.
type EntityKind string

const (
	EntityParticipant EntityKind = "Participant"
	EntityResource    EntityKind = "Resource"
)

// Conflict is a detected time overlap between a candidate and an existing
// binding booking sharing a participant or resource. Conflicts are produced
// only by the detector and are read-only afterwards; they live on the
// candidate for the duration of one detection pass.
type Conflict struct {
	BookingID    string     `bson:"bookingId" json:"bookingId"`
	EntityKind   EntityKind `bson:"entityKind" json:"entityKind"`
	EntityKey    string     `bson:"entityKey" json:"entityKey"`
	OverlapStart time.Time  `bson:"overlapStart" json:"overlapStart"`
	OverlapEnd   time.Time  `bson:"overlapEnd" json:"overlapEnd"`
}

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// OverlapWindow returns the intersection of two intervals. Callers must
// ensure the intervals overlap.
func OverlapWindow(aStart, aEnd, bStart, bEnd time.Time) (time.Time, time.Time) {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	return start, end
}
