package models_test

import (
	"testing"
	"time"

	"meetsync/models"
)

var now = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func validBooking() *models.Booking {
	return &models.Booking{
		Title:       "Quarterly planning",
		Type:        models.TypeInternalMeeting,
		Start:       now.Add(24 * time.Hour),
		End:         now.Add(25 * time.Hour),
		OrganizerID: "alice",
		Participants: []models.Participant{
			{ID: "alice"},
			{ID: "bob"},
		},
		Resources: []models.Resource{{Type: "room", Name: "R101"}},
	}
}

func TestValidateCleanCandidate(t *testing.T) {
	if v := validBooking().Validate(now); len(v) != 0 {
		t.Fatalf("expected no violations, got %v", v)
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	b := &models.Booking{
		Type:  "Bogus",
		Start: now.Add(-time.Hour),
		End:   now.Add(-30 * time.Minute),
	}
	v := b.Validate(now)

	fields := make(map[string]int)
	for _, violation := range v {
		fields[violation.Field]++
	}
	for _, want := range []string{"title", "type", "organizerId", "start", "participants"} {
		if fields[want] == 0 {
			t.Fatalf("expected a violation for %s, got %v", want, v)
		}
	}
}

func TestValidateMinimumDuration(t *testing.T) {
	b := validBooking()
	b.End = b.Start.Add(29 * time.Minute)
	v := b.Validate(now)
	if len(v) != 1 || v[0].Field != "end" {
		t.Fatalf("expected the single duration violation, got %v", v)
	}

	b.End = b.Start.Add(30 * time.Minute)
	if v := b.Validate(now); len(v) != 0 {
		t.Fatalf("exactly 30 minutes must pass, got %v", v)
	}
}

func TestValidateDuplicateParticipants(t *testing.T) {
	b := validBooking()
	b.Participants = append(b.Participants, models.Participant{ID: "bob"})
	v := b.Validate(now)
	if len(v) != 1 || v[0].Field != "participants" {
		t.Fatalf("expected the duplicate-participant violation, got %v", v)
	}
}

func TestValidatePastStart(t *testing.T) {
	b := validBooking()
	b.Start = now.Add(-time.Minute)
	b.End = b.Start.Add(time.Hour)
	v := b.Validate(now)
	if len(v) != 1 || v[0].Field != "start" {
		t.Fatalf("expected the past-start violation, got %v", v)
	}
}

func TestEntityKeysSorted(t *testing.T) {
	b := validBooking()
	keys := b.EntityKeys()
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %v", keys)
	}
	for i := 1; i < len(keys); i++ {
		if keys[i] < keys[i-1] {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	a1, a2 := now, now.Add(time.Hour)
	if models.Overlaps(a1, a2, a2, a2.Add(time.Hour)) {
		t.Fatalf("adjacent intervals must not overlap")
	}
	if !models.Overlaps(a1, a2, a1.Add(30*time.Minute), a2.Add(time.Hour)) {
		t.Fatalf("partially overlapping intervals must overlap")
	}
	if !models.Overlaps(a1, a2, a1, a2) {
		t.Fatalf("identical intervals must overlap")
	}
}

func TestChainTerminal(t *testing.T) {
	chain := &models.ApprovalChain{
		Mode: models.RoutingSequential,
		Steps: []models.ApprovalStep{
			{ApproverID: "a", Level: 1, Decision: models.DecisionApproved},
			{ApproverID: "b", Level: 2, Decision: models.DecisionPending},
		},
	}
	if chain.Terminal() {
		t.Fatalf("chain with pending steps is not terminal")
	}
	chain.Steps[1].Decision = models.DecisionRejected
	if !chain.Terminal() {
		t.Fatalf("rejected chain is terminal")
	}
	chain.Steps[1].Decision = models.DecisionApproved
	if !chain.Terminal() {
		t.Fatalf("fully approved chain is terminal")
	}
}
