package models

import "time"

// AuditEntry records one state change on a booking together with the actor
// who caused it. Every mutation appends an entry; entries are never edited.
type AuditEntry struct {
	At      time.Time `bson:"at" json:"at"`
	ActorID string    `bson:"actorId" json:"actorId"`
	Action  string    `bson:"action" json:"action"`
	Detail  string    `bson:"detail,omitempty" json:"detail,omitempty"`
}

// NewAuditEntry builds an audit entry for the given action.
func NewAuditEntry(at time.Time, actorID, action, detail string) AuditEntry {
	return AuditEntry{At: at, ActorID: actorID, Action: action, Detail: detail}
}
