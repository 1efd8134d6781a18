package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChangeKind names the kind of write that produced a TripChange.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// TripChange is published after every committed write to a user's trips.
// Fields lists the changed trip fields for ChangeUpdated and is empty otherwise.
type TripChange struct {
	Kind   ChangeKind `json:"kind"`
	TripID uuid.UUID  `json:"trip_id"`
	UserID uuid.UUID  `json:"user_id"`
	Fields []string   `json:"fields,omitempty"`
	At     time.Time  `json:"at"`
}
