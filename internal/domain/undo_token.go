package domain

import "time"

// UndoAction represents the kind of operation an undo token reverses.
type UndoAction string

const (
	// UndoActionUpdate reverses a field update by reapplying the prior
	// values of the changed fields.
	UndoActionUpdate UndoAction = "update"
	// UndoActionDelete reverses a delete by reconstructing the entity
	// from a full snapshot.
	UndoActionDelete UndoAction = "delete"
	// UndoActionStatusChange reverses a status toggle by restoring the
	// prior status and completion timestamp.
	UndoActionStatusChange UndoAction = "status_change"
	// UndoActionArchive reverses an archive or unarchive by restoring
	// the prior archived flag and timestamp.
	UndoActionArchive UndoAction = "archive"
	// UndoActionBatch reverses a whole batch of operations in reverse
	// execution order.
	UndoActionBatch UndoAction = "batch"
)

// IsValid reports whether the action is one of the known kinds.
func (a UndoAction) IsValid() bool {
	switch a {
	case UndoActionUpdate, UndoActionDelete, UndoActionStatusChange, UndoActionArchive, UndoActionBatch:
		return true
	default:
		return false
	}
}

// UndoEntityType identifies which kind of entity an undo token covers.
type UndoEntityType string

const (
	UndoEntityTask    UndoEntityType = "task"
	UndoEntityProject UndoEntityType = "project"
	UndoEntityBatch   UndoEntityType = "batch"
)

// UndoToken is a single-use, TTL-bound, user-scoped reference to a
// captured prior state. PreviousState is deliberately schema-less on
// the wire: a string-keyed map that each entity's snapshot codec knows
// how to interpret. For deletes it is a full snapshot, for updates and
// status changes a partial one, and for batches a map of operation
// index to per-operation snapshot.
type UndoToken struct {
	Token         string                 `json:"token"`
	UserID        string                 `json:"user_id"`
	Action        UndoAction             `json:"action"`
	EntityType    UndoEntityType         `json:"entity_type"`
	EntityID      string                 `json:"entity_id"`
	PreviousState map[string]interface{} `json:"previous_state"`
	CreatedAt     time.Time              `json:"created_at"`
	ExpiresAt     time.Time              `json:"expires_at"`
}

// IsExpired checks if the token is past its logical expiry. The token
// store's own TTL normally removes expired tokens first; this guards
// against stores without precise expiry (and clock skew between nodes).
func (t *UndoToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
