package domain

import "time"

// BatchAction is an operation kind a batch can carry. Batches operate
// on tasks only.
type BatchAction string

const (
	BatchActionCreate     BatchAction = "create"
	BatchActionUpdate     BatchAction = "update"
	BatchActionDelete     BatchAction = "delete"
	BatchActionComplete   BatchAction = "complete"
	BatchActionReschedule BatchAction = "reschedule"
)

// IsValid reports whether the action is one of the known kinds.
func (a BatchAction) IsValid() bool {
	switch a {
	case BatchActionCreate, BatchActionUpdate, BatchActionDelete, BatchActionComplete, BatchActionReschedule:
		return true
	default:
		return false
	}
}

// RescheduleRequest carries a new due date and time. Explicit nulls
// clear the corresponding field.
type RescheduleRequest struct {
	DueDate *time.Time `json:"due_date"`
	DueTime *string    `json:"due_time"`
}

// BatchOperation is one entry of a batch request. The payload field
// matching the action must be set; task_id is required for every
// action except create.
type BatchOperation struct {
	Action     BatchAction        `json:"action" binding:"required"`
	TaskID     string             `json:"task_id,omitempty"`
	Create     *CreateTaskRequest `json:"create,omitempty"`
	Update     *UpdateTaskRequest `json:"update,omitempty"`
	Reschedule *RescheduleRequest `json:"reschedule,omitempty"`
}

// BatchOperationResult is the outcome of one operation within a batch,
// or of its reversal during batch undo.
type BatchOperationResult struct {
	Index   int         `json:"index"`
	Action  BatchAction `json:"action"`
	Success bool        `json:"success"`
	TaskID  string      `json:"task_id,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// BatchResult is the outcome of executing a batch. UndoToken is empty
// when nothing reversible happened (every operation failed, or an
// atomic batch rolled back).
type BatchResult struct {
	Results   []BatchOperationResult `json:"results"`
	UndoToken string                 `json:"undo_token,omitempty"`
}

// BatchUndoResult reports a batch reversal. Undone is true only when
// every recorded operation was reversed.
type BatchUndoResult struct {
	Undone  bool                   `json:"undone"`
	Results []BatchOperationResult `json:"results"`
}
