package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the completion state of a task.
type TaskStatus string

const (
	// StatusPending represents a task that still needs doing.
	StatusPending TaskStatus = "pending"
	// StatusCompleted represents a finished task.
	StatusCompleted TaskStatus = "completed"
)

// IsValid reports whether the status is one of the known states.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted:
		return true
	default:
		return false
	}
}

// RecurrenceType represents how a recurring task repeats.
type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceYearly  RecurrenceType = "yearly"
)

// IsValid reports whether the recurrence type is one of the known kinds.
func (r RecurrenceType) IsValid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	default:
		return false
	}
}

var dueTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

const (
	// MinPriority is the lowest task priority.
	MinPriority = 1
	// MaxPriority is the highest task priority.
	MaxPriority = 5
	// DefaultPriority is used when a task is created without one.
	DefaultPriority = 3
)

// Task represents a single to-do item owned by a user.
type Task struct {
	ID             string         `json:"id" db:"id"`
	UserID         string         `json:"user_id" db:"user_id"`
	Title          string         `json:"title" db:"title"`
	Description    string         `json:"description" db:"description"`
	Status         TaskStatus     `json:"status" db:"status"`
	Priority       int            `json:"priority" db:"priority"`
	DueDate        *time.Time     `json:"due_date" db:"due_date"`
	DueTime        *string        `json:"due_time" db:"due_time"`
	Position       int            `json:"position" db:"position"`
	ProjectID      *string        `json:"project_id" db:"project_id"`
	TagIDs         []string       `json:"tag_ids" db:"-"`
	CompletedAt    *time.Time     `json:"completed_at" db:"completed_at"`
	IsRecurring    bool           `json:"is_recurring" db:"is_recurring"`
	RecurrenceRule string         `json:"recurrence_rule" db:"recurrence_rule"`
	RecurrenceType RecurrenceType `json:"recurrence_type" db:"recurrence_type"`
	RecurrenceEnd  *time.Time     `json:"recurrence_end" db:"recurrence_end"`
	OriginTaskID   *string        `json:"origin_task_id" db:"origin_task_id"`
	CreatedAt      time.Time      `json:"created_at" db:"created"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated"`
}

// NewTask creates a pending task with default values.
func NewTask(userID, title string) *Task {
	now := time.Now()
	return &Task{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Status:    StatusPending,
		Priority:  DefaultPriority,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the task data.
func (t *Task) Validate() error {
	if t.Title == "" {
		return NewValidationError("INVALID_TITLE", "Title is required", map[string]interface{}{
			"field": "title",
		})
	}
	if len(t.Title) > 500 {
		return NewValidationError("INVALID_TITLE", "Title must not exceed 500 characters", map[string]interface{}{
			"field": "title",
		})
	}
	if t.UserID == "" {
		return NewValidationError("INVALID_USER", "User ID is required", map[string]interface{}{
			"field": "user_id",
		})
	}
	if !t.Status.IsValid() {
		return NewValidationError("INVALID_STATUS", "Status must be 'pending' or 'completed'", map[string]interface{}{
			"field": "status",
			"value": t.Status,
		})
	}
	if t.Priority < MinPriority || t.Priority > MaxPriority {
		return NewValidationError("INVALID_PRIORITY", "Priority must be between 1 and 5", map[string]interface{}{
			"field": "priority",
			"value": t.Priority,
		})
	}
	if t.DueTime != nil && !dueTimeRegex.MatchString(*t.DueTime) {
		return NewValidationError("INVALID_DUE_TIME", "Due time must be in HH:MM format", map[string]interface{}{
			"field": "due_time",
		})
	}
	if t.IsRecurring && !t.RecurrenceType.IsValid() {
		return NewValidationError("INVALID_RECURRENCE", "Recurring tasks need a valid recurrence type", map[string]interface{}{
			"field": "recurrence_type",
		})
	}
	return nil
}

// IsOwnedBy reports whether the task belongs to the given user.
func (t *Task) IsOwnedBy(userID string) bool {
	return t.UserID == userID
}

// Complete marks the task completed and stamps the completion time.
func (t *Task) Complete() {
	t.Status = StatusCompleted
	now := time.Now()
	t.CompletedAt = &now
	t.UpdatedAt = now
}

// Uncomplete returns the task to pending and clears the completion time.
func (t *Task) Uncomplete() {
	t.Status = StatusPending
	t.CompletedAt = nil
	t.UpdatedAt = time.Now()
}

// SetStatus transitions the task to the given status, maintaining the
// completion timestamp the way the normal mutation paths do. Undo paths
// must not use this; they write Status and CompletedAt directly so the
// stored values come back exactly as captured.
func (t *Task) SetStatus(status TaskStatus) error {
	if !status.IsValid() {
		return NewValidationError("INVALID_STATUS", "Status must be 'pending' or 'completed'", map[string]interface{}{
			"field": "status",
			"value": status,
		})
	}
	if status == StatusCompleted {
		t.Complete()
	} else {
		t.Uncomplete()
	}
	return nil
}

// IsOverdue reports whether the task's due date has passed without completion.
func (t *Task) IsOverdue() bool {
	if t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(time.Now()) && t.Status != StatusCompleted
}

// CreateTaskRequest represents the data needed to create a new task.
type CreateTaskRequest struct {
	Title          string         `json:"title" binding:"required,min=1,max=500"`
	Description    string         `json:"description,omitempty"`
	Priority       int            `json:"priority,omitempty"`
	DueDate        *time.Time     `json:"due_date,omitempty"`
	DueTime        *string        `json:"due_time,omitempty"`
	ProjectID      *string        `json:"project_id,omitempty"`
	TagIDs         []string       `json:"tag_ids,omitempty"`
	IsRecurring    bool           `json:"is_recurring,omitempty"`
	RecurrenceRule string         `json:"recurrence_rule,omitempty"`
	RecurrenceType RecurrenceType `json:"recurrence_type,omitempty"`
	RecurrenceEnd  *time.Time     `json:"recurrence_end,omitempty"`
}

// UpdateTaskRequest represents the data that can be updated for a task.
// Nil fields are left untouched.
type UpdateTaskRequest struct {
	Title          *string         `json:"title,omitempty" binding:"omitempty,min=1,max=500"`
	Description    *string         `json:"description,omitempty"`
	Priority       *int            `json:"priority,omitempty"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	DueTime        *string         `json:"due_time,omitempty"`
	Position       *int            `json:"position,omitempty"`
	ProjectID      *string         `json:"project_id,omitempty"`
	TagIDs         []string        `json:"tag_ids,omitempty"`
	IsRecurring    *bool           `json:"is_recurring,omitempty"`
	RecurrenceRule *string         `json:"recurrence_rule,omitempty"`
	RecurrenceType *RecurrenceType `json:"recurrence_type,omitempty"`
	RecurrenceEnd  *time.Time      `json:"recurrence_end,omitempty"`
}
