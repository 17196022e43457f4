package domain

import (
	"testing"
	"time"
)

func TestTask_Complete(t *testing.T) {
	task := NewTask("user1", "Buy milk")

	if task.Status != StatusPending {
		t.Fatalf("Expected new task to be pending, got %s", task.Status)
	}
	if task.CompletedAt != nil {
		t.Error("Expected CompletedAt to be nil initially")
	}

	before := time.Now()
	task.Complete()
	after := time.Now()

	if task.Status != StatusCompleted {
		t.Errorf("Expected status completed, got %s", task.Status)
	}
	if task.CompletedAt == nil {
		t.Fatal("Expected CompletedAt to be set")
	}
	if task.CompletedAt.Before(before) || task.CompletedAt.After(after) {
		t.Error("Expected CompletedAt to be within the test time range")
	}
}

func TestTask_Uncomplete(t *testing.T) {
	task := NewTask("user1", "Buy milk")
	task.Complete()

	task.Uncomplete()

	if task.Status != StatusPending {
		t.Errorf("Expected status pending, got %s", task.Status)
	}
	if task.CompletedAt != nil {
		t.Error("Expected CompletedAt to be cleared")
	}
}

func TestTask_SetStatus(t *testing.T) {
	task := NewTask("user1", "Buy milk")

	if err := task.SetStatus(StatusCompleted); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if task.CompletedAt == nil {
		t.Error("Expected SetStatus(completed) to stamp CompletedAt")
	}

	if err := task.SetStatus("in_progress"); err == nil {
		t.Error("Expected error for unknown status")
	}
}

func TestTask_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr bool
	}{
		{"valid defaults", func(_ *Task) {}, false},
		{"missing title", func(task *Task) { task.Title = "" }, true},
		{"missing user", func(task *Task) { task.UserID = "" }, true},
		{"priority too high", func(task *Task) { task.Priority = 6 }, true},
		{"priority too low", func(task *Task) { task.Priority = 0 }, true},
		{"bad status", func(task *Task) { task.Status = "done" }, true},
		{"bad due time", func(task *Task) { s := "25:99"; task.DueTime = &s }, true},
		{"good due time", func(task *Task) { s := "17:30"; task.DueTime = &s }, false},
		{"recurring without type", func(task *Task) { task.IsRecurring = true }, true},
		{"recurring with type", func(task *Task) {
			task.IsRecurring = true
			task.RecurrenceType = RecurrenceWeekly
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := NewTask("user1", "Test task")
			tt.mutate(task)
			err := task.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestTask_IsOverdue(t *testing.T) {
	task := NewTask("user1", "Overdue task")
	past := time.Now().Add(-24 * time.Hour)
	task.DueDate = &past

	if !task.IsOverdue() {
		t.Error("Expected past-due pending task to be overdue")
	}

	task.Complete()
	if task.IsOverdue() {
		t.Error("Expected completed task to not be overdue")
	}
}
