package domain

import (
	"testing"
	"time"
)

func TestProject_Archive(t *testing.T) {
	project := NewProject("user1", "Groceries")

	if project.Archived {
		t.Error("Expected project to not be archived initially")
	}
	if project.ArchivedAt != nil {
		t.Error("Expected ArchivedAt to be nil initially")
	}

	before := time.Now()
	project.Archive()
	after := time.Now()

	if !project.Archived {
		t.Error("Expected project to be archived")
	}
	if project.ArchivedAt == nil {
		t.Fatal("Expected ArchivedAt to be set")
	}
	if project.ArchivedAt.Before(before) || project.ArchivedAt.After(after) {
		t.Error("Expected ArchivedAt to be within the test time range")
	}
}

func TestProject_Unarchive(t *testing.T) {
	project := NewProject("user1", "Groceries")
	project.Archive()

	project.Unarchive()

	if project.Archived {
		t.Error("Expected project to not be archived after Unarchive()")
	}
	if project.ArchivedAt != nil {
		t.Error("Expected ArchivedAt to be nil after Unarchive()")
	}
}

func TestProject_Validate(t *testing.T) {
	project := NewProject("user1", "Groceries")
	if err := project.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}

	project.Name = ""
	if err := project.Validate(); err == nil {
		t.Error("Expected validation error for empty name")
	}
}
