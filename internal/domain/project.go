package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project represents a grouping of tasks owned by a single user.
type Project struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description,omitempty" db:"description"`
	Archived    bool       `json:"archived" db:"archived"`
	ArchivedAt  *time.Time `json:"archived_at" db:"archived_at"`
	DeletedAt   *time.Time `json:"deleted_at" db:"deleted_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated"`
}

// NewProject creates an active project for the given user.
func NewProject(userID, name string) *Project {
	now := time.Now()
	return &Project{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsOwnedBy reports whether the project belongs to the given user.
func (p *Project) IsOwnedBy(userID string) bool {
	return p.UserID == userID
}

// Archive marks the project archived and stamps the archival time.
func (p *Project) Archive() {
	p.Archived = true
	now := time.Now()
	p.ArchivedAt = &now
	p.UpdatedAt = now
}

// Unarchive clears the archived flag and archival time.
func (p *Project) Unarchive() {
	p.Archived = false
	p.ArchivedAt = nil
	p.UpdatedAt = time.Now()
}

// Validate validates the project data.
func (p *Project) Validate() error {
	if p.Name == "" {
		return NewValidationError("INVALID_NAME", "Name is required", map[string]interface{}{
			"field": "name",
		})
	}
	if len(p.Name) > 200 {
		return NewValidationError("INVALID_NAME", "Name must not exceed 200 characters", map[string]interface{}{
			"field": "name",
		})
	}
	if p.UserID == "" {
		return NewValidationError("INVALID_USER", "User ID is required", map[string]interface{}{
			"field": "user_id",
		})
	}
	return nil
}

// CreateProjectRequest represents the data needed to create a new project.
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Description string `json:"description,omitempty"`
}

// UpdateProjectRequest represents the data that can be updated for a project.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty"`
}
