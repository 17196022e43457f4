package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Tag represents a label that can be associated with tasks.
type Tag struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created"`
	UpdatedAt time.Time `json:"updated_at" db:"updated"`
}

// NewTag creates a new tag for the given user.
func NewTag(userID, name, color string) *Tag {
	now := time.Now()
	return &Tag{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsOwnedBy reports whether the tag belongs to the given user.
func (t *Tag) IsOwnedBy(userID string) bool {
	return t.UserID == userID
}

// CreateTagRequest represents the data needed to create a new tag.
type CreateTagRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=50"`
	Color string `json:"color,omitempty"`
}

// Validate validates the tag data.
func (t *Tag) Validate() error {
	if t.Name == "" {
		return NewValidationError("INVALID_NAME", "Tag name is required", map[string]interface{}{
			"field": "name",
		})
	}
	if len(t.Name) > 50 {
		return NewValidationError("INVALID_NAME", "Tag name must not exceed 50 characters", map[string]interface{}{
			"field": "name",
		})
	}
	if t.UserID == "" {
		return NewValidationError("INVALID_USER", "User ID is required", map[string]interface{}{
			"field": "user_id",
		})
	}
	if t.Color != "" && !hexColorRegex.MatchString(t.Color) {
		return NewValidationError("INVALID_COLOR", "Tag color must be a valid hex color", map[string]interface{}{
			"field": "color",
			"value": t.Color,
		})
	}
	return nil
}
