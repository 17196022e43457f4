package repository

import (
	"context"

	"todo-me/internal/domain"
)

// ProjectRepository defines the interface for project data access operations.
type ProjectRepository interface {
	// GetByID retrieves a project by its ID
	GetByID(ctx context.Context, id string) (*domain.Project, error)

	// ListByUser retrieves projects belonging to a user
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*domain.Project, error)

	// Create creates a new project
	Create(ctx context.Context, project *domain.Project) error

	// Update updates an existing project
	Update(ctx context.Context, project *domain.Project) error

	// Delete deletes a project by ID. Tasks referencing it keep their
	// rows; the dangling reference is cleared lazily on read.
	Delete(ctx context.Context, id string) error
}

// TagRepository defines the interface for tag data access operations.
type TagRepository interface {
	// GetByID retrieves a tag by its ID
	GetByID(ctx context.Context, id string) (*domain.Tag, error)

	// ListByUser retrieves tags belonging to a user
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*domain.Tag, error)

	// Create creates a new tag
	Create(ctx context.Context, tag *domain.Tag) error

	// Update updates an existing tag
	Update(ctx context.Context, tag *domain.Tag) error

	// Delete deletes a tag by ID
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Create creates a new user
	Create(ctx context.Context, user *domain.User) error
}
