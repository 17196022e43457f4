// Package repository provides data access interfaces and implementations.
package repository

import (
	"context"

	"todo-me/internal/domain"
)

// TaskRepository defines the interface for task data access operations.
type TaskRepository interface {
	// GetByID retrieves a task by its ID
	GetByID(ctx context.Context, id string) (*domain.Task, error)

	// ListByUser retrieves tasks belonging to a user
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*domain.Task, error)

	// ListByProject retrieves a user's tasks within a project
	ListByProject(ctx context.Context, projectID string, offset, limit int) ([]*domain.Task, error)

	// CountByUser returns the number of tasks a user owns
	CountByUser(ctx context.Context, userID string) (int, error)

	// Create creates a new task
	Create(ctx context.Context, task *domain.Task) error

	// Update updates an existing task
	Update(ctx context.Context, task *domain.Task) error

	// Delete deletes a task by ID
	Delete(ctx context.Context, id string) error
}
