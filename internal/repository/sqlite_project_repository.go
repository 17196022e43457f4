package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/dbx"

	"todo-me/internal/domain"
)

type sqliteProjectRepository struct {
	db *DB
}

// NewSQLiteProjectRepository creates a project repository backed by sqlite.
func NewSQLiteProjectRepository(db *DB) ProjectRepository {
	return &sqliteProjectRepository{db: db}
}

type projectRow struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	Name        string     `db:"name"`
	Description string     `db:"description"`
	Archived    bool       `db:"archived"`
	ArchivedAt  *time.Time `db:"archived_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
	Created     time.Time  `db:"created"`
	Updated     time.Time  `db:"updated"`
}

func (r *projectRow) toDomain() *domain.Project {
	return &domain.Project{
		ID:          r.ID,
		UserID:      r.UserID,
		Name:        r.Name,
		Description: r.Description,
		Archived:    r.Archived,
		ArchivedAt:  r.ArchivedAt,
		DeletedAt:   r.DeletedAt,
		CreatedAt:   r.Created,
		UpdatedAt:   r.Updated,
	}
}

func projectParams(p *domain.Project) dbx.Params {
	return dbx.Params{
		"id":          p.ID,
		"user_id":     p.UserID,
		"name":        p.Name,
		"description": p.Description,
		"archived":    p.Archived,
		"archived_at": p.ArchivedAt,
		"deleted_at":  p.DeletedAt,
		"created":     p.CreatedAt,
		"updated":     p.UpdatedAt,
	}
}

// GetByID retrieves a project by its ID.
func (s *sqliteProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	var row projectRow
	err := s.db.builderFrom(ctx).
		Select().
		From("projects").
		Where(dbx.HashExp{"id": id}).
		WithContext(ctx).
		One(&row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("PROJECT_NOT_FOUND", "Project not found")
		}
		return nil, domain.NewInternalError("PROJECT_QUERY_FAILED", "Failed to query project", err)
	}
	return row.toDomain(), nil
}

// ListByUser retrieves projects belonging to a user.
func (s *sqliteProjectRepository) ListByUser(
	ctx context.Context, userID string, offset, limit int,
) ([]*domain.Project, error) {
	var rows []projectRow
	q := s.db.builderFrom(ctx).
		Select().
		From("projects").
		Where(dbx.HashExp{"user_id": userID}).
		OrderBy("created ASC")
	if limit > 0 {
		q = q.Offset(int64(offset)).Limit(int64(limit))
	}
	err := q.WithContext(ctx).All(&rows)
	if err != nil {
		return nil, domain.NewInternalError("PROJECT_LIST_FAILED", "Failed to list projects", err)
	}
	projects := make([]*domain.Project, 0, len(rows))
	for i := range rows {
		projects = append(projects, rows[i].toDomain())
	}
	return projects, nil
}

// Create creates a new project, assigning an ID when absent.
func (s *sqliteProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if _, err := s.db.builderFrom(ctx).
		Insert("projects", projectParams(project)).
		WithContext(ctx).
		Execute(); err != nil {
		return domain.NewInternalError("PROJECT_CREATE_FAILED", "Failed to create project", err)
	}
	return nil
}

// Update updates an existing project.
func (s *sqliteProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	result, err := s.db.builderFrom(ctx).
		Update("projects", projectParams(project), dbx.HashExp{"id": project.ID}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return domain.NewInternalError("PROJECT_UPDATE_FAILED", "Failed to update project", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.NewNotFoundError("PROJECT_NOT_FOUND", "Project not found")
	}
	return nil
}

// Delete deletes a project by ID.
func (s *sqliteProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := s.db.builderFrom(ctx).
		Delete("projects", dbx.HashExp{"id": id}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return domain.NewInternalError("PROJECT_DELETE_FAILED", "Failed to delete project", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.NewNotFoundError("PROJECT_NOT_FOUND", "Project not found")
	}
	return nil
}
