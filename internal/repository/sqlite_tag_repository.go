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

type sqliteTagRepository struct {
	db *DB
}

// NewSQLiteTagRepository creates a tag repository backed by sqlite.
func NewSQLiteTagRepository(db *DB) TagRepository {
	return &sqliteTagRepository{db: db}
}

type tagRow struct {
	ID      string    `db:"id"`
	UserID  string    `db:"user_id"`
	Name    string    `db:"name"`
	Color   string    `db:"color"`
	Created time.Time `db:"created"`
	Updated time.Time `db:"updated"`
}

func (r *tagRow) toDomain() *domain.Tag {
	return &domain.Tag{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		Color:     r.Color,
		CreatedAt: r.Created,
		UpdatedAt: r.Updated,
	}
}

func tagParams(t *domain.Tag) dbx.Params {
	return dbx.Params{
		"id":      t.ID,
		"user_id": t.UserID,
		"name":    t.Name,
		"color":   t.Color,
		"created": t.CreatedAt,
		"updated": t.UpdatedAt,
	}
}

// GetByID retrieves a tag by its ID.
func (s *sqliteTagRepository) GetByID(ctx context.Context, id string) (*domain.Tag, error) {
	var row tagRow
	err := s.db.builderFrom(ctx).
		Select().
		From("tags").
		Where(dbx.HashExp{"id": id}).
		WithContext(ctx).
		One(&row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("TAG_NOT_FOUND", "Tag not found")
		}
		return nil, domain.NewInternalError("TAG_QUERY_FAILED", "Failed to query tag", err)
	}
	return row.toDomain(), nil
}

// ListByUser retrieves tags belonging to a user.
func (s *sqliteTagRepository) ListByUser(
	ctx context.Context, userID string, offset, limit int,
) ([]*domain.Tag, error) {
	var rows []tagRow
	q := s.db.builderFrom(ctx).
		Select().
		From("tags").
		Where(dbx.HashExp{"user_id": userID}).
		OrderBy("name ASC")
	if limit > 0 {
		q = q.Offset(int64(offset)).Limit(int64(limit))
	}
	err := q.WithContext(ctx).All(&rows)
	if err != nil {
		return nil, domain.NewInternalError("TAG_LIST_FAILED", "Failed to list tags", err)
	}
	tags := make([]*domain.Tag, 0, len(rows))
	for i := range rows {
		tags = append(tags, rows[i].toDomain())
	}
	return tags, nil
}

// Create creates a new tag, assigning an ID when absent.
func (s *sqliteTagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	if tag.ID == "" {
		tag.ID = uuid.NewString()
	}
	if _, err := s.db.builderFrom(ctx).
		Insert("tags", tagParams(tag)).
		WithContext(ctx).
		Execute(); err != nil {
		return domain.NewInternalError("TAG_CREATE_FAILED", "Failed to create tag", err)
	}
	return nil
}

// Update updates an existing tag.
func (s *sqliteTagRepository) Update(ctx context.Context, tag *domain.Tag) error {
	result, err := s.db.builderFrom(ctx).
		Update("tags", tagParams(tag), dbx.HashExp{"id": tag.ID}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return domain.NewInternalError("TAG_UPDATE_FAILED", "Failed to update tag", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.NewNotFoundError("TAG_NOT_FOUND", "Tag not found")
	}
	return nil
}

// Delete deletes a tag by ID.
func (s *sqliteTagRepository) Delete(ctx context.Context, id string) error {
	result, err := s.db.builderFrom(ctx).
		Delete("tags", dbx.HashExp{"id": id}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return domain.NewInternalError("TAG_DELETE_FAILED", "Failed to delete tag", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.NewNotFoundError("TAG_NOT_FOUND", "Tag not found")
	}
	return nil
}
