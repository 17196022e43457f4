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

type sqliteUserRepository struct {
	db *DB
}

// NewSQLiteUserRepository creates a user repository backed by sqlite.
func NewSQLiteUserRepository(db *DB) UserRepository {
	return &sqliteUserRepository{db: db}
}

type userRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	Created      time.Time `db:"created"`
	Updated      time.Time `db:"updated"`
}

func (r *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.Created,
		UpdatedAt:    r.Updated,
	}
}

// GetByID retrieves a user by ID.
func (s *sqliteUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var row userRow
	err := s.db.builderFrom(ctx).
		Select().
		From("users").
		Where(dbx.HashExp{"id": id}).
		WithContext(ctx).
		One(&row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("USER_NOT_FOUND", "User not found")
		}
		return nil, domain.NewInternalError("USER_QUERY_FAILED", "Failed to query user", err)
	}
	return row.toDomain(), nil
}

// GetByEmail retrieves a user by email.
func (s *sqliteUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row userRow
	err := s.db.builderFrom(ctx).
		Select().
		From("users").
		Where(dbx.HashExp{"email": email}).
		WithContext(ctx).
		One(&row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("USER_NOT_FOUND", "User not found")
		}
		return nil, domain.NewInternalError("USER_QUERY_FAILED", "Failed to query user", err)
	}
	return row.toDomain(), nil
}

// Create creates a new user, assigning an ID when absent.
func (s *sqliteUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	params := dbx.Params{
		"id":            user.ID,
		"email":         user.Email,
		"name":          user.Name,
		"password_hash": user.PasswordHash,
		"created":       user.CreatedAt,
		"updated":       user.UpdatedAt,
	}
	if _, err := s.db.builderFrom(ctx).
		Insert("users", params).
		WithContext(ctx).
		Execute(); err != nil {
		return domain.NewInternalError("USER_CREATE_FAILED", "Failed to create user", err)
	}
	return nil
}
