package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/dbx"

	"todo-me/internal/domain"
)

type sqliteTaskRepository struct {
	db *DB
}

// NewSQLiteTaskRepository creates a task repository backed by sqlite.
func NewSQLiteTaskRepository(db *DB) TaskRepository {
	return &sqliteTaskRepository{db: db}
}

// taskRow mirrors the tasks table. Tag references are stored as a JSON
// array in a single column; a join table is overkill for per-user lists.
type taskRow struct {
	ID             string     `db:"id"`
	UserID         string     `db:"user_id"`
	Title          string     `db:"title"`
	Description    string     `db:"description"`
	Status         string     `db:"status"`
	Priority       int        `db:"priority"`
	DueDate        *time.Time `db:"due_date"`
	DueTime        *string    `db:"due_time"`
	Position       int        `db:"position"`
	ProjectID      *string    `db:"project_id"`
	TagIDs         string     `db:"tag_ids"`
	CompletedAt    *time.Time `db:"completed_at"`
	IsRecurring    bool       `db:"is_recurring"`
	RecurrenceRule string     `db:"recurrence_rule"`
	RecurrenceType string     `db:"recurrence_type"`
	RecurrenceEnd  *time.Time `db:"recurrence_end"`
	OriginTaskID   *string    `db:"origin_task_id"`
	Created        time.Time  `db:"created"`
	Updated        time.Time  `db:"updated"`
}

func taskToRow(task *domain.Task) (*taskRow, error) {
	tagIDs := task.TagIDs
	if tagIDs == nil {
		tagIDs = []string{}
	}
	encoded, err := json.Marshal(tagIDs)
	if err != nil {
		return nil, domain.NewInternalError("TASK_ENCODE_FAILED", "Failed to encode tag references", err)
	}
	return &taskRow{
		ID:             task.ID,
		UserID:         task.UserID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         string(task.Status),
		Priority:       task.Priority,
		DueDate:        task.DueDate,
		DueTime:        task.DueTime,
		Position:       task.Position,
		ProjectID:      task.ProjectID,
		TagIDs:         string(encoded),
		CompletedAt:    task.CompletedAt,
		IsRecurring:    task.IsRecurring,
		RecurrenceRule: task.RecurrenceRule,
		RecurrenceType: string(task.RecurrenceType),
		RecurrenceEnd:  task.RecurrenceEnd,
		OriginTaskID:   task.OriginTaskID,
		Created:        task.CreatedAt,
		Updated:        task.UpdatedAt,
	}, nil
}

func (r *taskRow) toDomain() (*domain.Task, error) {
	var tagIDs []string
	if r.TagIDs != "" {
		if err := json.Unmarshal([]byte(r.TagIDs), &tagIDs); err != nil {
			return nil, domain.NewInternalError("TASK_DECODE_FAILED", "Failed to decode tag references", err)
		}
	}
	return &domain.Task{
		ID:             r.ID,
		UserID:         r.UserID,
		Title:          r.Title,
		Description:    r.Description,
		Status:         domain.TaskStatus(r.Status),
		Priority:       r.Priority,
		DueDate:        r.DueDate,
		DueTime:        r.DueTime,
		Position:       r.Position,
		ProjectID:      r.ProjectID,
		TagIDs:         tagIDs,
		CompletedAt:    r.CompletedAt,
		IsRecurring:    r.IsRecurring,
		RecurrenceRule: r.RecurrenceRule,
		RecurrenceType: domain.RecurrenceType(r.RecurrenceType),
		RecurrenceEnd:  r.RecurrenceEnd,
		OriginTaskID:   r.OriginTaskID,
		CreatedAt:      r.Created,
		UpdatedAt:      r.Updated,
	}, nil
}

func (r *taskRow) params() dbx.Params {
	return dbx.Params{
		"id":              r.ID,
		"user_id":         r.UserID,
		"title":           r.Title,
		"description":     r.Description,
		"status":          r.Status,
		"priority":        r.Priority,
		"due_date":        r.DueDate,
		"due_time":        r.DueTime,
		"position":        r.Position,
		"project_id":      r.ProjectID,
		"tag_ids":         r.TagIDs,
		"completed_at":    r.CompletedAt,
		"is_recurring":    r.IsRecurring,
		"recurrence_rule": r.RecurrenceRule,
		"recurrence_type": r.RecurrenceType,
		"recurrence_end":  r.RecurrenceEnd,
		"origin_task_id":  r.OriginTaskID,
		"created":         r.Created,
		"updated":         r.Updated,
	}
}

// GetByID retrieves a task by its ID.
func (s *sqliteTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var row taskRow
	err := s.db.builderFrom(ctx).
		Select().
		From("tasks").
		Where(dbx.HashExp{"id": id}).
		WithContext(ctx).
		One(&row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("TASK_NOT_FOUND", "Task not found")
		}
		return nil, domain.NewInternalError("TASK_QUERY_FAILED", "Failed to query task", err)
	}
	return row.toDomain()
}

// ListByUser retrieves tasks belonging to a user ordered by position.
func (s *sqliteTaskRepository) ListByUser(
	ctx context.Context, userID string, offset, limit int,
) ([]*domain.Task, error) {
	var rows []taskRow
	q := s.db.builderFrom(ctx).
		Select().
		From("tasks").
		Where(dbx.HashExp{"user_id": userID}).
		OrderBy("position ASC", "created ASC")
	if limit > 0 {
		q = q.Offset(int64(offset)).Limit(int64(limit))
	}
	err := q.WithContext(ctx).All(&rows)
	if err != nil {
		return nil, domain.NewInternalError("TASK_LIST_FAILED", "Failed to list tasks", err)
	}
	return rowsToTasks(rows)
}

// ListByProject retrieves tasks within a project ordered by position.
func (s *sqliteTaskRepository) ListByProject(
	ctx context.Context, projectID string, offset, limit int,
) ([]*domain.Task, error) {
	var rows []taskRow
	err := s.db.builderFrom(ctx).
		Select().
		From("tasks").
		Where(dbx.HashExp{"project_id": projectID}).
		OrderBy("position ASC", "created ASC").
		Offset(int64(offset)).
		Limit(int64(limit)).
		WithContext(ctx).
		All(&rows)
	if err != nil {
		return nil, domain.NewInternalError("TASK_LIST_FAILED", "Failed to list tasks", err)
	}
	return rowsToTasks(rows)
}

// CountByUser returns the number of tasks a user owns.
func (s *sqliteTaskRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.builderFrom(ctx).
		Select("COUNT(*)").
		From("tasks").
		Where(dbx.HashExp{"user_id": userID}).
		WithContext(ctx).
		Row(&count)
	if err != nil {
		return 0, domain.NewInternalError("TASK_COUNT_FAILED", "Failed to count tasks", err)
	}
	return count, nil
}

// Create creates a new task, assigning an ID when absent.
func (s *sqliteTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	row, err := taskToRow(task)
	if err != nil {
		return err
	}
	if _, err := s.db.builderFrom(ctx).
		Insert("tasks", row.params()).
		WithContext(ctx).
		Execute(); err != nil {
		return domain.NewInternalError("TASK_CREATE_FAILED", "Failed to create task", err)
	}
	return nil
}

// Update updates an existing task.
func (s *sqliteTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	row, err := taskToRow(task)
	if err != nil {
		return err
	}
	result, err := s.db.builderFrom(ctx).
		Update("tasks", row.params(), dbx.HashExp{"id": task.ID}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return domain.NewInternalError("TASK_UPDATE_FAILED", "Failed to update task", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.NewNotFoundError("TASK_NOT_FOUND", "Task not found")
	}
	return nil
}

// Delete deletes a task by ID.
func (s *sqliteTaskRepository) Delete(ctx context.Context, id string) error {
	result, err := s.db.builderFrom(ctx).
		Delete("tasks", dbx.HashExp{"id": id}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return domain.NewInternalError("TASK_DELETE_FAILED", "Failed to delete task", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.NewNotFoundError("TASK_NOT_FOUND", "Task not found")
	}
	return nil
}

func rowsToTasks(rows []taskRow) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0, len(rows))
	for i := range rows {
		task, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
