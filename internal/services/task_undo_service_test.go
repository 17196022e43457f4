package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-me/internal/domain"
	"todo-me/internal/testutil"
)

type taskUndoFixture struct {
	taskRepo    *testutil.MockTaskRepository
	projectRepo *testutil.MockProjectRepository
	tagRepo     *testutil.MockTagRepository
	store       *testutil.MemoryTokenStore
	tasks       TaskService
	undo        TaskUndoService
	tokens      UndoTokenService
}

func newTaskUndoFixture(t *testing.T) *taskUndoFixture {
	t.Helper()
	taskRepo := testutil.NewMockTaskRepository()
	projectRepo := testutil.NewMockProjectRepository()
	tagRepo := testutil.NewMockTagRepository()
	store := testutil.NewMemoryTokenStore()
	logger := newTestLogger()
	snapshotter := NewTaskSnapshotter(projectRepo, tagRepo)
	tokens := NewUndoTokenService(store, logger)
	return &taskUndoFixture{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		tagRepo:     tagRepo,
		store:       store,
		tasks:       NewTaskService(taskRepo, projectRepo, tagRepo, snapshotter),
		undo:        NewTaskUndoService(tokens, taskRepo, snapshotter, logger, 0),
		tokens:      tokens,
	}
}

func (f *taskUndoFixture) createTask(t *testing.T, userID, title string) *domain.Task {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), domain.CreateTaskRequest{Title: title}, userID)
	require.NoError(t, err)
	return task
}

func TestTaskUndoService_UndoDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RestoresUnderOriginalID", func(t *testing.T) {
		f := newTaskUndoFixture(t)
		task := f.createTask(t, "user-1", "Buy milk")
		task.Description = "two liters"
		_, _, err := f.tasks.UpdateTask(ctx, task.ID, domain.UpdateTaskRequest{Description: &task.Description}, "user-1")
		require.NoError(t, err)

		snap, err := f.tasks.DeleteTask(ctx, task.ID, "user-1")
		require.NoError(t, err)
		_, err = f.taskRepo.GetByID(ctx, task.ID)
		require.Error(t, err)

		token := f.undo.CreateDeleteUndoToken(ctx, "user-1", task.ID, snap)
		require.NotEmpty(t, token)

		restored, err := f.undo.UndoDelete(ctx, "user-1", token)
		require.NoError(t, err)
		assert.Equal(t, task.ID, restored.ID)
		assert.Equal(t, "Buy milk", restored.Title)
		assert.Equal(t, "two liters", restored.Description)

		stored, err := f.taskRepo.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", stored.Title)
	})

	t.Run("Error_SecondUndoFails", func(t *testing.T) {
		f := newTaskUndoFixture(t)
		task := f.createTask(t, "user-1", "Buy milk")
		snap, err := f.tasks.DeleteTask(ctx, task.ID, "user-1")
		require.NoError(t, err)

		token := f.undo.CreateDeleteUndoToken(ctx, "user-1", task.ID, snap)
		_, err = f.undo.UndoDelete(ctx, "user-1", token)
		require.NoError(t, err)

		_, err = f.undo.UndoDelete(ctx, "user-1", token)
		require.Error(t, err)
		assert.Equal(t, "INVALID_UNDO_TOKEN", domain.ErrorCode(err))
	})

	t.Run("Error_WrongActionBurnsToken", func(t *testing.T) {
		f := newTaskUndoFixture(t)
		task := f.createTask(t, "user-1", "Buy milk")
		title := "Buy oat milk"
		_, prev, err := f.tasks.UpdateTask(ctx, task.ID, domain.UpdateTaskRequest{Title: &title}, "user-1")
		require.NoError(t, err)

		token := f.undo.CreateUpdateUndoToken(ctx, "user-1", task.ID, prev)
		require.NotEmpty(t, token)

		// Replaying an update token through the delete path fails,
		// and the token is consumed anyway.
		_, err = f.undo.UndoDelete(ctx, "user-1", token)
		require.Error(t, err)
		assert.Equal(t, "WRONG_ACTION_TYPE", domain.ErrorCode(err))

		_, err = f.undo.UndoUpdate(ctx, "user-1", token)
		require.Error(t, err)
		assert.Equal(t, "INVALID_UNDO_TOKEN", domain.ErrorCode(err))
	})
}

func TestTaskUndoService_UndoUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ReappliesOnlyChangedFields", func(t *testing.T) {
		f := newTaskUndoFixture(t)
		task := f.createTask(t, "user-1", "Original title")

		title := "New title"
		priority := 5
		_, prev, err := f.tasks.UpdateTask(ctx, task.ID, domain.UpdateTaskRequest{
			Title:    &title,
			Priority: &priority,
		}, "user-1")
		require.NoError(t, err)

		// Another change after the undo token was minted.
		desc := "added later"
		_, _, err = f.tasks.UpdateTask(ctx, task.ID, domain.UpdateTaskRequest{Description: &desc}, "user-1")
		require.NoError(t, err)

		token := f.undo.CreateUpdateUndoToken(ctx, "user-1", task.ID, prev)
		restored, err := f.undo.UndoUpdate(ctx, "user-1", token)
		require.NoError(t, err)

		assert.Equal(t, "Original title", restored.Title)
		assert.Equal(t, domain.DefaultPriority, restored.Priority)
		// The later description change is untouched.
		assert.Equal(t, "added later", restored.Description)
	})

	t.Run("Error_TaskGone", func(t *testing.T) {
		f := newTaskUndoFixture(t)
		task := f.createTask(t, "user-1", "Original title")

		title := "New title"
		_, prev, err := f.tasks.UpdateTask(ctx, task.ID, domain.UpdateTaskRequest{Title: &title}, "user-1")
		require.NoError(t, err)
		token := f.undo.CreateUpdateUndoToken(ctx, "user-1", task.ID, prev)

		_, err = f.tasks.DeleteTask(ctx, task.ID, "user-1")
		require.NoError(t, err)

		_, err = f.undo.UndoUpdate(ctx, "user-1", token)
		require.Error(t, err)
		assert.Equal(t, "TASK_NOT_FOUND", domain.ErrorCode(err))
		assert.True(t, domain.IsErrorType(err, domain.NotFoundError))
	})

	t.Run("Success_EmptyPrevMintsNothing", func(t *testing.T) {
		f := newTaskUndoFixture(t)
		token := f.undo.CreateUpdateUndoToken(ctx, "user-1", "task-1", map[string]interface{}{})
		assert.Empty(t, token)
	})
}

func TestTaskUndoService_UndoStatus(t *testing.T) {
	ctx := context.Background()
	f := newTaskUndoFixture(t)
	task := f.createTask(t, "user-1", "Stretch")

	_, prev, err := f.tasks.UpdateTaskStatus(ctx, task.ID, domain.StatusCompleted, "user-1")
	require.NoError(t, err)
	completed, err := f.taskRepo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedAt)

	token := f.undo.CreateStatusUndoToken(ctx, "user-1", task.ID, prev)
	restored, err := f.undo.Undo(ctx, "user-1", token)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, restored.Status)
	assert.Nil(t, restored.CompletedAt)
}

func TestTaskUndoService_UndoReschedule(t *testing.T) {
	ctx := context.Background()
	f := newTaskUndoFixture(t)
	task := f.createTask(t, "user-1", "Dentist")

	newDate := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	newTime := "15:00"
	_, prev, err := f.tasks.RescheduleTask(ctx, task.ID, &newDate, &newTime, "user-1")
	require.NoError(t, err)

	token := f.undo.CreateUpdateUndoToken(ctx, "user-1", task.ID, prev)
	restored, err := f.undo.UndoUpdate(ctx, "user-1", token)
	require.NoError(t, err)

	// The task had no schedule before the reschedule.
	assert.Nil(t, restored.DueDate)
	assert.Nil(t, restored.DueTime)
}

func TestTaskUndoService_ConsumeBeforeValidate(t *testing.T) {
	ctx := context.Background()
	f := newTaskUndoFixture(t)

	// Mint a project-typed token and present it to the task undo path.
	token := f.tokens.CreateToken(ctx, "user-1", domain.UndoActionUpdate, domain.UndoEntityProject, "project-1",
		map[string]interface{}{"name": "old"}, time.Minute)
	require.NotEmpty(t, token)

	_, err := f.undo.Undo(ctx, "user-1", token)
	require.Error(t, err)
	assert.Equal(t, "WRONG_ENTITY_TYPE", domain.ErrorCode(err))

	// The mismatch consumed the token regardless.
	assert.Nil(t, f.tokens.PeekToken(ctx, "user-1", token))
}
