package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-me/internal/domain"
	"todo-me/internal/testutil"
)

type batchFixture struct {
	taskRepo *testutil.MockTaskRepository
	tasks    TaskService
	executor BatchExecutor
}

func newBatchFixture(t *testing.T) *batchFixture {
	t.Helper()
	taskRepo := testutil.NewMockTaskRepository()
	projectRepo := testutil.NewMockProjectRepository()
	tagRepo := testutil.NewMockTagRepository()
	logger := newTestLogger()
	snapshotter := NewTaskSnapshotter(projectRepo, tagRepo)
	tokens := NewUndoTokenService(testutil.NewMemoryTokenStore(), logger)
	tasks := NewTaskService(taskRepo, projectRepo, tagRepo, snapshotter)
	taskUndo := NewTaskUndoService(tokens, taskRepo, snapshotter, logger, 0)
	txManager := testutil.NewMockTransactionManager(taskRepo)
	return &batchFixture{
		taskRepo: taskRepo,
		tasks:    tasks,
		executor: NewBatchExecutor(tasks, taskUndo, tokens, txManager, logger, 0),
	}
}

func (f *batchFixture) seedTask(t *testing.T, userID, title string) *domain.Task {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), domain.CreateTaskRequest{Title: title}, userID)
	require.NoError(t, err)
	return task
}

func TestBatchExecutor_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_MixedOperations", func(t *testing.T) {
		f := newBatchFixture(t)
		existing := f.seedTask(t, "user-1", "Existing")

		newTitle := "Existing, renamed"
		result, err := f.executor.Execute(ctx, "user-1", []domain.BatchOperation{
			{Action: domain.BatchActionCreate, Create: &domain.CreateTaskRequest{Title: "Fresh"}},
			{Action: domain.BatchActionUpdate, TaskID: existing.ID, Update: &domain.UpdateTaskRequest{Title: &newTitle}},
			{Action: domain.BatchActionComplete, TaskID: existing.ID},
		}, false)
		require.NoError(t, err)

		require.Len(t, result.Results, 3)
		for _, opResult := range result.Results {
			assert.True(t, opResult.Success)
		}
		assert.NotEmpty(t, result.UndoToken)

		updated, err := f.taskRepo.GetByID(ctx, existing.ID)
		require.NoError(t, err)
		assert.Equal(t, "Existing, renamed", updated.Title)
		assert.Equal(t, domain.StatusCompleted, updated.Status)
	})

	t.Run("Error_EmptyBatch", func(t *testing.T) {
		f := newBatchFixture(t)
		_, err := f.executor.Execute(ctx, "user-1", nil, false)
		require.Error(t, err)
		assert.Equal(t, "EMPTY_BATCH", domain.ErrorCode(err))
	})
}

func TestBatchExecutor_PartialIndependence(t *testing.T) {
	ctx := context.Background()
	f := newBatchFixture(t)
	a := f.seedTask(t, "user-1", "Task A")
	c := f.seedTask(t, "user-1", "Task C")

	// Operation 1 targets a task that does not exist; 0 and 2 must
	// still apply.
	result, err := f.executor.Execute(ctx, "user-1", []domain.BatchOperation{
		{Action: domain.BatchActionComplete, TaskID: a.ID},
		{Action: domain.BatchActionComplete, TaskID: "no-such-task"},
		{Action: domain.BatchActionDelete, TaskID: c.ID},
	}, false)
	require.NoError(t, err)

	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)
	assert.NotEmpty(t, result.Results[1].Error)
	assert.True(t, result.Results[2].Success)
	assert.NotEmpty(t, result.UndoToken)

	completed, err := f.taskRepo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)
	_, err = f.taskRepo.GetByID(ctx, c.ID)
	require.Error(t, err)

	// The composite token reverses only the operations that succeeded.
	undoResult, err := f.executor.UndoBatch(ctx, "user-1", result.UndoToken)
	require.NoError(t, err)
	assert.True(t, undoResult.Undone)
	require.Len(t, undoResult.Results, 2)

	reverted, err := f.taskRepo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, reverted.Status)
	restored, err := f.taskRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Task C", restored.Title)
}

func TestBatchExecutor_AtomicAllOrNothing(t *testing.T) {
	ctx := context.Background()
	f := newBatchFixture(t)
	existing := f.seedTask(t, "user-1", "Existing")

	newTitle := "Changed"
	result, err := f.executor.Execute(ctx, "user-1", []domain.BatchOperation{
		{Action: domain.BatchActionCreate, Create: &domain.CreateTaskRequest{Title: "Fresh"}},
		{Action: domain.BatchActionUpdate, TaskID: existing.ID, Update: &domain.UpdateTaskRequest{Title: &newTitle}},
		{Action: domain.BatchActionComplete, TaskID: "no-such-task"},
	}, true)
	require.NoError(t, err)

	// Results cover only the operations attempted up to the failure.
	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].Success)
	assert.True(t, result.Results[1].Success)
	assert.False(t, result.Results[2].Success)
	assert.Empty(t, result.UndoToken)

	// The rollback erased every side effect.
	unchanged, err := f.taskRepo.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Existing", unchanged.Title)
	listed, err := f.taskRepo.ListByUser(ctx, "user-1", 0, 50)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestBatchExecutor_UndoReverseOrder(t *testing.T) {
	ctx := context.Background()
	f := newBatchFixture(t)
	b := f.seedTask(t, "user-1", "Task B")
	c := f.seedTask(t, "user-1", "Task C")

	// [create A, update B, delete C]: the reversal must recreate C
	// (index 2) before it deletes A (index 0).
	newTitle := "Task B, edited"
	result, err := f.executor.Execute(ctx, "user-1", []domain.BatchOperation{
		{Action: domain.BatchActionCreate, Create: &domain.CreateTaskRequest{Title: "Task A"}},
		{Action: domain.BatchActionUpdate, TaskID: b.ID, Update: &domain.UpdateTaskRequest{Title: &newTitle}},
		{Action: domain.BatchActionDelete, TaskID: c.ID},
	}, false)
	require.NoError(t, err)
	require.NotEmpty(t, result.UndoToken)
	createdID := result.Results[0].TaskID
	require.NotEmpty(t, createdID)

	undoResult, err := f.executor.UndoBatch(ctx, "user-1", result.UndoToken)
	require.NoError(t, err)
	assert.True(t, undoResult.Undone)

	require.Len(t, undoResult.Results, 3)
	assert.Equal(t, 2, undoResult.Results[0].Index)
	assert.Equal(t, 1, undoResult.Results[1].Index)
	assert.Equal(t, 0, undoResult.Results[2].Index)

	// Created task gone, deleted task back, update reverted.
	_, err = f.taskRepo.GetByID(ctx, createdID)
	require.Error(t, err)
	restored, err := f.taskRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Task C", restored.Title)
	reverted, err := f.taskRepo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Task B", reverted.Title)

	// The composite token is single use.
	_, err = f.executor.UndoBatch(ctx, "user-1", result.UndoToken)
	require.Error(t, err)
	assert.Equal(t, "INVALID_UNDO_TOKEN", domain.ErrorCode(err))
}

func TestBatchExecutor_UndoIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	f := newBatchFixture(t)
	a := f.seedTask(t, "user-1", "Task A")
	b := f.seedTask(t, "user-1", "Task B")

	result, err := f.executor.Execute(ctx, "user-1", []domain.BatchOperation{
		{Action: domain.BatchActionComplete, TaskID: a.ID},
		{Action: domain.BatchActionComplete, TaskID: b.ID},
	}, false)
	require.NoError(t, err)

	// Someone deletes task B before the undo arrives. Its reversal
	// fails, but task A's must still run.
	_, err = f.tasks.DeleteTask(ctx, b.ID, "user-1")
	require.NoError(t, err)

	undoResult, err := f.executor.UndoBatch(ctx, "user-1", result.UndoToken)
	require.NoError(t, err)
	assert.False(t, undoResult.Undone)
	require.Len(t, undoResult.Results, 2)
	assert.False(t, undoResult.Results[0].Success) // index 1, task B
	assert.True(t, undoResult.Results[1].Success)  // index 0, task A

	reverted, err := f.taskRepo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, reverted.Status)
}
