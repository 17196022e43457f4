package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-me/internal/domain"
)

func newTaskServiceFixture(t *testing.T) (*taskUndoFixture, context.Context) {
	t.Helper()
	return newTaskUndoFixture(t), context.Background()
}

func TestTaskService_CreateTask(t *testing.T) {
	t.Run("Success_PositionsAssignedInOrder", func(t *testing.T) {
		f, ctx := newTaskServiceFixture(t)

		first, err := f.tasks.CreateTask(ctx, domain.CreateTaskRequest{Title: "First"}, "user-1")
		require.NoError(t, err)
		second, err := f.tasks.CreateTask(ctx, domain.CreateTaskRequest{Title: "Second"}, "user-1")
		require.NoError(t, err)

		assert.Equal(t, 1, first.Position)
		assert.Equal(t, 2, second.Position)
		assert.Equal(t, domain.StatusPending, first.Status)
		assert.Equal(t, domain.DefaultPriority, first.Priority)
	})

	t.Run("Success_EachTaskGetsDistinctID", func(t *testing.T) {
		f, ctx := newTaskServiceFixture(t)

		first, err := f.tasks.CreateTask(ctx, domain.CreateTaskRequest{Title: "First"}, "user-1")
		require.NoError(t, err)
		second, err := f.tasks.CreateTask(ctx, domain.CreateTaskRequest{Title: "Second"}, "user-1")
		require.NoError(t, err)

		assert.NotEmpty(t, first.ID)
		assert.NotEmpty(t, second.ID)
		assert.NotEqual(t, first.ID, second.ID)

		fetched, err := f.tasks.GetTask(ctx, second.ID, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "Second", fetched.Title)
	})

	t.Run("Error_ForeignProject", func(t *testing.T) {
		f, ctx := newTaskServiceFixture(t)
		foreign := domain.NewProject("user-2", "Theirs")
		require.NoError(t, f.projectRepo.Create(ctx, foreign))

		_, err := f.tasks.CreateTask(ctx, domain.CreateTaskRequest{
			Title:     "Task",
			ProjectID: &foreign.ID,
		}, "user-1")
		require.Error(t, err)
		assert.Equal(t, "ACCESS_DENIED", domain.ErrorCode(err))
	})

	t.Run("Error_UnknownTag", func(t *testing.T) {
		f, ctx := newTaskServiceFixture(t)
		_, err := f.tasks.CreateTask(ctx, domain.CreateTaskRequest{
			Title:  "Task",
			TagIDs: []string{"no-such-tag"},
		}, "user-1")
		require.Error(t, err)
		assert.Equal(t, "TAG_NOT_FOUND", domain.ErrorCode(err))
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	t.Run("Success_PrevHoldsOnlyChangedFields", func(t *testing.T) {
		f, ctx := newTaskServiceFixture(t)
		task := f.createTask(t, "user-1", "Title")

		newTitle := "New title"
		newPriority := 5
		_, prev, err := f.tasks.UpdateTask(ctx, task.ID, domain.UpdateTaskRequest{
			Title:    &newTitle,
			Priority: &newPriority,
		}, "user-1")
		require.NoError(t, err)

		assert.Len(t, prev, 2)
		assert.Equal(t, "Title", prev["title"])
		assert.Equal(t, domain.DefaultPriority, prev["priority"])
	})

	t.Run("Success_ClearingProjectRecordsPriorID", func(t *testing.T) {
		f, ctx := newTaskServiceFixture(t)
		project := domain.NewProject("user-1", "Inbox")
		require.NoError(t, f.projectRepo.Create(ctx, project))
		task, err := f.tasks.CreateTask(ctx, domain.CreateTaskRequest{
			Title:     "Task",
			ProjectID: &project.ID,
		}, "user-1")
		require.NoError(t, err)

		empty := ""
		updated, prev, err := f.tasks.UpdateTask(ctx, task.ID, domain.UpdateTaskRequest{
			ProjectID: &empty,
		}, "user-1")
		require.NoError(t, err)

		assert.Nil(t, updated.ProjectID)
		assert.Equal(t, project.ID, prev["project_id"])
	})

	t.Run("Error_OtherUsersTask", func(t *testing.T) {
		f, ctx := newTaskServiceFixture(t)
		task := f.createTask(t, "user-1", "Mine")

		newTitle := "Hijacked"
		_, _, err := f.tasks.UpdateTask(ctx, task.ID, domain.UpdateTaskRequest{Title: &newTitle}, "user-2")
		require.Error(t, err)
		assert.Equal(t, "ACCESS_DENIED", domain.ErrorCode(err))
	})
}

func TestTaskService_StatusAndSchedule(t *testing.T) {
	t.Run("Success_CompleteStampsTimestamp", func(t *testing.T) {
		f, ctx := newTaskServiceFixture(t)
		task := f.createTask(t, "user-1", "Task")

		updated, prev, err := f.tasks.UpdateTaskStatus(ctx, task.ID, domain.StatusCompleted, "user-1")
		require.NoError(t, err)

		assert.Equal(t, domain.StatusCompleted, updated.Status)
		assert.NotNil(t, updated.CompletedAt)
		assert.Equal(t, "pending", prev["status"])
		assert.Nil(t, prev["completed_at"])
	})

	t.Run("Success_ReschedulePrevHoldsOldSchedule", func(t *testing.T) {
		f, ctx := newTaskServiceFixture(t)
		oldDate := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		oldTime := "08:00"
		task, err := f.tasks.CreateTask(ctx, domain.CreateTaskRequest{
			Title:   "Task",
			DueDate: &oldDate,
			DueTime: &oldTime,
		}, "user-1")
		require.NoError(t, err)

		newDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
		updated, prev, err := f.tasks.RescheduleTask(ctx, task.ID, &newDate, nil, "user-1")
		require.NoError(t, err)

		require.NotNil(t, updated.DueDate)
		assert.True(t, newDate.Equal(*updated.DueDate))
		assert.Nil(t, updated.DueTime)
		assert.Equal(t, oldDate, prev["due_date"])
		assert.Equal(t, "08:00", prev["due_time"])
	})

	t.Run("Error_InvalidStatus", func(t *testing.T) {
		f, ctx := newTaskServiceFixture(t)
		task := f.createTask(t, "user-1", "Task")

		_, _, err := f.tasks.UpdateTaskStatus(ctx, task.ID, domain.TaskStatus("paused"), "user-1")
		require.Error(t, err)
		assert.Equal(t, "INVALID_STATUS", domain.ErrorCode(err))
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	f, ctx := newTaskServiceFixture(t)
	task := f.createTask(t, "user-1", "Doomed")

	snap, err := f.tasks.DeleteTask(ctx, task.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Doomed", snap["title"])

	_, err = f.tasks.GetTask(ctx, task.ID, "user-1")
	require.Error(t, err)
	assert.Equal(t, "TASK_NOT_FOUND", domain.ErrorCode(err))
}
