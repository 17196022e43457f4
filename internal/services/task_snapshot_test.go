package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-me/internal/domain"
	"todo-me/internal/testutil"
)

func snapshotFixtures(t *testing.T) (*TaskSnapshotter, *testutil.MockProjectRepository, *testutil.MockTagRepository) {
	t.Helper()
	projectRepo := testutil.NewMockProjectRepository()
	tagRepo := testutil.NewMockTagRepository()
	return NewTaskSnapshotter(projectRepo, tagRepo), projectRepo, tagRepo
}

func TestTaskSnapshotter_FullRoundTrip(t *testing.T) {
	ctx := context.Background()
	snapshotter, projectRepo, tagRepo := snapshotFixtures(t)

	project := domain.NewProject("user-1", "Inbox")
	require.NoError(t, projectRepo.Create(ctx, project))
	tag := domain.NewTag("user-1", "urgent", "#ff0000")
	require.NoError(t, tagRepo.Create(ctx, tag))

	dueDate := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	dueTime := "09:30"
	original := domain.NewTask("user-1", "Write report")
	original.Description = "quarterly numbers"
	original.Status = domain.StatusCompleted
	completedAt := time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC)
	original.CompletedAt = &completedAt
	original.Priority = 4
	original.Position = 7
	original.DueDate = &dueDate
	original.DueTime = &dueTime
	original.ProjectID = &project.ID
	original.TagIDs = []string{tag.ID}

	snap := snapshotter.FullSnapshot(original)

	// Tokens cross a JSON boundary on their way through the store;
	// the codec must survive the round trip.
	encoded, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	restored, err := snapshotter.RestoreFromSnapshot(ctx, "user-1", decoded)
	require.NoError(t, err)

	assert.Equal(t, original.Title, restored.Title)
	assert.Equal(t, original.Description, restored.Description)
	assert.Equal(t, domain.StatusCompleted, restored.Status)
	require.NotNil(t, restored.CompletedAt)
	assert.True(t, completedAt.Equal(*restored.CompletedAt))
	assert.Equal(t, 4, restored.Priority)
	assert.Equal(t, 7, restored.Position)
	require.NotNil(t, restored.DueDate)
	assert.True(t, dueDate.Equal(*restored.DueDate))
	require.NotNil(t, restored.DueTime)
	assert.Equal(t, "09:30", *restored.DueTime)
	require.NotNil(t, restored.ProjectID)
	assert.Equal(t, project.ID, *restored.ProjectID)
	assert.Equal(t, []string{tag.ID}, restored.TagIDs)
	assert.True(t, original.CreatedAt.Equal(restored.CreatedAt))
}

func TestTaskSnapshotter_ApplyState(t *testing.T) {
	ctx := context.Background()

	t.Run("PartialTouchesOnlyPresentKeys", func(t *testing.T) {
		snapshotter, _, _ := snapshotFixtures(t)

		task := domain.NewTask("user-1", "Current title")
		task.Description = "current description"
		task.Priority = 5

		err := snapshotter.ApplyState(ctx, "user-1", task, map[string]interface{}{
			"title": "Prior title",
		})
		require.NoError(t, err)

		assert.Equal(t, "Prior title", task.Title)
		assert.Equal(t, "current description", task.Description)
		assert.Equal(t, 5, task.Priority)
	})

	t.Run("NullValueClearsField", func(t *testing.T) {
		snapshotter, _, _ := snapshotFixtures(t)

		dueDate := time.Now().Add(24 * time.Hour)
		task := domain.NewTask("user-1", "Task")
		task.DueDate = &dueDate

		// A present key with a null value means the prior value was
		// unset, which is different from the key being absent.
		err := snapshotter.ApplyState(ctx, "user-1", task, map[string]interface{}{
			"due_date": nil,
		})
		require.NoError(t, err)
		assert.Nil(t, task.DueDate)
	})

	t.Run("StatusAppliedVerbatim", func(t *testing.T) {
		snapshotter, _, _ := snapshotFixtures(t)

		task := domain.NewTask("user-1", "Task")
		task.Complete()
		require.NotNil(t, task.CompletedAt)

		// Restoring a prior pending state clears the completion
		// timestamp exactly as stored; it does not re-derive it.
		err := snapshotter.ApplyState(ctx, "user-1", task, map[string]interface{}{
			"status":       "pending",
			"completed_at": nil,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, task.Status)
		assert.Nil(t, task.CompletedAt)
	})
}

func TestTaskSnapshotter_ReferenceResolution(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingProjectDropped", func(t *testing.T) {
		snapshotter, _, _ := snapshotFixtures(t)

		task := domain.NewTask("user-1", "Task")
		err := snapshotter.ApplyState(ctx, "user-1", task, map[string]interface{}{
			"project_id": "gone-project",
		})
		require.NoError(t, err)
		assert.Nil(t, task.ProjectID)
	})

	t.Run("ForeignProjectDropped", func(t *testing.T) {
		snapshotter, projectRepo, _ := snapshotFixtures(t)

		foreign := domain.NewProject("user-2", "Someone else's")
		require.NoError(t, projectRepo.Create(ctx, foreign))

		task := domain.NewTask("user-1", "Task")
		err := snapshotter.ApplyState(ctx, "user-1", task, map[string]interface{}{
			"project_id": foreign.ID,
		})
		require.NoError(t, err)
		assert.Nil(t, task.ProjectID)
	})

	t.Run("StaleTagsFiltered", func(t *testing.T) {
		snapshotter, _, tagRepo := snapshotFixtures(t)

		live := domain.NewTag("user-1", "keep", "#00ff00")
		require.NoError(t, tagRepo.Create(ctx, live))
		foreign := domain.NewTag("user-2", "other", "#0000ff")
		require.NoError(t, tagRepo.Create(ctx, foreign))

		task := domain.NewTask("user-1", "Task")
		err := snapshotter.ApplyState(ctx, "user-1", task, map[string]interface{}{
			"tag_ids": []interface{}{live.ID, "deleted-tag", foreign.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{live.ID}, task.TagIDs)
	})
}
