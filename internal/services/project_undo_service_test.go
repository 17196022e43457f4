package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-me/internal/domain"
	"todo-me/internal/testutil"
)

type projectUndoFixture struct {
	projectRepo *testutil.MockProjectRepository
	projects    ProjectService
	undo        ProjectUndoService
}

func newProjectUndoFixture(t *testing.T) *projectUndoFixture {
	t.Helper()
	projectRepo := testutil.NewMockProjectRepository()
	logger := newTestLogger()
	snapshotter := NewProjectSnapshotter()
	tokens := NewUndoTokenService(testutil.NewMemoryTokenStore(), logger)
	return &projectUndoFixture{
		projectRepo: projectRepo,
		projects:    NewProjectService(projectRepo, snapshotter),
		undo:        NewProjectUndoService(tokens, projectRepo, snapshotter, logger, 0),
	}
}

func (f *projectUndoFixture) createProject(t *testing.T, userID, name string) *domain.Project {
	t.Helper()
	project, err := f.projects.CreateProject(context.Background(), domain.CreateProjectRequest{Name: name}, userID)
	require.NoError(t, err)
	return project
}

func TestProjectUndoService_UndoArchive(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ArchiveReversed", func(t *testing.T) {
		f := newProjectUndoFixture(t)
		project := f.createProject(t, "user-1", "Home")

		archived, prev, err := f.projects.ArchiveProject(ctx, project.ID, "user-1")
		require.NoError(t, err)
		require.True(t, archived.Archived)
		require.NotNil(t, archived.ArchivedAt)

		token := f.undo.CreateArchiveUndoToken(ctx, "user-1", project.ID, prev)
		restored, err := f.undo.UndoArchive(ctx, "user-1", token)
		require.NoError(t, err)

		assert.False(t, restored.Archived)
		assert.Nil(t, restored.ArchivedAt)
	})

	t.Run("Success_UnarchiveReversed", func(t *testing.T) {
		f := newProjectUndoFixture(t)
		project := f.createProject(t, "user-1", "Home")
		archived, _, err := f.projects.ArchiveProject(ctx, project.ID, "user-1")
		require.NoError(t, err)
		archivedAt := *archived.ArchivedAt

		_, prev, err := f.projects.UnarchiveProject(ctx, project.ID, "user-1")
		require.NoError(t, err)

		token := f.undo.CreateArchiveUndoToken(ctx, "user-1", project.ID, prev)
		restored, err := f.undo.UndoArchive(ctx, "user-1", token)
		require.NoError(t, err)

		// Undoing an unarchive re-archives with the original timestamp.
		assert.True(t, restored.Archived)
		require.NotNil(t, restored.ArchivedAt)
		assert.True(t, archivedAt.Equal(*restored.ArchivedAt))
	})

	t.Run("Error_WrongActionType", func(t *testing.T) {
		f := newProjectUndoFixture(t)
		project := f.createProject(t, "user-1", "Home")
		name := "House"
		_, prev, err := f.projects.UpdateProject(ctx, project.ID, domain.UpdateProjectRequest{Name: &name}, "user-1")
		require.NoError(t, err)

		token := f.undo.CreateUpdateUndoToken(ctx, "user-1", project.ID, prev)
		_, err = f.undo.UndoArchive(ctx, "user-1", token)
		require.Error(t, err)
		assert.Equal(t, "WRONG_ACTION_TYPE", domain.ErrorCode(err))
	})
}

func TestProjectUndoService_UndoUpdate(t *testing.T) {
	ctx := context.Background()
	f := newProjectUndoFixture(t)
	project := f.createProject(t, "user-1", "Original")

	name := "Renamed"
	_, prev, err := f.projects.UpdateProject(ctx, project.ID, domain.UpdateProjectRequest{Name: &name}, "user-1")
	require.NoError(t, err)

	token := f.undo.CreateUpdateUndoToken(ctx, "user-1", project.ID, prev)
	restored, err := f.undo.Undo(ctx, "user-1", token)
	require.NoError(t, err)
	assert.Equal(t, "Original", restored.Name)
}

func TestProjectUndoService_UndoDelete(t *testing.T) {
	ctx := context.Background()
	f := newProjectUndoFixture(t)
	project := f.createProject(t, "user-1", "Keep me")
	project.Description = "important"
	_, _, err := f.projects.UpdateProject(ctx, project.ID,
		domain.UpdateProjectRequest{Description: &project.Description}, "user-1")
	require.NoError(t, err)

	snap, err := f.projects.DeleteProject(ctx, project.ID, "user-1")
	require.NoError(t, err)

	token := f.undo.CreateDeleteUndoToken(ctx, "user-1", project.ID, snap)
	restored, err := f.undo.Undo(ctx, "user-1", token)
	require.NoError(t, err)

	assert.Equal(t, project.ID, restored.ID)
	assert.Equal(t, "Keep me", restored.Name)
	assert.Equal(t, "important", restored.Description)

	stored, err := f.projectRepo.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keep me", stored.Name)
}
