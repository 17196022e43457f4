package services

import (
	"context"
	"time"

	"todo-me/internal/domain"
	"todo-me/internal/repository"
)

// ProjectService defines project operations. Like TaskService, the
// reversible mutations hand back the prior-state snapshot for the
// caller to turn into an undo token.
type ProjectService interface {
	// CreateProject creates a new project
	CreateProject(ctx context.Context, req domain.CreateProjectRequest, userID string) (*domain.Project, error)

	// GetProject gets a project by ID, verifying ownership
	GetProject(ctx context.Context, projectID string, userID string) (*domain.Project, error)

	// ListProjects lists a user's projects
	ListProjects(ctx context.Context, userID string) ([]*domain.Project, error)

	// UpdateProject updates a project and returns the prior values of
	// the fields that were changed
	UpdateProject(
		ctx context.Context, projectID string, req domain.UpdateProjectRequest, userID string,
	) (*domain.Project, map[string]interface{}, error)

	// ArchiveProject archives a project and returns the prior archive
	// fields
	ArchiveProject(ctx context.Context, projectID string, userID string) (*domain.Project, map[string]interface{}, error)

	// UnarchiveProject restores an archived project to active state
	UnarchiveProject(ctx context.Context, projectID string, userID string) (*domain.Project, map[string]interface{}, error)

	// DeleteProject deletes a project and returns its full prior
	// snapshot. Tasks referencing the project keep their reference;
	// restoring the project makes them whole again.
	DeleteProject(ctx context.Context, projectID string, userID string) (map[string]interface{}, error)
}

type projectService struct {
	projectRepo repository.ProjectRepository
	snapshotter *ProjectSnapshotter
}

// NewProjectService creates a new project service.
func NewProjectService(projectRepo repository.ProjectRepository, snapshotter *ProjectSnapshotter) ProjectService {
	return &projectService{projectRepo: projectRepo, snapshotter: snapshotter}
}

func (s *projectService) CreateProject(
	ctx context.Context, req domain.CreateProjectRequest, userID string,
) (*domain.Project, error) {
	project := domain.NewProject(userID, req.Name)
	project.Description = req.Description
	if err := project.Validate(); err != nil {
		return nil, err
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) GetProject(ctx context.Context, projectID string, userID string) (*domain.Project, error) {
	if projectID == "" {
		return nil, domain.NewValidationError("INVALID_PROJECT_ID", "Project ID cannot be empty", nil)
	}
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsOwnedBy(userID) {
		return nil, domain.NewAuthorizationError("ACCESS_DENIED", "You don't have access to this project")
	}
	return project, nil
}

func (s *projectService) ListProjects(ctx context.Context, userID string) ([]*domain.Project, error) {
	return s.projectRepo.ListByUser(ctx, userID, 0, 0)
}

func (s *projectService) UpdateProject(
	ctx context.Context, projectID string, req domain.UpdateProjectRequest, userID string,
) (*domain.Project, map[string]interface{}, error) {
	project, err := s.GetProject(ctx, projectID, userID)
	if err != nil {
		return nil, nil, err
	}

	prev := make(map[string]interface{})
	if req.Name != nil {
		prev["name"] = project.Name
		project.Name = *req.Name
	}
	if req.Description != nil {
		prev["description"] = project.Description
		project.Description = *req.Description
	}

	project.UpdatedAt = time.Now()
	if err := project.Validate(); err != nil {
		return nil, nil, err
	}
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, nil, err
	}
	return project, prev, nil
}

func (s *projectService) ArchiveProject(
	ctx context.Context, projectID string, userID string,
) (*domain.Project, map[string]interface{}, error) {
	project, err := s.GetProject(ctx, projectID, userID)
	if err != nil {
		return nil, nil, err
	}
	if project.Archived {
		return nil, nil, domain.NewConflictError("ALREADY_ARCHIVED", "Project is already archived")
	}
	prev := s.snapshotter.ArchiveSnapshot(project)
	project.Archive()
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, nil, err
	}
	return project, prev, nil
}

func (s *projectService) UnarchiveProject(
	ctx context.Context, projectID string, userID string,
) (*domain.Project, map[string]interface{}, error) {
	project, err := s.GetProject(ctx, projectID, userID)
	if err != nil {
		return nil, nil, err
	}
	if !project.Archived {
		return nil, nil, domain.NewConflictError("NOT_ARCHIVED", "Project is not archived")
	}
	prev := s.snapshotter.ArchiveSnapshot(project)
	project.Unarchive()
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, nil, err
	}
	return project, prev, nil
}

func (s *projectService) DeleteProject(
	ctx context.Context, projectID string, userID string,
) (map[string]interface{}, error) {
	project, err := s.GetProject(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	snap := s.snapshotter.FullSnapshot(project)
	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return nil, err
	}
	return snap, nil
}
