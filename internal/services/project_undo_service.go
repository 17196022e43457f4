package services

import (
	"context"
	"log/slog"
	"time"

	"todo-me/internal/domain"
	"todo-me/internal/repository"
)

// ProjectUndoService mints and redeems undo tokens for project
// mutations. Archive and unarchive share a single action kind: the
// token stores the prior archived flag, and reapplying it flips the
// project back whichever way it was.
type ProjectUndoService interface {
	// CreateUpdateUndoToken mints a token that reverses a field update
	CreateUpdateUndoToken(ctx context.Context, userID, projectID string, prev map[string]interface{}) string

	// CreateArchiveUndoToken mints a token that reverses an archive or
	// an unarchive
	CreateArchiveUndoToken(ctx context.Context, userID, projectID string, prev map[string]interface{}) string

	// CreateDeleteUndoToken mints a token that resurrects a deleted
	// project
	CreateDeleteUndoToken(ctx context.Context, userID, projectID string, snap map[string]interface{}) string

	// Peek reads a token without consuming it. Advisory only: the
	// token may be gone by the time Undo runs.
	Peek(ctx context.Context, userID, token string) *domain.UndoToken

	// Undo redeems a token of any project action kind
	Undo(ctx context.Context, userID, token string) (*domain.Project, error)

	// UndoArchive redeems a token, requiring it to be an archive
	// reversal
	UndoArchive(ctx context.Context, userID, token string) (*domain.Project, error)

	// RevertProject applies a single recorded reversal without a token
	RevertProject(
		ctx context.Context, userID string, action domain.UndoAction, entityID string, state map[string]interface{},
	) (*domain.Project, error)
}

type projectUndoService struct {
	tokens      UndoTokenService
	projectRepo repository.ProjectRepository
	snapshotter *ProjectSnapshotter
	logger      *slog.Logger
	ttl         time.Duration
}

// NewProjectUndoService creates a project undo service. A ttl of zero
// means DefaultUndoTTL.
func NewProjectUndoService(
	tokens UndoTokenService,
	projectRepo repository.ProjectRepository,
	snapshotter *ProjectSnapshotter,
	logger *slog.Logger,
	ttl time.Duration,
) ProjectUndoService {
	if ttl <= 0 {
		ttl = DefaultUndoTTL
	}
	return &projectUndoService{
		tokens:      tokens,
		projectRepo: projectRepo,
		snapshotter: snapshotter,
		logger:      logger,
		ttl:         ttl,
	}
}

func (s *projectUndoService) CreateUpdateUndoToken(
	ctx context.Context, userID, projectID string, prev map[string]interface{},
) string {
	if len(prev) == 0 {
		return ""
	}
	return s.tokens.CreateToken(ctx, userID, domain.UndoActionUpdate, domain.UndoEntityProject, projectID, prev, s.ttl)
}

func (s *projectUndoService) CreateArchiveUndoToken(
	ctx context.Context, userID, projectID string, prev map[string]interface{},
) string {
	return s.tokens.CreateToken(ctx, userID, domain.UndoActionArchive, domain.UndoEntityProject, projectID, prev, s.ttl)
}

func (s *projectUndoService) CreateDeleteUndoToken(
	ctx context.Context, userID, projectID string, snap map[string]interface{},
) string {
	return s.tokens.CreateToken(ctx, userID, domain.UndoActionDelete, domain.UndoEntityProject, projectID, snap, s.ttl)
}

func (s *projectUndoService) Peek(ctx context.Context, userID, token string) *domain.UndoToken {
	return s.tokens.PeekToken(ctx, userID, token)
}

func (s *projectUndoService) Undo(ctx context.Context, userID, token string) (*domain.Project, error) {
	return s.undo(ctx, userID, token, "")
}

func (s *projectUndoService) UndoArchive(ctx context.Context, userID, token string) (*domain.Project, error) {
	return s.undo(ctx, userID, token, domain.UndoActionArchive)
}

func (s *projectUndoService) undo(
	ctx context.Context, userID, token string, requireAction domain.UndoAction,
) (*domain.Project, error) {
	undoToken := s.tokens.ConsumeToken(ctx, userID, token)
	if undoToken == nil {
		return nil, domain.NewNotFoundError("INVALID_UNDO_TOKEN", "Undo token is invalid, expired, or already used")
	}
	if undoToken.EntityType != domain.UndoEntityProject {
		return nil, domain.NewConflictError("WRONG_ENTITY_TYPE", "Undo token does not refer to a project")
	}
	if requireAction != "" && undoToken.Action != requireAction {
		return nil, domain.NewConflictError("WRONG_ACTION_TYPE", "Undo token records a different action kind")
	}
	project, err := s.RevertProject(ctx, userID, undoToken.Action, undoToken.EntityID, undoToken.PreviousState)
	if err != nil {
		return nil, err
	}
	s.logger.Info("project undo applied",
		"user_id", userID,
		"project_id", undoToken.EntityID,
		"action", string(undoToken.Action))
	return project, nil
}

func (s *projectUndoService) RevertProject(
	ctx context.Context, userID string, action domain.UndoAction, entityID string, state map[string]interface{},
) (*domain.Project, error) {
	switch action {
	case domain.UndoActionDelete:
		return s.revertDelete(ctx, userID, entityID, state)
	case domain.UndoActionUpdate, domain.UndoActionArchive:
		return s.revertFields(ctx, userID, entityID, state)
	default:
		return nil, domain.NewConflictError("WRONG_ACTION_TYPE", "Undo token records an unsupported action kind")
	}
}

func (s *projectUndoService) revertDelete(
	ctx context.Context, userID, projectID string, snap map[string]interface{},
) (*domain.Project, error) {
	project, err := s.snapshotter.RestoreFromSnapshot(ctx, userID, snap)
	if err != nil {
		return nil, err
	}
	project.ID = projectID
	if err := s.projectRepo.Create(ctx, project); err != nil {
		if domain.IsErrorType(err, domain.ConflictError) {
			return nil, domain.NewConflictError("UNDO_UNAVAILABLE", "A project with this ID already exists")
		}
		return nil, err
	}
	return project, nil
}

func (s *projectUndoService) revertFields(
	ctx context.Context, userID, projectID string, state map[string]interface{},
) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if domain.IsErrorType(err, domain.NotFoundError) {
			return nil, domain.NewNotFoundError("PROJECT_NOT_FOUND", "The project this undo refers to no longer exists")
		}
		return nil, err
	}
	if !project.IsOwnedBy(userID) {
		return nil, domain.NewAuthorizationError("ACCESS_DENIED", "You don't have access to this project")
	}
	if err := s.snapshotter.ApplyState(ctx, userID, project, state); err != nil {
		return nil, err
	}
	project.UpdatedAt = time.Now()
	if err := project.Validate(); err != nil {
		return nil, err
	}
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}
