package services

import (
	"context"
	"log/slog"
	"time"

	"todo-me/internal/domain"
	"todo-me/internal/repository"
)

// TaskUndoService turns task mutations into undo tokens and redeems
// them. Redeeming always consumes the token first: a token presented
// against the wrong entity or action kind is burned, not refunded.
type TaskUndoService interface {
	// CreateUpdateUndoToken mints a token that reverses a field update.
	// Returns "" when undo could not be armed; the update itself stands.
	CreateUpdateUndoToken(ctx context.Context, userID, taskID string, prev map[string]interface{}) string

	// CreateDeleteUndoToken mints a token that resurrects a deleted task
	CreateDeleteUndoToken(ctx context.Context, userID, taskID string, snap map[string]interface{}) string

	// CreateStatusUndoToken mints a token that reverses a status change
	CreateStatusUndoToken(ctx context.Context, userID, taskID string, prev map[string]interface{}) string

	// Undo redeems a token of any task action kind
	Undo(ctx context.Context, userID, token string) (*domain.Task, error)

	// UndoDelete redeems a token, requiring it to be a delete reversal
	UndoDelete(ctx context.Context, userID, token string) (*domain.Task, error)

	// UndoUpdate redeems a token, requiring it to be an update reversal
	UndoUpdate(ctx context.Context, userID, token string) (*domain.Task, error)

	// RevertTask applies a single recorded reversal without a token.
	// The batch executor uses this when unwinding a composite envelope.
	RevertTask(
		ctx context.Context, userID string, action domain.UndoAction, entityID string, state map[string]interface{},
	) (*domain.Task, error)
}

type taskUndoService struct {
	tokens      UndoTokenService
	taskRepo    repository.TaskRepository
	snapshotter *TaskSnapshotter
	logger      *slog.Logger
	ttl         time.Duration
}

// NewTaskUndoService creates a task undo service. A ttl of zero means
// DefaultUndoTTL.
func NewTaskUndoService(
	tokens UndoTokenService,
	taskRepo repository.TaskRepository,
	snapshotter *TaskSnapshotter,
	logger *slog.Logger,
	ttl time.Duration,
) TaskUndoService {
	if ttl <= 0 {
		ttl = DefaultUndoTTL
	}
	return &taskUndoService{
		tokens:      tokens,
		taskRepo:    taskRepo,
		snapshotter: snapshotter,
		logger:      logger,
		ttl:         ttl,
	}
}

func (s *taskUndoService) CreateUpdateUndoToken(
	ctx context.Context, userID, taskID string, prev map[string]interface{},
) string {
	if len(prev) == 0 {
		return ""
	}
	return s.tokens.CreateToken(ctx, userID, domain.UndoActionUpdate, domain.UndoEntityTask, taskID, prev, s.ttl)
}

func (s *taskUndoService) CreateDeleteUndoToken(
	ctx context.Context, userID, taskID string, snap map[string]interface{},
) string {
	return s.tokens.CreateToken(ctx, userID, domain.UndoActionDelete, domain.UndoEntityTask, taskID, snap, s.ttl)
}

func (s *taskUndoService) CreateStatusUndoToken(
	ctx context.Context, userID, taskID string, prev map[string]interface{},
) string {
	return s.tokens.CreateToken(ctx, userID, domain.UndoActionStatusChange, domain.UndoEntityTask, taskID, prev, s.ttl)
}

func (s *taskUndoService) Undo(ctx context.Context, userID, token string) (*domain.Task, error) {
	return s.undo(ctx, userID, token, "")
}

func (s *taskUndoService) UndoDelete(ctx context.Context, userID, token string) (*domain.Task, error) {
	return s.undo(ctx, userID, token, domain.UndoActionDelete)
}

func (s *taskUndoService) UndoUpdate(ctx context.Context, userID, token string) (*domain.Task, error) {
	return s.undo(ctx, userID, token, domain.UndoActionUpdate)
}

// undo consumes the token, then checks it describes a task reversal of
// the expected kind. requireAction == "" accepts any task action.
func (s *taskUndoService) undo(
	ctx context.Context, userID, token string, requireAction domain.UndoAction,
) (*domain.Task, error) {
	undoToken := s.tokens.ConsumeToken(ctx, userID, token)
	if undoToken == nil {
		return nil, domain.NewNotFoundError("INVALID_UNDO_TOKEN", "Undo token is invalid, expired, or already used")
	}
	if undoToken.EntityType != domain.UndoEntityTask {
		return nil, domain.NewConflictError("WRONG_ENTITY_TYPE", "Undo token does not refer to a task")
	}
	if requireAction != "" && undoToken.Action != requireAction {
		return nil, domain.NewConflictError("WRONG_ACTION_TYPE", "Undo token records a different action kind")
	}
	task, err := s.RevertTask(ctx, userID, undoToken.Action, undoToken.EntityID, undoToken.PreviousState)
	if err != nil {
		return nil, err
	}
	s.logger.Info("task undo applied",
		"user_id", userID,
		"task_id", undoToken.EntityID,
		"action", string(undoToken.Action))
	return task, nil
}

func (s *taskUndoService) RevertTask(
	ctx context.Context, userID string, action domain.UndoAction, entityID string, state map[string]interface{},
) (*domain.Task, error) {
	switch action {
	case domain.UndoActionDelete:
		return s.revertDelete(ctx, userID, entityID, state)
	case domain.UndoActionUpdate, domain.UndoActionStatusChange:
		return s.revertFields(ctx, userID, entityID, state)
	default:
		return nil, domain.NewConflictError("WRONG_ACTION_TYPE", "Undo token records an unsupported action kind")
	}
}

// revertDelete rebuilds the deleted task from its full snapshot under
// its original ID.
func (s *taskUndoService) revertDelete(
	ctx context.Context, userID, taskID string, snap map[string]interface{},
) (*domain.Task, error) {
	task, err := s.snapshotter.RestoreFromSnapshot(ctx, userID, snap)
	if err != nil {
		return nil, err
	}
	task.ID = taskID
	if err := s.taskRepo.Create(ctx, task); err != nil {
		if domain.IsErrorType(err, domain.ConflictError) {
			return nil, domain.NewConflictError("UNDO_UNAVAILABLE", "A task with this ID already exists")
		}
		return nil, err
	}
	return task, nil
}

// revertFields reapplies a partial snapshot onto the live task. The
// task must still exist and still belong to the user.
func (s *taskUndoService) revertFields(
	ctx context.Context, userID, taskID string, state map[string]interface{},
) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if domain.IsErrorType(err, domain.NotFoundError) {
			return nil, domain.NewNotFoundError("TASK_NOT_FOUND", "The task this undo refers to no longer exists")
		}
		return nil, err
	}
	if !task.IsOwnedBy(userID) {
		return nil, domain.NewAuthorizationError("ACCESS_DENIED", "You don't have access to this task")
	}
	if err := s.snapshotter.ApplyState(ctx, userID, task, state); err != nil {
		return nil, err
	}
	task.UpdatedAt = time.Now()
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}
