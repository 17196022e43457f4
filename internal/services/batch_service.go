package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"todo-me/internal/domain"
	"todo-me/internal/repository"
)

// DefaultBatchUndoTTL bounds how long a composite batch token stays
// redeemable. Batches touch many rows, so they get a little longer
// than a single-entity token.
const DefaultBatchUndoTTL = 2 * time.Minute

// errAtomicAborted signals the transaction manager to roll back after
// an operation inside an atomic batch failed. The operation's own
// error is already recorded in the batch results.
var errAtomicAborted = errors.New("atomic batch aborted")

// BatchExecutor runs an ordered list of heterogeneous task operations
// and mints one composite undo token covering everything that
// succeeded. Reversal walks the recorded operations last to first.
type BatchExecutor interface {
	// Execute runs the operations in order. In atomic mode the whole
	// batch runs in one transaction and rolls back on the first
	// failure; in partial mode each operation succeeds or fails on
	// its own.
	Execute(ctx context.Context, userID string, ops []domain.BatchOperation, atomic bool) (*domain.BatchResult, error)

	// UndoBatch consumes a composite token and reverses its recorded
	// operations in reverse execution order. Per-operation reversal
	// failures are reported per index and do not stop the remaining
	// reversals.
	UndoBatch(ctx context.Context, userID, token string) (*domain.BatchUndoResult, error)
}

type batchExecutor struct {
	tasks     TaskService
	taskUndo  TaskUndoService
	tokens    UndoTokenService
	txManager repository.TransactionManager
	logger    *slog.Logger
	ttl       time.Duration
}

// NewBatchExecutor creates a batch executor. A ttl of zero means
// DefaultBatchUndoTTL.
func NewBatchExecutor(
	tasks TaskService,
	taskUndo TaskUndoService,
	tokens UndoTokenService,
	txManager repository.TransactionManager,
	logger *slog.Logger,
	ttl time.Duration,
) BatchExecutor {
	if ttl <= 0 {
		ttl = DefaultBatchUndoTTL
	}
	return &batchExecutor{
		tasks:     tasks,
		taskUndo:  taskUndo,
		tokens:    tokens,
		txManager: txManager,
		logger:    logger,
		ttl:       ttl,
	}
}

// batchEntry is one recorded operation inside the composite envelope.
// For creates the state is nil; the reversal only needs the id.
type batchEntry struct {
	action   domain.BatchAction
	entityID string
	state    map[string]interface{}
}

func (s *batchExecutor) Execute(
	ctx context.Context, userID string, ops []domain.BatchOperation, atomic bool,
) (*domain.BatchResult, error) {
	if len(ops) == 0 {
		return nil, domain.NewValidationError("EMPTY_BATCH", "Batch must contain at least one operation", nil)
	}

	result := &domain.BatchResult{}
	entries := make(map[int]batchEntry)

	runAll := func(ctx context.Context) error {
		for i, op := range ops {
			taskID, entry, err := s.runOperation(ctx, userID, op)
			opResult := domain.BatchOperationResult{Index: i, Action: op.Action, TaskID: taskID}
			if err != nil {
				opResult.Error = err.Error()
				result.Results = append(result.Results, opResult)
				if atomic {
					return errAtomicAborted
				}
				continue
			}
			opResult.Success = true
			result.Results = append(result.Results, opResult)
			entries[i] = entry
		}
		return nil
	}

	if atomic {
		err := s.txManager.RunInTransaction(ctx, runAll)
		if errors.Is(err, errAtomicAborted) {
			// Rolled back: nothing durable happened, so no token.
			return result, nil
		}
		if err != nil {
			return nil, domain.NewInternalError("BATCH_TX_FAILED", "Batch transaction failed", err)
		}
	} else {
		if err := runAll(ctx); err != nil {
			return nil, err
		}
	}

	if len(entries) > 0 {
		result.UndoToken = s.createCompositeToken(ctx, userID, entries)
	}
	return result, nil
}

// runOperation dispatches one batch entry to the single-entity service
// and returns the envelope entry that reverses it.
func (s *batchExecutor) runOperation(
	ctx context.Context, userID string, op domain.BatchOperation,
) (string, batchEntry, error) {
	switch op.Action {
	case domain.BatchActionCreate:
		if op.Create == nil {
			return "", batchEntry{}, domain.NewValidationError("MISSING_PAYLOAD", "Create operation requires a create payload", nil)
		}
		task, err := s.tasks.CreateTask(ctx, *op.Create, userID)
		if err != nil {
			return "", batchEntry{}, err
		}
		return task.ID, batchEntry{action: op.Action, entityID: task.ID}, nil

	case domain.BatchActionUpdate:
		if op.Update == nil {
			return op.TaskID, batchEntry{}, domain.NewValidationError("MISSING_PAYLOAD", "Update operation requires an update payload", nil)
		}
		_, prev, err := s.tasks.UpdateTask(ctx, op.TaskID, *op.Update, userID)
		if err != nil {
			return op.TaskID, batchEntry{}, err
		}
		return op.TaskID, batchEntry{action: op.Action, entityID: op.TaskID, state: prev}, nil

	case domain.BatchActionDelete:
		snap, err := s.tasks.DeleteTask(ctx, op.TaskID, userID)
		if err != nil {
			return op.TaskID, batchEntry{}, err
		}
		return op.TaskID, batchEntry{action: op.Action, entityID: op.TaskID, state: snap}, nil

	case domain.BatchActionComplete:
		_, prev, err := s.tasks.UpdateTaskStatus(ctx, op.TaskID, domain.StatusCompleted, userID)
		if err != nil {
			return op.TaskID, batchEntry{}, err
		}
		return op.TaskID, batchEntry{action: op.Action, entityID: op.TaskID, state: prev}, nil

	case domain.BatchActionReschedule:
		if op.Reschedule == nil {
			return op.TaskID, batchEntry{}, domain.NewValidationError("MISSING_PAYLOAD", "Reschedule operation requires a reschedule payload", nil)
		}
		_, prev, err := s.tasks.RescheduleTask(ctx, op.TaskID, op.Reschedule.DueDate, op.Reschedule.DueTime, userID)
		if err != nil {
			return op.TaskID, batchEntry{}, err
		}
		return op.TaskID, batchEntry{action: op.Action, entityID: op.TaskID, state: prev}, nil

	default:
		return op.TaskID, batchEntry{}, domain.NewValidationError(
			"INVALID_BATCH_ACTION", fmt.Sprintf("Unknown batch action: %s", op.Action), nil)
	}
}

// createCompositeToken packs the recorded entries into one envelope
// keyed by operation index and mints the batch token for it.
func (s *batchExecutor) createCompositeToken(
	ctx context.Context, userID string, entries map[int]batchEntry,
) string {
	operations := make(map[string]interface{}, len(entries))
	for i, entry := range entries {
		packed := map[string]interface{}{
			"action":    string(entry.action),
			"entity_id": entry.entityID,
		}
		if entry.state != nil {
			packed["state"] = entry.state
		}
		operations[strconv.Itoa(i)] = packed
	}
	envelope := map[string]interface{}{"operations": operations}
	batchID := "batch:" + uuid.NewString()
	return s.tokens.CreateToken(ctx, userID, domain.UndoActionBatch, domain.UndoEntityBatch, batchID, envelope, s.ttl)
}

func (s *batchExecutor) UndoBatch(ctx context.Context, userID, token string) (*domain.BatchUndoResult, error) {
	undoToken := s.tokens.ConsumeToken(ctx, userID, token)
	if undoToken == nil {
		return nil, domain.NewNotFoundError("INVALID_UNDO_TOKEN", "Undo token is invalid, expired, or already used")
	}
	if undoToken.EntityType != domain.UndoEntityBatch || undoToken.Action != domain.UndoActionBatch {
		return nil, domain.NewConflictError("WRONG_ENTITY_TYPE", "Undo token does not refer to a batch")
	}

	entries, indexes, err := unpackEnvelope(undoToken.PreviousState)
	if err != nil {
		return nil, err
	}

	result := &domain.BatchUndoResult{Undone: true}
	// Reverse execution order: later operations may depend on earlier
	// ones, so they are unwound first.
	sort.Sort(sort.Reverse(sort.IntSlice(indexes)))
	for _, i := range indexes {
		entry := entries[i]
		opResult := domain.BatchOperationResult{Index: i, Action: entry.action, TaskID: entry.entityID}
		if err := s.revertEntry(ctx, userID, entry); err != nil {
			opResult.Error = err.Error()
			result.Undone = false
		} else {
			opResult.Success = true
		}
		result.Results = append(result.Results, opResult)
	}

	s.logger.Info("batch undo applied",
		"user_id", userID,
		"batch_id", undoToken.EntityID,
		"operations", len(indexes),
		"undone", result.Undone)
	return result, nil
}

// revertEntry applies the inverse of one recorded operation.
func (s *batchExecutor) revertEntry(ctx context.Context, userID string, entry batchEntry) error {
	switch entry.action {
	case domain.BatchActionCreate:
		_, err := s.tasks.DeleteTask(ctx, entry.entityID, userID)
		return err
	case domain.BatchActionDelete:
		_, err := s.taskUndo.RevertTask(ctx, userID, domain.UndoActionDelete, entry.entityID, entry.state)
		return err
	case domain.BatchActionUpdate, domain.BatchActionReschedule:
		_, err := s.taskUndo.RevertTask(ctx, userID, domain.UndoActionUpdate, entry.entityID, entry.state)
		return err
	case domain.BatchActionComplete:
		_, err := s.taskUndo.RevertTask(ctx, userID, domain.UndoActionStatusChange, entry.entityID, entry.state)
		return err
	default:
		return domain.NewConflictError("INVALID_BATCH_ACTION", fmt.Sprintf("Unknown recorded action: %s", entry.action))
	}
}

// unpackEnvelope decodes the composite previous-state map back into
// per-index entries. The map has been through a JSON round trip, so
// every nested value arrives as map[string]interface{}.
func unpackEnvelope(state map[string]interface{}) (map[int]batchEntry, []int, error) {
	rawOps, ok := state["operations"].(map[string]interface{})
	if !ok {
		return nil, nil, domain.NewInternalError("MALFORMED_ENVELOPE", "Batch token envelope is malformed", nil)
	}
	entries := make(map[int]batchEntry, len(rawOps))
	indexes := make([]int, 0, len(rawOps))
	for key, raw := range rawOps {
		i, err := strconv.Atoi(key)
		if err != nil {
			return nil, nil, domain.NewInternalError("MALFORMED_ENVELOPE", "Batch token envelope has a non-numeric index", err)
		}
		packed, ok := raw.(map[string]interface{})
		if !ok {
			return nil, nil, domain.NewInternalError("MALFORMED_ENVELOPE", "Batch token envelope entry is malformed", nil)
		}
		entry := batchEntry{}
		if action, ok := packed["action"].(string); ok {
			entry.action = domain.BatchAction(action)
		}
		if entityID, ok := packed["entity_id"].(string); ok {
			entry.entityID = entityID
		}
		if nested, ok := packed["state"].(map[string]interface{}); ok {
			entry.state = nested
		}
		entries[i] = entry
		indexes = append(indexes, i)
	}
	return entries, indexes, nil
}
