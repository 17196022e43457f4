package services

import (
	"context"
	"time"

	"todo-me/internal/domain"
	"todo-me/internal/repository"
)

// TaskService defines the single-entity task operations. Mutating
// operations that can be undone return, alongside the result, the
// prior-state snapshot needed to reverse them; callers decide whether
// that snapshot becomes a standalone undo token or one entry of a
// batch envelope.
type TaskService interface {
	// CreateTask creates a new task
	CreateTask(ctx context.Context, req domain.CreateTaskRequest, userID string) (*domain.Task, error)

	// GetTask gets a task by ID, verifying ownership
	GetTask(ctx context.Context, taskID string, userID string) (*domain.Task, error)

	// ListTasks lists a user's tasks
	ListTasks(ctx context.Context, userID string, offset, limit int) ([]*domain.Task, error)

	// UpdateTask updates a task and returns the prior values of the
	// fields that were changed
	UpdateTask(
		ctx context.Context, taskID string, req domain.UpdateTaskRequest, userID string,
	) (*domain.Task, map[string]interface{}, error)

	// DeleteTask deletes a task and returns its full prior snapshot
	DeleteTask(ctx context.Context, taskID string, userID string) (map[string]interface{}, error)

	// UpdateTaskStatus changes a task's status and returns the prior
	// status fields
	UpdateTaskStatus(
		ctx context.Context, taskID string, status domain.TaskStatus, userID string,
	) (*domain.Task, map[string]interface{}, error)

	// RescheduleTask changes a task's due date and time and returns
	// the prior schedule fields
	RescheduleTask(
		ctx context.Context, taskID string, dueDate *time.Time, dueTime *string, userID string,
	) (*domain.Task, map[string]interface{}, error)
}

// taskService implements TaskService.
type taskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	tagRepo     repository.TagRepository
	snapshotter *TaskSnapshotter
}

// NewTaskService creates a new task service.
func NewTaskService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	tagRepo repository.TagRepository,
	snapshotter *TaskSnapshotter,
) TaskService {
	return &taskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		tagRepo:     tagRepo,
		snapshotter: snapshotter,
	}
}

// CreateTask creates a new task.
func (s *taskService) CreateTask(
	ctx context.Context, req domain.CreateTaskRequest, userID string,
) (*domain.Task, error) {
	if req.ProjectID != nil {
		if err := s.validateProjectAccess(ctx, *req.ProjectID, userID); err != nil {
			return nil, err
		}
	}
	if err := s.validateTagAccess(ctx, req.TagIDs, userID); err != nil {
		return nil, err
	}

	taskCount, err := s.taskRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("TASK_COUNT_FAILED", "Failed to determine task position", err)
	}

	task := domain.NewTask(userID, req.Title)
	task.Description = req.Description
	if req.Priority != 0 {
		task.Priority = req.Priority
	}
	task.DueDate = req.DueDate
	task.DueTime = req.DueTime
	task.ProjectID = req.ProjectID
	task.TagIDs = req.TagIDs
	task.Position = taskCount + 1
	task.IsRecurring = req.IsRecurring
	task.RecurrenceRule = req.RecurrenceRule
	task.RecurrenceType = req.RecurrenceType
	task.RecurrenceEnd = req.RecurrenceEnd

	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask gets a task by ID, verifying ownership.
func (s *taskService) GetTask(ctx context.Context, taskID string, userID string) (*domain.Task, error) {
	if taskID == "" {
		return nil, domain.NewValidationError("INVALID_TASK_ID", "Task ID cannot be empty", nil)
	}
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsOwnedBy(userID) {
		return nil, domain.NewAuthorizationError("ACCESS_DENIED", "You don't have access to this task")
	}
	return task, nil
}

// ListTasks lists a user's tasks.
func (s *taskService) ListTasks(ctx context.Context, userID string, offset, limit int) ([]*domain.Task, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.taskRepo.ListByUser(ctx, userID, offset, limit)
}

// UpdateTask updates a task. The returned map holds the prior value of
// every field the request changed, keyed the way the snapshot codec
// expects, so an undo touches exactly those fields and nothing else.
func (s *taskService) UpdateTask(
	ctx context.Context, taskID string, req domain.UpdateTaskRequest, userID string,
) (*domain.Task, map[string]interface{}, error) {
	task, err := s.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, nil, err
	}

	prev := make(map[string]interface{})

	if req.Title != nil {
		prev["title"] = task.Title
		task.Title = *req.Title
	}
	if req.Description != nil {
		prev["description"] = task.Description
		task.Description = *req.Description
	}
	if req.Priority != nil {
		prev["priority"] = task.Priority
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		prev["due_date"] = timeOrNil(task.DueDate)
		task.DueDate = req.DueDate
	}
	if req.DueTime != nil {
		prev["due_time"] = stringOrNil(task.DueTime)
		task.DueTime = req.DueTime
	}
	if req.Position != nil {
		prev["position"] = task.Position
		task.Position = *req.Position
	}
	if req.ProjectID != nil {
		if *req.ProjectID != "" {
			if err := s.validateProjectAccess(ctx, *req.ProjectID, userID); err != nil {
				return nil, nil, err
			}
		}
		prev["project_id"] = stringOrNil(task.ProjectID)
		if *req.ProjectID == "" {
			task.ProjectID = nil
		} else {
			task.ProjectID = req.ProjectID
		}
	}
	if req.TagIDs != nil {
		if err := s.validateTagAccess(ctx, req.TagIDs, userID); err != nil {
			return nil, nil, err
		}
		if task.TagIDs != nil {
			prev["tag_ids"] = task.TagIDs
		} else {
			prev["tag_ids"] = []string{}
		}
		task.TagIDs = req.TagIDs
	}
	if req.IsRecurring != nil {
		prev["is_recurring"] = task.IsRecurring
		task.IsRecurring = *req.IsRecurring
	}
	if req.RecurrenceRule != nil {
		prev["recurrence_rule"] = task.RecurrenceRule
		task.RecurrenceRule = *req.RecurrenceRule
	}
	if req.RecurrenceType != nil {
		prev["recurrence_type"] = string(task.RecurrenceType)
		task.RecurrenceType = *req.RecurrenceType
	}
	if req.RecurrenceEnd != nil {
		prev["recurrence_end"] = timeOrNil(task.RecurrenceEnd)
		task.RecurrenceEnd = req.RecurrenceEnd
	}

	task.UpdatedAt = time.Now()
	if err := task.Validate(); err != nil {
		return nil, nil, err
	}
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, nil, err
	}
	return task, prev, nil
}

// DeleteTask deletes a task and returns its full prior snapshot.
func (s *taskService) DeleteTask(ctx context.Context, taskID string, userID string) (map[string]interface{}, error) {
	task, err := s.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	snap := s.snapshotter.FullSnapshot(task)
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return nil, err
	}
	return snap, nil
}

// UpdateTaskStatus changes a task's status through the normal mutation
// path, so completion time is derived; the returned snapshot carries
// the prior status fields exactly as they were.
func (s *taskService) UpdateTaskStatus(
	ctx context.Context, taskID string, status domain.TaskStatus, userID string,
) (*domain.Task, map[string]interface{}, error) {
	task, err := s.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, nil, err
	}
	prev := s.snapshotter.StatusSnapshot(task)
	if err := task.SetStatus(status); err != nil {
		return nil, nil, err
	}
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, nil, err
	}
	return task, prev, nil
}

// RescheduleTask changes a task's due date and time.
func (s *taskService) RescheduleTask(
	ctx context.Context, taskID string, dueDate *time.Time, dueTime *string, userID string,
) (*domain.Task, map[string]interface{}, error) {
	task, err := s.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, nil, err
	}
	prev := s.snapshotter.ScheduleSnapshot(task)
	task.DueDate = dueDate
	task.DueTime = dueTime
	task.UpdatedAt = time.Now()
	if err := task.Validate(); err != nil {
		return nil, nil, err
	}
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, nil, err
	}
	return task, prev, nil
}

// validateProjectAccess checks that a referenced project exists and
// belongs to the user.
func (s *taskService) validateProjectAccess(ctx context.Context, projectID, userID string) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return domain.NewNotFoundError("PROJECT_NOT_FOUND", "Project not found")
	}
	if !project.IsOwnedBy(userID) {
		return domain.NewAuthorizationError("ACCESS_DENIED", "You don't have access to this project")
	}
	return nil
}

// validateTagAccess checks that every referenced tag exists and belongs
// to the user.
func (s *taskService) validateTagAccess(ctx context.Context, tagIDs []string, userID string) error {
	for _, tagID := range tagIDs {
		tag, err := s.tagRepo.GetByID(ctx, tagID)
		if err != nil {
			return domain.NewNotFoundError("TAG_NOT_FOUND", "Tag not found")
		}
		if !tag.IsOwnedBy(userID) {
			return domain.NewAuthorizationError("ACCESS_DENIED", "You don't have access to this tag")
		}
	}
	return nil
}
