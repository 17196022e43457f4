package services

import (
	"context"
	"time"

	"todo-me/internal/domain"
	"todo-me/internal/repository"
)

// TaskSnapshotter captures and reapplies the task fields needed to
// reverse an operation. Snapshots are shallow: project and tags are
// referenced by ID only, and every reference is re-resolved against the
// owner's live records when the snapshot is applied. A reference whose
// target is gone, or has changed hands, is silently dropped rather than
// failing the restore.
type TaskSnapshotter struct {
	projectRepo repository.ProjectRepository
	tagRepo     repository.TagRepository
}

// NewTaskSnapshotter creates a task snapshot codec.
func NewTaskSnapshotter(
	projectRepo repository.ProjectRepository,
	tagRepo repository.TagRepository,
) *TaskSnapshotter {
	return &TaskSnapshotter{
		projectRepo: projectRepo,
		tagRepo:     tagRepo,
	}
}

// FullSnapshot captures every field needed to reconstruct a deleted
// task, including relational identifiers and creation bookkeeping.
func (s *TaskSnapshotter) FullSnapshot(task *domain.Task) map[string]interface{} {
	snap := map[string]interface{}{
		"title":           task.Title,
		"description":     task.Description,
		"status":          string(task.Status),
		"priority":        task.Priority,
		"position":        task.Position,
		"is_recurring":    task.IsRecurring,
		"recurrence_rule": task.RecurrenceRule,
		"recurrence_type": string(task.RecurrenceType),
		"created_at":      task.CreatedAt,
	}
	snap["due_date"] = timeOrNil(task.DueDate)
	snap["due_time"] = stringOrNil(task.DueTime)
	snap["project_id"] = stringOrNil(task.ProjectID)
	snap["completed_at"] = timeOrNil(task.CompletedAt)
	snap["recurrence_end"] = timeOrNil(task.RecurrenceEnd)
	snap["origin_task_id"] = stringOrNil(task.OriginTaskID)
	if task.TagIDs != nil {
		snap["tag_ids"] = task.TagIDs
	} else {
		snap["tag_ids"] = []string{}
	}
	return snap
}

// StatusSnapshot captures only the fields a status change touches.
func (s *TaskSnapshotter) StatusSnapshot(task *domain.Task) map[string]interface{} {
	return map[string]interface{}{
		"status":       string(task.Status),
		"completed_at": timeOrNil(task.CompletedAt),
	}
}

// ScheduleSnapshot captures only the fields a reschedule touches.
func (s *TaskSnapshotter) ScheduleSnapshot(task *domain.Task) map[string]interface{} {
	return map[string]interface{}{
		"due_date": timeOrNil(task.DueDate),
		"due_time": stringOrNil(task.DueTime),
	}
}

// RestoreFromSnapshot constructs a new task for owner from a full
// snapshot, reapplying the captured creation and completion timestamps
// so the restored row keeps its history. The caller persists the result.
func (s *TaskSnapshotter) RestoreFromSnapshot(
	ctx context.Context, ownerID string, snap map[string]interface{},
) (*domain.Task, error) {
	now := time.Now()
	task := &domain.Task{
		UserID:    ownerID,
		Status:    domain.StatusPending,
		Priority:  domain.DefaultPriority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.ApplyState(ctx, ownerID, task, snap); err != nil {
		return nil, err
	}
	if createdAt := snapshotTime(snap["created_at"]); createdAt != nil {
		task.CreatedAt = *createdAt
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// ApplyState reapplies a snapshot to a live task. Only keys present in
// the snapshot are touched, so a partial snapshot leaves every other
// field alone. Status and completion time are written directly so undo
// restores exactly the stored values; it never re-derives them the way
// a normal status mutation would.
func (s *TaskSnapshotter) ApplyState(
	ctx context.Context, ownerID string, task *domain.Task, snap map[string]interface{},
) error {
	if raw, ok := snap["title"]; ok {
		if title, ok := snapshotString(raw); ok {
			task.Title = title
		}
	}
	if raw, ok := snap["description"]; ok {
		if description, ok := snapshotString(raw); ok {
			task.Description = description
		}
	}
	if raw, ok := snap["status"]; ok {
		if status, ok := snapshotString(raw); ok {
			task.Status = domain.TaskStatus(status)
		}
	}
	if raw, ok := snap["priority"]; ok {
		if priority, ok := snapshotInt(raw); ok {
			task.Priority = priority
		}
	}
	if raw, ok := snap["due_date"]; ok {
		task.DueDate = snapshotTime(raw)
	}
	if raw, ok := snap["due_time"]; ok {
		task.DueTime = snapshotStringPtr(raw)
	}
	if raw, ok := snap["position"]; ok {
		if position, ok := snapshotInt(raw); ok {
			task.Position = position
		}
	}
	if raw, ok := snap["completed_at"]; ok {
		task.CompletedAt = snapshotTime(raw)
	}
	if raw, ok := snap["is_recurring"]; ok {
		if isRecurring, ok := snapshotBool(raw); ok {
			task.IsRecurring = isRecurring
		}
	}
	if raw, ok := snap["recurrence_rule"]; ok {
		if rule, ok := snapshotString(raw); ok {
			task.RecurrenceRule = rule
		}
	}
	if raw, ok := snap["recurrence_type"]; ok {
		if recurrenceType, ok := snapshotString(raw); ok {
			task.RecurrenceType = domain.RecurrenceType(recurrenceType)
		}
	}
	if raw, ok := snap["recurrence_end"]; ok {
		task.RecurrenceEnd = snapshotTime(raw)
	}
	if raw, ok := snap["origin_task_id"]; ok {
		task.OriginTaskID = snapshotStringPtr(raw)
	}

	if raw, ok := snap["project_id"]; ok {
		task.ProjectID = s.resolveProject(ctx, ownerID, snapshotStringPtr(raw))
	}
	if raw, ok := snap["tag_ids"]; ok {
		task.TagIDs = s.resolveTags(ctx, ownerID, snapshotStringSlice(raw))
	}

	task.UpdatedAt = time.Now()
	return nil
}

// resolveProject re-resolves a snapshotted project reference against
// the owner's live projects. Snapshots are trusted for values, never
// for authorization: a reference to a missing or foreign project is
// dropped, not restored.
func (s *TaskSnapshotter) resolveProject(ctx context.Context, ownerID string, projectID *string) *string {
	if projectID == nil {
		return nil
	}
	project, err := s.projectRepo.GetByID(ctx, *projectID)
	if err != nil || !project.IsOwnedBy(ownerID) {
		return nil
	}
	return projectID
}

func (s *TaskSnapshotter) resolveTags(ctx context.Context, ownerID string, tagIDs []string) []string {
	if len(tagIDs) == 0 {
		return nil
	}
	resolved := make([]string, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		tag, err := s.tagRepo.GetByID(ctx, tagID)
		if err != nil || !tag.IsOwnedBy(ownerID) {
			continue
		}
		resolved = append(resolved, tagID)
	}
	if len(resolved) == 0 {
		return nil
	}
	return resolved
}

func timeOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func stringOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
