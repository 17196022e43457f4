package services

import (
	"context"
	"time"

	"todo-me/internal/domain"
)

// ProjectSnapshotter captures and reapplies the project fields needed
// to reverse an operation. Projects hold no cross-entity references,
// so the codec is simpler than the task one; deleting a project
// permanently discards its tasks, and only the project row itself is
// reconstructed on undo.
type ProjectSnapshotter struct{}

// NewProjectSnapshotter creates a project snapshot codec.
func NewProjectSnapshotter() *ProjectSnapshotter {
	return &ProjectSnapshotter{}
}

// FullSnapshot captures every field needed to reconstruct a deleted
// project.
func (s *ProjectSnapshotter) FullSnapshot(project *domain.Project) map[string]interface{} {
	return map[string]interface{}{
		"name":        project.Name,
		"description": project.Description,
		"archived":    project.Archived,
		"archived_at": timeOrNil(project.ArchivedAt),
		"deleted_at":  timeOrNil(project.DeletedAt),
		"created_at":  project.CreatedAt,
	}
}

// ArchiveSnapshot captures only the fields an archive toggle touches.
func (s *ProjectSnapshotter) ArchiveSnapshot(project *domain.Project) map[string]interface{} {
	return map[string]interface{}{
		"archived":    project.Archived,
		"archived_at": timeOrNil(project.ArchivedAt),
	}
}

// RestoreFromSnapshot constructs a new project for owner from a full
// snapshot. The caller persists the result.
func (s *ProjectSnapshotter) RestoreFromSnapshot(
	ctx context.Context, ownerID string, snap map[string]interface{},
) (*domain.Project, error) {
	now := time.Now()
	project := &domain.Project{
		UserID:    ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.ApplyState(ctx, ownerID, project, snap); err != nil {
		return nil, err
	}
	if createdAt := snapshotTime(snap["created_at"]); createdAt != nil {
		project.CreatedAt = *createdAt
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}
	return project, nil
}

// ApplyState reapplies a snapshot to a live project. Only keys present
// in the snapshot are touched. The archived flag and timestamp are
// written directly so undo restores exactly the stored values.
func (s *ProjectSnapshotter) ApplyState(
	_ context.Context, _ string, project *domain.Project, snap map[string]interface{},
) error {
	if raw, ok := snap["name"]; ok {
		if name, ok := snapshotString(raw); ok {
			project.Name = name
		}
	}
	if raw, ok := snap["description"]; ok {
		if description, ok := snapshotString(raw); ok {
			project.Description = description
		}
	}
	if raw, ok := snap["archived"]; ok {
		if archived, ok := snapshotBool(raw); ok {
			project.Archived = archived
		}
	}
	if raw, ok := snap["archived_at"]; ok {
		project.ArchivedAt = snapshotTime(raw)
	}
	if raw, ok := snap["deleted_at"]; ok {
		project.DeletedAt = snapshotTime(raw)
	}
	project.UpdatedAt = time.Now()
	return nil
}
