package services

import (
	"context"

	"todo-me/internal/domain"
	"todo-me/internal/repository"
)

// TagService defines tag operations. Tags are plain labels; none of
// their mutations mint undo tokens.
type TagService interface {
	// CreateTag creates a new tag
	CreateTag(ctx context.Context, req domain.CreateTagRequest, userID string) (*domain.Tag, error)

	// ListTags lists a user's tags
	ListTags(ctx context.Context, userID string) ([]*domain.Tag, error)

	// DeleteTag deletes a tag, verifying ownership
	DeleteTag(ctx context.Context, tagID string, userID string) error
}

type tagService struct {
	tagRepo repository.TagRepository
}

// NewTagService creates a new tag service.
func NewTagService(tagRepo repository.TagRepository) TagService {
	return &tagService{tagRepo: tagRepo}
}

func (s *tagService) CreateTag(
	ctx context.Context, req domain.CreateTagRequest, userID string,
) (*domain.Tag, error) {
	tag := domain.NewTag(userID, req.Name, req.Color)
	if err := tag.Validate(); err != nil {
		return nil, err
	}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *tagService) ListTags(ctx context.Context, userID string) ([]*domain.Tag, error) {
	return s.tagRepo.ListByUser(ctx, userID, 0, 1000)
}

func (s *tagService) DeleteTag(ctx context.Context, tagID string, userID string) error {
	tag, err := s.tagRepo.GetByID(ctx, tagID)
	if err != nil {
		return err
	}
	if !tag.IsOwnedBy(userID) {
		return domain.NewAuthorizationError("ACCESS_DENIED", "Tag belongs to another user")
	}
	return s.tagRepo.Delete(ctx, tagID)
}
