package service

import (
	"context"
	"fmt"

	"labelquest/internal/common"
	"labelquest/internal/domain/model"
	"labelquest/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// ContentService manages the labeled content itself: image upload records,
// categories and tags. Image bytes live in the external blob store; only
// the file key is recorded here.
type ContentService struct {
	imageRepo    repository.ImageRepository
	tagRepo      repository.TagRepository
	categoryRepo repository.CategoryRepository
}

func NewContentService(
	imageRepo repository.ImageRepository,
	tagRepo repository.TagRepository,
	categoryRepo repository.CategoryRepository,
) *ContentService {
	return &ContentService{
		imageRepo:    imageRepo,
		tagRepo:      tagRepo,
		categoryRepo: categoryRepo,
	}
}

type UploadImageRequest struct {
	FileKey string `json:"file_key" validate:"required,max=256"`
	Title   string `json:"title" validate:"max=256"`
}

// UploadImage records a new upload. It starts unvalidated: invisible to
// other players until an admin validates it, but immediately available to
// the uploader through the own-images sampler option.
func (s *ContentService) UploadImage(ctx context.Context, userID string, req UploadImageRequest) (*model.Image, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	image := &model.Image{
		ID:         uuid.NewString(),
		FileKey:    req.FileKey,
		Title:      req.Title,
		UploaderID: userID,
		Validated:  false,
		Active:     true,
	}
	if err := s.imageRepo.Create(ctx, image); err != nil {
		return nil, fmt.Errorf("failed to create image record: %w", err)
	}
	return image, nil
}

func (s *ContentService) GetImage(ctx context.Context, id string) (*model.Image, error) {
	return s.imageRepo.FindByID(ctx, id)
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=128"`
	Description string `json:"description" validate:"max=1024"`
}

func (s *ContentService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*model.Category, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	category := &model.Category{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		Active:      true,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *ContentService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categoryRepo.ListActive(ctx)
}

type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

func (s *ContentService) CreateTag(ctx context.Context, req CreateTagRequest) (*model.Tag, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	tag := &model.Tag{
		ID:     uuid.NewString(),
		Name:   req.Name,
		Slug:   slug.Make(req.Name),
		Active: true,
	}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}
