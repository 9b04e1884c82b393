package service

import (
	"context"
	"errors"
	"fmt"

	"labelquest/internal/common"
	"labelquest/internal/domain/model"
	"labelquest/internal/domain/repository"

	"github.com/google/uuid"
)

// GameService runs the two labeling loops: sample a not-yet-answered item,
// record the answer, hand back the next item.
type GameService struct {
	imageRepo    repository.ImageRepository
	tagRepo      repository.TagRepository
	categoryRepo repository.CategoryRepository
	answerRepo   repository.AnswerRepository
}

func NewGameService(
	imageRepo repository.ImageRepository,
	tagRepo repository.TagRepository,
	categoryRepo repository.CategoryRepository,
	answerRepo repository.AnswerRepository,
) *GameService {
	return &GameService{
		imageRepo:    imageRepo,
		tagRepo:      tagRepo,
		categoryRepo: categoryRepo,
		answerRepo:   answerRepo,
	}
}

// SampleOptions narrows image sampling. OnlyOwnImages lets uploaders
// categorize their own not-yet-validated uploads.
type SampleOptions struct {
	OnlyOwnImages bool
}

// NextImage picks one image the user has not answered yet, uniformly at
// random, or nil when nothing eligible remains. userID may be empty for
// anonymous players, who only ever see validated images. Evaluated fresh on
// every call; the answered set changes after each recorded answer.
func (s *GameService) NextImage(ctx context.Context, userID string, opts SampleOptions) (*model.Image, error) {
	filter := repository.ImageSampleFilter{ValidatedOnly: true}

	if userID != "" {
		answered, err := s.answerRepo.AnsweredItemIDs(ctx, model.GameImages, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load answered image set: %w", err)
		}
		filter.ExcludeIDs = answered

		if opts.OnlyOwnImages {
			// Owners may categorize their own uploads before validation.
			filter.OnlyUploaderID = userID
			filter.ValidatedOnly = false
		}
	}

	image, err := s.imageRepo.SampleExcluding(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to sample image: %w", err)
	}
	return image, nil
}

// NextTag is the tag-game counterpart of NextImage.
func (s *GameService) NextTag(ctx context.Context, userID string) (*model.Tag, error) {
	var excludeIDs []string
	if userID != "" {
		answered, err := s.answerRepo.AnsweredItemIDs(ctx, model.GameTags, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load answered tag set: %w", err)
		}
		excludeIDs = answered
	}

	tag, err := s.tagRepo.SampleActiveExcluding(ctx, excludeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to sample tag: %w", err)
	}
	return tag, nil
}

type AnswerRequest struct {
	CategoryID          string   `json:"category_id" validate:"required"`
	RejectedCategoryIDs []string `json:"rejected_category_ids"`
	Latitude            *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude           *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	OtherText           string   `json:"other_text" validate:"max=512"`
}

// ImageAnswerResponse pairs the recorded answer with the freshly sampled
// next item, so the game loop needs one round trip per turn.
type ImageAnswerResponse struct {
	Next *model.Image `json:"next"`
}

type TagAnswerResponse struct {
	Next *model.Tag `json:"next"`
}

// AnswerImage upserts the user's current opinion on the image, then samples
// the next one. Re-answering the same image overwrites; no history is kept.
func (s *GameService) AnswerImage(ctx context.Context, userID, imageID string, req AnswerRequest, opts SampleOptions) (*ImageAnswerResponse, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.imageRepo.FindByID(ctx, imageID); err != nil {
		return nil, fmt.Errorf("image not found: %w", err)
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	answer := s.buildAnswer(userID, imageID, req)
	if err := s.answerRepo.Upsert(ctx, model.GameImages, answer); err != nil {
		return nil, fmt.Errorf("failed to record image answer: %w", err)
	}

	next, err := s.NextImage(ctx, userID, opts)
	if err != nil {
		return nil, err
	}
	return &ImageAnswerResponse{Next: next}, nil
}

// AnswerTag is the tag-game counterpart of AnswerImage.
func (s *GameService) AnswerTag(ctx context.Context, userID, tagID string, req AnswerRequest) (*TagAnswerResponse, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.tagRepo.FindByID(ctx, tagID); err != nil {
		return nil, fmt.Errorf("tag not found: %w", err)
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	answer := s.buildAnswer(userID, tagID, req)
	if err := s.answerRepo.Upsert(ctx, model.GameTags, answer); err != nil {
		return nil, fmt.Errorf("failed to record tag answer: %w", err)
	}

	next, err := s.NextTag(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &TagAnswerResponse{Next: next}, nil
}

func (s *GameService) buildAnswer(userID, itemID string, req AnswerRequest) *model.Answer {
	return &model.Answer{
		ID:                  uuid.NewString(),
		UserID:              userID,
		ItemID:              itemID,
		CategoryID:          req.CategoryID,
		RejectedCategoryIDs: req.RejectedCategoryIDs,
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		OtherText:           req.OtherText,
	}
}

func (s *GameService) checkCategory(ctx context.Context, categoryID string) error {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("chosen category does not exist: %w", common.ErrBadRequest)
		}
		return fmt.Errorf("failed to resolve category: %w", err)
	}
	if !category.Active {
		return fmt.Errorf("chosen category is inactive: %w", common.ErrBadRequest)
	}
	return nil
}
