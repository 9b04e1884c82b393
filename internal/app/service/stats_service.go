package service

import (
	"context"
	"errors"
	"fmt"

	"labelquest/internal/common"
	"labelquest/internal/domain/model"
	"labelquest/internal/domain/repository"

	"golang.org/x/sync/errgroup"
)

// StatsService is the aggregator behind every stats read. Counters are never
// cached: each call recounts the answer and image collections and rewrites
// the whole user_stats row.
type StatsService struct {
	userRepo   repository.UserRepository
	statsRepo  repository.StatsRepository
	answerRepo repository.AnswerRepository
	imageRepo  repository.ImageRepository
}

func NewStatsService(
	userRepo repository.UserRepository,
	statsRepo repository.StatsRepository,
	answerRepo repository.AnswerRepository,
	imageRepo repository.ImageRepository,
) *StatsService {
	return &StatsService{
		userRepo:   userRepo,
		statsRepo:  statsRepo,
		answerRepo: answerRepo,
		imageRepo:  imageRepo,
	}
}

// UpdateStats recomputes and persists the derived stats for userID.
// Concurrent calls for the same user race on the row; last write wins, which
// is tolerable because the next recompute heals it.
func (s *StatsService) UpdateStats(ctx context.Context, userID string) (*model.UserStats, error) {
	if userID == "" {
		return nil, fmt.Errorf("stats requested without a user: %w", common.ErrBadRequest)
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Caller contract error: stats for an unresolvable user.
			return nil, fmt.Errorf("stats requested for unknown user %s: %w", userID, common.ErrBadRequest)
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	if err := s.statsRepo.EnsureExists(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to ensure stats row: %w", err)
	}

	// The four counters are independent; fetch them in parallel and converge
	// on a single write.
	var nImages, nTags, nUploaded, nValidated int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		nImages, err = s.answerRepo.CountByUser(gctx, model.GameImages, user.ID)
		return err
	})
	g.Go(func() error {
		var err error
		nTags, err = s.answerRepo.CountByUser(gctx, model.GameTags, user.ID)
		return err
	})
	g.Go(func() error {
		var err error
		nUploaded, err = s.imageRepo.CountByUploader(gctx, user.ID, false)
		return err
	})
	g.Go(func() error {
		var err error
		nValidated, err = s.imageRepo.CountByUploader(gctx, user.ID, true)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to count user activity: %w", err)
	}

	score := model.ComputeScore(nImages, nTags, nUploaded, nValidated)

	stats := &model.UserStats{
		UserID:                   user.ID,
		NAssociatedImages:        nImages,
		NAssociatedTags:          nTags,
		NUploadedImages:          nUploaded,
		NValidatedUploadedImages: nValidated,
		Score:                    score,
		ImagesLevel:              model.LevelDefault(float64(nImages)),
		TagsLevel:                model.LevelDefault(float64(nTags)),
		UploadLevel:              model.LevelDefault(float64(nUploaded + nValidated)),
		OverallLevel:             model.Level(float64(score), model.OverallLevelM, model.LevelB),
		Email:                    user.Email,
		Username:                 user.Username,
	}

	if err := s.statsRepo.Save(ctx, stats); err != nil {
		return nil, fmt.Errorf("failed to save stats: %w", err)
	}
	return stats, nil
}
