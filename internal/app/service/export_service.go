package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"labelquest/internal/common"
	"labelquest/internal/domain/model"
	"labelquest/internal/domain/repository"
)

// ExportService renders the admin console's CSV downloads.
type ExportService struct {
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	answerRepo   repository.AnswerRepository
	statsService *StatsService
}

func NewExportService(
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
	answerRepo repository.AnswerRepository,
	statsService *StatsService,
) *ExportService {
	return &ExportService{
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		answerRepo:   answerRepo,
		statsService: statsService,
	}
}

// ExportAnswers streams every answer of one game as CSV. User emails and
// category slugs are resolved by reference with memoized lookups; answers
// whose user or category has since disappeared are exported with the raw id.
func (s *ExportService) ExportAnswers(ctx context.Context, kind model.GameKind, w io.Writer) error {
	answers, err := s.answerRepo.ListAll(ctx, kind)
	if err != nil {
		return fmt.Errorf("failed to list answers: %w", err)
	}

	users := common.NewRefResolver(s.userRepo.FindByID)
	categories := common.NewRefResolver(s.categoryRepo.FindByID)

	cw := csv.NewWriter(w)
	header := []string{"user_email", "item_id", "category", "rejected_count", "latitude", "longitude", "other_text", "answered_at"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for _, answer := range answers {
		userField := answer.UserID
		if user, err := users.Resolve(ctx, answer.UserID); err == nil {
			userField = user.Email
		} else if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("failed to resolve answer user: %w", err)
		}

		categoryField := answer.CategoryID
		if category, err := categories.Resolve(ctx, answer.CategoryID); err == nil {
			categoryField = category.Slug
		} else if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("failed to resolve answer category: %w", err)
		}

		record := []string{
			userField,
			answer.ItemID,
			categoryField,
			strconv.Itoa(len(answer.RejectedCategoryIDs)),
			formatCoord(answer.Latitude),
			formatCoord(answer.Longitude),
			answer.OtherText,
			answer.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportUsers streams every account with freshly recomputed stats.
func (s *ExportService) ExportUsers(ctx context.Context, w io.Writer) error {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	cw := csv.NewWriter(w)
	header := []string{"email", "username", "role", "locked", "user_type",
		"n_associated_images", "n_associated_tags", "n_uploaded_images",
		"n_validated_uploaded_images", "score", "overall_level"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for _, user := range users {
		stats, err := s.statsService.UpdateStats(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to refresh stats for export: %w", err)
		}
		record := []string{
			user.Email,
			user.Username,
			user.Role,
			strconv.FormatBool(user.Locked),
			user.UserType,
			strconv.Itoa(stats.NAssociatedImages),
			strconv.Itoa(stats.NAssociatedTags),
			strconv.Itoa(stats.NUploadedImages),
			strconv.Itoa(stats.NValidatedUploadedImages),
			strconv.Itoa(stats.Score),
			strconv.Itoa(stats.OverallLevel),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
