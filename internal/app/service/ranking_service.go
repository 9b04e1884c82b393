package service

import (
	"context"
	"fmt"
	"sort"

	"labelquest/internal/domain/model"
	"labelquest/internal/domain/repository"
)

// RankingService builds the leaderboard and locates a user's position in it.
// Admin accounts never appear in either view.
type RankingService struct {
	statsRepo    repository.StatsRepository
	statsService *StatsService
	admins       AdminLister
	defaultLimit int
}

func NewRankingService(
	statsRepo repository.StatsRepository,
	statsService *StatsService,
	admins AdminLister,
	defaultLimit int,
) *RankingService {
	return &RankingService{
		statsRepo:    statsRepo,
		statsService: statsService,
		admins:       admins,
		defaultLimit: defaultLimit,
	}
}

// Ranking returns the top entries. Candidates are pre-limited by raw score
// before the composite re-sort, so a user who would make the composite
// top-N purely on overall level can be cut at the candidate stage. That
// matches the historical behavior and is kept deliberately.
func (s *RankingService) Ranking(ctx context.Context, limit int) ([]model.RankingEntry, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	adminSet, err := s.admins.AdminIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve admin set: %w", err)
	}

	candidates, err := s.statsRepo.TopByScore(ctx, limit, setToSlice(adminSet))
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking candidates: %w", err)
	}

	// Freshness over the stored rows: recompute each candidate.
	fresh := make([]*model.UserStats, 0, len(candidates))
	for _, candidate := range candidates {
		stats, err := s.statsService.UpdateStats(ctx, candidate.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh stats for %s: %w", candidate.UserID, err)
		}
		fresh = append(fresh, stats)
	}

	// Composite ordering: overall level, then score, then email for a
	// deterministic tiebreak.
	sort.SliceStable(fresh, func(i, j int) bool {
		if fresh[i].OverallLevel != fresh[j].OverallLevel {
			return fresh[i].OverallLevel > fresh[j].OverallLevel
		}
		if fresh[i].Score != fresh[j].Score {
			return fresh[i].Score > fresh[j].Score
		}
		return fresh[i].Email < fresh[j].Email
	})

	entries := make([]model.RankingEntry, 0, len(fresh))
	for i, stats := range fresh {
		entries = append(entries, model.RankingEntry{Rank: i + 1, Stats: stats})
	}
	return entries, nil
}

// RankingPosition returns the zero-based index of userID in the full
// raw-score ordering (not the composite one), or -1 when the user is an
// admin, has no positive score, or does not exist. Linear scan; fine at the
// population sizes this runs against.
func (s *RankingService) RankingPosition(ctx context.Context, userID string) (int, error) {
	adminSet, err := s.admins.AdminIDs(ctx)
	if err != nil {
		return -1, fmt.Errorf("failed to resolve admin set: %w", err)
	}
	if _, isAdmin := adminSet[userID]; isAdmin {
		return -1, nil
	}

	all, err := s.statsRepo.AllByScoreDesc(ctx, setToSlice(adminSet))
	if err != nil {
		return -1, fmt.Errorf("failed to query ranking population: %w", err)
	}

	for i, stats := range all {
		if stats.UserID == userID {
			return i, nil
		}
	}
	return -1, nil
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
