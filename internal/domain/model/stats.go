package model

import (
	"math"
	"time"
)

// Leveling curve parameters. The same pair must be used for ranking and for
// the per-metric level displays or the two views drift apart.
const (
	LevelM = 1.15
	LevelB = 0.0796

	// The overall level runs against the much larger composite score, so it
	// uses a slower multiplier.
	OverallLevelM = 0.8
)

// Score weights. Uploading and getting uploads validated outweigh tagging to
// incentivize content contribution.
const (
	WeightValidatedUpload = 10
	WeightUpload          = 5
	WeightAssociatedImage = 2
	WeightAssociatedTag   = 2
)

// Level maps a cumulative count or score to a discrete level:
// round(b + ln(m*score)), floored at 1. The guard on score <= 0 is load
// bearing: ln is undefined there and the answer is always level 1.
func Level(score float64, m float64, b float64) int {
	if score <= 0 {
		return 1
	}
	level := int(math.Round(b + math.Log(m*score)))
	if level < 1 {
		return 1
	}
	return level
}

// LevelDefault applies the standard per-metric curve.
func LevelDefault(score float64) int {
	return Level(score, LevelM, LevelB)
}

// ComputeScore applies the fixed integer weights to the raw counters.
func ComputeScore(nAssociatedImages, nAssociatedTags, nUploadedImages, nValidatedUploadedImages int) int {
	return WeightValidatedUpload*nValidatedUploadedImages +
		WeightAssociatedTag*nAssociatedTags +
		WeightAssociatedImage*nAssociatedImages +
		WeightUpload*nUploadedImages
}

// UserStats is derived state, fully recomputed on every freshness-requiring
// read. Concurrent recomputes race and last write wins; the row self-heals
// on the next recompute.
type UserStats struct {
	UserID                   string    `json:"user_id"`
	NAssociatedImages        int       `json:"n_associated_images"`
	NAssociatedTags          int       `json:"n_associated_tags"`
	NUploadedImages          int       `json:"n_uploaded_images"`
	NValidatedUploadedImages int       `json:"n_validated_uploaded_images"`
	Score                    int       `json:"score"`
	ImagesLevel              int       `json:"images_level"`
	TagsLevel                int       `json:"tags_level"`
	UploadLevel              int       `json:"upload_level"`
	OverallLevel             int       `json:"overall_level"`
	UpdatedAt                time.Time `json:"updated_at"`

	// Joined for ranking display and as the deterministic sort tiebreaker.
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

// RankingEntry is one leaderboard row.
type RankingEntry struct {
	Rank  int        `json:"rank"`
	Stats *UserStats `json:"stats"`
}
