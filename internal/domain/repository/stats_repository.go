package repository

import (
	"context"
	"database/sql"
	"fmt"

	"labelquest/internal/domain/model"
)

type StatsRepository interface {
	// EnsureExists upserts a default row for the user without touching an
	// existing one, so first access lazily creates the record.
	EnsureExists(ctx context.Context, userID string) error
	// Save overwrites the whole derived row. Last write wins.
	Save(ctx context.Context, stats *model.UserStats) error
	// TopByScore returns candidate rows with score > 0, excluding the given
	// user ids, ordered by raw score descending, at most limit rows.
	TopByScore(ctx context.Context, limit int, excludeUserIDs []string) ([]model.UserStats, error)
	// AllByScoreDesc is TopByScore without the limit, for position scans.
	AllByScoreDesc(ctx context.Context, excludeUserIDs []string) ([]model.UserStats, error)
}

type pgStatsRepository struct {
	db *sql.DB
}

func NewPgStatsRepository(db *sql.DB) StatsRepository {
	return &pgStatsRepository{db: db}
}

func (r *pgStatsRepository) EnsureExists(ctx context.Context, userID string) error {
	query := `INSERT INTO user_stats (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("pgStatsRepository.EnsureExists: %w", err)
	}
	return nil
}

func (r *pgStatsRepository) Save(ctx context.Context, stats *model.UserStats) error {
	query := `INSERT INTO user_stats (user_id, n_associated_images, n_associated_tags, n_uploaded_images,
	              n_validated_uploaded_images, score, images_level, tags_level, upload_level, overall_level, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
	          ON CONFLICT (user_id) DO UPDATE SET
	              n_associated_images = EXCLUDED.n_associated_images,
	              n_associated_tags = EXCLUDED.n_associated_tags,
	              n_uploaded_images = EXCLUDED.n_uploaded_images,
	              n_validated_uploaded_images = EXCLUDED.n_validated_uploaded_images,
	              score = EXCLUDED.score,
	              images_level = EXCLUDED.images_level,
	              tags_level = EXCLUDED.tags_level,
	              upload_level = EXCLUDED.upload_level,
	              overall_level = EXCLUDED.overall_level,
	              updated_at = now()`
	_, err := r.db.ExecContext(ctx, query,
		stats.UserID, stats.NAssociatedImages, stats.NAssociatedTags, stats.NUploadedImages,
		stats.NValidatedUploadedImages, stats.Score, stats.ImagesLevel, stats.TagsLevel,
		stats.UploadLevel, stats.OverallLevel,
	)
	if err != nil {
		return fmt.Errorf("pgStatsRepository.Save: %w", err)
	}
	return nil
}

const statsSelect = `SELECT s.user_id, s.n_associated_images, s.n_associated_tags, s.n_uploaded_images,
	       s.n_validated_uploaded_images, s.score, s.images_level, s.tags_level, s.upload_level,
	       s.overall_level, s.updated_at, u.email, u.username
	FROM user_stats s JOIN users u ON u.id = s.user_id
	WHERE s.score > 0`

func (r *pgStatsRepository) queryByScore(ctx context.Context, limit int, excludeUserIDs []string) ([]model.UserStats, error) {
	query := statsSelect
	var args []interface{}
	if len(excludeUserIDs) > 0 {
		query += ` AND s.user_id NOT IN (` + inPlaceholders(1, len(excludeUserIDs)) + `)`
		args = stringArgs(args, excludeUserIDs)
	}
	query += ` ORDER BY s.score DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgStatsRepository.queryByScore: %w", err)
	}
	defer rows.Close()

	var results []model.UserStats
	for rows.Next() {
		var s model.UserStats
		err := rows.Scan(
			&s.UserID, &s.NAssociatedImages, &s.NAssociatedTags, &s.NUploadedImages,
			&s.NValidatedUploadedImages, &s.Score, &s.ImagesLevel, &s.TagsLevel,
			&s.UploadLevel, &s.OverallLevel, &s.UpdatedAt, &s.Email, &s.Username,
		)
		if err != nil {
			return nil, fmt.Errorf("pgStatsRepository.queryByScore scan: %w", err)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgStatsRepository.queryByScore rows: %w", err)
	}
	return results, nil
}

func (r *pgStatsRepository) TopByScore(ctx context.Context, limit int, excludeUserIDs []string) ([]model.UserStats, error) {
	return r.queryByScore(ctx, limit, excludeUserIDs)
}

func (r *pgStatsRepository) AllByScoreDesc(ctx context.Context, excludeUserIDs []string) ([]model.UserStats, error) {
	return r.queryByScore(ctx, 0, excludeUserIDs)
}
