package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"labelquest/internal/common"
	"labelquest/internal/domain/model"
)

// ImageSampleFilter narrows the sampler's candidate set. Exactly one of the
// two visibility modes applies: OnlyUploaderID restricts to that uploader's
// own images regardless of validation, otherwise only validated images are
// eligible. Active is always required.
type ImageSampleFilter struct {
	ExcludeIDs     []string
	OnlyUploaderID string
	ValidatedOnly  bool
}

type ImageRepository interface {
	Create(ctx context.Context, image *model.Image) error
	FindByID(ctx context.Context, id string) (*model.Image, error)
	SetValidated(ctx context.Context, id string, validated bool) error
	SetActive(ctx context.Context, id string, active bool) error
	ListPending(ctx context.Context) ([]model.Image, error)
	CountByUploader(ctx context.Context, uploaderID string, validatedOnly bool) (int, error)
	// SampleExcluding draws one image uniformly at random from the filtered
	// candidate set, or nil if none remain.
	SampleExcluding(ctx context.Context, filter ImageSampleFilter) (*model.Image, error)
}

type pgImageRepository struct {
	db *sql.DB
}

func NewPgImageRepository(db *sql.DB) ImageRepository {
	return &pgImageRepository{db: db}
}

const imageColumns = `id, file_key, title, uploader_id, validated, active, created_at, updated_at`

func (r *pgImageRepository) Create(ctx context.Context, image *model.Image) error {
	query := `INSERT INTO images (id, file_key, title, uploader_id, validated, active)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query,
		image.ID, image.FileKey, image.Title, image.UploaderID, image.Validated, image.Active,
	)
	if err != nil {
		return fmt.Errorf("pgImageRepository.Create: %w", err)
	}
	return nil
}

func (r *pgImageRepository) FindByID(ctx context.Context, id string) (*model.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE id = $1`
	image := &model.Image{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&image.ID, &image.FileKey, &image.Title, &image.UploaderID,
		&image.Validated, &image.Active, &image.CreatedAt, &image.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgImageRepository.FindByID: %w", err)
	}
	return image, nil
}

func (r *pgImageRepository) SetValidated(ctx context.Context, id string, validated bool) error {
	query := `UPDATE images SET validated = $1, updated_at = now() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, validated, id)
	if err != nil {
		return fmt.Errorf("pgImageRepository.SetValidated: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgImageRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE images SET active = $1, updated_at = now() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("pgImageRepository.SetActive: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgImageRepository) ListPending(ctx context.Context) ([]model.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE active AND NOT validated ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgImageRepository.ListPending: %w", err)
	}
	defer rows.Close()

	var images []model.Image
	for rows.Next() {
		var image model.Image
		err := rows.Scan(
			&image.ID, &image.FileKey, &image.Title, &image.UploaderID,
			&image.Validated, &image.Active, &image.CreatedAt, &image.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("pgImageRepository.ListPending scan: %w", err)
		}
		images = append(images, image)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgImageRepository.ListPending rows: %w", err)
	}
	return images, nil
}

func (r *pgImageRepository) CountByUploader(ctx context.Context, uploaderID string, validatedOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM images WHERE uploader_id = $1 AND active`
	if validatedOnly {
		query += ` AND validated`
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, uploaderID).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgImageRepository.CountByUploader: %w", err)
	}
	return count, nil
}

func (r *pgImageRepository) SampleExcluding(ctx context.Context, filter ImageSampleFilter) (*model.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE active`
	var args []interface{}
	next := 1

	if filter.OnlyUploaderID != "" {
		query += fmt.Sprintf(` AND uploader_id = $%d`, next)
		args = append(args, filter.OnlyUploaderID)
		next++
	} else if filter.ValidatedOnly {
		query += ` AND validated`
	}

	if len(filter.ExcludeIDs) > 0 {
		query += ` AND id NOT IN (` + inPlaceholders(next, len(filter.ExcludeIDs)) + `)`
		args = stringArgs(args, filter.ExcludeIDs)
	}

	// Server-side uniform sample of one; never materializes the candidate set.
	query += ` ORDER BY random() LIMIT 1`

	image := &model.Image{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&image.ID, &image.FileKey, &image.Title, &image.UploaderID,
		&image.Validated, &image.Active, &image.CreatedAt, &image.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // nothing left to answer
		}
		return nil, fmt.Errorf("pgImageRepository.SampleExcluding: %w", err)
	}
	return image, nil
}
