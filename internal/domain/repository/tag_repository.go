package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"labelquest/internal/common"
	"labelquest/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type TagRepository interface {
	Create(ctx context.Context, tag *model.Tag) error
	FindByID(ctx context.Context, id string) (*model.Tag, error)
	// SampleActiveExcluding draws one active tag uniformly at random from the
	// tags not in excludeIDs, or nil if none remain.
	SampleActiveExcluding(ctx context.Context, excludeIDs []string) (*model.Tag, error)
}

type pgTagRepository struct {
	db *sql.DB
}

func NewPgTagRepository(db *sql.DB) TagRepository {
	return &pgTagRepository{db: db}
}

func (r *pgTagRepository) Create(ctx context.Context, tag *model.Tag) error {
	query := `INSERT INTO tags (id, name, slug, active) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, tag.ID, tag.Name, tag.Slug, tag.Active)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("tag with given slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgTagRepository.Create: %w", err)
	}
	return nil
}

func (r *pgTagRepository) FindByID(ctx context.Context, id string) (*model.Tag, error) {
	query := `SELECT id, name, slug, active, created_at FROM tags WHERE id = $1`
	tag := &model.Tag{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.Active, &tag.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTagRepository.FindByID: %w", err)
	}
	return tag, nil
}

func (r *pgTagRepository) SampleActiveExcluding(ctx context.Context, excludeIDs []string) (*model.Tag, error) {
	query := `SELECT id, name, slug, active, created_at FROM tags WHERE active`
	var args []interface{}
	if len(excludeIDs) > 0 {
		query += ` AND id NOT IN (` + inPlaceholders(1, len(excludeIDs)) + `)`
		args = stringArgs(args, excludeIDs)
	}
	// Server-side uniform sample of one; never materializes the candidate set.
	query += ` ORDER BY random() LIMIT 1`

	tag := &model.Tag{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.Active, &tag.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // nothing left to answer
		}
		return nil, fmt.Errorf("pgTagRepository.SampleActiveExcluding: %w", err)
	}
	return tag, nil
}
