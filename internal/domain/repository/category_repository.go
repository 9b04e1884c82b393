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

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	ListActive(ctx context.Context) ([]model.Category, error)
}

type pgCategoryRepository struct {
	db *sql.DB
}

func NewPgCategoryRepository(db *sql.DB) CategoryRepository {
	return &pgCategoryRepository{db: db}
}

func (r *pgCategoryRepository) Create(ctx context.Context, category *model.Category) error {
	query := `INSERT INTO categories (id, name, slug, description, active)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query,
		category.ID, category.Name, category.Slug, category.Description, category.Active,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("category with given slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgCategoryRepository.Create: %w", err)
	}
	return nil
}

func (r *pgCategoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	query := `SELECT id, name, slug, description, active FROM categories WHERE id = $1`
	category := &model.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&category.ID, &category.Name, &category.Slug, &category.Description, &category.Active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCategoryRepository.FindByID: %w", err)
	}
	return category, nil
}

func (r *pgCategoryRepository) ListActive(ctx context.Context) ([]model.Category, error) {
	query := `SELECT id, name, slug, description, active FROM categories WHERE active ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgCategoryRepository.ListActive: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var category model.Category
		err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.Description, &category.Active)
		if err != nil {
			return nil, fmt.Errorf("pgCategoryRepository.ListActive scan: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgCategoryRepository.ListActive rows: %w", err)
	}
	return categories, nil
}
