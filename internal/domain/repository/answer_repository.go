package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"labelquest/internal/domain/model"
)

type AnswerRepository interface {
	// Upsert records the user's current answer for an item. The merge policy
	// is a full overwrite of category, rejected list, location, other-text
	// and updated_at; identity and created_at are preserved on conflict.
	Upsert(ctx context.Context, kind model.GameKind, answer *model.Answer) error
	// AnsweredItemIDs projects the ids of all items the user has answered in
	// the given game; dangling (null) item references are dropped.
	AnsweredItemIDs(ctx context.Context, kind model.GameKind, userID string) ([]string, error)
	CountByUser(ctx context.Context, kind model.GameKind, userID string) (int, error)
	ListAll(ctx context.Context, kind model.GameKind) ([]model.Answer, error)
}

type pgAnswerRepository struct {
	db *sql.DB
}

func NewPgAnswerRepository(db *sql.DB) AnswerRepository {
	return &pgAnswerRepository{db: db}
}

func answerTable(kind model.GameKind) (table string, itemCol string) {
	if kind == model.GameTags {
		return "tag_answers", "tag_id"
	}
	return "image_answers", "image_id"
}

func (r *pgAnswerRepository) Upsert(ctx context.Context, kind model.GameKind, answer *model.Answer) error {
	table, itemCol := answerTable(kind)

	rejected, err := json.Marshal(answer.RejectedCategoryIDs)
	if err != nil {
		return fmt.Errorf("pgAnswerRepository.Upsert marshal rejected: %w", err)
	}

	query := `INSERT INTO ` + table + ` (id, user_id, ` + itemCol + `, category_id, rejected_category_ids, latitude, longitude, other_text)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          ON CONFLICT (user_id, ` + itemCol + `) DO UPDATE SET
	              category_id = EXCLUDED.category_id,
	              rejected_category_ids = EXCLUDED.rejected_category_ids,
	              latitude = EXCLUDED.latitude,
	              longitude = EXCLUDED.longitude,
	              other_text = EXCLUDED.other_text,
	              updated_at = now()`
	_, err = r.db.ExecContext(ctx, query,
		answer.ID, answer.UserID, answer.ItemID, answer.CategoryID,
		rejected, answer.Latitude, answer.Longitude, answer.OtherText,
	)
	if err != nil {
		return fmt.Errorf("pgAnswerRepository.Upsert: %w", err)
	}
	return nil
}

func (r *pgAnswerRepository) AnsweredItemIDs(ctx context.Context, kind model.GameKind, userID string) ([]string, error) {
	table, itemCol := answerTable(kind)
	query := `SELECT ` + itemCol + ` FROM ` + table + ` WHERE user_id = $1 AND ` + itemCol + ` IS NOT NULL`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgAnswerRepository.AnsweredItemIDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgAnswerRepository.AnsweredItemIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgAnswerRepository.AnsweredItemIDs rows: %w", err)
	}
	return ids, nil
}

func (r *pgAnswerRepository) CountByUser(ctx context.Context, kind model.GameKind, userID string) (int, error) {
	table, _ := answerTable(kind)
	query := `SELECT COUNT(*) FROM ` + table + ` WHERE user_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgAnswerRepository.CountByUser: %w", err)
	}
	return count, nil
}

func (r *pgAnswerRepository) ListAll(ctx context.Context, kind model.GameKind) ([]model.Answer, error) {
	table, itemCol := answerTable(kind)
	query := `SELECT id, user_id, ` + itemCol + `, category_id, rejected_category_ids, latitude, longitude, other_text, created_at, updated_at
	          FROM ` + table + ` ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgAnswerRepository.ListAll: %w", err)
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var answer model.Answer
		var rejected []byte
		err := rows.Scan(
			&answer.ID, &answer.UserID, &answer.ItemID, &answer.CategoryID, &rejected,
			&answer.Latitude, &answer.Longitude, &answer.OtherText, &answer.CreatedAt, &answer.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("pgAnswerRepository.ListAll scan: %w", err)
		}
		if len(rejected) > 0 {
			if err := json.Unmarshal(rejected, &answer.RejectedCategoryIDs); err != nil {
				return nil, fmt.Errorf("pgAnswerRepository.ListAll unmarshal rejected: %w", err)
			}
		}
		answers = append(answers, answer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgAnswerRepository.ListAll rows: %w", err)
	}
	return answers, nil
}
