package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/naarimani/platform/internal/domain"
)

type predictionRepo struct{}

// NewPredictionRepository returns a pgx-backed PredictionRepository.
func NewPredictionRepository() PredictionRepository {
	return &predictionRepo{}
}

const predictionColumns = `id, game_id, question_id, user_id, value, range_min, range_max,
	points_earned, is_correct, created_at, updated_at`

func (r *predictionRepo) CountByUserAndGame(ctx context.Context, db DBTX, userID, gameID uuid.UUID) (int, error) {
	var count int
	err := db.QueryRow(ctx, `
		SELECT COUNT(*) FROM predictions
		WHERE user_id = $1 AND game_id = $2`, userID, gameID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count predictions: %w", err)
	}
	return count, nil
}

// Upsert relies on the unique (user_id, game_id, question_id) index: a repeat
// submission overwrites the answer fields and bumps updated_at, never the
// scoring fields.
func (r *predictionRepo) Upsert(ctx context.Context, db DBTX, p *domain.Prediction) (*domain.Prediction, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO predictions
		  (id, game_id, question_id, user_id, value, range_min, range_max)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, game_id, question_id) DO UPDATE
		SET value = EXCLUDED.value,
		    range_min = EXCLUDED.range_min,
		    range_max = EXCLUDED.range_max,
		    updated_at = now()
		RETURNING `+predictionColumns,
		p.ID, p.GameID, p.QuestionID, p.UserID, p.Value, p.RangeMin, p.RangeMax,
	)
	return scanPrediction(row)
}

func (r *predictionRepo) ListByGame(ctx context.Context, db DBTX, gameID uuid.UUID) ([]domain.Prediction, error) {
	rows, err := db.Query(ctx, `
		SELECT `+predictionColumns+`
		FROM predictions WHERE game_id = $1
		ORDER BY user_id, question_id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()
	return collectPredictions(rows)
}

func (r *predictionRepo) ListByUserAndGame(ctx context.Context, db DBTX, userID, gameID uuid.UUID) ([]domain.Prediction, error) {
	rows, err := db.Query(ctx, `
		SELECT `+predictionColumns+`
		FROM predictions
		WHERE user_id = $1 AND game_id = $2
		ORDER BY created_at ASC`, userID, gameID)
	if err != nil {
		return nil, fmt.Errorf("query user predictions: %w", err)
	}
	defer rows.Close()
	return collectPredictions(rows)
}

func (r *predictionRepo) UpdateScore(ctx context.Context, db DBTX, id uuid.UUID, points int64, isCorrect bool) error {
	_, err := db.Exec(ctx, `
		UPDATE predictions
		SET points_earned = $1, is_correct = $2, updated_at = now()
		WHERE id = $3`, points, isCorrect, id)
	if err != nil {
		return fmt.Errorf("update prediction score: %w", err)
	}
	return nil
}

func scanPrediction(row pgx.Row) (*domain.Prediction, error) {
	var p domain.Prediction
	err := row.Scan(
		&p.ID, &p.GameID, &p.QuestionID, &p.UserID, &p.Value,
		&p.RangeMin, &p.RangeMax, &p.PointsEarned, &p.IsCorrect,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan prediction: %w", err)
	}
	return &p, nil
}

func collectPredictions(rows pgx.Rows) ([]domain.Prediction, error) {
	var preds []domain.Prediction
	for rows.Next() {
		var p domain.Prediction
		err := rows.Scan(
			&p.ID, &p.GameID, &p.QuestionID, &p.UserID, &p.Value,
			&p.RangeMin, &p.RangeMax, &p.PointsEarned, &p.IsCorrect,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan prediction row: %w", err)
		}
		preds = append(preds, p)
	}
	return preds, rows.Err()
}
