package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/naarimani/platform/internal/domain"
)

type resultRepo struct{}

// NewResultRepository returns a pgx-backed ResultRepository.
func NewResultRepository() ResultRepository {
	return &resultRepo{}
}

// Insert keeps results immutable: a conflicting declaration for the same
// question is ignored rather than overwritten.
func (r *resultRepo) Insert(ctx context.Context, db DBTX, res *domain.Result) error {
	_, err := db.Exec(ctx, `
		INSERT INTO results (id, game_id, question_id, value, source, declared_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (question_id) DO NOTHING`,
		res.ID, res.GameID, res.QuestionID, res.Value, res.Source, res.DeclaredBy,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (r *resultRepo) ListByGame(ctx context.Context, db DBTX, gameID uuid.UUID) ([]domain.Result, error) {
	rows, err := db.Query(ctx, `
		SELECT id, game_id, question_id, value, source, declared_by, declared_at
		FROM results WHERE game_id = $1`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		var res domain.Result
		if err := rows.Scan(&res.ID, &res.GameID, &res.QuestionID, &res.Value, &res.Source, &res.DeclaredBy, &res.DeclaredAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
