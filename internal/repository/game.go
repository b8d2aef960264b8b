package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/naarimani/platform/internal/domain"
)

type gameRepo struct{}

// NewGameRepository returns a pgx-backed GameRepository.
func NewGameRepository() GameRepository {
	return &gameRepo{}
}

const gameColumns = `id, campaign_id, title, description, category, game_type, entry_coins,
	start_time, end_time, total_participants, status, created_at, updated_at`

func (r *gameRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Game, error) {
	row := db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	return scanGame(row)
}

func (r *gameRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Game, error) {
	row := tx.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1 FOR UPDATE`, id)
	return scanGame(row)
}

func (r *gameRepo) List(ctx context.Context, db DBTX, status string, category string, limit int) ([]domain.Game, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `SELECT ` + gameColumns + ` FROM games WHERE 1=1`
	args := []interface{}{}
	argIdx := 1
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}
	if category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, category)
		argIdx++
	}
	query += fmt.Sprintf(" ORDER BY start_time DESC LIMIT $%d", argIdx)
	args = append(args, limit)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var games []domain.Game
	for rows.Next() {
		g, err := scanGameRow(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

func (r *gameRepo) Create(ctx context.Context, db DBTX, game *domain.Game) error {
	_, err := db.Exec(ctx, `
		INSERT INTO games
		  (id, campaign_id, title, description, category, game_type, entry_coins,
		   start_time, end_time, total_participants, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		game.ID, game.CampaignID, game.Title, game.Description, game.Category,
		game.GameType, game.EntryCoins, game.StartTime, game.EndTime,
		game.TotalParticipants, string(game.Status),
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (r *gameRepo) IncrementParticipants(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE games
		SET total_participants = total_participants + 1, updated_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment participants: %w", err)
	}
	return nil
}

func (r *gameRepo) UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.GameStatus) error {
	_, err := db.Exec(ctx, `
		UPDATE games SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("update game status: %w", err)
	}
	return nil
}

const questionColumns = `id, game_id, position, question_text, prediction_type, options,
	min_value, max_value, unit, exact_match_points, near_range_points, created_at`

func (r *gameRepo) ListQuestions(ctx context.Context, db DBTX, gameID uuid.UUID) ([]domain.Question, error) {
	rows, err := db.Query(ctx, `
		SELECT `+questionColumns+`
		FROM questions WHERE game_id = $1
		ORDER BY position ASC, created_at ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		q, err := scanQuestionRow(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

func (r *gameRepo) FindQuestion(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Question, error) {
	row := db.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id)
	q, err := scanQuestionRow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return q, nil
}

func (r *gameRepo) CreateQuestion(ctx context.Context, db DBTX, q *domain.Question) error {
	_, err := db.Exec(ctx, `
		INSERT INTO questions
		  (id, game_id, position, question_text, prediction_type, options,
		   min_value, max_value, unit, exact_match_points, near_range_points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		q.ID, q.GameID, q.Position, q.QuestionText, string(q.PredictionType),
		q.Options, q.MinValue, q.MaxValue, q.Unit, q.ExactMatchPoints, q.NearRangePoints,
	)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (r *gameRepo) ListCampaigns(ctx context.Context, db DBTX, activeOnly bool) ([]domain.Campaign, error) {
	query := `SELECT id, name, sponsor, prize_pool_coins, is_active, created_at FROM campaigns`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		var c domain.Campaign
		if err := rows.Scan(&c.ID, &c.Name, &c.Sponsor, &c.PrizePoolCoins, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *gameRepo) CreateCampaign(ctx context.Context, db DBTX, c *domain.Campaign) error {
	_, err := db.Exec(ctx, `
		INSERT INTO campaigns (id, name, sponsor, prize_pool_coins, is_active)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Sponsor, c.PrizePoolCoins, c.IsActive,
	)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

func scanGame(row pgx.Row) (*domain.Game, error) {
	g, err := scanGameRow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return g, nil
}

func scanGameRow(row pgx.Row) (*domain.Game, error) {
	var g domain.Game
	var status string
	err := row.Scan(
		&g.ID, &g.CampaignID, &g.Title, &g.Description, &g.Category, &g.GameType,
		&g.EntryCoins, &g.StartTime, &g.EndTime, &g.TotalParticipants, &status,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan game: %w", err)
	}
	g.Status = domain.GameStatus(status)
	return &g, nil
}

func scanQuestionRow(row pgx.Row) (*domain.Question, error) {
	var q domain.Question
	var predType string
	err := row.Scan(
		&q.ID, &q.GameID, &q.Position, &q.QuestionText, &predType, &q.Options,
		&q.MinValue, &q.MaxValue, &q.Unit, &q.ExactMatchPoints, &q.NearRangePoints,
		&q.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan question: %w", err)
	}
	q.PredictionType = domain.PredictionType(predType)
	return &q, nil
}
