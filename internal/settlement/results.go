package settlement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/naarimani/platform/internal/domain"
	"github.com/naarimani/platform/internal/ledger"
	"github.com/naarimani/platform/internal/repository"
)

// Engine declares results and scores games over the coin ledger.
type Engine struct {
	pool        *pgxpool.Pool
	games       repository.GameRepository
	predictions repository.PredictionRepository
	results     repository.ResultRepository
	outbox      repository.OutboxRepository
	ledger      *ledger.Engine
	logger      *slog.Logger

	// PointsToCoinsRatio converts a user's total game points into the
	// fantasy-win coin credit.
	PointsToCoinsRatio int64
}

// NewEngine creates a settlement engine.
func NewEngine(
	pool *pgxpool.Pool,
	games repository.GameRepository,
	predictions repository.PredictionRepository,
	results repository.ResultRepository,
	outbox repository.OutboxRepository,
	ledgerEngine *ledger.Engine,
	pointsToCoinsRatio int64,
	logger *slog.Logger,
) *Engine {
	if pointsToCoinsRatio <= 0 {
		pointsToCoinsRatio = 1
	}
	return &Engine{
		pool:               pool,
		games:              games,
		predictions:        predictions,
		results:            results,
		outbox:             outbox,
		ledger:             ledgerEngine,
		logger:             logger,
		PointsToCoinsRatio: pointsToCoinsRatio,
	}
}

// DeclareResultsInput carries the admin's ground truth for a whole game.
type DeclareResultsInput struct {
	GameID     uuid.UUID
	Results    map[uuid.UUID]string // questionID -> truth value
	Source     string
	DeclaredBy string
}

// DeclareResults writes one immutable result per question and moves the game
// to results-declared. Every question must have a truth value; partial
// declarations are rejected with IncompleteResults before any write.
func (e *Engine) DeclareResults(ctx context.Context, input DeclareResultsInput) error {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	game, err := e.games.LockForUpdate(ctx, tx, input.GameID)
	if err != nil {
		return domain.ErrInternal("lock game", err)
	}
	if game == nil {
		return domain.ErrNotFound("game", input.GameID.String())
	}
	if game.Status == domain.GameDraft {
		return domain.ErrValidation("cannot declare results for a draft game")
	}

	questions, err := e.games.ListQuestions(ctx, tx, input.GameID)
	if err != nil {
		return domain.ErrInternal("list questions", err)
	}
	if len(questions) == 0 {
		return domain.ErrValidation("game has no questions")
	}

	for _, q := range questions {
		if _, ok := input.Results[q.ID]; !ok {
			return domain.ErrIncompleteResults(fmt.Sprintf("missing result for question %s", q.ID))
		}
	}

	for _, q := range questions {
		res := &domain.Result{
			ID:         uuid.New(),
			GameID:     input.GameID,
			QuestionID: q.ID,
			Value:      input.Results[q.ID],
			Source:     input.Source,
			DeclaredBy: input.DeclaredBy,
		}
		if err := e.results.Insert(ctx, tx, res); err != nil {
			return domain.ErrInternal("insert result", err)
		}
	}

	if err := e.games.UpdateStatus(ctx, tx, input.GameID, domain.GameResultsDeclared); err != nil {
		return domain.ErrInternal("update game status", err)
	}

	event := domain.NewResultsDeclaredEvent(input.GameID, input.DeclaredBy, len(questions))
	if err := e.outbox.Insert(ctx, tx, event); err != nil {
		return domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit", err)
	}

	e.logger.Info("results declared",
		"game_id", input.GameID,
		"questions", len(questions),
		"declared_by", input.DeclaredBy,
	)
	return nil
}
