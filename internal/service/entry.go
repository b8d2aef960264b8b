package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/naarimani/platform/internal/domain"
	"github.com/naarimani/platform/internal/ledger"
	"github.com/naarimani/platform/internal/repository"
)

// EntryService is the participation gate: it decides whether a submission is
// the user's first prediction for a game, charges the entry fee exactly once,
// and creates or overwrites the prediction record.
type EntryService struct {
	pool        *pgxpool.Pool
	games       repository.GameRepository
	predictions repository.PredictionRepository
	outbox      repository.OutboxRepository
	ledger      *ledger.Engine
	logger      *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewEntryService creates an EntryService.
func NewEntryService(
	pool *pgxpool.Pool,
	games repository.GameRepository,
	predictions repository.PredictionRepository,
	outbox repository.OutboxRepository,
	ledgerEngine *ledger.Engine,
	logger *slog.Logger,
) *EntryService {
	return &EntryService{
		pool:        pool,
		games:       games,
		predictions: predictions,
		outbox:      outbox,
		ledger:      ledgerEngine,
		logger:      logger,
		now:         time.Now,
	}
}

// SubmitPrediction validates and stores one answer, charging the entry fee on
// the user's first prediction for the game.
//
// Everything below the validation step runs in one transaction: a failed
// debit leaves no prediction and no participant increment behind. The
// entry-fee debit is keyed on the game alone, so concurrent first
// submissions by the same user serialize on the wallet row lock and charge
// once; the participant count increments only when the debit actually
// posted.
func (s *EntryService) SubmitPrediction(ctx context.Context, userID uuid.UUID, input domain.SubmitPredictionInput) (*domain.Prediction, error) {
	game, err := s.games.FindByID(ctx, s.pool, input.GameID)
	if err != nil {
		return nil, domain.ErrInternal("find game", err)
	}
	if game == nil {
		return nil, domain.ErrNotFound("game", input.GameID.String())
	}
	if !game.AcceptsPredictions(s.now()) {
		return nil, domain.ErrGameClosed("game is not accepting predictions")
	}

	question, err := s.games.FindQuestion(ctx, s.pool, input.QuestionID)
	if err != nil {
		return nil, domain.ErrInternal("find question", err)
	}
	if question == nil || question.GameID != input.GameID {
		return nil, domain.ErrNotFound("question", input.QuestionID.String())
	}

	if err := domain.ValidatePredictionValue(question, input); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	existing, err := s.predictions.CountByUserAndGame(ctx, tx, userID, input.GameID)
	if err != nil {
		return nil, domain.ErrInternal("count predictions", err)
	}

	if existing == 0 {
		result, err := s.ledger.ExecuteEntryFee(ctx, tx, domain.EntryFeeParams{
			UserID:     userID,
			GameID:     input.GameID,
			EntryCoins: game.EntryCoins,
			GameTitle:  game.Title,
		})
		if err != nil {
			return nil, err
		}

		// The idempotency lookup returning an earlier debit means the user
		// already entered; only a freshly posted fee counts a participant.
		if !result.Idempotent {
			if err := s.games.IncrementParticipants(ctx, tx, input.GameID); err != nil {
				return nil, domain.ErrInternal("increment participants", err)
			}
			event := domain.NewGameEnteredEvent(input.GameID, userID, game.EntryCoins)
			if err := s.outbox.Insert(ctx, tx, event); err != nil {
				return nil, domain.ErrInternal("insert outbox event", err)
			}
		}
	}

	prediction, err := s.predictions.Upsert(ctx, tx, &domain.Prediction{
		ID:         uuid.New(),
		GameID:     input.GameID,
		QuestionID: input.QuestionID,
		UserID:     userID,
		Value:      input.Value,
		RangeMin:   input.RangeMin,
		RangeMax:   input.RangeMax,
	})
	if err != nil {
		return nil, domain.ErrInternal("upsert prediction", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit", err)
	}

	s.logger.Info("prediction submitted",
		"user_id", userID,
		"game_id", input.GameID,
		"question_id", input.QuestionID,
		"first_entry", existing == 0,
	)
	return prediction, nil
}

// MyPredictions returns the user's stored answers for a game.
func (s *EntryService) MyPredictions(ctx context.Context, userID, gameID uuid.UUID) ([]domain.Prediction, error) {
	preds, err := s.predictions.ListByUserAndGame(ctx, s.pool, userID, gameID)
	if err != nil {
		return nil, domain.ErrInternal("list predictions", err)
	}
	return preds, nil
}
