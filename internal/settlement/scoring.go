package settlement

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/naarimani/platform/internal/domain"
)

// UserScore aggregates one user's points across a game's questions.
type UserScore struct {
	UserID uuid.UUID
	Points int64
}

// CalculateGameScores walks every prediction for a game, assigns points,
// marks correctness and credits fantasy-win coins per user.
//
// The operation is re-run safe: points and correctness are recomputed to the
// same values, and the win credit is keyed fantasy-win:{gameID} so a second
// run finds the existing ledger entry instead of crediting again. Per-user
// credits run in independent transactions so a partial failure can be
// resumed by simply running the operation again.
func (e *Engine) CalculateGameScores(ctx context.Context, gameID uuid.UUID) (*domain.ScoringSummary, error) {
	game, err := e.games.FindByID(ctx, e.pool, gameID)
	if err != nil {
		return nil, domain.ErrInternal("find game", err)
	}
	if game == nil {
		return nil, domain.ErrNotFound("game", gameID.String())
	}
	if game.Status != domain.GameResultsDeclared && game.Status != domain.GameClosed {
		return nil, domain.ErrValidation("results have not been declared for this game")
	}

	questions, err := e.games.ListQuestions(ctx, e.pool, gameID)
	if err != nil {
		return nil, domain.ErrInternal("list questions", err)
	}
	questionsByID := make(map[uuid.UUID]*domain.Question, len(questions))
	for i := range questions {
		questionsByID[questions[i].ID] = &questions[i]
	}

	results, err := e.results.ListByGame(ctx, e.pool, gameID)
	if err != nil {
		return nil, domain.ErrInternal("list results", err)
	}
	truthByQuestion := make(map[uuid.UUID]string, len(results))
	for _, r := range results {
		truthByQuestion[r.QuestionID] = r.Value
	}
	for _, q := range questions {
		if _, ok := truthByQuestion[q.ID]; !ok {
			return nil, domain.ErrIncompleteResults("not every question has a declared result")
		}
	}

	predictions, err := e.predictions.ListByGame(ctx, e.pool, gameID)
	if err != nil {
		return nil, domain.ErrInternal("list predictions", err)
	}

	summary := &domain.ScoringSummary{GameID: gameID}
	pointsByUser := make(map[uuid.UUID]int64)

	for i := range predictions {
		p := &predictions[i]
		q, ok := questionsByID[p.QuestionID]
		if !ok {
			continue
		}

		points := ScorePrediction(q, truthByQuestion[q.ID], p)
		if err := e.predictions.UpdateScore(ctx, e.pool, p.ID, points, points > 0); err != nil {
			return nil, domain.ErrInternal("update prediction score", err)
		}

		summary.ScoredPredictions++
		summary.TotalPointsAwarded += points
		pointsByUser[p.UserID] += points
	}

	for _, score := range sortedScores(pointsByUser) {
		if score.Points <= 0 {
			continue
		}
		credited, coins, err := e.creditWin(ctx, gameID, game.Title, score)
		if err != nil {
			return nil, err
		}
		if credited {
			summary.UsersCredited++
			summary.CoinsCredited += coins
		}
	}

	e.logger.Info("game scored",
		"game_id", gameID,
		"scored_predictions", summary.ScoredPredictions,
		"total_points", summary.TotalPointsAwarded,
		"users_credited", summary.UsersCredited,
		"coins_credited", summary.CoinsCredited,
	)
	return summary, nil
}

// creditWin posts one user's fantasy-win credit in its own transaction.
// Returns false when the credit already existed from a previous run.
func (e *Engine) creditWin(ctx context.Context, gameID uuid.UUID, gameTitle string, score UserScore) (bool, int64, error) {
	coins := score.Points * e.PointsToCoinsRatio

	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return false, 0, domain.ErrInternal("begin credit tx", err)
	}
	defer tx.Rollback(ctx)

	result, err := e.ledger.ExecuteWinCredit(ctx, tx, domain.WinCreditParams{
		UserID:    score.UserID,
		GameID:    gameID,
		Coins:     coins,
		Points:    score.Points,
		GameTitle: gameTitle,
	})
	if err != nil {
		return false, 0, err
	}

	if !result.Idempotent {
		event := domain.NewPredictionScoredEvent(gameID, score.UserID, score.Points, coins)
		if err := e.outbox.Insert(ctx, tx, event); err != nil {
			return false, 0, domain.ErrInternal("insert outbox event", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, 0, domain.ErrInternal("commit credit", err)
	}

	return !result.Idempotent, coins, nil
}

// sortedScores returns per-user scores in a stable order so retries walk
// users deterministically.
func sortedScores(pointsByUser map[uuid.UUID]int64) []UserScore {
	scores := make([]UserScore, 0, len(pointsByUser))
	for userID, points := range pointsByUser {
		scores = append(scores, UserScore{UserID: userID, Points: points})
	}
	sort.Slice(scores, func(i, j int) bool {
		return scores[i].UserID.String() < scores[j].UserID.String()
	})
	return scores
}
