package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/naarimani/platform/internal/domain"
	"github.com/naarimani/platform/internal/ledger"
)

// RewardsService grants the one-shot engagement credits: quiz completion,
// daily login bonus and referral bonus. Each grant is keyed in the ledger so
// a repeat claim fails with AlreadyAttempted instead of crediting again.
type RewardsService struct {
	pool   *pgxpool.Pool
	ledger *ledger.Engine
	logger *slog.Logger

	QuizRewardCoins int64
	DailyLoginCoins int64
	ReferralCoins   int64

	now func() time.Time
}

// NewRewardsService creates a RewardsService. All payout amounts are
// server-side configuration; clients never choose how many coins they earn.
func NewRewardsService(pool *pgxpool.Pool, ledgerEngine *ledger.Engine, quizRewardCoins, dailyLoginCoins, referralCoins int64, logger *slog.Logger) *RewardsService {
	return &RewardsService{
		pool:            pool,
		ledger:          ledgerEngine,
		logger:          logger,
		QuizRewardCoins: quizRewardCoins,
		DailyLoginCoins: dailyLoginCoins,
		ReferralCoins:   referralCoins,
		now:             time.Now,
	}
}

// CompleteQuiz credits the configured quiz reward once per quiz. A second
// completion of the same quiz fails with AlreadyAttempted.
func (s *RewardsService) CompleteQuiz(ctx context.Context, userID uuid.UUID, quizID string) (*domain.CoinTransaction, error) {
	if quizID == "" {
		return nil, domain.ErrValidation("quiz id is required")
	}

	meta, _ := json.Marshal(map[string]string{"quizId": quizID})
	result, err := s.credit(ctx, domain.RewardCreditParams{
		UserID:      userID,
		Type:        domain.TxQuizComplete,
		Coins:       s.QuizRewardCoins,
		Reference:   ledger.QuizReference(quizID),
		Description: fmt.Sprintf("Quiz %s completed", quizID),
		Metadata:    meta,
	})
	if err != nil {
		return nil, err
	}
	if result.Idempotent {
		return nil, domain.ErrAlreadyAttempted("quiz already completed")
	}
	return result.Transaction, nil
}

// ClaimDailyLogin credits the daily login bonus once per UTC calendar day.
func (s *RewardsService) ClaimDailyLogin(ctx context.Context, userID uuid.UUID) (*domain.CoinTransaction, error) {
	day := s.now().UTC().Format("2006-01-02")
	result, err := s.credit(ctx, domain.RewardCreditParams{
		UserID:      userID,
		Type:        domain.TxDailyLogin,
		Coins:       s.DailyLoginCoins,
		Reference:   ledger.DailyLoginReference(day),
		Description: fmt.Sprintf("Daily login bonus for %s", day),
	})
	if err != nil {
		return nil, err
	}
	if result.Idempotent {
		return nil, domain.ErrAlreadyAttempted("daily bonus already claimed today")
	}
	return result.Transaction, nil
}

// CreditReferral credits the referral bonus once per referred user.
func (s *RewardsService) CreditReferral(ctx context.Context, userID, referredUserID uuid.UUID) (*domain.CoinTransaction, error) {
	if userID == referredUserID {
		return nil, domain.ErrValidation("cannot refer yourself")
	}

	meta, _ := json.Marshal(map[string]string{"referredUserId": referredUserID.String()})
	result, err := s.credit(ctx, domain.RewardCreditParams{
		UserID:      userID,
		Type:        domain.TxReferral,
		Coins:       s.ReferralCoins,
		Reference:   ledger.ReferralReference(referredUserID),
		Description: "Referral bonus",
		Metadata:    meta,
	})
	if err != nil {
		return nil, err
	}
	if result.Idempotent {
		return nil, domain.ErrAlreadyAttempted("referral bonus already credited for this user")
	}
	return result.Transaction, nil
}

func (s *RewardsService) credit(ctx context.Context, params domain.RewardCreditParams) (*domain.CommandResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	result, err := s.ledger.ExecuteRewardCredit(ctx, tx, params)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit", err)
	}

	if !result.Idempotent {
		s.logger.Info("reward credited",
			"user_id", params.UserID,
			"type", params.Type,
			"coins", params.Coins,
			"reference", params.Reference,
		)
	}
	return result, nil
}
