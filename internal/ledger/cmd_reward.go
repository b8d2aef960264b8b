package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/naarimani/platform/internal/domain"
)

// rewardTypes are the one-shot credit types served by ExecuteRewardCredit.
var rewardTypes = map[domain.TransactionType]bool{
	domain.TxQuizComplete: true,
	domain.TxDailyLogin:   true,
	domain.TxReferral:     true,
}

// ExecuteRewardCredit credits a one-shot reward (quiz completion, daily login
// bonus, referral bonus). The caller-supplied reference makes the grant
// one-shot: a duplicate returns the existing entry with Idempotent=true, which
// reward flows surface as AlreadyAttempted.
func (e *Engine) ExecuteRewardCredit(ctx context.Context, tx pgx.Tx, params domain.RewardCreditParams) (*domain.CommandResult, error) {
	if !rewardTypes[params.Type] {
		return nil, domain.ErrValidation(fmt.Sprintf("%s is not a reward transaction type", params.Type))
	}
	if err := domain.ValidatePositiveAmount(params.Coins); err != nil {
		return nil, err
	}
	if params.Reference == "" {
		return nil, domain.ErrValidation("reward reference is required")
	}

	// Lock
	wallet, err := e.LockWalletForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("reward credit: %w", err)
	}

	// Idempotency check
	existing, err := e.FindExistingTransaction(ctx, tx, params.UserID, params.Reference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &domain.CommandResult{Transaction: existing, Wallet: wallet, Idempotent: true}, nil
	}

	entry, updatedWallet, err := e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{
		UserID:      params.UserID,
		Type:        params.Type,
		Amount:      params.Coins,
		Reference:   params.Reference,
		Description: params.Description,
		Metadata:    ensureJSON(params.Metadata),
	})
	if err != nil {
		return nil, fmt.Errorf("reward credit post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Wallet: updatedWallet}, nil
}
