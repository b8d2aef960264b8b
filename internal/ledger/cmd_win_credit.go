package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/naarimani/platform/internal/domain"
)

// ExecuteWinCredit credits the fantasy-win payout for a game.
//
// The reference is derived from the game alone, which makes score
// recalculation re-run safe: a second run finds the existing credit and
// returns it with Idempotent=true instead of crediting again.
func (e *Engine) ExecuteWinCredit(ctx context.Context, tx pgx.Tx, params domain.WinCreditParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Coins); err != nil {
		return nil, err
	}

	// Lock
	wallet, err := e.LockWalletForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("win credit: %w", err)
	}

	// Idempotency check
	reference := WinReference(params.GameID)
	existing, err := e.FindExistingTransaction(ctx, tx, params.UserID, reference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &domain.CommandResult{Transaction: existing, Wallet: wallet, Idempotent: true}, nil
	}

	meta, _ := json.Marshal(domain.WinCreditMeta{
		GameID:    params.GameID.String(),
		GameTitle: params.GameTitle,
		Points:    params.Points,
	})

	entry, updatedWallet, err := e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{
		UserID:      params.UserID,
		Type:        domain.TxFantasyWin,
		Amount:      params.Coins,
		Reference:   reference,
		Description: fmt.Sprintf("Winnings for %s (%d points)", params.GameTitle, params.Points),
		Metadata:    meta,
	})
	if err != nil {
		return nil, fmt.Errorf("win credit post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Wallet: updatedWallet}, nil
}
