package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/naarimani/platform/internal/domain"
)

// ExecuteEntryFee debits the once-per-game entry fee.
// Pattern: Lock → Idempotency → PostLedgerEntry.
//
// The reference is derived from the game alone, so any number of concurrent
// or repeated submissions by the same user produce exactly one debit: the
// first posts, the rest return the existing entry with Idempotent=true.
// A zero-cost game still posts a zero-amount entry as the entry marker.
func (e *Engine) ExecuteEntryFee(ctx context.Context, tx pgx.Tx, params domain.EntryFeeParams) (*domain.CommandResult, error) {
	if params.EntryCoins < 0 {
		return nil, domain.ErrValidation("entry cost must not be negative")
	}

	// Lock
	wallet, err := e.LockWalletForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("entry fee: %w", err)
	}

	// Idempotency check
	reference := EntryFeeReference(params.GameID)
	existing, err := e.FindExistingTransaction(ctx, tx, params.UserID, reference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &domain.CommandResult{Transaction: existing, Wallet: wallet, Idempotent: true}, nil
	}

	if wallet.Balance < params.EntryCoins {
		return nil, domain.ErrInsufficientBalance()
	}

	meta, _ := json.Marshal(domain.EntryFeeMeta{
		GameID:    params.GameID.String(),
		GameTitle: params.GameTitle,
	})

	entry, updatedWallet, err := e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{
		UserID:      params.UserID,
		Type:        domain.TxFantasyEntry,
		Amount:      -params.EntryCoins,
		Reference:   reference,
		Description: fmt.Sprintf("Entry fee for %s", params.GameTitle),
		Metadata:    meta,
	})
	if err != nil {
		return nil, fmt.Errorf("entry fee post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Wallet: updatedWallet}, nil
}
