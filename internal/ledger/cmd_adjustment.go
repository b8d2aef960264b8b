package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/naarimani/platform/internal/domain"
)

// ExecuteAdminAdjustment posts a signed manual correction. No idempotency
// reference: each adjustment is a distinct audited event. A negative
// adjustment still may not drive the balance below zero.
func (e *Engine) ExecuteAdminAdjustment(ctx context.Context, tx pgx.Tx, params domain.AdminAdjustmentParams) (*domain.CommandResult, error) {
	if params.Amount == 0 {
		return nil, domain.ErrValidation("adjustment amount must not be zero")
	}
	if params.Note == "" {
		return nil, domain.ErrValidation("adjustment note is required")
	}

	// Lock
	wallet, err := e.LockWalletForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("admin adjustment: %w", err)
	}

	if params.Amount < 0 && wallet.Balance+params.Amount < 0 {
		return nil, domain.ErrInsufficientBalance()
	}

	meta, _ := json.Marshal(domain.AdjustmentMeta{
		Note:       params.Note,
		AdjustedBy: params.AdjustedBy,
	})

	entry, updatedWallet, err := e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{
		UserID:      params.UserID,
		Type:        domain.TxAdminAdjustment,
		Amount:      params.Amount,
		Description: params.Note,
		Metadata:    meta,
	})
	if err != nil {
		return nil, fmt.Errorf("admin adjustment post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Wallet: updatedWallet}, nil
}

func ensureJSON(data json.RawMessage) json.RawMessage {
	if data == nil {
		return json.RawMessage(`{}`)
	}
	return data
}
