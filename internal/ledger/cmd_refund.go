package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/naarimani/platform/internal/domain"
)

// ExecuteRefund credits coins back to the user, reversing an earlier debit.
// The caller-supplied reference ties the refund to what it reverses, so a
// retried reversal can never refund twice.
func (e *Engine) ExecuteRefund(ctx context.Context, tx pgx.Tx, params domain.RefundParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}
	if params.Reference == "" {
		return nil, domain.ErrValidation("refund reference is required")
	}

	// Lock
	wallet, err := e.LockWalletForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("refund: %w", err)
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
		Type:        domain.TxRefund,
		Amount:      params.Amount,
		Reference:   params.Reference,
		Description: params.Description,
		Metadata:    ensureJSON(params.Metadata),
	})
	if err != nil {
		return nil, fmt.Errorf("refund post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Wallet: updatedWallet}, nil
}
