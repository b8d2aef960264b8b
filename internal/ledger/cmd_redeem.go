package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/naarimani/platform/internal/domain"
)

// ExecuteRedemptionDebit debits the coin cost of a catalog item at redemption
// time. Fails with InsufficientBalance before any write when the wallet
// cannot cover the cost.
func (e *Engine) ExecuteRedemptionDebit(ctx context.Context, tx pgx.Tx, params domain.RedemptionDebitParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.CoinCost); err != nil {
		return nil, err
	}

	// Lock
	wallet, err := e.LockWalletForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("redemption debit: %w", err)
	}

	// Idempotency check
	reference := RedemptionReference(params.RedemptionID)
	existing, err := e.FindExistingTransaction(ctx, tx, params.UserID, reference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &domain.CommandResult{Transaction: existing, Wallet: wallet, Idempotent: true}, nil
	}

	if wallet.Balance < params.CoinCost {
		return nil, domain.ErrInsufficientBalance()
	}

	meta, _ := json.Marshal(domain.RedemptionMeta{
		RedemptionID: params.RedemptionID.String(),
		ItemID:       params.ItemID.String(),
		ItemName:     params.ItemName,
	})

	entry, updatedWallet, err := e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{
		UserID:      params.UserID,
		Type:        domain.TxRedemption,
		Amount:      -params.CoinCost,
		Reference:   reference,
		Description: fmt.Sprintf("Redeemed %s", params.ItemName),
		Metadata:    meta,
	})
	if err != nil {
		return nil, fmt.Errorf("redemption debit post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Wallet: updatedWallet}, nil
}
