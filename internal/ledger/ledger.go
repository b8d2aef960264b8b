package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/naarimani/platform/internal/domain"
	"github.com/naarimani/platform/internal/repository"
)

// Engine provides the 3 foundational ledger operations:
//  1. LockWalletForUpdate — row-level pessimistic lock per user
//  2. FindExistingTransaction — idempotency check by reference
//  3. PostLedgerEntry — atomic balance update + append-only insert + outbox event
//
// Every coin movement in the system goes through a command built on these.
type Engine struct {
	wallets      repository.WalletRepository
	transactions repository.TransactionRepository
	outbox       repository.OutboxRepository
}

// NewEngine creates a ledger engine with the given repositories.
func NewEngine(
	wallets repository.WalletRepository,
	transactions repository.TransactionRepository,
	outbox repository.OutboxRepository,
) *Engine {
	return &Engine{
		wallets:      wallets,
		transactions: transactions,
		outbox:       outbox,
	}
}

// LockWalletForUpdate acquires a row-level lock and returns the wallet,
// creating it with a zero balance on first use. Must be called within a
// transaction; the lock serializes all concurrent debits for the user.
func (e *Engine) LockWalletForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := e.wallets.LockForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}
	if wallet == nil {
		return nil, domain.ErrNotFound("wallet", userID.String())
	}
	return wallet, nil
}

// FindExistingTransaction checks whether a ledger entry with the same
// reference already exists for the user. Returns nil if no duplicate found.
func (e *Engine) FindExistingTransaction(ctx context.Context, tx pgx.Tx, userID uuid.UUID, reference string) (*domain.CoinTransaction, error) {
	existing, err := e.transactions.FindByReference(ctx, tx, userID, reference)
	if err != nil {
		return nil, fmt.Errorf("find existing transaction: %w", err)
	}
	return existing, nil
}

// PostLedgerEntry atomically updates the wallet balance and inserts a ledger
// entry. All commands delegate to this.
//
// The caller must hold the wallet row lock and have verified a debit will not
// drive the balance negative; the wallets.balance CHECK constraint is the
// final backstop.
//
// Steps:
//  1. Update wallet balance using server-side arithmetic
//  2. Insert transaction with the post-update balance snapshot
//  3. Insert outbox event
//
// All 3 steps run within the caller's transaction.
func (e *Engine) PostLedgerEntry(ctx context.Context, tx pgx.Tx, params domain.PostLedgerEntryParams) (*domain.CoinTransaction, *domain.Wallet, error) {
	updatedWallet, err := e.wallets.ApplyDelta(ctx, tx, params.UserID, params.Amount)
	if err != nil {
		return nil, nil, fmt.Errorf("update balance: %w", err)
	}

	entry, err := e.transactions.Insert(ctx, tx, params, updatedWallet.Balance)
	if err != nil {
		return nil, nil, fmt.Errorf("insert transaction: %w", err)
	}

	event := domain.NewTransactionPostedEvent(entry)
	if err := e.outbox.Insert(ctx, tx, event); err != nil {
		return nil, nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return entry, updatedWallet, nil
}

// Reference builders. A reference is the deterministic idempotency key for a
// ledger entry: at most one entry per (user, reference) can ever exist.

// EntryFeeReference keys the once-per-game entry debit.
func EntryFeeReference(gameID uuid.UUID) string {
	return fmt.Sprintf("fantasy-entry:%s", gameID)
}

// WinReference keys the once-per-game win credit.
func WinReference(gameID uuid.UUID) string {
	return fmt.Sprintf("fantasy-win:%s", gameID)
}

// QuizReference keys the one-shot quiz completion reward.
func QuizReference(quizID string) string {
	return fmt.Sprintf("quiz:%s", quizID)
}

// DailyLoginReference keys the once-per-calendar-day login bonus.
func DailyLoginReference(day string) string {
	return fmt.Sprintf("daily-login:%s", day)
}

// ReferralReference keys the once-per-referred-user bonus.
func ReferralReference(referredUserID uuid.UUID) string {
	return fmt.Sprintf("referral:%s", referredUserID)
}

// RedemptionReference keys the redemption debit.
func RedemptionReference(redemptionID uuid.UUID) string {
	return fmt.Sprintf("redeem:%s", redemptionID)
}

// RefundReference keys the refund credit for a rejected redemption.
func RefundReference(redemptionID uuid.UUID) string {
	return fmt.Sprintf("refund:%s", redemptionID)
}
