package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/naarimani/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// WalletRepository provides access to wallets.
type WalletRepository interface {
	// FindByUserID returns a wallet, or nil if the user has none yet.
	FindByUserID(ctx context.Context, db DBTX, userID uuid.UUID) (*domain.Wallet, error)

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE). The wallet
	// row is created with a zero balance on first use.
	LockForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error)

	// ApplyDelta atomically adjusts the cached balance using server-side
	// arithmetic and returns the updated wallet.
	ApplyDelta(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta int64) (*domain.Wallet, error)
}

// TransactionRepository provides access to the append-only coin_transactions
// ledger. Entries are never updated or deleted.
type TransactionRepository interface {
	// FindByReference checks the idempotency index for an existing entry.
	// Returns nil if no duplicate is found.
	FindByReference(ctx context.Context, db DBTX, userID uuid.UUID, reference string) (*domain.CoinTransaction, error)

	// Insert appends a ledger entry with the post-update balance snapshot.
	Insert(ctx context.Context, db DBTX, params domain.PostLedgerEntryParams, balanceAfter int64) (*domain.CoinTransaction, error)

	// FindByID returns a transaction by ID.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.CoinTransaction, error)

	// ListByUser returns transactions ordered by created_at DESC with
	// cursor-based pagination.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, cursor *string, limit int) ([]domain.CoinTransaction, error)

	// SumByUser returns the sum of all transaction amounts for a user.
	// Used by the balance audit endpoint and invariant tests.
	SumByUser(ctx context.Context, db DBTX, userID uuid.UUID) (int64, error)
}

// GameRepository provides access to games, questions and campaigns.
type GameRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Game, error)

	// LockForUpdate acquires a row-level lock on the game.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Game, error)

	// List returns games filtered by optional status and category.
	List(ctx context.Context, db DBTX, status string, category string, limit int) ([]domain.Game, error)

	Create(ctx context.Context, db DBTX, game *domain.Game) error

	// IncrementParticipants bumps total_participants by exactly 1.
	IncrementParticipants(ctx context.Context, tx pgx.Tx, id uuid.UUID) error

	UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.GameStatus) error

	// ListQuestions returns the game's questions in position order.
	ListQuestions(ctx context.Context, db DBTX, gameID uuid.UUID) ([]domain.Question, error)

	FindQuestion(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Question, error)

	CreateQuestion(ctx context.Context, db DBTX, q *domain.Question) error

	ListCampaigns(ctx context.Context, db DBTX, activeOnly bool) ([]domain.Campaign, error)

	CreateCampaign(ctx context.Context, db DBTX, c *domain.Campaign) error
}

// PredictionRepository provides access to predictions.
type PredictionRepository interface {
	// CountByUserAndGame returns how many predictions the user has already
	// placed for the game. Zero means the next submission is a first entry.
	CountByUserAndGame(ctx context.Context, db DBTX, userID, gameID uuid.UUID) (int, error)

	// Upsert creates the prediction or overwrites the stored value in place,
	// keyed on (user_id, game_id, question_id).
	Upsert(ctx context.Context, db DBTX, p *domain.Prediction) (*domain.Prediction, error)

	ListByGame(ctx context.Context, db DBTX, gameID uuid.UUID) ([]domain.Prediction, error)

	ListByUserAndGame(ctx context.Context, db DBTX, userID, gameID uuid.UUID) ([]domain.Prediction, error)

	// UpdateScore persists points_earned and is_correct, set only by the
	// scoring engine.
	UpdateScore(ctx context.Context, db DBTX, id uuid.UUID, points int64, isCorrect bool) error
}

// ResultRepository provides access to declared results.
type ResultRepository interface {
	// Insert writes one immutable result row. Declaring the same question
	// twice is a no-op that keeps the original value.
	Insert(ctx context.Context, db DBTX, r *domain.Result) error

	ListByGame(ctx context.Context, db DBTX, gameID uuid.UUID) ([]domain.Result, error)
}

// RedemptionRepository provides access to redeemable_items and
// user_redemptions.
type RedemptionRepository interface {
	FindItem(ctx context.Context, db DBTX, id uuid.UUID) (*domain.RedeemableItem, error)

	// LockItemForUpdate acquires a row-level lock on the item so stock checks
	// and decrements are serialized.
	LockItemForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.RedeemableItem, error)

	ListItems(ctx context.Context, db DBTX, activeOnly bool) ([]domain.RedeemableItem, error)

	CreateItem(ctx context.Context, db DBTX, item *domain.RedeemableItem) error

	// DecrementStock decrements tracked stock by 1. Returns false when the
	// stock guard (stock > 0) did not match.
	DecrementStock(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (bool, error)

	CreateRedemption(ctx context.Context, db DBTX, r *domain.UserRedemption) error

	FindRedemption(ctx context.Context, db DBTX, id uuid.UUID) (*domain.UserRedemption, error)

	// LockRedemptionForUpdate acquires a row-level lock for status
	// transitions.
	LockRedemptionForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.UserRedemption, error)

	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.RedemptionStatus, voucherCode *string, notes string) (*domain.UserRedemption, error)

	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.UserRedemption, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event within the same transaction as the
	// state change it describes.
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events for the outbox poller.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error)

	// MarkPublished stamps events as published.
	MarkPublished(ctx context.Context, db DBTX, eventIDs []uuid.UUID, at time.Time) error
}
