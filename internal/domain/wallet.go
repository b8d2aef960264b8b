package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionType enumerates all coin ledger transaction types.
type TransactionType string

const (
	TxFantasyEntry    TransactionType = "fantasy-entry"
	TxFantasyWin      TransactionType = "fantasy-win"
	TxQuizComplete    TransactionType = "quiz-complete"
	TxDailyLogin      TransactionType = "daily-login"
	TxReferral        TransactionType = "referral"
	TxRedemption      TransactionType = "redemption"
	TxRefund          TransactionType = "refund"
	TxAdminAdjustment TransactionType = "admin-adjustment"
)

// Wallet is the denormalized coin balance backed by the transaction log.
// The balance column always equals the sum of the user's transaction amounts.
type Wallet struct {
	UserID    uuid.UUID `json:"user_id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CoinTransaction is an append-only coin_transactions row. Amount is negative
// for debits, positive for credits; BalanceAfter snapshots the wallet balance
// after this entry was applied.
type CoinTransaction struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Type         TransactionType `json:"type"`
	Amount       int64           `json:"amount"`
	BalanceAfter int64           `json:"balance_after"`
	Reference    *string         `json:"reference,omitempty"`
	Description  string          `json:"description"`
	Metadata     json.RawMessage `json:"metadata"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PostLedgerEntryParams is the input to the atomic PostLedgerEntry operation.
type PostLedgerEntryParams struct {
	UserID      uuid.UUID
	Type        TransactionType
	Amount      int64
	Reference   string
	Description string
	Metadata    json.RawMessage
}

// CommandResult is the return value from all ledger commands.
type CommandResult struct {
	Transaction *CoinTransaction
	Wallet      *Wallet
	Idempotent  bool // true if this was a duplicate that returned the existing tx
}

// EntryFeeParams holds the input for ExecuteEntryFee.
type EntryFeeParams struct {
	UserID     uuid.UUID
	GameID     uuid.UUID
	EntryCoins int64
	GameTitle  string
}

// WinCreditParams holds the input for ExecuteWinCredit.
type WinCreditParams struct {
	UserID    uuid.UUID
	GameID    uuid.UUID
	Coins     int64
	Points    int64
	GameTitle string
}

// RewardCreditParams holds the input for ExecuteRewardCredit
// (quiz-complete, daily-login and referral credits share this shape).
type RewardCreditParams struct {
	UserID      uuid.UUID
	Type        TransactionType
	Coins       int64
	Reference   string
	Description string
	Metadata    json.RawMessage
}

// RedemptionDebitParams holds the input for ExecuteRedemptionDebit.
type RedemptionDebitParams struct {
	UserID       uuid.UUID
	RedemptionID uuid.UUID
	ItemID       uuid.UUID
	ItemName     string
	CoinCost     int64
}

// RefundParams holds the input for ExecuteRefund.
type RefundParams struct {
	UserID      uuid.UUID
	Amount      int64
	Reference   string
	Description string
	Metadata    json.RawMessage
}

// AdminAdjustmentParams holds the input for ExecuteAdminAdjustment.
// Amount may be negative; a debit still may not drive the balance below zero.
type AdminAdjustmentParams struct {
	UserID     uuid.UUID
	Amount     int64
	Note       string
	AdjustedBy string
}

// EntryFeeMeta is the closed metadata shape for fantasy-entry transactions.
type EntryFeeMeta struct {
	GameID    string `json:"gameId"`
	GameTitle string `json:"gameTitle"`
}

// WinCreditMeta is the closed metadata shape for fantasy-win transactions.
type WinCreditMeta struct {
	GameID    string `json:"gameId"`
	GameTitle string `json:"gameTitle"`
	Points    int64  `json:"points"`
}

// RedemptionMeta is the closed metadata shape for redemption and refund
// transactions.
type RedemptionMeta struct {
	RedemptionID string `json:"redemptionId"`
	ItemID       string `json:"itemId"`
	ItemName     string `json:"itemName"`
}

// AdjustmentMeta is the closed metadata shape for admin-adjustment
// transactions.
type AdjustmentMeta struct {
	Note       string `json:"note"`
	AdjustedBy string `json:"adjustedBy"`
}
