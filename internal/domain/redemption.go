package domain

import (
	"time"

	"github.com/google/uuid"
)

// RedemptionStatus enumerates the redemption approval workflow states.
type RedemptionStatus string

const (
	RedemptionPending   RedemptionStatus = "pending"
	RedemptionApproved  RedemptionStatus = "approved"
	RedemptionRejected  RedemptionStatus = "rejected"
	RedemptionFulfilled RedemptionStatus = "fulfilled"
)

// redemptionTransitions is the allowed state machine:
// pending → approved | rejected; approved → fulfilled.
// rejected and fulfilled are terminal.
var redemptionTransitions = map[RedemptionStatus][]RedemptionStatus{
	RedemptionPending:  {RedemptionApproved, RedemptionRejected},
	RedemptionApproved: {RedemptionFulfilled},
}

// CanTransition reports whether a redemption may move from one status to
// another.
func CanTransition(from, to RedemptionStatus) bool {
	for _, allowed := range redemptionTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// RedeemableItem is a catalog reward purchasable with coins. A nil Stock
// means unlimited; a tracked stock never goes negative.
type RedeemableItem struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CoinCost    int64     `json:"coin_cost"`
	Stock       *int64    `json:"stock,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserRedemption is one user's claim against a catalog item. The coin debit
// happens at redemption time; status transitions never move coins except the
// optional refund-on-reject.
type UserRedemption struct {
	ID          uuid.UUID        `json:"id"`
	UserID      uuid.UUID        `json:"user_id"`
	ItemID      uuid.UUID        `json:"item_id"`
	ItemName    string           `json:"item_name"`
	CoinCost    int64            `json:"coin_cost"`
	Status      RedemptionStatus `json:"status"`
	VoucherCode *string          `json:"voucher_code,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	RedeemedAt  time.Time        `json:"redeemed_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
