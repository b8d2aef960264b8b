package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/naarimani/platform/internal/domain"
	"github.com/naarimani/platform/internal/ledger"
	"github.com/naarimani/platform/internal/repository"
)

// RedemptionService converts ledger balance into claims against the reward
// catalog and runs the approval workflow.
type RedemptionService struct {
	pool        *pgxpool.Pool
	redemptions repository.RedemptionRepository
	outbox      repository.OutboxRepository
	ledger      *ledger.Engine
	logger      *slog.Logger

	// RefundOnReject controls whether rejecting a pending redemption posts a
	// refund for the debited coins.
	RefundOnReject bool
}

// NewRedemptionService creates a RedemptionService.
func NewRedemptionService(
	pool *pgxpool.Pool,
	redemptions repository.RedemptionRepository,
	outbox repository.OutboxRepository,
	ledgerEngine *ledger.Engine,
	refundOnReject bool,
	logger *slog.Logger,
) *RedemptionService {
	return &RedemptionService{
		pool:           pool,
		redemptions:    redemptions,
		outbox:         outbox,
		ledger:         ledgerEngine,
		RefundOnReject: refundOnReject,
		logger:         logger,
	}
}

// RedeemItem exchanges coins for a catalog item. The item lock, stock gate,
// coin debit, stock decrement and pending redemption are one atomic unit: a
// failure at any step leaves no trace.
func (s *RedemptionService) RedeemItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.UserRedemption, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	item, err := s.redemptions.LockItemForUpdate(ctx, tx, itemID)
	if err != nil {
		return nil, domain.ErrInternal("lock item", err)
	}
	if item == nil {
		return nil, domain.ErrNotFound("item", itemID.String())
	}
	if !item.IsActive {
		return nil, domain.ErrItemInactive(item.Name)
	}
	if item.Stock != nil && *item.Stock <= 0 {
		return nil, domain.ErrOutOfStock(item.Name)
	}

	redemptionID := uuid.New()
	if _, err := s.ledger.ExecuteRedemptionDebit(ctx, tx, domain.RedemptionDebitParams{
		UserID:       userID,
		RedemptionID: redemptionID,
		ItemID:       itemID,
		ItemName:     item.Name,
		CoinCost:     item.CoinCost,
	}); err != nil {
		return nil, err
	}

	if item.Stock != nil {
		decremented, err := s.redemptions.DecrementStock(ctx, tx, itemID)
		if err != nil {
			return nil, domain.ErrInternal("decrement stock", err)
		}
		if !decremented {
			return nil, domain.ErrOutOfStock(item.Name)
		}
	}

	redemption := &domain.UserRedemption{
		ID:       redemptionID,
		UserID:   userID,
		ItemID:   itemID,
		ItemName: item.Name,
		CoinCost: item.CoinCost,
		Status:   domain.RedemptionPending,
	}
	if err := s.redemptions.CreateRedemption(ctx, tx, redemption); err != nil {
		return nil, domain.ErrInternal("create redemption", err)
	}

	event := domain.NewRedemptionEvent(domain.EventRedemptionRequested, redemption)
	if err := s.outbox.Insert(ctx, tx, event); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit", err)
	}

	s.logger.Info("item redeemed",
		"user_id", userID,
		"item_id", itemID,
		"redemption_id", redemptionID,
		"coin_cost", item.CoinCost,
	)

	stored, err := s.redemptions.FindRedemption(ctx, s.pool, redemptionID)
	if err != nil {
		return redemption, nil
	}
	return stored, nil
}

// UpdateStatusInput carries an admin status transition.
type UpdateStatusInput struct {
	RedemptionID uuid.UUID
	NewStatus    domain.RedemptionStatus
	VoucherCode  *string
	Notes        string
	UpdatedBy    string
}

// UpdateRedemptionStatus applies one workflow transition
// (pending → approved/rejected, approved → fulfilled). Any other move fails
// with InvalidTransition. Rejection refunds the debit when RefundOnReject is
// set; the refund is keyed to the redemption so a retried rejection cannot
// refund twice.
func (s *RedemptionService) UpdateRedemptionStatus(ctx context.Context, input UpdateStatusInput) (*domain.UserRedemption, error) {
	switch input.NewStatus {
	case domain.RedemptionApproved, domain.RedemptionRejected, domain.RedemptionFulfilled:
	default:
		return nil, domain.ErrValidation(fmt.Sprintf("unknown redemption status %q", input.NewStatus))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	redemption, err := s.redemptions.LockRedemptionForUpdate(ctx, tx, input.RedemptionID)
	if err != nil {
		return nil, domain.ErrInternal("lock redemption", err)
	}
	if redemption == nil {
		return nil, domain.ErrNotFound("redemption", input.RedemptionID.String())
	}

	if !domain.CanTransition(redemption.Status, input.NewStatus) {
		return nil, domain.ErrInvalidTransition(redemption.Status, input.NewStatus)
	}

	updated, err := s.redemptions.UpdateStatus(ctx, tx, input.RedemptionID, input.NewStatus, input.VoucherCode, input.Notes)
	if err != nil {
		return nil, domain.ErrInternal("update redemption status", err)
	}

	if input.NewStatus == domain.RedemptionRejected && s.RefundOnReject {
		meta, _ := json.Marshal(domain.RedemptionMeta{
			RedemptionID: redemption.ID.String(),
			ItemID:       redemption.ItemID.String(),
			ItemName:     redemption.ItemName,
		})
		if _, err := s.ledger.ExecuteRefund(ctx, tx, domain.RefundParams{
			UserID:      redemption.UserID,
			Amount:      redemption.CoinCost,
			Reference:   ledger.RefundReference(redemption.ID),
			Description: fmt.Sprintf("Refund for rejected redemption of %s", redemption.ItemName),
			Metadata:    meta,
		}); err != nil {
			return nil, err
		}
	}

	event := domain.NewRedemptionEvent(domain.EventRedemptionStatusChanged, updated)
	if err := s.outbox.Insert(ctx, tx, event); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit", err)
	}

	s.logger.Info("redemption status updated",
		"redemption_id", input.RedemptionID,
		"status", input.NewStatus,
		"updated_by", input.UpdatedBy,
	)
	return updated, nil
}

// ListCatalog returns active catalog items.
func (s *RedemptionService) ListCatalog(ctx context.Context) ([]domain.RedeemableItem, error) {
	items, err := s.redemptions.ListItems(ctx, s.pool, true)
	if err != nil {
		return nil, domain.ErrInternal("list items", err)
	}
	return items, nil
}

// MyRedemptions returns the user's redemption history.
func (s *RedemptionService) MyRedemptions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.UserRedemption, error) {
	reds, err := s.redemptions.ListByUser(ctx, s.pool, userID, limit)
	if err != nil {
		return nil, domain.ErrInternal("list redemptions", err)
	}
	return reds, nil
}
