package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/naarimani/platform/internal/domain"
)

type redemptionRepo struct{}

// NewRedemptionRepository returns a pgx-backed RedemptionRepository.
func NewRedemptionRepository() RedemptionRepository {
	return &redemptionRepo{}
}

const itemColumns = `id, name, description, coin_cost, stock, is_active, created_at, updated_at`

func (r *redemptionRepo) FindItem(ctx context.Context, db DBTX, id uuid.UUID) (*domain.RedeemableItem, error) {
	row := db.QueryRow(ctx, `SELECT `+itemColumns+` FROM redeemable_items WHERE id = $1`, id)
	return scanItem(row)
}

func (r *redemptionRepo) LockItemForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.RedeemableItem, error) {
	row := tx.QueryRow(ctx, `SELECT `+itemColumns+` FROM redeemable_items WHERE id = $1 FOR UPDATE`, id)
	return scanItem(row)
}

func (r *redemptionRepo) ListItems(ctx context.Context, db DBTX, activeOnly bool) ([]domain.RedeemableItem, error) {
	query := `SELECT ` + itemColumns + ` FROM redeemable_items`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY coin_cost ASC`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []domain.RedeemableItem
	for rows.Next() {
		item, err := scanItemRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *redemptionRepo) CreateItem(ctx context.Context, db DBTX, item *domain.RedeemableItem) error {
	var stock interface{}
	if item.Stock != nil {
		stock = *item.Stock
	}
	_, err := db.Exec(ctx, `
		INSERT INTO redeemable_items (id, name, description, coin_cost, stock, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.Name, item.Description, Int64ToNumeric(item.CoinCost), stock, item.IsActive,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// DecrementStock is guarded by stock > 0 so a tracked stock can never go
// negative even without the row lock.
func (r *redemptionRepo) DecrementStock(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE redeemable_items
		SET stock = stock - 1, updated_at = now()
		WHERE id = $1 AND stock IS NOT NULL AND stock > 0`, itemID)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

const redemptionColumns = `id, user_id, item_id, item_name, coin_cost, status, voucher_code, notes, redeemed_at, updated_at`

func (r *redemptionRepo) CreateRedemption(ctx context.Context, db DBTX, red *domain.UserRedemption) error {
	_, err := db.Exec(ctx, `
		INSERT INTO user_redemptions
		  (id, user_id, item_id, item_name, coin_cost, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		red.ID, red.UserID, red.ItemID, red.ItemName,
		Int64ToNumeric(red.CoinCost), string(red.Status), red.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert redemption: %w", err)
	}
	return nil
}

func (r *redemptionRepo) FindRedemption(ctx context.Context, db DBTX, id uuid.UUID) (*domain.UserRedemption, error) {
	row := db.QueryRow(ctx, `SELECT `+redemptionColumns+` FROM user_redemptions WHERE id = $1`, id)
	return scanRedemption(row)
}

func (r *redemptionRepo) LockRedemptionForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.UserRedemption, error) {
	row := tx.QueryRow(ctx, `SELECT `+redemptionColumns+` FROM user_redemptions WHERE id = $1 FOR UPDATE`, id)
	return scanRedemption(row)
}

func (r *redemptionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.RedemptionStatus, voucherCode *string, notes string) (*domain.UserRedemption, error) {
	row := tx.QueryRow(ctx, `
		UPDATE user_redemptions
		SET status = $1,
		    voucher_code = COALESCE($2, voucher_code),
		    notes = CASE WHEN $3 = '' THEN notes ELSE $3 END,
		    updated_at = now()
		WHERE id = $4
		RETURNING `+redemptionColumns,
		string(status), voucherCode, notes, id)
	return scanRedemption(row)
}

func (r *redemptionRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.UserRedemption, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := db.Query(ctx, `
		SELECT `+redemptionColumns+`
		FROM user_redemptions
		WHERE user_id = $1
		ORDER BY redeemed_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query redemptions: %w", err)
	}
	defer rows.Close()

	var reds []domain.UserRedemption
	for rows.Next() {
		red, err := scanRedemptionRow(rows)
		if err != nil {
			return nil, err
		}
		reds = append(reds, *red)
	}
	return reds, rows.Err()
}

func scanItem(row pgx.Row) (*domain.RedeemableItem, error) {
	item, err := scanItemRow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

func scanItemRow(row pgx.Row) (*domain.RedeemableItem, error) {
	var item domain.RedeemableItem
	var costNum pgtype.Numeric
	err := row.Scan(
		&item.ID, &item.Name, &item.Description, &costNum,
		&item.Stock, &item.IsActive, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}
	item.CoinCost, err = NumericToInt64(costNum)
	if err != nil {
		return nil, fmt.Errorf("convert coin_cost: %w", err)
	}
	return &item, nil
}

func scanRedemption(row pgx.Row) (*domain.UserRedemption, error) {
	red, err := scanRedemptionRow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return red, nil
}

func scanRedemptionRow(row pgx.Row) (*domain.UserRedemption, error) {
	var red domain.UserRedemption
	var status string
	var costNum pgtype.Numeric
	err := row.Scan(
		&red.ID, &red.UserID, &red.ItemID, &red.ItemName, &costNum,
		&status, &red.VoucherCode, &red.Notes, &red.RedeemedAt, &red.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan redemption: %w", err)
	}
	red.Status = domain.RedemptionStatus(status)
	red.CoinCost, err = NumericToInt64(costNum)
	if err != nil {
		return nil, fmt.Errorf("convert coin_cost: %w", err)
	}
	return &red, nil
}
