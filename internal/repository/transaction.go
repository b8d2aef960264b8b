package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/naarimani/platform/internal/domain"
)

type transactionRepo struct{}

// NewTransactionRepository returns a pgx-backed TransactionRepository.
func NewTransactionRepository() TransactionRepository {
	return &transactionRepo{}
}

const transactionColumns = `id, user_id, type, amount, balance_after, reference, description, metadata, created_at`

func (r *transactionRepo) FindByReference(ctx context.Context, db DBTX, userID uuid.UUID, reference string) (*domain.CoinTransaction, error) {
	row := db.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM coin_transactions
		WHERE user_id = $1 AND reference = $2`, userID, reference)
	return scanTransaction(row)
}

func (r *transactionRepo) Insert(ctx context.Context, db DBTX, params domain.PostLedgerEntryParams, balanceAfter int64) (*domain.CoinTransaction, error) {
	meta := params.Metadata
	if meta == nil {
		meta = json.RawMessage(`{}`)
	}

	row := db.QueryRow(ctx, `
		INSERT INTO coin_transactions
		  (user_id, type, amount, balance_after, reference, description, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+transactionColumns,
		params.UserID,
		string(params.Type),
		Int64ToNumeric(params.Amount),
		Int64ToNumeric(balanceAfter),
		strPtr(params.Reference),
		params.Description,
		meta,
	)
	return scanTransaction(row)
}

func (r *transactionRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.CoinTransaction, error) {
	row := db.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM coin_transactions WHERE id = $1`, id)
	return scanTransaction(row)
}

func (r *transactionRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, cursor *string, limit int) ([]domain.CoinTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var rows pgx.Rows
	var err error
	if cursor != nil {
		rows, err = db.Query(ctx, `
			SELECT `+transactionColumns+`
			FROM coin_transactions
			WHERE user_id = $1
			  AND (created_at, id) < ((SELECT created_at, id FROM coin_transactions WHERE id = $2))
			ORDER BY created_at DESC, id DESC
			LIMIT $3`, userID, *cursor, limit)
	} else {
		rows, err = db.Query(ctx, `
			SELECT `+transactionColumns+`
			FROM coin_transactions
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2`, userID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.CoinTransaction
	for rows.Next() {
		tx, err := scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

func (r *transactionRepo) SumByUser(ctx context.Context, db DBTX, userID uuid.UUID) (int64, error) {
	var sumNum pgtype.Numeric
	err := db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM coin_transactions WHERE user_id = $1`, userID).Scan(&sumNum)
	if err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return NumericToInt64(sumNum)
}

func scanTransaction(row pgx.Row) (*domain.CoinTransaction, error) {
	tx, err := scanTransactionRow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return tx, nil
}

func scanTransactionRow(row pgx.Row) (*domain.CoinTransaction, error) {
	var tx domain.CoinTransaction
	var amountNum, balNum pgtype.Numeric
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.Type,
		&amountNum, &balNum,
		&tx.Reference, &tx.Description, &tx.Metadata, &tx.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	tx.Amount, err = NumericToInt64(amountNum)
	if err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}
	tx.BalanceAfter, err = NumericToInt64(balNum)
	if err != nil {
		return nil, fmt.Errorf("convert balance_after: %w", err)
	}
	return &tx, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
