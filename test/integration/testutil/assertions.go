//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body contains the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
}

// AssertBalance asserts the user's cached wallet balance.
func AssertBalance(t *testing.T, env *TestEnv, userID uuid.UUID, expected int64) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var balance int64
	err := env.Pool.QueryRow(ctx,
		"SELECT balance FROM wallets WHERE user_id = $1", userID).Scan(&balance)
	if err != nil {
		t.Fatalf("AssertBalance: query: %v", err)
	}
	if balance != expected {
		t.Errorf("balance: expected %d, got %d", expected, balance)
	}
}

// AssertLedgerConsistent recomputes a user's balance from the transaction log
// and asserts it matches the cached wallet balance.
func AssertLedgerConsistent(t *testing.T, env *TestEnv, userID uuid.UUID) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cached, sum int64
	err := env.Pool.QueryRow(ctx,
		"SELECT balance FROM wallets WHERE user_id = $1", userID).Scan(&cached)
	if err != nil {
		t.Fatalf("AssertLedgerConsistent: wallet: %v", err)
	}
	err = env.Pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM coin_transactions WHERE user_id = $1", userID).Scan(&sum)
	if err != nil {
		t.Fatalf("AssertLedgerConsistent: sum: %v", err)
	}
	if cached != sum {
		t.Errorf("ledger drift: cached balance %d, transaction sum %d", cached, sum)
	}
}

// CountTransactions returns the number of ledger entries for a user,
// optionally filtered by type.
func CountTransactions(t *testing.T, env *TestEnv, userID uuid.UUID, txType string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	var err error
	if txType == "" {
		err = env.Pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM coin_transactions WHERE user_id = $1", userID).Scan(&count)
	} else {
		err = env.Pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM coin_transactions WHERE user_id = $1 AND type = $2", userID, txType).Scan(&count)
	}
	if err != nil {
		t.Fatalf("CountTransactions: %v", err)
	}
	return count
}

// CountOutboxEvents returns the number of outbox rows of the given event type.
func CountOutboxEvents(t *testing.T, env *TestEnv, eventType string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM event_outbox WHERE event_type = $1", eventType).Scan(&count)
	if err != nil {
		t.Fatalf("CountOutboxEvents: %v", err)
	}
	return count
}
