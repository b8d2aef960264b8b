//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/naarimani/platform/internal/auth"
	"github.com/naarimani/platform/internal/domain"
)

// UserToken mints a user-realm JWT for the given user ID.
func (env *TestEnv) UserToken(userID uuid.UUID) string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateToken(auth.RealmUser, userID, "")
	if err != nil {
		env.t.Fatalf("UserToken: %v", err)
	}
	return token
}

// AdminToken mints an admin-realm JWT with the given role.
func (env *TestEnv) AdminToken(role string) string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateToken(auth.RealmAdmin, uuid.New(), role)
	if err != nil {
		env.t.Fatalf("AdminToken: %v", err)
	}
	return token
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.request("POST", path, body, token)
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	return env.request("GET", path, nil, token)
}

// AuthPATCH performs an authenticated PATCH request.
func (env *TestEnv) AuthPATCH(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.request("PATCH", path, body, token)
}

func (env *TestEnv) request(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// GrantCoins credits a user's wallet directly, bypassing the API. Used to
// seed balances for entry and redemption tests.
func (env *TestEnv) GrantCoins(userID uuid.UUID, amount int64) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := env.Pool.Begin(ctx)
	if err != nil {
		env.t.Fatalf("GrantCoins: begin tx: %v", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		"INSERT INTO wallets (user_id, balance) VALUES ($1, 0) ON CONFLICT (user_id) DO NOTHING", userID)
	if err != nil {
		env.t.Fatalf("GrantCoins: ensure wallet: %v", err)
	}

	var balanceAfter int64
	err = tx.QueryRow(ctx,
		"UPDATE wallets SET balance = balance + $2, updated_at = now() WHERE user_id = $1 RETURNING balance",
		userID, amount).Scan(&balanceAfter)
	if err != nil {
		env.t.Fatalf("GrantCoins: update balance: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO coin_transactions (user_id, type, amount, balance_after, description)
		VALUES ($1, 'admin-adjustment', $2, $3, 'test seed')`,
		userID, amount, balanceAfter)
	if err != nil {
		env.t.Fatalf("GrantCoins: insert transaction: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		env.t.Fatalf("GrantCoins: commit: %v", err)
	}
}

// CreateGame creates an active game through the admin API and returns its ID.
func (env *TestEnv) CreateGame(adminToken string, entryCoins int64) uuid.UUID {
	env.t.Helper()
	resp := env.POST("/admin/games", map[string]interface{}{
		"title":       "CSK vs MI Match Predictions",
		"description": "Predict the big moments",
		"category":    "cricket",
		"game_type":   "match",
		"entry_coins": entryCoins,
		"start_time":  time.Now().Add(-time.Hour),
		"end_time":    time.Now().Add(time.Hour),
		"activate":    true,
	}, adminToken)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("CreateGame: expected 201, got %d", resp.StatusCode)
	}

	var game domain.Game
	if err := json.NewDecoder(resp.Body).Decode(&game); err != nil {
		env.t.Fatalf("CreateGame: decode: %v", err)
	}
	return game.ID
}

// AddQuestion attaches a question through the admin API and returns its ID.
func (env *TestEnv) AddQuestion(adminToken string, gameID uuid.UUID, body map[string]interface{}) uuid.UUID {
	env.t.Helper()
	resp := env.POST("/admin/games/"+gameID.String()+"/questions", body, adminToken)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("AddQuestion: expected 201, got %d", resp.StatusCode)
	}

	var q domain.Question
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		env.t.Fatalf("AddQuestion: decode: %v", err)
	}
	return q.ID
}

// CreateItem creates a redeemable catalog item through the admin API.
func (env *TestEnv) CreateItem(adminToken string, coinCost int64, stock *int64) uuid.UUID {
	env.t.Helper()
	body := map[string]interface{}{
		"name":      "Saree Voucher",
		"coin_cost": coinCost,
		"is_active": true,
	}
	if stock != nil {
		body["stock"] = *stock
	}

	resp := env.POST("/admin/redemptions/items", body, adminToken)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("CreateItem: expected 201, got %d", resp.StatusCode)
	}

	var item domain.RedeemableItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		env.t.Fatalf("CreateItem: decode: %v", err)
	}
	return item.ID
}
