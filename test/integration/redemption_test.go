//go:build integration

package integration

import (
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/naarimani/platform/test/integration/testutil"
)

func int64Ptr(n int64) *int64 { return &n }

func TestRedeemItem_DebitsAndCreatesPending(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	itemID := env.CreateItem(admin, 100, int64Ptr(5))

	userID := uuid.New()
	token := env.UserToken(userID)
	env.GrantCoins(userID, 250)

	resp := env.POST("/redemptions/items/"+itemID.String(), nil, token)
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var redemption struct {
		ID     uuid.UUID `json:"id"`
		Status string    `json:"status"`
	}
	testutil.DecodeJSON(t, resp, &redemption)
	assert.Equal(t, "pending", redemption.Status)

	testutil.AssertBalance(t, env, userID, 150)
	testutil.AssertLedgerConsistent(t, env, userID)
}

func TestRedeemItem_InsufficientBalance(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	itemID := env.CreateItem(admin, 100, nil)

	userID := uuid.New()
	token := env.UserToken(userID)
	env.GrantCoins(userID, 50)

	resp := env.POST("/redemptions/items/"+itemID.String(), nil, token)

	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "INSUFFICIENT_BALANCE")

	// Stock untouched, no redemption created
	testutil.AssertBalance(t, env, userID, 50)
	assert.Equal(t, 0, testutil.CountTransactions(t, env, userID, "redemption"))
}

func TestRedeemItem_OutOfStock(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	itemID := env.CreateItem(admin, 10, int64Ptr(1))

	first := uuid.New()
	second := uuid.New()
	env.GrantCoins(first, 100)
	env.GrantCoins(second, 100)

	resp := env.POST("/redemptions/items/"+itemID.String(), nil, env.UserToken(first))
	testutil.AssertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp = env.POST("/redemptions/items/"+itemID.String(), nil, env.UserToken(second))
	testutil.AssertStatus(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, "OUT_OF_STOCK")

	// The failed attempt left the second user's coins alone
	testutil.AssertBalance(t, env, second, 100)
}

func TestRedeemItem_ConcurrentStockNeverNegative(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	itemID := env.CreateItem(admin, 10, int64Ptr(3))

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		userID := uuid.New()
		env.GrantCoins(userID, 100)
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			resp := env.POST("/redemptions/items/"+itemID.String(), nil, token)
			resp.Body.Close()
		}(env.UserToken(userID))
	}
	wg.Wait()

	var stock int64
	err := env.Pool.QueryRow(t.Context(),
		"SELECT stock FROM redeemable_items WHERE id = $1", itemID).Scan(&stock)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), stock)

	var redemptions int
	err = env.Pool.QueryRow(t.Context(),
		"SELECT COUNT(*) FROM user_redemptions WHERE item_id = $1", itemID).Scan(&redemptions)
	assert.NoError(t, err)
	assert.Equal(t, 3, redemptions)
}

func TestRedemption_RejectRefundsOnce(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	itemID := env.CreateItem(admin, 100, nil)

	userID := uuid.New()
	token := env.UserToken(userID)
	env.GrantCoins(userID, 100)

	resp := env.POST("/redemptions/items/"+itemID.String(), nil, token)
	var redemption struct {
		ID uuid.UUID `json:"id"`
	}
	testutil.DecodeJSON(t, resp, &redemption)
	testutil.AssertBalance(t, env, userID, 0)

	resp = env.AuthPATCH("/admin/redemptions/"+redemption.ID.String()+"/status",
		map[string]string{"status": "rejected", "notes": "address missing"}, admin)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	testutil.AssertBalance(t, env, userID, 100)
	assert.Equal(t, 1, testutil.CountTransactions(t, env, userID, "refund"))
	testutil.AssertLedgerConsistent(t, env, userID)

	// A rejected redemption is terminal; no transition can refund again
	resp = env.AuthPATCH("/admin/redemptions/"+redemption.ID.String()+"/status",
		map[string]string{"status": "rejected"}, admin)
	testutil.AssertStatus(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, "INVALID_TRANSITION")

	testutil.AssertBalance(t, env, userID, 100)
	assert.Equal(t, 1, testutil.CountTransactions(t, env, userID, "refund"))
}

func TestRedemption_ApproveThenFulfill(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	itemID := env.CreateItem(admin, 50, nil)

	userID := uuid.New()
	env.GrantCoins(userID, 50)

	resp := env.POST("/redemptions/items/"+itemID.String(), nil, env.UserToken(userID))
	var redemption struct {
		ID uuid.UUID `json:"id"`
	}
	testutil.DecodeJSON(t, resp, &redemption)

	resp = env.AuthPATCH("/admin/redemptions/"+redemption.ID.String()+"/status",
		map[string]interface{}{"status": "approved", "voucher_code": "SAREE-2026"}, admin)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var updated struct {
		Status      string  `json:"status"`
		VoucherCode *string `json:"voucher_code"`
	}
	testutil.DecodeJSON(t, resp, &updated)
	assert.Equal(t, "approved", updated.Status)
	assert.NotNil(t, updated.VoucherCode)

	resp = env.AuthPATCH("/admin/redemptions/"+redemption.ID.String()+"/status",
		map[string]string{"status": "fulfilled"}, admin)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	// Approval and fulfillment moved no coins
	testutil.AssertBalance(t, env, userID, 0)
	assert.Equal(t, 1, testutil.CountTransactions(t, env, userID, "redemption"))
	assert.Equal(t, 0, testutil.CountTransactions(t, env, userID, "refund"))
}

func TestRedemption_PendingToFulfilledRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	itemID := env.CreateItem(admin, 50, nil)

	userID := uuid.New()
	env.GrantCoins(userID, 50)

	resp := env.POST("/redemptions/items/"+itemID.String(), nil, env.UserToken(userID))
	var redemption struct {
		ID uuid.UUID `json:"id"`
	}
	testutil.DecodeJSON(t, resp, &redemption)

	resp = env.AuthPATCH("/admin/redemptions/"+redemption.ID.String()+"/status",
		map[string]string{"status": "fulfilled"}, admin)

	testutil.AssertStatus(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, "INVALID_TRANSITION")
}

func TestRedeemItem_InactiveItem(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	itemID := env.CreateItem(admin, 50, nil)

	_, err := env.Pool.Exec(t.Context(),
		"UPDATE redeemable_items SET is_active = false WHERE id = $1", itemID)
	assert.NoError(t, err)

	userID := uuid.New()
	env.GrantCoins(userID, 100)

	resp := env.POST("/redemptions/items/"+itemID.String(), nil, env.UserToken(userID))
	testutil.AssertStatus(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, "ITEM_INACTIVE")

	testutil.AssertBalance(t, env, userID, 100)
}

func TestMyRedemptions_ListsOwnOnly(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	itemID := env.CreateItem(admin, 10, nil)

	mine := uuid.New()
	other := uuid.New()
	env.GrantCoins(mine, 20)
	env.GrantCoins(other, 20)

	for _, token := range []string{env.UserToken(mine), env.UserToken(mine), env.UserToken(other)} {
		resp := env.POST("/redemptions/items/"+itemID.String(), nil, token)
		testutil.AssertStatus(t, resp, http.StatusCreated)
		resp.Body.Close()
	}

	var redemptions []struct {
		UserID   uuid.UUID `json:"user_id"`
		ItemName string    `json:"item_name"`
	}
	testutil.DecodeJSON(t, env.AuthGET("/redemptions/me", env.UserToken(mine)), &redemptions)

	assert.Len(t, redemptions, 2)
	for _, r := range redemptions {
		assert.Equal(t, mine, r.UserID)
		assert.Equal(t, "Saree Voucher", r.ItemName)
	}
}

func TestCatalog_OnlyActiveItemsListed(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	env.CreateItem(admin, 50, nil)

	// Deactivate a second item directly
	inactiveID := env.CreateItem(admin, 75, nil)
	_, err := env.Pool.Exec(t.Context(),
		"UPDATE redeemable_items SET is_active = false WHERE id = $1", inactiveID)
	assert.NoError(t, err)

	var items []struct {
		ID uuid.UUID `json:"id"`
	}
	testutil.DecodeJSON(t, env.AuthGET("/redemptions/catalog", env.UserToken(uuid.New())), &items)
	assert.Len(t, items, 1)
}
