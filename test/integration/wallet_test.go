//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/naarimani/platform/test/integration/testutil"
)

func TestBalance_NewUserZero(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID := uuid.New()
	token := env.UserToken(userID)

	resp := env.AuthGET("/wallet/balance", token)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var bal struct {
		Balance int64 `json:"balance"`
	}
	testutil.DecodeJSON(t, resp, &bal)
	assert.Equal(t, int64(0), bal.Balance)
}

func TestBalance_AfterGrant(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID := uuid.New()
	token := env.UserToken(userID)
	env.GrantCoins(userID, 500)

	resp := env.AuthGET("/wallet/balance", token)

	var bal struct {
		Balance int64 `json:"balance"`
	}
	testutil.DecodeJSON(t, resp, &bal)
	assert.Equal(t, int64(500), bal.Balance)
}

func TestBalance_RequiresAuth(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.GET("/wallet/balance")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBalance_AdminTokenRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.AuthGET("/wallet/balance", env.AdminToken("admin"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTransactionHistory_Pagination(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID := uuid.New()
	token := env.UserToken(userID)

	for i := 0; i < 5; i++ {
		env.GrantCoins(userID, 10)
	}

	resp := env.AuthGET("/wallet/transactions?limit=3", token)

	var page struct {
		Transactions []struct {
			Amount int64 `json:"amount"`
		} `json:"transactions"`
		NextCursor *string `json:"next_cursor"`
	}
	testutil.DecodeJSON(t, resp, &page)
	assert.Len(t, page.Transactions, 3)
	assert.NotNil(t, page.NextCursor)

	resp2 := env.AuthGET("/wallet/transactions?limit=3&cursor="+*page.NextCursor, token)
	var page2 struct {
		Transactions []struct {
			Amount int64 `json:"amount"`
		} `json:"transactions"`
		NextCursor *string `json:"next_cursor"`
	}
	testutil.DecodeJSON(t, resp2, &page2)
	assert.Len(t, page2.Transactions, 2)
	assert.Nil(t, page2.NextCursor)
}

func TestWalletAudit_Consistent(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID := uuid.New()
	token := env.UserToken(userID)
	env.GrantCoins(userID, 300)
	env.GrantCoins(userID, -100)

	resp := env.AuthGET("/wallet/audit", token)

	var audit struct {
		CachedBalance int64 `json:"cached_balance"`
		LedgerSum     int64 `json:"ledger_sum"`
		Consistent    bool  `json:"consistent"`
	}
	testutil.DecodeJSON(t, resp, &audit)
	assert.Equal(t, int64(200), audit.CachedBalance)
	assert.Equal(t, int64(200), audit.LedgerSum)
	assert.True(t, audit.Consistent)
}

func TestAdminAdjustment_PostsLedgerEntry(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID := uuid.New()

	resp := env.POST("/admin/wallets/"+userID.String()+"/adjust", map[string]interface{}{
		"amount": 250,
		"note":   "goodwill credit",
	}, env.AdminToken("superadmin"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	testutil.AssertBalance(t, env, userID, 250)
	testutil.AssertLedgerConsistent(t, env, userID)
}

func TestAdminAdjustment_RequiresSuperadmin(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID := uuid.New()

	resp := env.POST("/admin/wallets/"+userID.String()+"/adjust", map[string]interface{}{
		"amount": 250,
		"note":   "goodwill credit",
	}, env.AdminToken("viewer"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminAdjustment_NoteRequired(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID := uuid.New()

	resp := env.POST("/admin/wallets/"+userID.String()+"/adjust", map[string]interface{}{
		"amount": 250,
	}, env.AdminToken("superadmin"))

	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}
