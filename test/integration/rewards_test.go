//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/naarimani/platform/test/integration/testutil"
)

func TestCompleteQuiz_PaysOnce(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID := uuid.New()
	token := env.UserToken(userID)

	body := map[string]string{"quiz_id": "cricket-trivia-week-12"}

	resp := env.POST("/rewards/quiz", body, token)
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var tx struct {
		Type   string `json:"type"`
		Amount int64  `json:"amount"`
	}
	testutil.DecodeJSON(t, resp, &tx)
	assert.Equal(t, "quiz-complete", tx.Type)
	assert.Equal(t, int64(25), tx.Amount)
	testutil.AssertBalance(t, env, userID, 25)

	// Same quiz again is rejected and credits nothing
	resp = env.POST("/rewards/quiz", body, token)
	testutil.AssertStatus(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, "ALREADY_ATTEMPTED")

	testutil.AssertBalance(t, env, userID, 25)
	assert.Equal(t, 1, testutil.CountTransactions(t, env, userID, "quiz-complete"))
	testutil.AssertLedgerConsistent(t, env, userID)
}

func TestCompleteQuiz_DifferentQuizzesPaySeparately(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID := uuid.New()
	token := env.UserToken(userID)

	resp := env.POST("/rewards/quiz", map[string]string{"quiz_id": "quiz-a"}, token)
	testutil.AssertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp = env.POST("/rewards/quiz", map[string]string{"quiz_id": "quiz-b"}, token)
	testutil.AssertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	testutil.AssertBalance(t, env, userID, 50)
	assert.Equal(t, 2, testutil.CountTransactions(t, env, userID, "quiz-complete"))
}

func TestCompleteQuiz_RequiresQuizID(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.UserToken(uuid.New())

	resp := env.POST("/rewards/quiz", map[string]string{}, token)

	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestCompleteQuiz_PayoutIsServerControlled(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID := uuid.New()
	token := env.UserToken(userID)

	// A client-supplied amount must never influence the credit.
	resp := env.POST("/rewards/quiz",
		map[string]interface{}{"quiz_id": "trivia-1", "reward_coins": 1000000}, token)
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var tx struct {
		Amount int64 `json:"amount"`
	}
	testutil.DecodeJSON(t, resp, &tx)
	assert.Equal(t, int64(25), tx.Amount)
	testutil.AssertBalance(t, env, userID, 25)
	testutil.AssertLedgerConsistent(t, env, userID)
}

func TestDailyLogin_OncePerDay(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID := uuid.New()
	token := env.UserToken(userID)

	resp := env.POST("/rewards/daily-login", nil, token)
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var tx struct {
		Type   string `json:"type"`
		Amount int64  `json:"amount"`
	}
	testutil.DecodeJSON(t, resp, &tx)
	assert.Equal(t, "daily-login", tx.Type)
	assert.Equal(t, int64(5), tx.Amount)

	resp = env.POST("/rewards/daily-login", nil, token)
	testutil.AssertStatus(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, "ALREADY_ATTEMPTED")

	testutil.AssertBalance(t, env, userID, 5)
	assert.Equal(t, 1, testutil.CountTransactions(t, env, userID, "daily-login"))
}

func TestReferral_CreditedOncePerReferredUser(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	referrer := uuid.New()
	referred := uuid.New()

	resp := env.POST("/admin/wallets/"+referrer.String()+"/referral",
		map[string]string{"referred_user_id": referred.String()}, admin)
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var tx struct {
		Type   string `json:"type"`
		Amount int64  `json:"amount"`
	}
	testutil.DecodeJSON(t, resp, &tx)
	assert.Equal(t, "referral", tx.Type)
	assert.Equal(t, int64(50), tx.Amount)

	// Replaying the same referral credits nothing
	resp = env.POST("/admin/wallets/"+referrer.String()+"/referral",
		map[string]string{"referred_user_id": referred.String()}, admin)
	testutil.AssertStatus(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, "ALREADY_ATTEMPTED")

	// A different referred user is a fresh credit
	resp = env.POST("/admin/wallets/"+referrer.String()+"/referral",
		map[string]string{"referred_user_id": uuid.New().String()}, admin)
	testutil.AssertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	testutil.AssertBalance(t, env, referrer, 100)
	assert.Equal(t, 2, testutil.CountTransactions(t, env, referrer, "referral"))
	testutil.AssertLedgerConsistent(t, env, referrer)
}

func TestReferral_SelfReferralRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	userID := uuid.New()

	resp := env.POST("/admin/wallets/"+userID.String()+"/referral",
		map[string]string{"referred_user_id": userID.String()}, admin)

	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}
