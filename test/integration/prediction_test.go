//go:build integration

package integration

import (
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naarimani/platform/test/integration/testutil"
)

func upDownQuestion() map[string]interface{} {
	return map[string]interface{}{
		"question_text":      "Will the first innings total go up from last match?",
		"prediction_type":    "up-down",
		"exact_match_points": 10,
	}
}

func TestSubmitPrediction_ChargesEntryFeeOnce(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	gameID := env.CreateGame(admin, 50)
	q1 := env.AddQuestion(admin, gameID, upDownQuestion())
	q2 := env.AddQuestion(admin, gameID, map[string]interface{}{
		"question_text":      "Total sixes in the match?",
		"prediction_type":    "exact-value",
		"exact_match_points": 20,
	})

	userID := uuid.New()
	token := env.UserToken(userID)
	env.GrantCoins(userID, 200)

	resp := env.POST("/games/"+gameID.String()+"/predictions", map[string]interface{}{
		"question_id": q1,
		"value":       "up",
	}, token)
	testutil.AssertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	// Entry fee charged exactly once
	testutil.AssertBalance(t, env, userID, 150)

	// Second question on the same game is free
	resp = env.POST("/games/"+gameID.String()+"/predictions", map[string]interface{}{
		"question_id": q2,
		"value":       "12",
	}, token)
	testutil.AssertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	testutil.AssertBalance(t, env, userID, 150)
	assert.Equal(t, 1, testutil.CountTransactions(t, env, userID, "fantasy-entry"))
	testutil.AssertLedgerConsistent(t, env, userID)
}

func TestSubmitPrediction_InsufficientBalance(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	gameID := env.CreateGame(admin, 50)
	q1 := env.AddQuestion(admin, gameID, upDownQuestion())

	userID := uuid.New()
	token := env.UserToken(userID)
	env.GrantCoins(userID, 30)

	resp := env.POST("/games/"+gameID.String()+"/predictions", map[string]interface{}{
		"question_id": q1,
		"value":       "up",
	}, token)

	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "INSUFFICIENT_BALANCE")

	// Failed entry leaves nothing behind
	testutil.AssertBalance(t, env, userID, 30)
	assert.Equal(t, 0, testutil.CountTransactions(t, env, userID, "fantasy-entry"))

	var myPredictions []struct{}
	testutil.DecodeJSON(t, env.AuthGET("/games/"+gameID.String()+"/predictions/me", token), &myPredictions)
	assert.Empty(t, myPredictions)
}

func TestSubmitPrediction_OverwriteBeforeDeadline(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	gameID := env.CreateGame(admin, 10)
	q1 := env.AddQuestion(admin, gameID, upDownQuestion())

	userID := uuid.New()
	token := env.UserToken(userID)
	env.GrantCoins(userID, 100)

	for _, value := range []string{"up", "down", "up"} {
		resp := env.POST("/games/"+gameID.String()+"/predictions", map[string]interface{}{
			"question_id": q1,
			"value":       value,
		}, token)
		testutil.AssertStatus(t, resp, http.StatusCreated)
		resp.Body.Close()
	}

	// One stored prediction with the latest value, one fee
	var predictions []struct {
		Value string `json:"value"`
	}
	testutil.DecodeJSON(t, env.AuthGET("/games/"+gameID.String()+"/predictions/me", token), &predictions)
	require.Len(t, predictions, 1)
	assert.Equal(t, "up", predictions[0].Value)

	testutil.AssertBalance(t, env, userID, 90)
}

func TestSubmitPrediction_InvalidValueRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	gameID := env.CreateGame(admin, 0)
	q1 := env.AddQuestion(admin, gameID, upDownQuestion())

	userID := uuid.New()
	token := env.UserToken(userID)

	resp := env.POST("/games/"+gameID.String()+"/predictions", map[string]interface{}{
		"question_id": q1,
		"value":       "sideways",
	}, token)

	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "INVALID_PREDICTION")
}

func TestSubmitPrediction_ClosedGameRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	gameID := env.CreateGame(admin, 0)
	q1 := env.AddQuestion(admin, gameID, upDownQuestion())

	resp := env.AuthPATCH("/admin/games/"+gameID.String()+"/status",
		map[string]string{"status": "closed"}, admin)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	userID := uuid.New()
	token := env.UserToken(userID)

	resp = env.POST("/games/"+gameID.String()+"/predictions", map[string]interface{}{
		"question_id": q1,
		"value":       "up",
	}, token)

	testutil.AssertStatus(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, "GAME_CLOSED")
}

func TestSubmitPrediction_ZeroCostGame(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	gameID := env.CreateGame(admin, 0)
	q1 := env.AddQuestion(admin, gameID, upDownQuestion())

	// No coins needed for a free game
	userID := uuid.New()
	token := env.UserToken(userID)

	resp := env.POST("/games/"+gameID.String()+"/predictions", map[string]interface{}{
		"question_id": q1,
		"value":       "down",
	}, token)
	testutil.AssertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	testutil.AssertBalance(t, env, userID, 0)
	testutil.AssertLedgerConsistent(t, env, userID)
}

func TestSubmitPrediction_ConcurrentFirstEntriesChargeOnce(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	gameID := env.CreateGame(admin, 50)
	q1 := env.AddQuestion(admin, gameID, upDownQuestion())

	userID := uuid.New()
	token := env.UserToken(userID)
	env.GrantCoins(userID, 200)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := env.POST("/games/"+gameID.String()+"/predictions", map[string]interface{}{
				"question_id": q1,
				"value":       "up",
			}, token)
			resp.Body.Close()
		}()
	}
	wg.Wait()

	// However the races resolved, exactly one fee was charged
	testutil.AssertBalance(t, env, userID, 150)
	assert.Equal(t, 1, testutil.CountTransactions(t, env, userID, "fantasy-entry"))
	testutil.AssertLedgerConsistent(t, env, userID)
}

func TestParticipantCount_IncrementsPerUser(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	gameID := env.CreateGame(admin, 10)
	q1 := env.AddQuestion(admin, gameID, upDownQuestion())

	for i := 0; i < 3; i++ {
		userID := uuid.New()
		env.GrantCoins(userID, 100)
		resp := env.POST("/games/"+gameID.String()+"/predictions", map[string]interface{}{
			"question_id": q1,
			"value":       "up",
		}, env.UserToken(userID))
		testutil.AssertStatus(t, resp, http.StatusCreated)
		resp.Body.Close()
	}

	var game struct {
		TotalParticipants int64 `json:"total_participants"`
	}
	testutil.DecodeJSON(t, env.GET("/games/"+gameID.String()), &game)
	assert.Equal(t, int64(3), game.TotalParticipants)
}
