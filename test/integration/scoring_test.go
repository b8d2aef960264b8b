//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naarimani/platform/test/integration/testutil"
)

// setupScoredGame creates a game with one MC and one range question, enters
// two users and returns everything the scoring tests need.
type scoredGame struct {
	admin  string
	gameID uuid.UUID
	qMatch uuid.UUID
	qRuns  uuid.UUID
	winner uuid.UUID
	loser  uuid.UUID
}

func setupScoredGame(t *testing.T, env *testutil.TestEnv) scoredGame {
	t.Helper()
	admin := env.AdminToken("admin")
	gameID := env.CreateGame(admin, 10)

	qMatch := env.AddQuestion(admin, gameID, map[string]interface{}{
		"question_text":      "Who wins the match?",
		"prediction_type":    "multiple-choice",
		"options":            []string{"Chennai Super Kings", "Mumbai Indians"},
		"exact_match_points": 20,
	})
	qRuns := env.AddQuestion(admin, gameID, map[string]interface{}{
		"question_text":      "First innings total?",
		"prediction_type":    "range",
		"min_value":          0,
		"max_value":          300,
		"exact_match_points": 50,
		"near_range_points":  20,
	})

	winner := uuid.New()
	loser := uuid.New()
	env.GrantCoins(winner, 100)
	env.GrantCoins(loser, 100)

	submit := func(userID uuid.UUID, questionID uuid.UUID, body map[string]interface{}) {
		body["question_id"] = questionID
		resp := env.POST("/games/"+gameID.String()+"/predictions", body, env.UserToken(userID))
		testutil.AssertStatus(t, resp, http.StatusCreated)
		resp.Body.Close()
	}

	submit(winner, qMatch, map[string]interface{}{"value": "Chennai Super Kings"})
	submit(winner, qRuns, map[string]interface{}{"value": "170", "range_min": 165.0, "range_max": 180.0})
	submit(loser, qMatch, map[string]interface{}{"value": "Mumbai Indians"})
	submit(loser, qRuns, map[string]interface{}{"value": "120", "range_min": 115.0, "range_max": 125.0})

	return scoredGame{admin: admin, gameID: gameID, qMatch: qMatch, qRuns: qRuns, winner: winner, loser: loser}
}

func declareResults(t *testing.T, env *testutil.TestEnv, g scoredGame) {
	t.Helper()
	resp := env.POST("/admin/games/"+g.gameID.String()+"/results", map[string]interface{}{
		"results": map[string]string{
			g.qMatch.String(): "Chennai Super Kings",
			g.qRuns.String():  "175",
		},
		"source": "manual",
	}, g.admin)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()
}

func TestDeclareResults_PartialRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	g := setupScoredGame(t, env)

	resp := env.POST("/admin/games/"+g.gameID.String()+"/results", map[string]interface{}{
		"results": map[string]string{
			g.qMatch.String(): "Chennai Super Kings",
		},
	}, g.admin)

	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "INCOMPLETE_RESULTS")

	// Nothing was written
	var results []struct{}
	testutil.DecodeJSON(t, env.AuthGET("/admin/games/"+g.gameID.String()+"/results", g.admin), &results)
	assert.Empty(t, results)
}

func TestDeclareResults_MovesGameStatus(t *testing.T) {
	env := testutil.NewTestEnv(t)
	g := setupScoredGame(t, env)
	declareResults(t, env, g)

	var game struct {
		Status string `json:"status"`
	}
	testutil.DecodeJSON(t, env.GET("/games/"+g.gameID.String()), &game)
	assert.Equal(t, "results-declared", game.Status)

	// The game no longer accepts predictions
	resp := env.POST("/games/"+g.gameID.String()+"/predictions", map[string]interface{}{
		"question_id": g.qMatch,
		"value":       "Mumbai Indians",
	}, env.UserToken(g.winner))
	testutil.AssertStatus(t, resp, http.StatusConflict)
	resp.Body.Close()
}

func TestCalculateScores_CreditsWinners(t *testing.T) {
	env := testutil.NewTestEnv(t)
	g := setupScoredGame(t, env)
	declareResults(t, env, g)

	resp := env.POST("/admin/games/"+g.gameID.String()+"/scores", nil, g.admin)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var summary struct {
		ScoredPredictions  int   `json:"scored_predictions"`
		TotalPointsAwarded int64 `json:"total_points_awarded"`
		UsersCredited      int   `json:"users_credited"`
		CoinsCredited      int64 `json:"coins_credited"`
	}
	testutil.DecodeJSON(t, resp, &summary)

	// winner: 20 (match) + 20 (truth 175 inside band 165-180) = 40 points
	// loser: 0 points, no credit
	assert.Equal(t, 4, summary.ScoredPredictions)
	assert.Equal(t, int64(40), summary.TotalPointsAwarded)
	assert.Equal(t, 1, summary.UsersCredited)
	assert.Equal(t, int64(40), summary.CoinsCredited)

	// Balances: entry fee 10 each, winner +40
	testutil.AssertBalance(t, env, g.winner, 130)
	testutil.AssertBalance(t, env, g.loser, 90)
	testutil.AssertLedgerConsistent(t, env, g.winner)
	testutil.AssertLedgerConsistent(t, env, g.loser)
}

func TestCalculateScores_RerunDoesNotDoubleCredit(t *testing.T) {
	env := testutil.NewTestEnv(t)
	g := setupScoredGame(t, env)
	declareResults(t, env, g)

	resp := env.POST("/admin/games/"+g.gameID.String()+"/scores", nil, g.admin)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = env.POST("/admin/games/"+g.gameID.String()+"/scores", nil, g.admin)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var summary struct {
		UsersCredited int   `json:"users_credited"`
		CoinsCredited int64 `json:"coins_credited"`
	}
	testutil.DecodeJSON(t, resp, &summary)
	assert.Equal(t, 0, summary.UsersCredited, "second run must not credit again")
	assert.Equal(t, int64(0), summary.CoinsCredited)

	testutil.AssertBalance(t, env, g.winner, 130)
	assert.Equal(t, 1, testutil.CountTransactions(t, env, g.winner, "fantasy-win"))
}

func TestCalculateScores_BeforeResultsRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	g := setupScoredGame(t, env)

	resp := env.POST("/admin/games/"+g.gameID.String()+"/scores", nil, g.admin)

	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestCalculateScores_MarksPredictionCorrectness(t *testing.T) {
	env := testutil.NewTestEnv(t)
	g := setupScoredGame(t, env)
	declareResults(t, env, g)

	resp := env.POST("/admin/games/"+g.gameID.String()+"/scores", nil, g.admin)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	var predictions []struct {
		UserID       uuid.UUID `json:"user_id"`
		PointsEarned int64     `json:"points_earned"`
		IsCorrect    bool      `json:"is_correct"`
	}
	testutil.DecodeJSON(t, env.AuthGET("/games/"+g.gameID.String()+"/predictions/me", env.UserToken(g.winner)), &predictions)
	require.Len(t, predictions, 2)
	for _, p := range predictions {
		assert.True(t, p.IsCorrect)
		assert.Positive(t, p.PointsEarned)
	}
}

func TestDeclareResults_RequiresAdminRole(t *testing.T) {
	env := testutil.NewTestEnv(t)
	g := setupScoredGame(t, env)

	resp := env.POST("/admin/games/"+g.gameID.String()+"/results", map[string]interface{}{
		"results": map[string]string{g.qMatch.String(): "Chennai Super Kings"},
	}, env.AdminToken("viewer"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
