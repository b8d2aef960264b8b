//go:build integration

package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naarimani/platform/internal/domain"
	"github.com/naarimani/platform/internal/repository"
	"github.com/naarimani/platform/test/integration/testutil"
)

func TestOutbox_FetchAndMarkPublished(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID := uuid.New()

	resp := env.POST("/rewards/quiz", map[string]string{"quiz_id": "trivia-outbox"}, env.UserToken(userID))
	testutil.AssertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	repo := repository.NewOutboxRepository()
	ctx := t.Context()

	events, err := repo.FetchUnpublished(ctx, env.Pool, 100)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTransactionPosted, events[0].EventType)
	assert.Equal(t, domain.AggregateWallet, events[0].AggregateType)
	assert.Equal(t, userID.String(), events[0].AggregateID)
	assert.Equal(t, userID.String(), events[0].PartitionKey)
	assert.NotEmpty(t, events[0].Payload)

	err = repo.MarkPublished(ctx, env.Pool, []uuid.UUID{events[0].EventID}, time.Now())
	require.NoError(t, err)

	events, err = repo.FetchUnpublished(ctx, env.Pool, 100)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestOutbox_FetchRespectsBatchLimit(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID := uuid.New()
	token := env.UserToken(userID)

	for _, quizID := range []string{"q1", "q2", "q3"} {
		resp := env.POST("/rewards/quiz", map[string]string{"quiz_id": quizID}, token)
		testutil.AssertStatus(t, resp, http.StatusCreated)
		resp.Body.Close()
	}

	repo := repository.NewOutboxRepository()
	events, err := repo.FetchUnpublished(t.Context(), env.Pool, 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
