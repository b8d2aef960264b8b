package ledger

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestReferenceBuilders(t *testing.T) {
	gameID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	redemptionID := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	referredID := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	assert.Equal(t, "fantasy-entry:11111111-1111-1111-1111-111111111111", EntryFeeReference(gameID))
	assert.Equal(t, "fantasy-win:11111111-1111-1111-1111-111111111111", WinReference(gameID))
	assert.Equal(t, "quiz:ipl-trivia-7", QuizReference("ipl-trivia-7"))
	assert.Equal(t, "daily-login:2026-08-29", DailyLoginReference("2026-08-29"))
	assert.Equal(t, "referral:33333333-3333-3333-3333-333333333333", ReferralReference(referredID))
	assert.Equal(t, "redeem:22222222-2222-2222-2222-222222222222", RedemptionReference(redemptionID))
	assert.Equal(t, "refund:22222222-2222-2222-2222-222222222222", RefundReference(redemptionID))
}

func TestReferenceBuilders_DistinctPerOperation(t *testing.T) {
	id := uuid.New()

	// Entry and win for the same game must never collide, nor may a
	// redemption collide with its own refund.
	assert.NotEqual(t, EntryFeeReference(id), WinReference(id))
	assert.NotEqual(t, RedemptionReference(id), RefundReference(id))
}

func TestEnsureJSON(t *testing.T) {
	assert.Equal(t, json.RawMessage(`{}`), ensureJSON(nil))

	meta := json.RawMessage(`{"gameId":"x"}`)
	assert.Equal(t, meta, ensureJSON(meta))
}
