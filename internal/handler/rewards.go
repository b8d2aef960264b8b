package handler

import (
	"net/http"
	"strings"

	"github.com/naarimani/platform/internal/domain"
	"github.com/naarimani/platform/internal/service"
)

// RewardsHandler handles engagement reward endpoints (quiz completion and
// daily login claims).
type RewardsHandler struct {
	rewards *service.RewardsService
}

// NewRewardsHandler creates a new RewardsHandler.
func NewRewardsHandler(rewards *service.RewardsService) *RewardsHandler {
	return &RewardsHandler{rewards: rewards}
}

// CompleteQuiz handles POST /rewards/quiz. Each quiz pays out once per user.
// The payout amount is server-side config; the body carries only the quiz ID.
func (h *RewardsHandler) CompleteQuiz(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input struct {
		QuizID string `json:"quiz_id"`
	}
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if strings.TrimSpace(input.QuizID) == "" {
		RespondError(w, domain.ErrValidation("quiz_id is required"))
		return
	}

	tx, err := h.rewards.CompleteQuiz(r.Context(), userID, input.QuizID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, tx)
}

// ClaimDailyLogin handles POST /rewards/daily-login. One claim per calendar day.
func (h *RewardsHandler) ClaimDailyLogin(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	tx, err := h.rewards.ClaimDailyLogin(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, tx)
}
