package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/naarimani/platform/internal/domain"
	"github.com/naarimani/platform/internal/service"
)

// PredictionHandler handles prediction submission and retrieval.
type PredictionHandler struct {
	entry *service.EntryService
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(entry *service.EntryService) *PredictionHandler {
	return &PredictionHandler{entry: entry}
}

// SubmitPrediction handles POST /games/{id}/predictions. The first submission
// for a game charges the entry fee; later submissions for the same game
// (other questions, or overwrites before the deadline) are free.
func (h *PredictionHandler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid game id"))
		return
	}

	var input domain.SubmitPredictionInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	input.GameID = gameID

	prediction, err := h.entry.SubmitPrediction(r.Context(), userID, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, prediction)
}

// MyPredictions handles GET /games/{id}/predictions/me.
func (h *PredictionHandler) MyPredictions(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid game id"))
		return
	}

	predictions, err := h.entry.MyPredictions(r.Context(), userID, gameID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, predictions)
}
