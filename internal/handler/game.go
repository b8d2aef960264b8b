package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/naarimani/platform/internal/domain"
	"github.com/naarimani/platform/internal/service"
)

// GameHandler handles the public game catalog endpoints.
type GameHandler struct {
	catalog *service.CatalogService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(catalog *service.CatalogService) *GameHandler {
	return &GameHandler{catalog: catalog}
}

// ListGames handles GET /games. Supports ?status= and ?category= filters.
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	category := r.URL.Query().Get("category")

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	games, err := h.catalog.ListGames(r.Context(), status, category, limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, games)
}

// GetGame handles GET /games/{id}.
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid game id"))
		return
	}

	game, err := h.catalog.GetGame(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, game)
}

// ListQuestions handles GET /games/{id}/questions.
func (h *GameHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid game id"))
		return
	}

	questions, err := h.catalog.ListQuestions(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, questions)
}

// ListCampaigns handles GET /campaigns.
func (h *GameHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.catalog.ListCampaigns(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, campaigns)
}
