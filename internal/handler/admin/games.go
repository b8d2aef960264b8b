package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/naarimani/platform/internal/auth"
	"github.com/naarimani/platform/internal/domain"
	"github.com/naarimani/platform/internal/handler"
	"github.com/naarimani/platform/internal/repository"
	"github.com/naarimani/platform/internal/service"
	"github.com/naarimani/platform/internal/settlement"
)

// GameAdminHandler handles admin game and campaign management, result
// declaration and scoring.
type GameAdminHandler struct {
	catalog     *service.CatalogService
	settlement  *settlement.Engine
	results     repository.ResultRepository
	predictions repository.PredictionRepository
	pool        *pgxpool.Pool
}

// NewGameAdminHandler creates a new GameAdminHandler.
func NewGameAdminHandler(
	catalog *service.CatalogService,
	settlementEngine *settlement.Engine,
	results repository.ResultRepository,
	predictions repository.PredictionRepository,
	pool *pgxpool.Pool,
) *GameAdminHandler {
	return &GameAdminHandler{
		catalog:     catalog,
		settlement:  settlementEngine,
		results:     results,
		predictions: predictions,
		pool:        pool,
	}
}

// CreateGame handles POST /admin/games.
func (h *GameAdminHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var input service.CreateGameInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	game, err := h.catalog.CreateGame(r.Context(), input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, game)
}

// AddQuestion handles POST /admin/games/{id}/questions.
func (h *GameAdminHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid game id"))
		return
	}

	var q domain.Question
	if err := handler.DecodeJSON(r, &q); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	q.GameID = gameID

	created, err := h.catalog.AddQuestion(r.Context(), &q)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, created)
}

// UpdateGameStatus handles PATCH /admin/games/{id}/status.
func (h *GameAdminHandler) UpdateGameStatus(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid game id"))
		return
	}

	var input struct {
		Status domain.GameStatus `json:"status"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	if err := h.catalog.UpdateGameStatus(r.Context(), gameID, input.Status); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": string(input.Status)})
}

// CreateCampaign handles POST /admin/campaigns.
func (h *GameAdminHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var c domain.Campaign
	if err := handler.DecodeJSON(r, &c); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	created, err := h.catalog.CreateCampaign(r.Context(), &c)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, created)
}

// DeclareResults handles POST /admin/games/{id}/results. The payload must
// cover every question of the game; partial declarations are rejected.
func (h *GameAdminHandler) DeclareResults(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid game id"))
		return
	}

	var input struct {
		Results map[uuid.UUID]string `json:"results"`
		Source  string               `json:"source"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if len(input.Results) == 0 {
		handler.RespondError(w, domain.ErrValidation("results must not be empty"))
		return
	}

	declaredBy := ""
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		declaredBy = claims.Subject
	}

	err = h.settlement.DeclareResults(r.Context(), settlement.DeclareResultsInput{
		GameID:     gameID,
		Results:    input.Results,
		Source:     input.Source,
		DeclaredBy: declaredBy,
	})
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": string(domain.GameResultsDeclared)})
}

// ListResults handles GET /admin/games/{id}/results.
func (h *GameAdminHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid game id"))
		return
	}

	results, err := h.results.ListByGame(r.Context(), h.pool, gameID)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("list results", err))
		return
	}
	handler.RespondJSON(w, http.StatusOK, results)
}

// CalculateScores handles POST /admin/games/{id}/scores. Safe to re-run:
// already credited users are skipped by the ledger idempotency check.
func (h *GameAdminHandler) CalculateScores(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid game id"))
		return
	}

	summary, err := h.settlement.CalculateGameScores(r.Context(), gameID)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, summary)
}

// ListPredictions handles GET /admin/games/{id}/predictions, the full board
// for a game after results are in.
func (h *GameAdminHandler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid game id"))
		return
	}

	predictions, err := h.predictions.ListByGame(r.Context(), h.pool, gameID)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("list predictions", err))
		return
	}
	handler.RespondJSON(w, http.StatusOK, predictions)
}
