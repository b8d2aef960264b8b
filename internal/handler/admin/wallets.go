package admin

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/naarimani/platform/internal/auth"
	"github.com/naarimani/platform/internal/domain"
	"github.com/naarimani/platform/internal/handler"
	"github.com/naarimani/platform/internal/ledger"
	"github.com/naarimani/platform/internal/service"
)

// WalletAdminHandler handles manual coin adjustments and referral credits.
type WalletAdminHandler struct {
	pool    *pgxpool.Pool
	ledger  *ledger.Engine
	rewards *service.RewardsService
}

// NewWalletAdminHandler creates a new WalletAdminHandler.
func NewWalletAdminHandler(pool *pgxpool.Pool, ledgerEngine *ledger.Engine, rewards *service.RewardsService) *WalletAdminHandler {
	return &WalletAdminHandler{pool: pool, ledger: ledgerEngine, rewards: rewards}
}

// Adjust handles POST /admin/wallets/{userID}/adjust. Adjustments carry no
// idempotency reference; every call posts a new ledger entry.
func (h *WalletAdminHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid user id"))
		return
	}

	var input struct {
		Amount int64  `json:"amount"`
		Note   string `json:"note"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if strings.TrimSpace(input.Note) == "" {
		handler.RespondError(w, domain.ErrValidation("note is required"))
		return
	}

	adjustedBy := ""
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		adjustedBy = claims.Subject
	}

	tx, err := h.pool.Begin(r.Context())
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("begin tx", err))
		return
	}
	defer tx.Rollback(r.Context())

	result, err := h.ledger.ExecuteAdminAdjustment(r.Context(), tx, domain.AdminAdjustmentParams{
		UserID:     userID,
		Amount:     input.Amount,
		Note:       input.Note,
		AdjustedBy: adjustedBy,
	})
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		handler.RespondError(w, domain.ErrInternal("commit tx", err))
		return
	}
	handler.RespondJSON(w, http.StatusCreated, result.Transaction)
}

// CreditReferral handles POST /admin/wallets/{userID}/referral. The referred
// user keys the idempotency reference, so each referral pays out once.
func (h *WalletAdminHandler) CreditReferral(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid user id"))
		return
	}

	var input struct {
		ReferredUserID uuid.UUID `json:"referred_user_id"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if input.ReferredUserID == uuid.Nil {
		handler.RespondError(w, domain.ErrValidation("referred_user_id is required"))
		return
	}

	tx, err := h.rewards.CreditReferral(r.Context(), userID, input.ReferredUserID)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, tx)
}
