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
	"github.com/naarimani/platform/internal/repository"
	"github.com/naarimani/platform/internal/service"
)

// RedemptionAdminHandler handles admin catalog item management and the
// redemption fulfillment workflow.
type RedemptionAdminHandler struct {
	redemptions *service.RedemptionService
	repo        repository.RedemptionRepository
	pool        *pgxpool.Pool
}

// NewRedemptionAdminHandler creates a new RedemptionAdminHandler.
func NewRedemptionAdminHandler(redemptions *service.RedemptionService, repo repository.RedemptionRepository, pool *pgxpool.Pool) *RedemptionAdminHandler {
	return &RedemptionAdminHandler{redemptions: redemptions, repo: repo, pool: pool}
}

// CreateItem handles POST /admin/redemptions/items.
func (h *RedemptionAdminHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var item domain.RedeemableItem
	if err := handler.DecodeJSON(r, &item); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if strings.TrimSpace(item.Name) == "" {
		handler.RespondError(w, domain.ErrValidation("item name is required"))
		return
	}
	if item.CoinCost <= 0 {
		handler.RespondError(w, domain.ErrValidation("coin cost must be positive"))
		return
	}
	if item.Stock != nil && *item.Stock < 0 {
		handler.RespondError(w, domain.ErrValidation("stock must not be negative"))
		return
	}

	item.ID = uuid.New()
	if err := h.repo.CreateItem(r.Context(), h.pool, &item); err != nil {
		handler.RespondError(w, domain.ErrInternal("create item", err))
		return
	}
	handler.RespondJSON(w, http.StatusCreated, item)
}

// ListItems handles GET /admin/redemptions/items, including inactive items.
func (h *RedemptionAdminHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListItems(r.Context(), h.pool, false)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("list items", err))
		return
	}
	handler.RespondJSON(w, http.StatusOK, items)
}

// UpdateStatus handles PATCH /admin/redemptions/{id}/status.
func (h *RedemptionAdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	redemptionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid redemption id"))
		return
	}

	var input struct {
		Status      domain.RedemptionStatus `json:"status"`
		VoucherCode *string                 `json:"voucher_code,omitempty"`
		Notes       string                  `json:"notes"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	updatedBy := ""
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		updatedBy = claims.Subject
	}

	redemption, err := h.redemptions.UpdateRedemptionStatus(r.Context(), service.UpdateStatusInput{
		RedemptionID: redemptionID,
		NewStatus:    input.Status,
		VoucherCode:  input.VoucherCode,
		Notes:        input.Notes,
		UpdatedBy:    updatedBy,
	})
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, redemption)
}
