package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/naarimani/platform/internal/domain"
	"github.com/naarimani/platform/internal/service"
)

// RedemptionHandler handles the user-facing redemption endpoints.
type RedemptionHandler struct {
	redemptions *service.RedemptionService
}

// NewRedemptionHandler creates a new RedemptionHandler.
func NewRedemptionHandler(redemptions *service.RedemptionService) *RedemptionHandler {
	return &RedemptionHandler{redemptions: redemptions}
}

// ListCatalog handles GET /redemptions/catalog. Only active items are shown.
func (h *RedemptionHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.redemptions.ListCatalog(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, items)
}

// RedeemItem handles POST /redemptions/items/{id}. Debits the coin cost and
// creates a pending redemption.
func (h *RedemptionHandler) RedeemItem(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid item id"))
		return
	}

	redemption, err := h.redemptions.RedeemItem(r.Context(), userID, itemID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, redemption)
}

// MyRedemptions handles GET /redemptions/me.
func (h *RedemptionHandler) MyRedemptions(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	redemptions, err := h.redemptions.MyRedemptions(r.Context(), userID, limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, redemptions)
}
