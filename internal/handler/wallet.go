package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/naarimani/platform/internal/auth"
	"github.com/naarimani/platform/internal/domain"
	"github.com/naarimani/platform/internal/repository"
)

// WalletHandler handles wallet balance and transaction endpoints.
type WalletHandler struct {
	wallets      repository.WalletRepository
	transactions repository.TransactionRepository
	db           repository.DBTX
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(wallets repository.WalletRepository, transactions repository.TransactionRepository, db repository.DBTX) *WalletHandler {
	return &WalletHandler{wallets: wallets, transactions: transactions, db: db}
}

// balanceResponse is the shape of GET /wallet/balance.
type balanceResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Balance int64     `json:"balance"`
}

// GetBalance handles GET /wallet/balance. A user without a wallet row has a
// zero balance; the row itself is created lazily on first credit.
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	wallet, err := h.wallets.FindByUserID(r.Context(), h.db, userID)
	if err != nil {
		RespondError(w, domain.ErrInternal("find wallet", err))
		return
	}

	resp := balanceResponse{UserID: userID}
	if wallet != nil {
		resp.Balance = wallet.Balance
	}
	RespondJSON(w, http.StatusOK, resp)
}

// txListResponse wraps a list of transactions with cursor.
type txListResponse struct {
	Transactions []domain.CoinTransaction `json:"transactions"`
	NextCursor   *string                  `json:"next_cursor,omitempty"`
}

// GetTransactions handles GET /wallet/transactions with cursor-based pagination.
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}

	txs, err := h.transactions.ListByUser(r.Context(), h.db, userID, cursor, limit+1)
	if err != nil {
		RespondError(w, domain.ErrInternal("list transactions", err))
		return
	}

	resp := txListResponse{Transactions: txs}
	if len(txs) > limit {
		resp.Transactions = txs[:limit]
		nextID := txs[limit].ID.String()
		resp.NextCursor = &nextID
	}

	RespondJSON(w, http.StatusOK, resp)
}

// auditResponse compares the cached balance against the ledger sum.
type auditResponse struct {
	UserID        uuid.UUID `json:"user_id"`
	CachedBalance int64     `json:"cached_balance"`
	LedgerSum     int64     `json:"ledger_sum"`
	Consistent    bool      `json:"consistent"`
}

// AuditBalance handles GET /wallet/audit. It recomputes the balance from the
// ledger and reports whether the cached wallet balance matches.
func (h *WalletHandler) AuditBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	wallet, err := h.wallets.FindByUserID(r.Context(), h.db, userID)
	if err != nil {
		RespondError(w, domain.ErrInternal("find wallet", err))
		return
	}

	sum, err := h.transactions.SumByUser(r.Context(), h.db, userID)
	if err != nil {
		RespondError(w, domain.ErrInternal("sum transactions", err))
		return
	}

	resp := auditResponse{UserID: userID, LedgerSum: sum}
	if wallet != nil {
		resp.CachedBalance = wallet.Balance
	}
	resp.Consistent = resp.CachedBalance == resp.LedgerSum

	RespondJSON(w, http.StatusOK, resp)
}

// userIDFromContext extracts the authenticated user UUID from auth context.
func userIDFromContext(r *http.Request) (uuid.UUID, error) {
	id, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized("no subject in context")
	}
	return id, nil
}
