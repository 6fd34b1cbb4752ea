package handlers

import (
	"net/http"
	"strings"
	"time"

	"quickgig/internal/app"
	"quickgig/internal/common"
	"quickgig/internal/domain/wallet"
	"quickgig/internal/http/middleware"
	"quickgig/internal/http/response"
)

type WalletHandler struct {
	wallets     *app.WalletService
	internalKey string
}

// NewWalletHandler serves student wallet reads plus the internal payment
// callback guarded by the internal key.
func NewWalletHandler(wallets *app.WalletService, internalKey string) *WalletHandler {
	return &WalletHandler{wallets: wallets, internalKey: internalKey}
}

func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	query := r.URL.Query()
	var status *wallet.Status
	if raw := strings.TrimSpace(query.Get("status")); raw != "" && raw != "all" {
		s := wallet.Status(raw)
		status = &s
	}
	sort := wallet.SortDate
	switch query.Get("sort") {
	case "amount":
		sort = wallet.SortAmount
	case "hours":
		sort = wallet.SortHours
	}
	items, err := h.wallets.List(r.Context(), studentID, status, sort)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *WalletHandler) Summary(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	summary, err := h.wallets.Summarize(r.Context(), studentID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, summary)
}

type markPaidRequest struct {
	PaymentDate time.Time `json:"payment_date"`
}

func (h *WalletHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	if !requireInternalAuth(w, r, h.internalKey) {
		return
	}
	entryID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req markPaidRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if req.PaymentDate.IsZero() {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{"payment_date": "payment_date is required"}))
		return
	}
	updated, err := h.wallets.MarkPaid(r.Context(), entryID, req.PaymentDate)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}
