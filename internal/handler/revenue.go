package handler

import (
	"net/http"

	"github.com/gachabox/platform/internal/domain"
	"github.com/gachabox/platform/internal/revenue"
	"github.com/google/uuid"
)

// RevenueHandler handles revenue balance and withdrawal endpoints.
type RevenueHandler struct {
	ledger *revenue.Ledger
}

// NewRevenueHandler creates a new RevenueHandler.
func NewRevenueHandler(ledger *revenue.Ledger) *RevenueHandler {
	return &RevenueHandler{ledger: ledger}
}

// OwnerBalance handles GET /cabinets/{cabinetID}/revenue.
func (h *RevenueHandler) OwnerBalance(w http.ResponseWriter, r *http.Request) {
	cabinetID, err := cabinetIDFromURL(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	balance, err := h.ledger.OwnerBalance(r.Context(), cabinetID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

// WithdrawOwner handles POST /cabinets/{cabinetID}/revenue/withdraw.
func (h *RevenueHandler) WithdrawOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, cabinetID, err := ownerAndCabinet(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	amount, err := h.ledger.WithdrawOwner(r.Context(), cabinetID, ownerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]int64{"withdrawn": amount})
}

type batchWithdrawRequest struct {
	CabinetIDs []uuid.UUID `json:"cabinet_ids"`
}

// BatchWithdraw handles POST /revenue/batch-withdraw.
func (h *RevenueHandler) BatchWithdraw(w http.ResponseWriter, r *http.Request) {
	ownerID, err := subjectIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req batchWithdrawRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	total, err := h.ledger.BatchWithdrawOwner(r.Context(), req.CabinetIDs, ownerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]int64{"withdrawn": total})
}

// PlatformBalance handles GET /admin/revenue (admin realm).
func (h *RevenueHandler) PlatformBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.ledger.PlatformBalance(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

type platformWithdrawRequest struct {
	Amount int64 `json:"amount"`
}

// WithdrawPlatform handles POST /admin/revenue/withdraw (admin realm).
func (h *RevenueHandler) WithdrawPlatform(w http.ResponseWriter, r *http.Request) {
	adminID, err := subjectIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req platformWithdrawRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	if err := h.ledger.WithdrawPlatform(r.Context(), req.Amount, adminID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]int64{"withdrawn": req.Amount})
}
