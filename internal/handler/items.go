package handler

import (
	"net/http"

	"github.com/gachabox/platform/internal/domain"
	"github.com/gachabox/platform/internal/escrow"
)

// ItemHandler handles item escrow endpoints.
type ItemHandler struct {
	ledger *escrow.Ledger
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(ledger *escrow.Ledger) *ItemHandler {
	return &ItemHandler{ledger: ledger}
}

type depositRequest struct {
	Items []domain.ItemDeposit `json:"items"`
}

// Deposit handles POST /cabinets/{cabinetID}/items.
func (h *ItemHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	ownerID, cabinetID, err := ownerAndCabinet(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req depositRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	items, err := h.ledger.Deposit(r.Context(), cabinetID, req.Items, ownerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, map[string]interface{}{"items": items})
}

type withdrawItemsRequest struct {
	Indices []int `json:"indices"`
}

// Withdraw handles POST /cabinets/{cabinetID}/items/withdraw.
func (h *ItemHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	ownerID, cabinetID, err := ownerAndCabinet(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req withdrawItemsRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	if err := h.ledger.Withdraw(r.Context(), cabinetID, req.Indices, ownerID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"withdrawn": len(req.Indices)})
}

type toggleItemRequest struct {
	Index int `json:"index"`
}

// Toggle handles POST /cabinets/{cabinetID}/items/toggle.
func (h *ItemHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ownerID, cabinetID, err := ownerAndCabinet(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req toggleItemRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	item, err := h.ledger.ToggleActive(r.Context(), cabinetID, req.Index, ownerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, item)
}

// List handles GET /cabinets/{cabinetID}/items.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	cabinetID, err := cabinetIDFromURL(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	items, err := h.ledger.Items(r.Context(), cabinetID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}
