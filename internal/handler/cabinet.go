package handler

import (
	"net/http"

	"github.com/gachabox/platform/internal/auth"
	"github.com/gachabox/platform/internal/cabinet"
	"github.com/gachabox/platform/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CabinetHandler handles cabinet lifecycle endpoints.
type CabinetHandler struct {
	service *cabinet.Service
}

// NewCabinetHandler creates a new CabinetHandler.
func NewCabinetHandler(service *cabinet.Service) *CabinetHandler {
	return &CabinetHandler{service: service}
}

type mintCabinetRequest struct {
	Name      string `json:"name"`
	PlayPrice int64  `json:"play_price"`
}

// Mint handles POST /cabinets.
func (h *CabinetHandler) Mint(w http.ResponseWriter, r *http.Request) {
	ownerID, err := subjectIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req mintCabinetRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	cab, err := h.service.Mint(r.Context(), ownerID, req.Name, req.PlayPrice)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, cab)
}

// Get handles GET /cabinets/{cabinetID}.
func (h *CabinetHandler) Get(w http.ResponseWriter, r *http.Request) {
	cabinetID, err := cabinetIDFromURL(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	cab, err := h.service.Get(r.Context(), cabinetID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, cab)
}

// List handles GET /cabinets (the requester's own cabinets).
func (h *CabinetHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, err := subjectIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	cabs, err := h.service.ListByOwner(r.Context(), ownerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"cabinets": cabs})
}

// SetConfig handles PUT /cabinets/{cabinetID}/config.
func (h *CabinetHandler) SetConfig(w http.ResponseWriter, r *http.Request) {
	ownerID, cabinetID, err := ownerAndCabinet(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var cfg domain.CabinetConfig
	if err := DecodeJSON(r, &cfg); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	cab, err := h.service.SetConfig(r.Context(), cabinetID, cfg, ownerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, cab)
}

type setNameRequest struct {
	Name string `json:"name"`
}

// SetName handles PUT /cabinets/{cabinetID}/name.
func (h *CabinetHandler) SetName(w http.ResponseWriter, r *http.Request) {
	ownerID, cabinetID, err := ownerAndCabinet(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req setNameRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	cab, err := h.service.SetName(r.Context(), cabinetID, req.Name, ownerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, cab)
}

type setPriceRequest struct {
	PlayPrice int64 `json:"play_price"`
}

// SetPrice handles PUT /cabinets/{cabinetID}/price.
func (h *CabinetHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	ownerID, cabinetID, err := ownerAndCabinet(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req setPriceRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	cab, err := h.service.SetPrice(r.Context(), cabinetID, req.PlayPrice, ownerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, cab)
}

// Activate handles POST /cabinets/{cabinetID}/activate.
func (h *CabinetHandler) Activate(w http.ResponseWriter, r *http.Request) {
	ownerID, cabinetID, err := ownerAndCabinet(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	cab, err := h.service.Activate(r.Context(), cabinetID, ownerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, cab)
}

// Deactivate handles POST /cabinets/{cabinetID}/deactivate.
func (h *CabinetHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	ownerID, cabinetID, err := ownerAndCabinet(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	cab, err := h.service.Deactivate(r.Context(), cabinetID, ownerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, cab)
}

type setMaintenanceRequest struct {
	Enabled bool `json:"enabled"`
}

// SetMaintenance handles POST /cabinets/{cabinetID}/maintenance.
func (h *CabinetHandler) SetMaintenance(w http.ResponseWriter, r *http.Request) {
	ownerID, cabinetID, err := ownerAndCabinet(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req setMaintenanceRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	cab, err := h.service.SetMaintenance(r.Context(), cabinetID, req.Enabled, ownerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, cab)
}

// subjectIDFromContext extracts and validates the caller UUID from auth context.
func subjectIDFromContext(r *http.Request) (uuid.UUID, error) {
	sub := auth.SubjectFromContext(r.Context())
	if sub == "" {
		return uuid.Nil, domain.ErrUnauthorized("no subject in context")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized("invalid subject")
	}
	return id, nil
}

// cabinetIDFromURL parses the {cabinetID} route parameter.
func cabinetIDFromURL(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "cabinetID"))
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid cabinet id")
	}
	return id, nil
}

func ownerAndCabinet(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	ownerID, err := subjectIDFromContext(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	cabinetID, err := cabinetIDFromURL(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return ownerID, cabinetID, nil
}
