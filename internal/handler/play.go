package handler

import (
	"net/http"

	"github.com/gachabox/platform/internal/domain"
	"github.com/gachabox/platform/internal/game"
	"github.com/gachabox/platform/internal/guard"
)

// PlayHandler handles the play endpoint.
type PlayHandler struct {
	orchestrator *game.Orchestrator
	limiter      *guard.RateLimiter
}

// NewPlayHandler creates a new PlayHandler.
func NewPlayHandler(orchestrator *game.Orchestrator, limiter *guard.RateLimiter) *PlayHandler {
	return &PlayHandler{orchestrator: orchestrator, limiter: limiter}
}

type playRequest struct {
	Paid  int64 `json:"paid"`
	Boost int64 `json:"boost"`
}

// Play handles POST /cabinets/{cabinetID}/play.
func (h *PlayHandler) Play(w http.ResponseWriter, r *http.Request) {
	playerID, cabinetID, err := ownerAndCabinet(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	if res := h.limiter.Check(r.Context(), playerID.String()); !res.Allowed {
		RespondError(w, &domain.AppError{Code: "RATE_LIMITED", Message: res.Reason, Status: http.StatusTooManyRequests})
		return
	}

	var req playRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.orchestrator.Play(r.Context(), domain.PlayParams{
		CabinetID: cabinetID,
		PlayerID:  playerID,
		Paid:      req.Paid,
		Boost:     req.Boost,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}
