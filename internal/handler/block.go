package handler

import (
	"net/http"

	"github.com/accountabro/backend/internal/ctxkeys"
	"github.com/accountabro/backend/internal/service"
)

type BlockHandler struct {
	safetyService *service.SafetyService
}

func NewBlockHandler(safetyService *service.SafetyService) *BlockHandler {
	return &BlockHandler{safetyService: safetyService}
}

type blockRequest struct {
	ProfileID string `json:"profile_id" validate:"required"`
}

func (h *BlockHandler) Block(w http.ResponseWriter, r *http.Request) {
	var req blockRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.safetyService.Block(r.Context(), ctxkeys.ProfileID(r.Context()), req.ProfileID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BlockHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	if err := h.safetyService.Unblock(r.Context(), ctxkeys.ProfileID(r.Context()), r.PathValue("profile")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
