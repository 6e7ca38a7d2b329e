package handler

import (
	"net/http"

	"github.com/accountabro/backend/internal/ctxkeys"
	"github.com/accountabro/backend/internal/service"
)

type RequestHandler struct {
	queueService    *service.QueueService
	categoryService *service.CategoryService
}

func NewRequestHandler(queueService *service.QueueService, categoryService *service.CategoryService) *RequestHandler {
	return &RequestHandler{
		queueService:    queueService,
		categoryService: categoryService,
	}
}

type enqueueRequest struct {
	Category string `json:"category" validate:"required"`
}

// Enqueue adds the caller to a category's queue. Pairing happens
// asynchronously; the response is the pending request.
func (h *RequestHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.categoryService.BySlug(r.Context(), req.Category)
	if err != nil {
		writeError(w, r, err)
		return
	}

	matchRequest, err := h.queueService.Enqueue(r.Context(), ctxkeys.ProfileID(r.Context()), category.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, matchRequest)
}

func (h *RequestHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	matchRequest, err := h.queueService.Withdraw(r.Context(), r.PathValue("id"), ctxkeys.ProfileID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, matchRequest)
}
