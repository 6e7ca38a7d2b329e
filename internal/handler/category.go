package handler

import (
	"net/http"

	"github.com/accountabro/backend/internal/service"
)

type CategoryHandler struct {
	categoryService *service.CategoryService
	queueService    *service.QueueService
	engine          *service.MatchingEngine
}

func NewCategoryHandler(categoryService *service.CategoryService, queueService *service.QueueService, engine *service.MatchingEngine) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		queueService:    queueService,
		engine:          engine,
	}
}

type createCategoryRequest struct {
	Slug        string `json:"slug" validate:"required,max=40"`
	Name        string `json:"name" validate:"required,max=60"`
	IsSensitive bool   `json:"is_sensitive"`
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.categoryService.Create(r.Context(), req.Slug, req.Name, req.IsSensitive)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

type queueResponse struct {
	Category string `json:"category"`
	Pending  int    `json:"pending"`
}

// Queue reports how many requests wait in the category. Individual requests
// are not exposed.
func (h *CategoryHandler) Queue(w http.ResponseWriter, r *http.Request) {
	category, err := h.categoryService.BySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	pending, err := h.queueService.PendingCount(r.Context(), category.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, queueResponse{Category: category.Slug, Pending: pending})
}

// RunPass triggers a matching pass synchronously and returns its summary.
func (h *CategoryHandler) RunPass(w http.ResponseWriter, r *http.Request) {
	category, err := h.categoryService.BySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.engine.RunPass(r.Context(), category.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
