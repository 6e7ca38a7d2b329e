package handler

import (
	"net/http"

	"github.com/accountabro/backend/internal/ctxkeys"
	"github.com/accountabro/backend/internal/service"
)

type GoalHandler struct {
	goalService     *service.GoalService
	categoryService *service.CategoryService
}

func NewGoalHandler(goalService *service.GoalService, categoryService *service.CategoryService) *GoalHandler {
	return &GoalHandler{
		goalService:     goalService,
		categoryService: categoryService,
	}
}

type setGoalRequest struct {
	TargetPerWeek int    `json:"target_per_week" validate:"omitempty,min=1,max=14"`
	Visibility    string `json:"visibility" validate:"omitempty,oneof=private partner"`
}

func (h *GoalHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req setGoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.categoryService.BySlug(r.Context(), r.PathValue("category"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := h.goalService.Set(r.Context(), ctxkeys.ProfileID(r.Context()), category.ID, req.TargetPerWeek, req.Visibility)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}
