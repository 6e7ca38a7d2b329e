package handler

import (
	"net/http"

	"github.com/accountabro/backend/internal/ctxkeys"
	"github.com/accountabro/backend/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

type createProfileRequest struct {
	DisplayName        string `json:"display_name" validate:"required,max=40"`
	Timezone           string `json:"timezone"`
	Bio                string `json:"bio" validate:"max=240"`
	OnboardingComplete bool   `json:"onboarding_complete"`
}

// Create registers the caller's profile under the identity in the request.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.profileService.Create(r.Context(), service.CreateProfileInput{
		ID:                 ctxkeys.ProfileID(r.Context()),
		DisplayName:        req.DisplayName,
		Timezone:           req.Timezone,
		Bio:                req.Bio,
		OnboardingComplete: req.OnboardingComplete,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, profile)
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.ByID(r.Context(), ctxkeys.ProfileID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type availabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

func (h *ProfileHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.profileService.SetAvailability(r.Context(), ctxkeys.ProfileID(r.Context()), *req.Available)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
