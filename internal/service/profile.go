package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/accountabro/backend/internal/model"
	"github.com/accountabro/backend/internal/repository"
	"github.com/accountabro/backend/internal/validation"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
	clock       Clock
}

func NewProfileService(profileRepo repository.ProfileRepository, clock Clock) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		clock:       clock,
	}
}

type CreateProfileInput struct {
	// ID is supplied by the identity provider. Empty generates one.
	ID                 string
	DisplayName        string
	Timezone           string
	Bio                string
	OnboardingComplete bool
}

func (s *ProfileService) Create(ctx context.Context, in CreateProfileInput) (*model.Profile, error) {
	name := validation.Normalize(in.DisplayName)
	if err := validation.ValidateDisplayName(name); err != nil {
		return nil, err
	}
	bio := validation.Normalize(in.Bio)
	if err := validation.ValidateBio(bio); err != nil {
		return nil, err
	}
	tz := validation.Normalize(in.Timezone)
	if tz == "" {
		tz = model.DefaultTimezone
	}
	if err := validation.ValidateTimezone(tz); err != nil {
		return nil, err
	}

	id := in.ID
	if id == "" {
		id = uuid.New().String()
	}

	now := s.clock.Now()
	profile := &model.Profile{
		ID:                     id,
		DisplayName:            name,
		Timezone:               tz,
		Bio:                    bio,
		OnboardingComplete:     in.OnboardingComplete,
		IsAvailableForMatching: true,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	err := s.profileRepo.Create(ctx, profile)
	if errors.Is(err, repository.ErrDuplicateProfile) {
		return nil, ErrProfileExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	slog.Info("profile created", "profile_id", profile.ID)
	return profile, nil
}

func (s *ProfileService) ByID(ctx context.Context, id string) (*model.Profile, error) {
	profile, err := s.profileRepo.ByID(ctx, id)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	return profile, err
}

// SetAvailability toggles whether the matching engine may select the
// profile. Pending requests are kept but skipped while unavailable.
func (s *ProfileService) SetAvailability(ctx context.Context, id string, available bool) (*model.Profile, error) {
	err := s.profileRepo.SetAvailability(ctx, id, available)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update availability: %w", err)
	}

	slog.Info("profile availability changed", "profile_id", id, "available", available)
	return s.ByID(ctx, id)
}
