package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/accountabro/backend/internal/model"
	"github.com/accountabro/backend/internal/repository"
)

const MaxTargetPerWeek = 14

// GoalService manages the weekly targets the ledger measures progress
// against.
type GoalService struct {
	store *repository.Store
	clock Clock
}

func NewGoalService(store *repository.Store, clock Clock) *GoalService {
	return &GoalService{store: store, clock: clock}
}

// Set creates or replaces the profile's goal in the category. Zero target
// and empty visibility take the defaults.
func (s *GoalService) Set(ctx context.Context, profileID, categoryID string, targetPerWeek int, visibility string) (*model.UserGoal, error) {
	if targetPerWeek == 0 {
		targetPerWeek = model.DefaultTargetPerWeek
	}
	if targetPerWeek < 1 || targetPerWeek > MaxTargetPerWeek {
		return nil, ErrInvalidTarget
	}
	switch visibility {
	case "":
		visibility = model.GoalVisibilityPartner
	case model.GoalVisibilityPartner, model.GoalVisibilityPrivate:
	default:
		return nil, ErrInvalidVisible
	}

	var goal *model.UserGoal
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		if _, err := r.Profiles.ByID(ctx, profileID); err != nil {
			if errors.Is(err, repository.ErrProfileNotFound) {
				return fmt.Errorf("profile %s: %w", profileID, ErrNotFound)
			}
			return err
		}
		if _, err := r.Categories.ByID(ctx, categoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
			}
			return err
		}

		now := s.clock.Now()
		err := r.Goals.Upsert(ctx, &model.UserGoal{
			ID:            uuid.New().String(),
			ProfileID:     profileID,
			CategoryID:    categoryID,
			TargetPerWeek: targetPerWeek,
			Visibility:    visibility,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return fmt.Errorf("failed to save goal: %w", err)
		}

		goal, err = r.Goals.ByProfileCategory(ctx, profileID, categoryID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("goal set", "profile_id", profileID, "category_id", categoryID, "target_per_week", targetPerWeek)
	return goal, nil
}

func (s *GoalService) Get(ctx context.Context, profileID, categoryID string) (*model.UserGoal, error) {
	goal, err := s.store.Goals.ByProfileCategory(ctx, profileID, categoryID)
	if errors.Is(err, repository.ErrGoalNotFound) {
		return nil, fmt.Errorf("goal: %w", ErrNotFound)
	}
	return goal, err
}
