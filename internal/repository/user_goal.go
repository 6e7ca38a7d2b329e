package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/accountabro/backend/internal/model"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
)

type UserGoalRepository interface {
	// Upsert creates the goal or updates target and visibility of the
	// existing one for the same profile and category.
	Upsert(ctx context.Context, goal *model.UserGoal) error
	ByProfileCategory(ctx context.Context, profileID, categoryID string) (*model.UserGoal, error)
}

type userGoalRepository struct {
	db sqlx.ExtContext
}

func NewUserGoalRepository(db sqlx.ExtContext) UserGoalRepository {
	return &userGoalRepository{db: db}
}

func (r *userGoalRepository) Upsert(ctx context.Context, goal *model.UserGoal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_goals (id, profile_id, category_id, target_per_week, visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (profile_id, category_id)
		DO UPDATE SET target_per_week = excluded.target_per_week,
			visibility = excluded.visibility,
			updated_at = excluded.updated_at
	`, goal.ID, goal.ProfileID, goal.CategoryID, goal.TargetPerWeek, goal.Visibility, goal.CreatedAt, goal.UpdatedAt)
	return err
}

func (r *userGoalRepository) ByProfileCategory(ctx context.Context, profileID, categoryID string) (*model.UserGoal, error) {
	goal := &model.UserGoal{}
	err := sqlx.GetContext(ctx, r.db, goal, `
		SELECT * FROM user_goals WHERE profile_id = $1 AND category_id = $2
	`, profileID, categoryID)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}
	return goal, nil
}
