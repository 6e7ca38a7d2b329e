package model

import (
	"time"
)

const (
	GoalVisibilityPrivate = "private"
	GoalVisibilityPartner = "partner"

	DefaultTargetPerWeek = 3
)

type UserGoal struct {
	ID            string    `db:"id" json:"id"`
	ProfileID     string    `db:"profile_id" json:"profile_id"`
	CategoryID    string    `db:"category_id" json:"category_id"`
	TargetPerWeek int       `db:"target_per_week" json:"target_per_week"`
	Visibility    string    `db:"visibility" json:"visibility"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
