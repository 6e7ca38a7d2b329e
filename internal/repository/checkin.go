package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/accountabro/backend/internal/model"
)

var (
	ErrDuplicateCheckIn = errors.New("check-in already recorded for date")
)

type CheckInRepository interface {
	Create(ctx context.Context, checkIn *model.CheckIn) error
	ByMatch(ctx context.Context, matchID string) ([]*model.CheckIn, error)

	// ByMember returns the member's check-ins with from <= date <= to,
	// ordered by date. Dates are compared as YYYY-MM-DD strings.
	ByMember(ctx context.Context, matchID, profileID, from, to string) ([]*model.CheckIn, error)
}

type checkInRepository struct {
	db sqlx.ExtContext
}

func NewCheckInRepository(db sqlx.ExtContext) CheckInRepository {
	return &checkInRepository{db: db}
}

func (r *checkInRepository) Create(ctx context.Context, checkIn *model.CheckIn) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO checkins (id, match_id, profile_id, category_id, checkin_date, result, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, checkIn.ID, checkIn.MatchID, checkIn.ProfileID, checkIn.CategoryID,
		checkIn.CheckinDate, checkIn.Result, checkIn.Note, checkIn.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateCheckIn
	}
	return err
}

func (r *checkInRepository) ByMatch(ctx context.Context, matchID string) ([]*model.CheckIn, error) {
	var checkIns []*model.CheckIn
	err := sqlx.SelectContext(ctx, r.db, &checkIns, `
		SELECT * FROM checkins WHERE match_id = $1
		ORDER BY checkin_date DESC, created_at DESC
	`, matchID)
	return checkIns, err
}

func (r *checkInRepository) ByMember(ctx context.Context, matchID, profileID, from, to string) ([]*model.CheckIn, error) {
	var checkIns []*model.CheckIn
	err := sqlx.SelectContext(ctx, r.db, &checkIns, `
		SELECT * FROM checkins
		WHERE match_id = $1 AND profile_id = $2 AND checkin_date >= $3 AND checkin_date <= $4
		ORDER BY checkin_date ASC
	`, matchID, profileID, from, to)
	return checkIns, err
}
