package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/accountabro/backend/internal/model"
)

var (
	ErrMatchRequestNotFound    = errors.New("match request not found")
	ErrDuplicatePendingRequest = errors.New("pending request already exists for category")
)

type MatchRequestRepository interface {
	Create(ctx context.Context, req *model.MatchRequest) error
	ByID(ctx context.Context, id string) (*model.MatchRequest, error)
	PendingFor(ctx context.Context, profileID, categoryID string) (*model.MatchRequest, error)

	// Pending returns up to limit pending requests of the category whose
	// owners are available for matching, oldest first.
	Pending(ctx context.Context, categoryID string, limit int) ([]*model.MatchRequest, error)
	CountPending(ctx context.Context, categoryID string) (int, error)

	// MarkMatched moves the given requests from pending to matched and
	// returns how many rows actually transitioned.
	MarkMatched(ctx context.Context, ids []string, at time.Time) (int64, error)

	// Cancel moves a pending request to canceled. It reports false when the
	// request was no longer pending.
	Cancel(ctx context.Context, id string, at time.Time) (bool, error)
}

type matchRequestRepository struct {
	db sqlx.ExtContext
}

func NewMatchRequestRepository(db sqlx.ExtContext) MatchRequestRepository {
	return &matchRequestRepository{db: db}
}

func (r *matchRequestRepository) Create(ctx context.Context, req *model.MatchRequest) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO match_requests (id, profile_id, category_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, req.ID, req.ProfileID, req.CategoryID, req.Status, req.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicatePendingRequest
	}
	return err
}

func (r *matchRequestRepository) ByID(ctx context.Context, id string) (*model.MatchRequest, error) {
	req := &model.MatchRequest{}
	err := sqlx.GetContext(ctx, r.db, req, `SELECT * FROM match_requests WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrMatchRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *matchRequestRepository) PendingFor(ctx context.Context, profileID, categoryID string) (*model.MatchRequest, error) {
	req := &model.MatchRequest{}
	err := sqlx.GetContext(ctx, r.db, req, `
		SELECT * FROM match_requests
		WHERE profile_id = $1 AND category_id = $2 AND status = $3
	`, profileID, categoryID, model.RequestStatusPending)
	if err == sql.ErrNoRows {
		return nil, ErrMatchRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *matchRequestRepository) Pending(ctx context.Context, categoryID string, limit int) ([]*model.MatchRequest, error) {
	var reqs []*model.MatchRequest
	err := sqlx.SelectContext(ctx, r.db, &reqs, `
		SELECT r.id, r.profile_id, r.category_id, r.status, r.created_at, r.resolved_at
		FROM match_requests r
		JOIN profiles p ON p.id = r.profile_id
		WHERE r.category_id = $1 AND r.status = $2 AND p.is_available_for_matching = $3
		ORDER BY r.created_at ASC, r.id ASC
		LIMIT $4
	`, categoryID, model.RequestStatusPending, true, limit)
	return reqs, err
}

func (r *matchRequestRepository) CountPending(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count, `
		SELECT COUNT(*) FROM match_requests WHERE category_id = $1 AND status = $2
	`, categoryID, model.RequestStatusPending)
	return count, err
}

func (r *matchRequestRepository) MarkMatched(ctx context.Context, ids []string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`
		UPDATE match_requests SET status = ?, resolved_at = ?
		WHERE status = ? AND id IN (?)
	`, model.RequestStatusMatched, at, model.RequestStatusPending, ids)
	if err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *matchRequestRepository) Cancel(ctx context.Context, id string, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE match_requests SET status = $1, resolved_at = $2
		WHERE id = $3 AND status = $4
	`, model.RequestStatusCanceled, at, id, model.RequestStatusPending)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}
