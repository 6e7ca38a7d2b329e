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
	ErrMatchNotFound   = errors.New("match not found")
	ErrDuplicateMember = errors.New("profile is already a member of match")
)

type MatchRepository interface {
	// Create inserts the match and its members.
	Create(ctx context.Context, match *model.Match) error
	ByID(ctx context.Context, id string) (*model.Match, error)
	ForProfile(ctx context.Context, profileID, status string) ([]*model.Match, error)
	AddMember(ctx context.Context, member *model.MatchMember) error
	Members(ctx context.Context, matchID string) ([]*model.MatchMember, error)

	// End moves an active match to ended. It reports false when the match
	// had already ended.
	End(ctx context.Context, id, reason string, at time.Time) (bool, error)
}

type matchRepository struct {
	db sqlx.ExtContext
}

func NewMatchRepository(db sqlx.ExtContext) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(ctx context.Context, match *model.Match) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO matches (id, category_id, status, created_at, end_reason)
		VALUES ($1, $2, $3, $4, $5)
	`, match.ID, match.CategoryID, match.Status, match.CreatedAt, match.EndReason)
	if err != nil {
		return err
	}

	for _, member := range match.Members {
		member.MatchID = match.ID
		if err := r.AddMember(ctx, member); err != nil {
			return err
		}
	}
	return nil
}

func (r *matchRepository) ByID(ctx context.Context, id string) (*model.Match, error) {
	match := &model.Match{}
	err := sqlx.GetContext(ctx, r.db, match, `SELECT * FROM matches WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}

	match.Members, err = r.Members(ctx, id)
	if err != nil {
		return nil, err
	}
	return match, nil
}

// ForProfile lists matches the profile belongs to, newest first. An empty
// status returns matches of every status.
func (r *matchRepository) ForProfile(ctx context.Context, profileID, status string) ([]*model.Match, error) {
	query := `
		SELECT m.id, m.category_id, m.status, m.created_at, m.ended_at, m.end_reason
		FROM matches m
		JOIN match_members mm ON mm.match_id = m.id
		WHERE mm.profile_id = $1`
	args := []any{profileID}
	if status != "" {
		query += ` AND m.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY m.created_at DESC, m.id DESC`

	var matches []*model.Match
	if err := sqlx.SelectContext(ctx, r.db, &matches, query, args...); err != nil {
		return nil, err
	}

	for _, match := range matches {
		members, err := r.Members(ctx, match.ID)
		if err != nil {
			return nil, err
		}
		match.Members = members
	}
	return matches, nil
}

func (r *matchRepository) AddMember(ctx context.Context, member *model.MatchMember) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO match_members (match_id, profile_id, joined_at)
		VALUES ($1, $2, $3)
	`, member.MatchID, member.ProfileID, member.JoinedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateMember
	}
	return err
}

func (r *matchRepository) Members(ctx context.Context, matchID string) ([]*model.MatchMember, error) {
	var members []*model.MatchMember
	err := sqlx.SelectContext(ctx, r.db, &members, `
		SELECT * FROM match_members WHERE match_id = $1 ORDER BY joined_at ASC, profile_id ASC
	`, matchID)
	return members, err
}

func (r *matchRepository) End(ctx context.Context, id, reason string, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE matches SET status = $1, ended_at = $2, end_reason = $3
		WHERE id = $4 AND status = $5
	`, model.MatchStatusEnded, at, reason, id, model.MatchStatusActive)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}
