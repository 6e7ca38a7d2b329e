package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Repos groups the repositories bound to one database handle, either the
// pool or a single transaction.
type Repos struct {
	Profiles   ProfileRepository
	Categories CategoryRepository
	Goals      UserGoalRepository
	Requests   MatchRequestRepository
	Matches    MatchRepository
	CheckIns   CheckInRepository
	Blocks     BlockRepository
	Reports    ReportRepository
}

func NewRepos(db sqlx.ExtContext) Repos {
	return Repos{
		Profiles:   NewProfileRepository(db),
		Categories: NewCategoryRepository(db),
		Goals:      NewUserGoalRepository(db),
		Requests:   NewMatchRequestRepository(db),
		Matches:    NewMatchRepository(db),
		CheckIns:   NewCheckInRepository(db),
		Blocks:     NewBlockRepository(db),
		Reports:    NewReportRepository(db),
	}
}

// Store exposes the pool-bound repositories and runs units of work that must
// commit or roll back as a whole.
type Store struct {
	Repos
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		Repos: NewRepos(db),
		db:    db,
	}
}

// InTx runs fn inside one transaction. Repositories handed to fn must not be
// retained after it returns.
func (s *Store) InTx(ctx context.Context, fn func(r Repos) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

// isUniqueViolation works for both SQLite and PostgreSQL
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed: UNIQUE") ||
		strings.Contains(errStr, "duplicate key value") ||
		strings.Contains(errStr, "PRIMARY KEY constraint failed")
}
