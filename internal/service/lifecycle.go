package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/accountabro/backend/internal/model"
	"github.com/accountabro/backend/internal/repository"
	"github.com/accountabro/backend/internal/validation"
)

const (
	MaxEndReasonLength  = 120
	DefaultEndReason    = "completed"
	DefaultMaxGroupSize = 2
)

// LifecycleService owns the active -> ended state machine of a match and its
// membership.
type LifecycleService struct {
	store        *repository.Store
	clock        Clock
	maxGroupSize int
}

func NewLifecycleService(store *repository.Store, clock Clock, maxGroupSize int) *LifecycleService {
	if maxGroupSize < 2 {
		maxGroupSize = DefaultMaxGroupSize
	}
	return &LifecycleService{
		store:        store,
		clock:        clock,
		maxGroupSize: maxGroupSize,
	}
}

func (s *LifecycleService) Get(ctx context.Context, matchID string) (*model.Match, error) {
	return loadMatch(ctx, s.store.Repos, matchID)
}

// ForProfile lists the profile's matches, newest first. status may be empty.
func (s *LifecycleService) ForProfile(ctx context.Context, profileID, status string) ([]*model.Match, error) {
	matches, err := s.store.Matches.ForProfile(ctx, profileID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	if matches == nil {
		matches = []*model.Match{}
	}
	return matches, nil
}

// End moves the match to ended. Ending twice fails with ErrAlreadyEnded. A
// non-empty profileID must be a member of the match.
func (s *LifecycleService) End(ctx context.Context, matchID, profileID, reason string) (*model.Match, error) {
	reason, err := normalizeEndReason(reason)
	if err != nil {
		return nil, err
	}

	var match *model.Match
	err = s.store.InTx(ctx, func(r repository.Repos) error {
		var err error
		match, err = loadMatch(ctx, r, matchID)
		if err != nil {
			return err
		}
		if profileID != "" {
			if _, ok := match.Member(profileID); !ok {
				return ErrNotAMember
			}
		}
		return endInTx(ctx, r, match, reason, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	slog.Info("match ended", "match_id", matchID, "reason", reason)
	return match, nil
}

// AddMember grows a group match up to the configured group size. With the
// default size of two, pair member sets are immutable.
func (s *LifecycleService) AddMember(ctx context.Context, matchID, profileID string) (*model.Match, error) {
	var match *model.Match

	err := s.store.InTx(ctx, func(r repository.Repos) error {
		var err error
		match, err = loadMatch(ctx, r, matchID)
		if err != nil {
			return err
		}
		if !match.IsActive() {
			return ErrMatchClosed
		}
		if _, ok := match.Member(profileID); ok {
			return ErrAlreadyMember
		}
		if len(match.Members) >= s.maxGroupSize {
			return ErrMatchFull
		}

		if _, err := r.Profiles.ByID(ctx, profileID); err != nil {
			if errors.Is(err, repository.ErrProfileNotFound) {
				return fmt.Errorf("profile %s: %w", profileID, ErrNotFound)
			}
			return err
		}

		for _, member := range match.Members {
			blocked, err := r.Blocks.Exists(ctx, member.ProfileID, profileID)
			if err != nil {
				return err
			}
			if blocked {
				return ErrBlockedMember
			}
		}

		member := &model.MatchMember{MatchID: matchID, ProfileID: profileID, JoinedAt: s.clock.Now()}
		err = r.Matches.AddMember(ctx, member)
		if errors.Is(err, repository.ErrDuplicateMember) {
			return ErrAlreadyMember
		}
		if err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
		match.Members = append(match.Members, member)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("match member added", "match_id", matchID, "profile_id", profileID)
	return match, nil
}

func normalizeEndReason(reason string) (string, error) {
	reason = validation.Normalize(reason)
	if reason == "" {
		return DefaultEndReason, nil
	}
	if validation.Length(reason) > MaxEndReasonLength {
		return "", ErrReasonTooLong
	}
	return reason, nil
}

// endInTx ends an already loaded match and updates it in place.
func endInTx(ctx context.Context, r repository.Repos, match *model.Match, reason string, at time.Time) error {
	if !match.IsActive() {
		return ErrAlreadyEnded
	}

	ended, err := r.Matches.End(ctx, match.ID, reason, at)
	if err != nil {
		return fmt.Errorf("failed to end match: %w", err)
	}
	if !ended {
		return ErrAlreadyEnded
	}

	match.Status = model.MatchStatusEnded
	match.EndedAt = &at
	match.EndReason = reason
	return nil
}

func loadMatch(ctx context.Context, r repository.Repos, matchID string) (*model.Match, error) {
	match, err := r.Matches.ByID(ctx, matchID)
	if errors.Is(err, repository.ErrMatchNotFound) {
		return nil, fmt.Errorf("match %s: %w", matchID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return match, nil
}
