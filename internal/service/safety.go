package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/accountabro/backend/internal/model"
	"github.com/accountabro/backend/internal/repository"
)

// SafetyService answers whether two profiles may be matched and records the
// blocks that decide it.
type SafetyService struct {
	store *repository.Store
	clock Clock
}

func NewSafetyService(store *repository.Store, clock Clock) *SafetyService {
	return &SafetyService{store: store, clock: clock}
}

// IsEligiblePair is false iff either profile blocks the other.
func (s *SafetyService) IsEligiblePair(ctx context.Context, a, b string) (bool, error) {
	if a == b {
		return false, nil
	}
	blocked, err := s.store.Blocks.Exists(ctx, a, b)
	if err != nil {
		return false, fmt.Errorf("failed to check block: %w", err)
	}
	return !blocked, nil
}

// BlockSet loads every block among profileIDs into memory so a pass can test
// eligibility without further queries.
func (s *SafetyService) BlockSet(ctx context.Context, profileIDs []string) (BlockSet, error) {
	blocks, err := s.store.Blocks.Among(ctx, profileIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load blocks: %w", err)
	}

	set := make(BlockSet, len(blocks))
	for _, b := range blocks {
		set[pairKey(b.BlockerID, b.BlockedID)] = struct{}{}
	}
	return set, nil
}

func (s *SafetyService) Block(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == blockedID {
		return ErrSelfBlock
	}

	err := s.store.InTx(ctx, func(r repository.Repos) error {
		return blockInTx(ctx, r, blockerID, blockedID, s.clock)
	})
	if err != nil {
		return err
	}

	slog.Info("profile blocked", "blocker_id", blockerID, "blocked_id", blockedID)
	return nil
}

func (s *SafetyService) Unblock(ctx context.Context, blockerID, blockedID string) error {
	if err := s.store.Blocks.Delete(ctx, blockerID, blockedID); err != nil {
		return fmt.Errorf("failed to delete block: %w", err)
	}
	slog.Info("profile unblocked", "blocker_id", blockerID, "blocked_id", blockedID)
	return nil
}

func blockInTx(ctx context.Context, r repository.Repos, blockerID, blockedID string, clock Clock) error {
	for _, id := range []string{blockerID, blockedID} {
		if _, err := r.Profiles.ByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrProfileNotFound) {
				return fmt.Errorf("profile %s: %w", id, ErrNotFound)
			}
			return err
		}
	}

	err := r.Blocks.Create(ctx, &model.Block{
		BlockerID: blockerID,
		BlockedID: blockedID,
		CreatedAt: clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to create block: %w", err)
	}
	return nil
}

// BlockSet is an immutable symmetric view of blocks. Safe for concurrent
// reads.
type BlockSet map[[2]string]struct{}

// Eligible is false iff a block exists in either direction.
func (b BlockSet) Eligible(x, y string) bool {
	if x == y {
		return false
	}
	_, blocked := b[pairKey(x, y)]
	return !blocked
}

// pairKey orders the two ids so both directions share one key.
func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}
