package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/accountabro/backend/internal/model"
	"github.com/accountabro/backend/internal/repository"
)

// QueueService holds pending match requests per category in arrival order.
type QueueService struct {
	store *repository.Store
	clock Clock

	mu       sync.RWMutex
	notifier func(categoryID string)
}

func NewQueueService(store *repository.Store, clock Clock) *QueueService {
	return &QueueService{store: store, clock: clock}
}

// SetNotifier registers fn to be called after every successful enqueue,
// typically to trigger a matching pass for that category.
func (s *QueueService) SetNotifier(fn func(categoryID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = fn
}

func (s *QueueService) Enqueue(ctx context.Context, profileID, categoryID string) (*model.MatchRequest, error) {
	var req *model.MatchRequest

	err := s.store.InTx(ctx, func(r repository.Repos) error {
		profile, err := r.Profiles.ByID(ctx, profileID)
		if errors.Is(err, repository.ErrProfileNotFound) {
			return fmt.Errorf("profile %s: %w", profileID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if !profile.IsAvailableForMatching {
			return ErrProfileUnavailable
		}

		if _, err := r.Categories.ByID(ctx, categoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
			}
			return err
		}

		_, err = r.Requests.PendingFor(ctx, profileID, categoryID)
		if err == nil {
			return ErrDuplicateRequest
		}
		if !errors.Is(err, repository.ErrMatchRequestNotFound) {
			return err
		}

		req = &model.MatchRequest{
			ID:         uuid.New().String(),
			ProfileID:  profileID,
			CategoryID: categoryID,
			Status:     model.RequestStatusPending,
			CreatedAt:  s.clock.Now(),
		}
		err = r.Requests.Create(ctx, req)
		if errors.Is(err, repository.ErrDuplicatePendingRequest) {
			return ErrDuplicateRequest
		}
		if err != nil {
			return fmt.Errorf("failed to create match request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("match request enqueued", "request_id", req.ID, "profile_id", profileID, "category_id", categoryID)

	s.mu.RLock()
	notify := s.notifier
	s.mu.RUnlock()
	if notify != nil {
		notify(categoryID)
	}

	return req, nil
}

// Withdraw cancels a pending request. A non-empty profileID must own the
// request; otherwise the request is reported as not found.
func (s *QueueService) Withdraw(ctx context.Context, requestID, profileID string) (*model.MatchRequest, error) {
	var req *model.MatchRequest

	err := s.store.InTx(ctx, func(r repository.Repos) error {
		var err error
		req, err = r.Requests.ByID(ctx, requestID)
		if errors.Is(err, repository.ErrMatchRequestNotFound) {
			return fmt.Errorf("match request %s: %w", requestID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if profileID != "" && req.ProfileID != profileID {
			return fmt.Errorf("match request %s: %w", requestID, ErrNotFound)
		}
		if !req.IsPending() {
			return fmt.Errorf("match request is %s: %w", req.Status, ErrInvalidState)
		}

		now := s.clock.Now()
		canceled, err := r.Requests.Cancel(ctx, requestID, now)
		if err != nil {
			return fmt.Errorf("failed to cancel match request: %w", err)
		}
		if !canceled {
			return fmt.Errorf("match request no longer pending: %w", ErrInvalidState)
		}

		req.Status = model.RequestStatusCanceled
		req.ResolvedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("match request withdrawn", "request_id", requestID, "profile_id", req.ProfileID)
	return req, nil
}

// ClaimCandidates returns up to limit pending requests of the category in
// FIFO order. It is a read-only snapshot; pairing claims requests later with
// a compare-and-swap.
func (s *QueueService) ClaimCandidates(ctx context.Context, categoryID string, limit int) ([]*model.MatchRequest, error) {
	reqs, err := s.store.Requests.Pending(ctx, categoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending requests: %w", err)
	}
	return reqs, nil
}

func (s *QueueService) PendingCount(ctx context.Context, categoryID string) (int, error) {
	return s.store.Requests.CountPending(ctx, categoryID)
}

func (s *QueueService) Request(ctx context.Context, requestID string) (*model.MatchRequest, error) {
	req, err := s.store.Requests.ByID(ctx, requestID)
	if errors.Is(err, repository.ErrMatchRequestNotFound) {
		return nil, fmt.Errorf("match request %s: %w", requestID, ErrNotFound)
	}
	return req, err
}
