package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/accountabro/backend/internal/lease"
	"github.com/accountabro/backend/internal/model"
	"github.com/accountabro/backend/internal/repository"
)

const DefaultBatchSize = 200

// PassResult summarizes one matching pass over a category.
type PassResult struct {
	CategoryID string         `json:"category_id"`
	Considered int            `json:"considered"`
	Matches    []*model.Match `json:"matches"`
	// Unpaired requests left this pass still pending, either with no eligible
	// partner or in a contended pair. Considered == 2*len(Matches) + Unpaired.
	Unpaired int `json:"unpaired"`
	// Contended pairs lost a race to a concurrent withdraw or pass. Both of
	// their requests are counted in Unpaired.
	Contended int `json:"contended"`
	// Skipped is set when another worker holds the category lease.
	Skipped bool `json:"skipped"`
}

// MatchingEngine turns pending requests into active pairs.
type MatchingEngine struct {
	store     *repository.Store
	queue     *QueueService
	safety    *SafetyService
	locker    lease.Locker
	clock     Clock
	batchSize int
}

// NewMatchingEngine creates the engine. A nil locker lets passes in the same
// category run concurrently, relying on the pairing compare-and-swap alone.
func NewMatchingEngine(
	store *repository.Store,
	queue *QueueService,
	safety *SafetyService,
	locker lease.Locker,
	clock Clock,
	batchSize int,
) *MatchingEngine {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &MatchingEngine{
		store:     store,
		queue:     queue,
		safety:    safety,
		locker:    locker,
		clock:     clock,
		batchSize: batchSize,
	}
}

// RunPass runs one greedy FIFO pass over the category. Running it again with
// no new requests creates no new matches.
func (e *MatchingEngine) RunPass(ctx context.Context, categoryID string) (*PassResult, error) {
	result := &PassResult{CategoryID: categoryID, Matches: []*model.Match{}}

	if e.locker != nil {
		release, err := e.locker.Acquire(ctx, "match-pass:"+categoryID)
		if errors.Is(err, lease.ErrHeld) {
			slog.Debug("matching pass skipped, lease held", "category_id", categoryID)
			result.Skipped = true
			return result, nil
		}
		if err != nil {
			return nil, err
		}
		defer release()
	}

	snapshot, err := e.queue.ClaimCandidates(ctx, categoryID, e.batchSize)
	if err != nil {
		return nil, err
	}
	result.Considered = len(snapshot)
	if len(snapshot) < 2 {
		result.Unpaired = len(snapshot)
		return result, nil
	}

	profileIDs := make([]string, len(snapshot))
	for i, req := range snapshot {
		profileIDs[i] = req.ProfileID
	}
	blocks, err := e.safety.BlockSet(ctx, profileIDs)
	if err != nil {
		return nil, err
	}

	pairs := greedyPairs(snapshot, blocks.Eligible)
	if err := e.commitPairs(ctx, result, pairs); err != nil {
		return result, err
	}

	if len(result.Matches) > 0 || result.Contended > 0 {
		slog.Info("matching pass completed",
			"category_id", categoryID,
			"considered", result.Considered,
			"matched", len(result.Matches),
			"unpaired", result.Unpaired,
			"contended", result.Contended,
		)
	}
	return result, nil
}

// commitPairs commits each pair in order and tallies the outcome into result.
// result.Considered must already hold the snapshot size.
func (e *MatchingEngine) commitPairs(ctx context.Context, result *PassResult, pairs [][2]*model.MatchRequest) error {
	result.Unpaired = result.Considered - 2*len(pairs)

	for _, pair := range pairs {
		match, err := e.commitPair(ctx, pair)
		if errors.Is(err, errPairTaken) {
			slog.Debug("pair no longer claimable",
				"category_id", result.CategoryID,
				"request_ids", []string{pair[0].ID, pair[1].ID},
			)
			result.Contended++
			result.Unpaired += 2
			continue
		}
		if err != nil {
			return err
		}
		result.Matches = append(result.Matches, match)
	}
	return nil
}

// greedyPairs pairs the oldest unpaired request with the oldest later request
// it is eligible with. Requests without an eligible partner stay unpaired.
func greedyPairs(snapshot []*model.MatchRequest, eligible func(a, b string) bool) [][2]*model.MatchRequest {
	var pairs [][2]*model.MatchRequest
	paired := make([]bool, len(snapshot))

	for i, r1 := range snapshot {
		if paired[i] {
			continue
		}
		for j := i + 1; j < len(snapshot); j++ {
			r2 := snapshot[j]
			if paired[j] || r1.ProfileID == r2.ProfileID {
				continue
			}
			if !eligible(r1.ProfileID, r2.ProfileID) {
				continue
			}
			paired[i], paired[j] = true, true
			pairs = append(pairs, [2]*model.MatchRequest{r1, r2})
			break
		}
	}
	return pairs
}

// commitPair claims both requests and creates the match in one transaction.
// It returns errPairTaken when the pair can no longer be formed.
func (e *MatchingEngine) commitPair(ctx context.Context, pair [2]*model.MatchRequest) (*model.Match, error) {
	var match *model.Match

	err := e.store.InTx(ctx, func(r repository.Repos) error {
		for _, req := range pair {
			profile, err := r.Profiles.ByID(ctx, req.ProfileID)
			if err != nil {
				return err
			}
			if !profile.IsAvailableForMatching {
				return errPairTaken
			}
		}

		blocked, err := r.Blocks.Exists(ctx, pair[0].ProfileID, pair[1].ProfileID)
		if err != nil {
			return err
		}
		if blocked {
			return errPairTaken
		}

		now := e.clock.Now()
		claimed, err := r.Requests.MarkMatched(ctx, []string{pair[0].ID, pair[1].ID}, now)
		if err != nil {
			return fmt.Errorf("failed to claim requests: %w", err)
		}
		if claimed != 2 {
			return errPairTaken
		}

		match = &model.Match{
			ID:         uuid.New().String(),
			CategoryID: pair[0].CategoryID,
			Status:     model.MatchStatusActive,
			CreatedAt:  now,
			Members: []*model.MatchMember{
				{ProfileID: pair[0].ProfileID, JoinedAt: now},
				{ProfileID: pair[1].ProfileID, JoinedAt: now},
			},
		}
		if err := r.Matches.Create(ctx, match); err != nil {
			return fmt.Errorf("failed to create match: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("match created",
		"match_id", match.ID,
		"category_id", match.CategoryID,
		"profile_ids", []string{pair[0].ProfileID, pair[1].ProfileID},
	)
	return match, nil
}
