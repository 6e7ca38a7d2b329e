package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountabro/backend/internal/lease"
	"github.com/accountabro/backend/internal/model"
)

// Scenario A
func TestMatching_PairsTwoRequests(t *testing.T) {
	env := newTestEnv(t)
	gym := env.category(t, "gym")
	p1 := env.profile(t, "p1")
	p2 := env.profile(t, "p2")

	r1 := env.enqueue(t, p1, gym)
	r2 := env.enqueue(t, p2, gym)

	result, err := env.engine.RunPass(env.ctx, gym.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Considered)
	assert.Equal(t, 0, result.Unpaired)
	require.Len(t, result.Matches, 1)

	match := result.Matches[0]
	assert.Equal(t, gym.ID, match.CategoryID)
	assert.Equal(t, model.MatchStatusActive, match.Status)
	assert.ElementsMatch(t, []string{p1.ID, p2.ID}, memberIDs(match))

	assert.Equal(t, model.RequestStatusMatched, env.requestStatus(t, r1.ID))
	assert.Equal(t, model.RequestStatusMatched, env.requestStatus(t, r2.ID))

	stored, err := env.lifecycle.Get(env.ctx, match.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{p1.ID, p2.ID}, memberIDs(stored))
}

// Scenario B
func TestMatching_BlockedPairStaysPending(t *testing.T) {
	env := newTestEnv(t)
	gym := env.category(t, "gym")
	p1 := env.profile(t, "p1")
	p2 := env.profile(t, "p2")

	r1 := env.enqueue(t, p1, gym)
	r2 := env.enqueue(t, p2, gym)
	require.NoError(t, env.safety.Block(env.ctx, p1.ID, p2.ID))

	result, err := env.engine.RunPass(env.ctx, gym.ID)
	require.NoError(t, err)

	assert.Empty(t, result.Matches)
	assert.Equal(t, 2, result.Unpaired)
	assert.Equal(t, model.RequestStatusPending, env.requestStatus(t, r1.ID))
	assert.Equal(t, model.RequestStatusPending, env.requestStatus(t, r2.ID))

	matches, err := env.lifecycle.ForProfile(env.ctx, p1.ID, "")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMatching_SecondPassIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	gym := env.category(t, "gym")
	for _, name := range []string{"a", "b", "c"} {
		env.enqueue(t, env.profile(t, name), gym)
	}

	first, err := env.engine.RunPass(env.ctx, gym.ID)
	require.NoError(t, err)
	assert.Len(t, first.Matches, 1)
	assert.Equal(t, 1, first.Unpaired)

	second, err := env.engine.RunPass(env.ctx, gym.ID)
	require.NoError(t, err)
	assert.Empty(t, second.Matches)
	assert.Equal(t, 1, second.Considered)
}

func TestMatching_GreedySkipsIneligible(t *testing.T) {
	env := newTestEnv(t)
	gym := env.category(t, "gym")
	p1 := env.profile(t, "p1")
	p2 := env.profile(t, "p2")
	p3 := env.profile(t, "p3")
	p4 := env.profile(t, "p4")

	for _, p := range []*model.Profile{p1, p2, p3, p4} {
		env.enqueue(t, p, gym)
	}
	require.NoError(t, env.safety.Block(env.ctx, p2.ID, p1.ID))

	result, err := env.engine.RunPass(env.ctx, gym.ID)
	require.NoError(t, err)
	require.Len(t, result.Matches, 2)

	// p1 skips p2 and takes p3; p2 then pairs with p4.
	assert.ElementsMatch(t, []string{p1.ID, p3.ID}, memberIDs(result.Matches[0]))
	assert.ElementsMatch(t, []string{p2.ID, p4.ID}, memberIDs(result.Matches[1]))
}

func TestGreedyPairs(t *testing.T) {
	reqs := func(profiles ...string) []*model.MatchRequest {
		out := make([]*model.MatchRequest, len(profiles))
		for i, p := range profiles {
			out[i] = &model.MatchRequest{ID: "r-" + p, ProfileID: p}
		}
		return out
	}
	blocked := func(pairs ...[2]string) func(a, b string) bool {
		set := BlockSet{}
		for _, p := range pairs {
			set[pairKey(p[0], p[1])] = struct{}{}
		}
		return set.Eligible
	}

	tests := []struct {
		name     string
		snapshot []*model.MatchRequest
		eligible func(a, b string) bool
		want     [][2]string
	}{
		{
			name:     "empty",
			snapshot: nil,
			eligible: blocked(),
			want:     nil,
		},
		{
			name:     "fifo pairs",
			snapshot: reqs("a", "b", "c", "d", "e"),
			eligible: blocked(),
			want:     [][2]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:     "oldest waits when blocked against everyone",
			snapshot: reqs("a", "b", "c"),
			eligible: blocked([2]string{"a", "b"}, [2]string{"c", "a"}),
			want:     [][2]string{{"b", "c"}},
		},
		{
			name:     "skip then resume",
			snapshot: reqs("a", "b", "c", "d"),
			eligible: blocked([2]string{"a", "b"}, [2]string{"a", "c"}),
			want:     [][2]string{{"a", "d"}, {"b", "c"}},
		},
		{
			name:     "same profile never paired",
			snapshot: reqs("a", "a"),
			eligible: func(a, b string) bool { return true },
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := greedyPairs(tt.snapshot, tt.eligible)

			var got [][2]string
			for _, p := range pairs {
				got = append(got, [2]string{p[0].ProfileID, p[1].ProfileID})
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatching_CategoriesAreIsolated(t *testing.T) {
	env := newTestEnv(t)
	gym := env.category(t, "gym")
	reading := env.category(t, "reading")
	p1 := env.profile(t, "p1")
	p2 := env.profile(t, "p2")

	env.enqueue(t, p1, gym)
	env.enqueue(t, p2, reading)

	for _, c := range []*model.Category{gym, reading} {
		result, err := env.engine.RunPass(env.ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, result.Matches)
	}
}

func TestMatching_UnavailableProfileNotSelected(t *testing.T) {
	env := newTestEnv(t)
	gym := env.category(t, "gym")
	p1 := env.profile(t, "p1")
	p2 := env.profile(t, "p2")
	p3 := env.profile(t, "p3")

	r1 := env.enqueue(t, p1, gym)
	env.enqueue(t, p2, gym)
	env.enqueue(t, p3, gym)

	_, err := env.profiles.SetAvailability(env.ctx, p1.ID, false)
	require.NoError(t, err)

	result, err := env.engine.RunPass(env.ctx, gym.ID)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.ElementsMatch(t, []string{p2.ID, p3.ID}, memberIDs(result.Matches[0]))
	assert.Equal(t, model.RequestStatusPending, env.requestStatus(t, r1.ID))
}

func TestMatching_WithdrawWinsOverPairing(t *testing.T) {
	env := newTestEnv(t)
	gym := env.category(t, "gym")
	p1 := env.profile(t, "p1")
	p2 := env.profile(t, "p2")

	r1 := env.enqueue(t, p1, gym)
	r2 := env.enqueue(t, p2, gym)

	snapshot, err := env.queue.ClaimCandidates(env.ctx, gym.ID, 10)
	require.NoError(t, err)
	require.Len(t, snapshot, 2)

	_, err = env.queue.Withdraw(env.ctx, r2.ID, p2.ID)
	require.NoError(t, err)

	_, err = env.engine.commitPair(env.ctx, [2]*model.MatchRequest{snapshot[0], snapshot[1]})
	assert.ErrorIs(t, err, errPairTaken)

	assert.Equal(t, model.RequestStatusPending, env.requestStatus(t, r1.ID), "claim is rolled back")
	assert.Equal(t, model.RequestStatusCanceled, env.requestStatus(t, r2.ID))

	matches, err := env.lifecycle.ForProfile(env.ctx, p1.ID, "")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMatching_ContendedPairsCountAsUnpaired(t *testing.T) {
	env := newTestEnv(t)
	gym := env.category(t, "gym")
	p1 := env.profile(t, "p1")
	p2 := env.profile(t, "p2")
	p3 := env.profile(t, "p3")
	p4 := env.profile(t, "p4")
	p5 := env.profile(t, "p5")

	env.enqueue(t, p1, gym)
	r2 := env.enqueue(t, p2, gym)
	env.enqueue(t, p3, gym)
	env.enqueue(t, p4, gym)
	env.enqueue(t, p5, gym)

	snapshot, err := env.queue.ClaimCandidates(env.ctx, gym.ID, 10)
	require.NoError(t, err)
	require.Len(t, snapshot, 5)

	_, err = env.queue.Withdraw(env.ctx, r2.ID, p2.ID)
	require.NoError(t, err)

	result := &PassResult{CategoryID: gym.ID, Considered: len(snapshot)}
	pairs := greedyPairs(snapshot, func(string, string) bool { return true })
	require.Len(t, pairs, 2)
	require.NoError(t, env.engine.commitPairs(env.ctx, result, pairs))

	require.Len(t, result.Matches, 1)
	assert.ElementsMatch(t, []string{p3.ID, p4.ID}, memberIDs(result.Matches[0]))
	assert.Equal(t, 1, result.Contended)
	assert.Equal(t, 3, result.Unpaired, "p5 plus both requests of the contended pair")
	assert.Equal(t, result.Considered, 2*len(result.Matches)+result.Unpaired)
}

func TestMatching_BlockAfterSnapshot(t *testing.T) {
	env := newTestEnv(t)
	gym := env.category(t, "gym")
	p1 := env.profile(t, "p1")
	p2 := env.profile(t, "p2")

	env.enqueue(t, p1, gym)
	env.enqueue(t, p2, gym)

	snapshot, err := env.queue.ClaimCandidates(env.ctx, gym.ID, 10)
	require.NoError(t, err)

	require.NoError(t, env.safety.Block(env.ctx, p2.ID, p1.ID))

	_, err = env.engine.commitPair(env.ctx, [2]*model.MatchRequest{snapshot[0], snapshot[1]})
	assert.ErrorIs(t, err, errPairTaken)
}

func TestMatching_ConcurrentPassesNeverDoubleClaim(t *testing.T) {
	env := newTestEnv(t)
	gym := env.category(t, "gym")

	// No lease: the compare-and-swap alone must keep passes consistent.
	engine := NewMatchingEngine(env.store, env.queue, env.safety, nil, env.clock, DefaultBatchSize)

	const profiles = 10
	for i := 0; i < profiles; i++ {
		env.enqueue(t, env.profile(t, string(rune('a'+i))), gym)
	}

	var wg sync.WaitGroup
	results := make(chan *PassResult, 5)

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := engine.RunPass(context.Background(), gym.ID)
			if assert.NoError(t, err) {
				results <- result
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]int)
	total := 0
	for result := range results {
		assert.Equal(t, result.Considered, 2*len(result.Matches)+result.Unpaired)
		for _, m := range result.Matches {
			total++
			for _, id := range memberIDs(m) {
				seen[id]++
			}
		}
	}

	assert.Equal(t, profiles/2, total)
	assert.Len(t, seen, profiles)
	for id, n := range seen {
		assert.Equal(t, 1, n, "profile %s matched more than once", id)
	}

	count, err := env.queue.PendingCount(env.ctx, gym.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

type heldLocker struct{}

func (heldLocker) Acquire(context.Context, string) (func(), error) {
	return nil, lease.ErrHeld
}

func TestMatching_SkipsWhenLeaseHeld(t *testing.T) {
	env := newTestEnv(t)
	gym := env.category(t, "gym")
	env.enqueue(t, env.profile(t, "p1"), gym)
	env.enqueue(t, env.profile(t, "p2"), gym)

	engine := NewMatchingEngine(env.store, env.queue, env.safety, heldLocker{}, env.clock, DefaultBatchSize)

	result, err := engine.RunPass(env.ctx, gym.ID)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Empty(t, result.Matches)

	count, err := env.queue.PendingCount(env.ctx, gym.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMatching_BatchSizeBoundsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	gym := env.category(t, "gym")
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		env.enqueue(t, env.profile(t, name), gym)
	}

	engine := NewMatchingEngine(env.store, env.queue, env.safety, nil, env.clock, 2)

	result, err := engine.RunPass(env.ctx, gym.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Considered)
	assert.Len(t, result.Matches, 1)
}
