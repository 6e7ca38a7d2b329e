package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountabro/backend/internal/model"
)

func TestQueue_Enqueue(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "p1")
	gym := env.category(t, "gym")

	var notified []string
	env.queue.SetNotifier(func(categoryID string) { notified = append(notified, categoryID) })

	req, err := env.queue.Enqueue(env.ctx, p.ID, gym.ID)
	require.NoError(t, err)

	assert.Equal(t, model.RequestStatusPending, req.Status)
	assert.Equal(t, p.ID, req.ProfileID)
	assert.Equal(t, gym.ID, req.CategoryID)
	assert.Nil(t, req.ResolvedAt)
	assert.Equal(t, []string{gym.ID}, notified)
}

func TestQueue_EnqueueDuplicatePending(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "p1")
	gym := env.category(t, "gym")
	reading := env.category(t, "reading")

	env.enqueue(t, p, gym)

	_, err := env.queue.Enqueue(env.ctx, p.ID, gym.ID)
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	// Other categories are independent.
	env.enqueue(t, p, reading)

	count, err := env.queue.PendingCount(env.ctx, gym.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestQueue_EnqueuePreconditions(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "p1")
	gym := env.category(t, "gym")

	_, err := env.queue.Enqueue(env.ctx, "missing", gym.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.queue.Enqueue(env.ctx, p.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.profiles.SetAvailability(env.ctx, p.ID, false)
	require.NoError(t, err)

	_, err = env.queue.Enqueue(env.ctx, p.ID, gym.ID)
	assert.ErrorIs(t, err, ErrProfileUnavailable)
}

// Scenario E
func TestQueue_WithdrawTwice(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "p1")
	gym := env.category(t, "gym")
	req := env.enqueue(t, p, gym)

	withdrawn, err := env.queue.Withdraw(env.ctx, req.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusCanceled, withdrawn.Status)
	assert.NotNil(t, withdrawn.ResolvedAt)

	_, err = env.queue.Withdraw(env.ctx, req.ID, p.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	// A fresh request can be made once the old one is canceled.
	env.enqueue(t, p, gym)
}

func TestQueue_WithdrawPreconditions(t *testing.T) {
	env := newTestEnv(t)
	p1 := env.profile(t, "p1")
	p2 := env.profile(t, "p2")
	gym := env.category(t, "gym")

	_, err := env.queue.Withdraw(env.ctx, "missing", "")
	assert.ErrorIs(t, err, ErrNotFound)

	req := env.enqueue(t, p1, gym)
	_, err = env.queue.Withdraw(env.ctx, req.ID, p2.ID)
	assert.ErrorIs(t, err, ErrNotFound, "requests owned by someone else are invisible")

	env.enqueue(t, p2, gym)
	_, err = env.engine.RunPass(env.ctx, gym.ID)
	require.NoError(t, err)

	_, err = env.queue.Withdraw(env.ctx, req.ID, p1.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, model.RequestStatusMatched, env.requestStatus(t, req.ID))
}

func TestQueue_ClaimCandidatesFIFO(t *testing.T) {
	env := newTestEnv(t)
	gym := env.category(t, "gym")

	var ids []string
	for _, name := range []string{"a", "b", "c", "d"} {
		ids = append(ids, env.enqueue(t, env.profile(t, name), gym).ID)
	}

	snapshot, err := env.queue.ClaimCandidates(env.ctx, gym.ID, 3)
	require.NoError(t, err)
	require.Len(t, snapshot, 3)
	for i, req := range snapshot {
		assert.Equal(t, ids[i], req.ID)
	}

	// The snapshot does not change state.
	assert.Equal(t, model.RequestStatusPending, env.requestStatus(t, ids[0]))
}

func TestQueue_ClaimCandidatesSkipsUnavailable(t *testing.T) {
	env := newTestEnv(t)
	gym := env.category(t, "gym")
	p1 := env.profile(t, "p1")
	p2 := env.profile(t, "p2")

	env.enqueue(t, p1, gym)
	req2 := env.enqueue(t, p2, gym)

	_, err := env.profiles.SetAvailability(env.ctx, p1.ID, false)
	require.NoError(t, err)

	snapshot, err := env.queue.ClaimCandidates(env.ctx, gym.ID, 10)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, req2.ID, snapshot[0].ID)

	count, err := env.queue.PendingCount(env.ctx, gym.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "unavailable profiles keep their pending request")
}
