package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/accountabro/backend/internal/lease"
	"github.com/accountabro/backend/internal/model"
	"github.com/accountabro/backend/internal/repository"
	"github.com/accountabro/backend/internal/storage"
	"github.com/accountabro/backend/internal/testutil"
)

// Wednesday
var testStart = time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	ctx        context.Context
	store      *repository.Store
	clock      *testutil.Clock
	archive    *storage.MemoryArchive
	safety     *SafetyService
	queue      *QueueService
	engine     *MatchingEngine
	lifecycle  *LifecycleService
	ledger     *LedgerService
	profiles   *ProfileService
	categories *CategoryService
	goals      *GoalService
	reports    *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repository.NewStore(testutil.NewDB(t))
	clock := testutil.NewClock(testStart)
	archive := storage.NewMemoryArchive()

	safety := NewSafetyService(store, clock)
	queue := NewQueueService(store, clock)

	return &testEnv{
		ctx:        context.Background(),
		store:      store,
		clock:      clock,
		archive:    archive,
		safety:     safety,
		queue:      queue,
		engine:     NewMatchingEngine(store, queue, safety, lease.NewLocal(), clock, DefaultBatchSize),
		lifecycle:  NewLifecycleService(store, clock, DefaultMaxGroupSize),
		ledger:     NewLedgerService(store, clock),
		profiles:   NewProfileService(store.Profiles, clock),
		categories: NewCategoryService(store.Categories, clock),
		goals:      NewGoalService(store, clock),
		reports:    NewReportService(store, archive, clock),
	}
}

func (e *testEnv) profile(t *testing.T, name string) *model.Profile {
	t.Helper()
	p, err := e.profiles.Create(e.ctx, CreateProfileInput{DisplayName: name, Timezone: "UTC"})
	require.NoError(t, err)
	return p
}

func (e *testEnv) category(t *testing.T, slug string) *model.Category {
	t.Helper()
	c, err := e.categories.Create(e.ctx, slug, slug, false)
	require.NoError(t, err)
	return c
}

func (e *testEnv) enqueue(t *testing.T, p *model.Profile, c *model.Category) *model.MatchRequest {
	t.Helper()
	req, err := e.queue.Enqueue(e.ctx, p.ID, c.ID)
	require.NoError(t, err)
	return req
}

// pair enqueues both profiles and runs a pass that must match them.
func (e *testEnv) pair(t *testing.T, a, b *model.Profile, c *model.Category) *model.Match {
	t.Helper()
	e.enqueue(t, a, c)
	e.enqueue(t, b, c)

	result, err := e.engine.RunPass(e.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	return result.Matches[0]
}

func memberIDs(m *model.Match) []string {
	ids := make([]string, 0, len(m.Members))
	for _, member := range m.Members {
		ids = append(ids, member.ProfileID)
	}
	return ids
}

func (e *testEnv) requestStatus(t *testing.T, id string) string {
	t.Helper()
	req, err := e.store.Requests.ByID(e.ctx, id)
	require.NoError(t, err)
	return req.Status
}
