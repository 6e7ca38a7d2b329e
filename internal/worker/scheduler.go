package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/accountabro/backend/internal/model"
	"github.com/accountabro/backend/internal/service"
)

type PassRunner interface {
	RunPass(ctx context.Context, categoryID string) (*service.PassResult, error)
}

type CategoryLister interface {
	List(ctx context.Context) ([]*model.Category, error)
}

// Scheduler runs matching passes for every category on an interval, and for
// a single category as soon as it is notified of a new request.
type Scheduler struct {
	engine      PassRunner
	categories  CategoryLister
	interval    time.Duration
	parallelism int
	signals     chan string
	wg          sync.WaitGroup
}

const DefaultInterval = 30 * time.Second

func NewScheduler(engine PassRunner, categories CategoryLister, interval time.Duration, parallelism int) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if parallelism < 1 {
		parallelism = 1
	}
	return &Scheduler{
		engine:      engine,
		categories:  categories,
		interval:    interval,
		parallelism: parallelism,
		signals:     make(chan string, 64),
	}
}

// Notify asks for a pass over categoryID. It never blocks; when the buffer is
// full the next interval pass picks the request up.
func (s *Scheduler) Notify(categoryID string) {
	select {
	case s.signals <- categoryID:
	default:
		slog.Debug("matching signal dropped", "category_id", categoryID)
	}
}

// Run blocks until ctx is done, then waits for in-flight passes.
//
// Notified categories coalesce: a category has at most one pass running and
// one waiting, and no more than parallelism notified passes run at once.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer s.wg.Wait()

	slog.Info("matching scheduler started", "interval", s.interval, "parallelism", s.parallelism)

	inflight := make(map[string]bool)
	waiting := make(map[string]bool)
	finished := make(chan string, s.parallelism)

	launch := func() {
		for categoryID := range waiting {
			if len(inflight) >= s.parallelism {
				return
			}
			if inflight[categoryID] {
				continue
			}
			delete(waiting, categoryID)
			inflight[categoryID] = true
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.runOne(ctx, categoryID)
				finished <- categoryID
			}()
		}
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("matching scheduler stopping")
			return
		case <-ticker.C:
			if err := s.RunAll(ctx); err != nil {
				slog.Error("matching sweep failed", "error", err)
			}
		case categoryID := <-s.signals:
			waiting[categoryID] = true
			launch()
		case categoryID := <-finished:
			delete(inflight, categoryID)
			launch()
		}
	}
}

// RunAll runs one pass per category, at most parallelism at a time.
// Categories are independent, so one failing pass does not stop the others.
func (s *Scheduler) RunAll(ctx context.Context) error {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	var g errgroup.Group
	g.SetLimit(s.parallelism)

	for _, c := range categories {
		g.Go(func() error {
			if _, err := s.engine.RunPass(ctx, c.ID); err != nil {
				return fmt.Errorf("category %s: %w", c.Slug, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Scheduler) runOne(ctx context.Context, categoryID string) {
	if _, err := s.engine.RunPass(ctx, categoryID); err != nil && ctx.Err() == nil {
		slog.Error("matching pass failed", "error", err, "category_id", categoryID)
	}
}
