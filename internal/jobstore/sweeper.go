package jobstore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sevigo/pr-warden/internal/core"
)

// ArchiveFunc persists swept jobs. Failures are logged, not retried; the
// records are gone from the store either way.
type ArchiveFunc func(ctx context.Context, jobs []*core.Job) error

// Sweeper runs the store's time-based garbage collection on a fixed
// interval and hands the removed records to an optional archive hook.
type Sweeper struct {
	store    *Store
	ttl      time.Duration
	interval time.Duration
	archive  ArchiveFunc
	logger   *slog.Logger

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewSweeper creates a sweeper for the store. archive may be nil.
func NewSweeper(store *Store, ttl, interval time.Duration, archive ArchiveFunc, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		ttl:      ttl,
		interval: interval,
		archive:  archive,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start launches the background sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("job sweeper started", "ttl", s.ttl, "interval", s.interval)
		for {
			select {
			case <-ticker.C:
				s.sweepOnce(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop terminates the loop and waits for it to exit.
func (s *Sweeper) Stop() {
	close(s.stop)
	s.wg.Wait()
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	removed := s.store.Sweep(s.ttl)
	if len(removed) == 0 || s.archive == nil {
		return
	}
	if err := s.archive(ctx, removed); err != nil {
		s.logger.Error("failed to archive swept jobs", "count", len(removed), "error", err)
	}
}
