package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"stylizer/internal/infra"
)

// ArtifactRemover deletes a stored artifact by key.
type ArtifactRemover interface {
	Remove(ctx context.Context, key string) error
}

// Sweeper periodically evicts jobs whose result TTL has elapsed, deleting
// their artifacts along with the bookkeeping records. It runs on its own
// cron schedule with an explicit Start/Stop lifecycle.
type Sweeper struct {
	sched    *Scheduler
	store    ArtifactRemover
	logger   infra.Logger
	interval time.Duration
	cron     *cron.Cron
}

// NewSweeper builds a sweeper over the scheduler, deleting artifacts through
// the given store.
func NewSweeper(sched *Scheduler, store ArtifactRemover, interval time.Duration, logger infra.Logger) *Sweeper {
	return &Sweeper{
		sched:    sched,
		store:    store,
		logger:   logger,
		interval: interval,
	}
}

// Start schedules the periodic sweep.
func (sw *Sweeper) Start() error {
	sw.cron = cron.New()
	if _, err := sw.cron.AddFunc(fmt.Sprintf("@every %s", sw.interval), sw.Sweep); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	sw.cron.Start()
	sw.logger.Info().Dur("interval", sw.interval).Msg("sweeper: started")
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (sw *Sweeper) Stop() {
	if sw.cron == nil {
		return
	}
	<-sw.cron.Stop().Done()
	sw.logger.Info().Msg("sweeper: stopped")
}

// Sweep runs one eviction cycle. Artifact deletion failures are logged and
// swallowed: stale files are preferred over unbounded metadata, so the
// record goes away regardless.
func (sw *Sweeper) Sweep() {
	evicted, keys := sw.sched.evictExpired(sw.sched.now())
	if evicted == 0 {
		return
	}
	removed := 0
	for _, key := range keys {
		if err := sw.store.Remove(context.Background(), key); err != nil {
			sw.logger.Warn().Err(err).Str("result_key", key).Msg("sweeper: delete artifact failed")
			continue
		}
		removed++
	}
	sw.logger.Info().Int("evicted", evicted).Int("artifacts_removed", removed).Msg("sweeper: sweep complete")
}
