package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"stylizer/internal/domain"
)

type memRemover struct {
	mu      sync.Mutex
	removed []string
	err     error
}

func (m *memRemover) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.removed = append(m.removed, key)
	return nil
}

func finishJob(t *testing.T, s *Scheduler, fail bool) string {
	t.Helper()
	id, err := s.Submit(testParams())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, ok := s.claim(context.Background()); !ok {
		t.Fatal("claim failed")
	}
	if fail {
		err = s.fail(id, domain.FailureCompute, "boom")
	} else {
		err = s.complete(id, id+".png")
	}
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	return id
}

func TestSweepEvictsExpiredRecordsAndArtifacts(t *testing.T) {
	s := New(Options{MaxQueueSize: 4, MaxConcurrentJobs: 1, JobTimeout: time.Minute, ResultTTL: 10 * time.Second})
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	completed := finishJob(t, s, false)
	failed := finishJob(t, s, true)

	remover := &memRemover{}
	sw := NewSweeper(s, remover, time.Minute, zerolog.Nop())

	// TTL not elapsed yet: sweep is a no-op.
	sw.Sweep()
	if _, err := s.Status(completed); err != nil {
		t.Fatalf("job evicted before expiry: %v", err)
	}

	s.now = func() time.Time { return base.Add(11 * time.Second) }
	sw.Sweep()

	if _, err := s.Status(completed); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("completed job still visible: %v", err)
	}
	if _, err := s.Status(failed); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("failed job still visible: %v", err)
	}
	remover.mu.Lock()
	removed := append([]string(nil), remover.removed...)
	remover.mu.Unlock()
	if len(removed) != 1 || removed[0] != completed+".png" {
		t.Fatalf("removed artifacts = %v, want [%s.png]", removed, completed)
	}

	// Sweeps are idempotent.
	sw.Sweep()
	remover.mu.Lock()
	n := len(remover.removed)
	remover.mu.Unlock()
	if n != 1 {
		t.Fatalf("second sweep removed more artifacts: %d", n)
	}
}

func TestSweepKeepsEvictingWhenArtifactDeleteFails(t *testing.T) {
	s := New(Options{MaxQueueSize: 2, MaxConcurrentJobs: 1, JobTimeout: time.Minute, ResultTTL: time.Second})
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	id := finishJob(t, s, false)
	s.now = func() time.Time { return base.Add(2 * time.Second) }

	remover := &memRemover{err: errors.New("permission denied")}
	sw := NewSweeper(s, remover, time.Minute, zerolog.Nop())
	sw.Sweep()

	// Metadata removal wins over a stale file.
	if _, err := s.Status(id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("record survived a failed artifact delete: %v", err)
	}
}

func TestSweeperRunsOnSchedule(t *testing.T) {
	s := New(Options{MaxQueueSize: 2, MaxConcurrentJobs: 1, JobTimeout: time.Minute, ResultTTL: time.Millisecond})
	id := finishJob(t, s, false)

	remover := &memRemover{}
	sw := NewSweeper(s, remover, time.Second, zerolog.Nop())
	if err := sw.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer sw.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := s.Status(id); errors.Is(err, domain.ErrNotFound) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("scheduled sweep never evicted the expired job")
}
