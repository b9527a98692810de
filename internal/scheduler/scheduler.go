// Package scheduler owns the in-memory job store, the bounded pending queue,
// the worker pool that drains it, and the TTL sweeper that evicts finished
// jobs. A single mutex totally orders every mutation (admission, claim,
// terminal transition, eviction), so no reader or writer ever observes a
// half-applied change.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"stylizer/internal/domain"
)

// Options carries the capacity and timing knobs, read once at startup.
type Options struct {
	MaxQueueSize      int
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	ResultTTL         time.Duration
}

// Scheduler is the canonical owner of every job record. It is constructed
// once and injected into the worker pool, the sweeper, and the HTTP layer.
type Scheduler struct {
	opts Options

	mu         sync.Mutex
	jobs       map[string]*domain.Job
	order      []string // queued job ids, FIFO by admission
	processing int

	// pending mirrors order for blocking dequeue. Capacity MaxQueueSize:
	// the admission bound keeps queued jobs at or below that, so sends
	// under the lock never block.
	pending chan string

	now func() time.Time
}

// New builds a Scheduler with the given capacity options.
func New(opts Options) *Scheduler {
	return &Scheduler{
		opts:    opts,
		jobs:    make(map[string]*domain.Job),
		pending: make(chan string, opts.MaxQueueSize),
		now:     time.Now,
	}
}

// Submit admits a new job if capacity allows: it creates the queued record
// and appends it to the pending queue in one atomic step, returning the new
// job id. When queued+processing has reached MaxQueueSize it returns
// domain.ErrCapacityExceeded and mutates nothing; the caller is expected to
// retry later.
func (s *Scheduler) Submit(params domain.StylizeParams) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.order)+s.processing >= s.opts.MaxQueueSize {
		return "", domain.ErrCapacityExceeded
	}

	job := &domain.Job{
		ID:          uuid.NewString(),
		Status:      domain.JobStatusQueued,
		Params:      params,
		SubmittedAt: s.now(),
	}
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	s.pending <- job.ID
	return job.ID, nil
}

// claim blocks until a queued job is available or ctx is cancelled, then
// transitions it to processing. The channel receive removes the id before
// anyone else can see it, so a given job is claimed by exactly one worker.
func (s *Scheduler) claim(ctx context.Context) (domain.Job, bool) {
	select {
	case <-ctx.Done():
		return domain.Job{}, false
	case id := <-s.pending:
		s.mu.Lock()
		defer s.mu.Unlock()
		job := s.jobs[id]
		job.Status = domain.JobStatusProcessing
		job.StartedAt = s.now()
		s.removeFromOrder(id)
		s.processing++
		return *job, true
	}
}

// complete transitions a processing job to completed and stamps the TTL.
func (s *Scheduler) complete(id, resultKey string) error {
	return s.finish(id, func(job *domain.Job) {
		job.Status = domain.JobStatusCompleted
		job.ResultKey = resultKey
	})
}

// fail transitions a processing job to failed with a structured reason.
func (s *Scheduler) fail(id string, kind domain.FailureKind, msg string) error {
	return s.finish(id, func(job *domain.Job) {
		job.Status = domain.JobStatusFailed
		job.Failure = &domain.Failure{Kind: kind, Message: msg}
	})
}

func (s *Scheduler) finish(id string, apply func(*domain.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if job.Status != domain.JobStatusProcessing {
		return fmt.Errorf("job %s is %s, not processing", id, job.Status)
	}
	apply(job)
	job.FinishedAt = s.now()
	job.ExpiresAt = job.FinishedAt.Add(s.opts.ResultTTL)
	s.processing--
	return nil
}

// Status answers a poll without mutating anything. The queue position of a
// queued job is recomputed on every call; completions ahead of it shrink it,
// later submissions never grow it.
func (s *Scheduler) Status(id string) (domain.StatusView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return domain.StatusView{}, domain.ErrNotFound
	}

	view := domain.StatusView{
		JobID:       job.ID,
		Status:      job.Status,
		EnqueueTime: job.SubmittedAt,
		Failure:     job.Failure,
	}
	if job.Status == domain.JobStatusQueued {
		for i, queued := range s.order {
			if queued == id {
				view.QueuePosition = i + 1
				break
			}
		}
	}
	if !job.StartedAt.IsZero() {
		t := job.StartedAt
		view.StartTime = &t
	}
	if !job.FinishedAt.IsZero() {
		t := job.FinishedAt
		view.FinishTime = &t
	}
	return view, nil
}

// Result looks up the terminal outcome of a job. It returns the artifact key
// for a completed job, the recorded *domain.Failure for a failed one,
// domain.ErrNotReady while the job is still queued or processing, and
// domain.ErrNotFound for unknown or evicted ids.
func (s *Scheduler) Result(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	switch job.Status {
	case domain.JobStatusCompleted:
		return job.ResultKey, nil
	case domain.JobStatusFailed:
		return "", job.Failure
	default:
		return "", domain.ErrNotReady
	}
}

// evictExpired removes every terminal record whose TTL has elapsed. It
// returns the number of evicted records plus the artifact keys of the
// completed ones so the caller can delete the files. Records that are not
// yet terminal are never touched.
func (s *Scheduler) evictExpired(now time.Time) (int, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	var keys []string
	for id, job := range s.jobs {
		if !job.Status.Terminal() || job.ExpiresAt.After(now) {
			continue
		}
		if job.ResultKey != "" {
			keys = append(keys, job.ResultKey)
		}
		delete(s.jobs, id)
		evicted++
	}
	return evicted, keys
}

// Counts reports the current queued and processing totals, for logging.
func (s *Scheduler) Counts() (queued, processing int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order), s.processing
}

func (s *Scheduler) removeFromOrder(id string) {
	for i, queued := range s.order {
		if queued == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
