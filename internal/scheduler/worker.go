package scheduler

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"stylizer/internal/domain"
	"stylizer/internal/infra"
	"stylizer/internal/transform"
)

// ArtifactWriter persists a finished artifact and returns its storage key.
type ArtifactWriter interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// Pool runs a fixed number of workers that drain the scheduler's pending
// queue. Each worker claims one job at a time, runs the transform under the
// per-job deadline, and writes the outcome back before claiming the next.
type Pool struct {
	sched       *Scheduler
	transformer transform.Transformer
	store       ArtifactWriter
	logger      infra.Logger
	group       *errgroup.Group
}

// NewPool wires a worker pool over the scheduler. Size and timeout come from
// the scheduler's options.
func NewPool(sched *Scheduler, transformer transform.Transformer, store ArtifactWriter, logger infra.Logger) *Pool {
	return &Pool{
		sched:       sched,
		transformer: transformer,
		store:       store,
		logger:      logger,
	}
}

// Start launches the workers. They run until ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	p.group, ctx = errgroup.WithContext(ctx)
	for i := 0; i < p.sched.opts.MaxConcurrentJobs; i++ {
		worker := i
		p.group.Go(func() error {
			return p.run(ctx, worker)
		})
	}
}

// Wait blocks until every worker has exited.
func (p *Pool) Wait() error {
	if p.group == nil {
		return nil
	}
	return p.group.Wait()
}

func (p *Pool) run(ctx context.Context, worker int) error {
	p.logger.Debug().Int("worker", worker).Msg("worker: started")
	for {
		job, ok := p.sched.claim(ctx)
		if !ok {
			p.logger.Debug().Int("worker", worker).Msg("worker: stopped")
			return ctx.Err()
		}
		p.execute(ctx, worker, job)
	}
}

// execute runs one claimed job to a terminal state. The transform runs in a
// child goroutine so that a deadline overrun can be abandoned: the worker
// marks the job failed(timeout) and moves on without waiting for the
// collaborator to notice the cancelled context.
func (p *Pool) execute(ctx context.Context, worker int, job domain.Job) {
	p.logger.Info().Int("worker", worker).Str("job_id", job.ID).Msg("worker: picked job")

	jobCtx, cancel := context.WithTimeout(ctx, p.sched.opts.JobTimeout)
	defer cancel()

	type outcome struct {
		artifact transform.Artifact
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		artifact, err := p.transformer.Transform(jobCtx, job.Params)
		done <- outcome{artifact: artifact, err: err}
	}()

	select {
	case out := <-done:
		p.record(ctx, worker, job, out.artifact, out.err)
	case <-jobCtx.Done():
		kind := domain.FailureTimeout
		msg := "job exceeded its deadline"
		if ctx.Err() != nil {
			kind = domain.FailureCancelled
			msg = "worker pool shutting down"
		}
		if err := p.sched.fail(job.ID, kind, msg); err != nil {
			p.logger.Error().Err(err).Str("job_id", job.ID).Msg("worker: record timeout failed")
		}
		p.logger.Warn().Int("worker", worker).Str("job_id", job.ID).Str("reason", msg).Msg("worker: job abandoned")
	}
}

func (p *Pool) record(ctx context.Context, worker int, job domain.Job, artifact transform.Artifact, err error) {
	if err != nil {
		kind := domain.FailureCompute
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			kind = domain.FailureTimeout
		case errors.Is(err, context.Canceled):
			kind = domain.FailureCancelled
		}
		if ferr := p.sched.fail(job.ID, kind, err.Error()); ferr != nil {
			p.logger.Error().Err(ferr).Str("job_id", job.ID).Msg("worker: record failure failed")
		}
		p.logger.Error().Err(err).Int("worker", worker).Str("job_id", job.ID).Msg("worker: job failed")
		return
	}

	key, werr := p.store.Write(ctx, job.ID+".png", artifact.Data)
	if werr != nil {
		if ferr := p.sched.fail(job.ID, domain.FailureInternal, "persist artifact: "+werr.Error()); ferr != nil {
			p.logger.Error().Err(ferr).Str("job_id", job.ID).Msg("worker: record failure failed")
		}
		p.logger.Error().Err(werr).Int("worker", worker).Str("job_id", job.ID).Msg("worker: persist artifact failed")
		return
	}

	if cerr := p.sched.complete(job.ID, key); cerr != nil {
		p.logger.Error().Err(cerr).Str("job_id", job.ID).Msg("worker: record completion failed")
		return
	}
	p.logger.Info().Int("worker", worker).Str("job_id", job.ID).Str("result_key", key).Msg("worker: job completed")
}
