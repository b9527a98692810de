package domain

import "time"

// JobStatus enumerates job lifecycle states. Transitions only move forward:
// queued -> processing -> completed|failed.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// FailureKind classifies why a job ended up failed.
type FailureKind string

const (
	FailureTimeout   FailureKind = "timeout"
	FailureCompute   FailureKind = "compute"
	FailureCancelled FailureKind = "cancelled"
	FailureInternal  FailureKind = "internal"
)

// Failure is the structured error recorded on a failed job.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	return string(f.Kind) + ": " + f.Message
}

// StylizeParams is the immutable input payload of a job: the uploaded source
// image plus the generation parameters resolved by the API layer.
type StylizeParams struct {
	ProfileID      string
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Steps          int
	GuidanceScale  float64
	Seed           int64
	Image          []byte
}

// Job is the canonical record of a submitted stylize job. The scheduler owns
// every Job for its whole lifetime; other packages only ever see copies.
type Job struct {
	ID          string
	Status      JobStatus
	Params      StylizeParams
	SubmittedAt time.Time
	StartedAt   time.Time // zero until processing
	FinishedAt  time.Time // zero until terminal
	ExpiresAt   time.Time // zero until terminal, then FinishedAt + TTL
	ResultKey   string    // set iff completed
	Failure     *Failure  // set iff failed
}

// StatusView is the read-only answer to a status poll. QueuePosition is the
// 1-based rank among jobs still waiting for a worker and is only present
// while the job is queued.
type StatusView struct {
	JobID         string     `json:"job_id"`
	Status        JobStatus  `json:"status"`
	QueuePosition int        `json:"queue_position,omitempty"`
	EnqueueTime   time.Time  `json:"enqueue_time"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	FinishTime    *time.Time `json:"finish_time,omitempty"`
	Failure       *Failure   `json:"error,omitempty"`
}
