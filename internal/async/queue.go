// Package async runs verification jobs on a bounded worker pool.
package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/payment-verifier/constants"
	"github.com/joseph-ayodele/payment-verifier/internal/entity"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one verification to run.
type Job struct {
	// Line is the 1-based source line, used to keep report order stable.
	Line        int
	Provider    constants.Provider
	Request     entity.VerifyRequest
	SubmittedAt time.Time
	TraceID     string
}

// Result pairs a job with its verification outcome.
type Result struct {
	Job    Job
	Result entity.VerificationResult
}

// Handler performs the work for a single job.
type Handler func(ctx context.Context, job Job) entity.VerificationResult

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context) error
}
