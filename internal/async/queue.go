// Package async runs document groups through a bounded worker pool.
package async

import (
	"context"
	"time"
)

// Job is one contract to extract: its page-1 and page-2 result files.
type Job struct {
	Key         string
	Page1       []string
	Page2       []string
	SubmittedAt time.Time
	TraceID     string
}

// Handler processes a single job. Its error is logged, never retried.
type Handler func(ctx context.Context, job Job) error

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
