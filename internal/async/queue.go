package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

// ErrQueueClosed is returned by Enqueue after Shutdown has started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document waiting for the pipeline.
type Job struct {
	Ref         string // local path or gs:// URI
	SubmittedAt time.Time
	TraceID     string
}

// NewJob stamps a job for ref with a fresh trace id.
func NewJob(ref string) Job {
	return Job{Ref: ref, SubmittedAt: time.Now().UTC(), TraceID: uuid.NewString()}
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Handler processes one document. *pipeline.Processor satisfies it.
type Handler interface {
	Process(ctx context.Context, ref string) (entity.ReportResult, error)
}
