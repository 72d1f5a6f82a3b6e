package async

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

type recordingHandler struct {
	mu    sync.Mutex
	refs  []string
	block chan struct{}
	err   error
}

func (h *recordingHandler) Process(ctx context.Context, ref string) (entity.ReportResult, error) {
	if h.block != nil {
		select {
		case <-h.block:
		case <-ctx.Done():
			return entity.ReportResult{}, ctx.Err()
		}
	}
	h.mu.Lock()
	h.refs = append(h.refs, ref)
	h.mu.Unlock()
	return entity.ReportResult{Source: ref}, h.err
}

func (h *recordingHandler) processed() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := append([]string(nil), h.refs...)
	sort.Strings(out)
	return out
}

func TestQueueProcessesAllJobs(t *testing.T) {
	h := &recordingHandler{}
	q := NewProcessorQueue(h, nil, WithWorkers(3), WithQueueSize(8))

	want := []string{"a.pdf", "b.pdf", "c.png", "d.pdf", "e.jpg"}
	for _, ref := range want {
		if err := q.Enqueue(context.Background(), NewJob(ref)); err != nil {
			t.Fatalf("Enqueue(%s): %v", ref, err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	got := h.processed()
	if len(got) != len(want) {
		t.Fatalf("processed %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("processed[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestQueueHandlerErrorsDoNotStopWorkers(t *testing.T) {
	h := &recordingHandler{err: errors.New("boom")}
	q := NewProcessorQueue(h, nil, WithWorkers(1))
	for _, ref := range []string{"a", "b"} {
		if err := q.Enqueue(context.Background(), NewJob(ref)); err != nil {
			t.Fatal(err)
		}
	}
	q.Shutdown(context.Background())
	if got := h.processed(); len(got) != 2 {
		t.Errorf("processed %v", got)
	}
}

func TestEnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&recordingHandler{}, nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	if err := q.Enqueue(context.Background(), NewJob("late.pdf")); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("err = %v, want ErrQueueClosed", err)
	}
}

func TestEnqueueBackpressureHonorsContext(t *testing.T) {
	h := &recordingHandler{block: make(chan struct{})}
	q := NewProcessorQueue(h, nil, WithWorkers(1), WithQueueSize(1))

	// one job held by the worker, one filling the buffer
	if err := q.Enqueue(context.Background(), NewJob("first")); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for len(q.ch) != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := q.Enqueue(context.Background(), NewJob("second")); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := q.Enqueue(ctx, NewJob("third")); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}

	close(h.block)
	q.Shutdown(context.Background())
	if got := h.processed(); len(got) != 2 {
		t.Errorf("processed %v, want first and second", got)
	}
}

func TestProcessTimeoutApplies(t *testing.T) {
	h := &recordingHandler{block: make(chan struct{})}
	q := NewProcessorQueue(h, nil, WithWorkers(1), WithProcessTimeout(20*time.Millisecond))
	if err := q.Enqueue(context.Background(), NewJob("slow.pdf")); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)
	if ctx.Err() != nil {
		t.Fatal("worker did not give up after the process timeout")
	}
	if got := h.processed(); len(got) != 0 {
		t.Errorf("timed-out job recorded as processed: %v", got)
	}
}
