package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joseph-ayodele/credit-audit/constants"
	"github.com/joseph-ayodele/credit-audit/internal/async"
	"github.com/joseph-ayodele/credit-audit/internal/common"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	Kind         constants.MediaKind
	HashHex      string
	Deduplicated bool
	QueuedAt     time.Time
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor hashes documents and hands new ones to the processing queue. A path whose content
// hash was already queued is skipped, so repeated watcher events for one upload queue it once.
type Ingestor struct {
	queue  async.Queue
	logger *slog.Logger

	mu   sync.Mutex
	seen map[string]string // abs path -> content hash
}

func NewIngestor(queue async.Queue, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{queue: queue, logger: logger, seen: map[string]string{}}
}

// IngestPath queues a single document.
func (i *Ingestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return IngestionResult{SourcePath: path}, err
	}
	out := IngestionResult{SourcePath: abs, Kind: constants.MapExtToKind(filepath.Ext(abs))}
	if out.Kind == "" {
		return out, fmt.Errorf("%s: unsupported or missing extension: %w", abs, common.ErrUnsupportedMedia)
	}

	hash, err := hashFile(abs)
	if err != nil {
		i.logger.Error("hash failed", "path", abs, "error", err)
		return out, err
	}
	out.HashHex = hash

	i.mu.Lock()
	prev, ok := i.seen[abs]
	i.seen[abs] = hash
	i.mu.Unlock()
	if ok && prev == hash {
		out.Deduplicated = true
		i.logger.Debug("skipping unchanged document", "path", abs)
		return out, nil
	}

	job := async.NewJob(abs)
	if err := i.queue.Enqueue(ctx, job); err != nil {
		i.forget(abs)
		return out, fmt.Errorf("enqueue %s: %w", abs, err)
	}
	out.QueuedAt = job.SubmittedAt
	return out, nil
}

func (i *Ingestor) forget(path string) {
	i.mu.Lock()
	delete(i.seen, path)
	i.mu.Unlock()
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
