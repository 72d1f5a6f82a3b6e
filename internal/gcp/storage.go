package gcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
	docstore "github.com/joseph-ayodele/credit-audit/internal/storage"
)

// ParseObjectRef splits "gs://bucket/object" into its parts. A bare object name resolves in
// defaultBucket.
func ParseObjectRef(ref, defaultBucket string) (bucket, object string, err error) {
	ref = strings.TrimSpace(ref)
	if rest, ok := strings.CutPrefix(ref, "gs://"); ok {
		bucket, object, _ = strings.Cut(rest, "/")
	} else {
		bucket, object = defaultBucket, strings.TrimPrefix(ref, "/")
	}
	if bucket == "" || object == "" {
		return "", "", fmt.Errorf("bad object reference %q: %w", ref, common.ErrInvalidInput)
	}
	return bucket, object, nil
}

// GCSSource opens documents stored in Cloud Storage.
type GCSSource struct {
	client   *storage.Client
	bucket   string
	MaxBytes int64
	logger   *slog.Logger
}

func NewGCSSource(client *storage.Client, defaultBucket string, logger *slog.Logger) *GCSSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &GCSSource{client: client, bucket: defaultBucket, MaxBytes: docstore.DefaultMaxBytes, logger: logger}
}

func (s *GCSSource) Open(ctx context.Context, ref string) (entity.RawDocument, error) {
	bucket, object, err := ParseObjectRef(ref, s.bucket)
	if err != nil {
		return entity.RawDocument{}, err
	}

	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return entity.RawDocument{}, fmt.Errorf("gs://%s/%s: %w", bucket, object, common.ErrNotFound)
		}
		return entity.RawDocument{}, fmt.Errorf("open gs://%s/%s: %w", bucket, object, err)
	}
	defer r.Close()

	if r.Attrs.Size > s.MaxBytes {
		return entity.RawDocument{}, fmt.Errorf("gs://%s/%s exceeds %d bytes: %w", bucket, object, s.MaxBytes, common.ErrInvalidInput)
	}
	data, err := io.ReadAll(io.LimitReader(r, s.MaxBytes))
	if err != nil {
		return entity.RawDocument{}, fmt.Errorf("read gs://%s/%s: %w", bucket, object, err)
	}

	doc, err := docstore.NewDocument(object, data)
	if err != nil {
		return entity.RawDocument{}, err
	}
	s.logger.Debug("object opened", "bucket", bucket, "object", object, "bytes", len(data), "generation", r.Attrs.Generation)
	return doc, nil
}

// ArchiveStore writes each result as JSON to results/<report id>.json. Objects are write-once:
// a report already archived is left as it is.
type ArchiveStore struct {
	bucket *storage.BucketHandle
	prefix string
	logger *slog.Logger
}

func NewArchiveStore(client *storage.Client, bucket string, logger *slog.Logger) *ArchiveStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveStore{bucket: client.Bucket(bucket), prefix: "results/", logger: logger}
}

func (a *ArchiveStore) SaveResult(ctx context.Context, result entity.ReportResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return a.saveOnce(ctx, a.prefix+result.ReportID.String()+".json", data)
}

// saveOnce writes content only if the object does not exist yet.
func (a *ArchiveStore) saveOnce(ctx context.Context, objectName string, content []byte) error {
	writer := a.bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = "application/json"

	if _, err := writer.Write(content); err != nil {
		_ = writer.Close()
		return a.writeErr(objectName, err)
	}
	if err := writer.Close(); err != nil {
		return a.writeErr(objectName, err)
	}
	a.logger.Debug("result archived", "object", objectName, "bytes", len(content))
	return nil
}

func (a *ArchiveStore) writeErr(objectName string, err error) error {
	if isPreconditionFailed(err) {
		a.logger.Info("result already archived, skipping", "object", objectName)
		return nil
	}
	a.logger.Error("archive write failed", "object", objectName, "error", err)
	return fmt.Errorf("write gs object %s: %w", objectName, err)
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == 412
}
