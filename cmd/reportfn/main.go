package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	gcs "cloud.google.com/go/storage"
	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/joseph-ayodele/credit-audit/internal/bootstrap"
	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/gcp"
	"github.com/joseph-ayodele/credit-audit/internal/pipeline"
)

// gcsEvent is the part of a storage.object.v1.finalized payload the function reads.
type gcsEvent struct {
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
}

var (
	processor *pipeline.Processor
	once      sync.Once
	initErr   error
)

func init() {
	functions.CloudEvent("AuditReport", auditReport)
}

// main runs the function locally; deployed, the platform invokes the registered handler.
func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := funcframework.Start(port); err != nil {
		slog.Error("funcframework start failed", "error", err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*pipeline.Processor, error) {
	cfg := common.LoadConfig()
	logger := bootstrap.Logger(os.Stdout, cfg)
	if cfg.GCP.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	storageClient, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.GCP.ProjectID)
	if err != nil {
		return nil, err
	}

	extraction, analysis, err := bootstrap.Pipelines(cfg, logger)
	if err != nil {
		return nil, err
	}
	notifier, err := bootstrap.Notifier(cfg.Notify, logger)
	if err != nil {
		return nil, err
	}

	results := gcp.NewFirestoreStore(firestoreClient, cfg.GCP.Collection, logger)
	stores := pipeline.Stores{results}
	if cfg.GCP.ArchiveBucket != "" {
		stores = append(stores, gcp.NewArchiveStore(storageClient, cfg.GCP.ArchiveBucket, logger))
	}
	return pipeline.NewProcessor(gcp.NewGCSSource(storageClient, cfg.GCP.Bucket, logger), extraction, analysis, stores, logger,
		pipeline.WithJobTracker(results),
		pipeline.WithSkipProcessed(results),
		pipeline.WithNotifier(notifier),
		pipeline.WithExtractOptions(bootstrap.ExtractOptions(cfg.OCR)),
	), nil
}

// auditReport runs the pipeline over one finalized upload.
func auditReport(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		processor, initErr = setup(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var ev gcsEvent
	if err := json.Unmarshal(e.Data(), &ev); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}
	ref := fmt.Sprintf("gs://%s/%s", ev.Bucket, ev.Name)
	log := slog.With("event_id", e.ID(), "ref", ref)

	res, err := processor.Process(ctx, ref)
	switch {
	case errors.Is(err, common.ErrUnsupportedMedia), errors.Is(err, common.ErrInvalidInput):
		// Retrying cannot fix these; acknowledge the event.
		log.Warn("object skipped", "content_type", ev.ContentType, "error", err)
		return nil
	case err != nil:
		return err
	}
	log.Info("report audited", "report_id", res.ReportID, "violations", res.Analysis.TotalViolations)
	return nil
}
