package gcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

// NewFirestoreClient creates a Firestore client for the given project ID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return client, nil
}

// resultDoc is the Firestore shape of a report result. Summary fields are top-level so they can
// be queried; the full result rides along as JSON.
type resultDoc struct {
	ReportID        string    `firestore:"reportId"`
	Source          string    `firestore:"source"`
	ContentHash     string    `firestore:"contentHash"`
	Method          string    `firestore:"method"`
	Pages           int       `firestore:"pages"`
	Bureau          string    `firestore:"bureau"`
	Format          string    `firestore:"format"`
	TotalViolations int       `firestore:"totalViolations"`
	TotalImpact     int       `firestore:"totalImpact"`
	CreatedAt       time.Time `firestore:"createdAt"`
	Payload         string    `firestore:"payload"`
}

type jobDoc struct {
	Source       string     `firestore:"source"`
	ContentHash  string     `firestore:"contentHash"`
	Status       string     `firestore:"status"`
	ErrorMessage *string    `firestore:"errorDetails"`
	StartedAt    time.Time  `firestore:"startedAt"`
	FinishedAt   *time.Time `firestore:"finishedAt"`
}

func toResultDoc(r entity.ReportResult) (resultDoc, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return resultDoc{}, fmt.Errorf("marshal result: %w", err)
	}
	return resultDoc{
		ReportID:        r.ReportID.String(),
		Source:          r.Source,
		ContentHash:     r.ContentHash,
		Method:          r.Method,
		Pages:           r.Pages,
		Bureau:          string(r.Report.Bureau),
		Format:          r.Report.Format,
		TotalViolations: r.Analysis.TotalViolations,
		TotalImpact:     r.Analysis.TotalImpact,
		CreatedAt:       r.CreatedAt,
		Payload:         string(payload),
	}, nil
}

func (d resultDoc) result() (entity.ReportResult, error) {
	var r entity.ReportResult
	if err := json.Unmarshal([]byte(d.Payload), &r); err != nil {
		return entity.ReportResult{}, fmt.Errorf("decode stored result %s: %w", d.ReportID, err)
	}
	return r, nil
}

// FirestoreStore keeps results in one collection and jobs in "<collection>_jobs".
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	logger     *slog.Logger
}

func NewFirestoreStore(client *firestore.Client, collection string, logger *slog.Logger) *FirestoreStore {
	if logger == nil {
		logger = slog.Default()
	}
	if collection == "" {
		collection = "credit_reports"
	}
	return &FirestoreStore{client: client, collection: collection, logger: logger}
}

func (s *FirestoreStore) SaveResult(ctx context.Context, r entity.ReportResult) error {
	doc, err := toResultDoc(r)
	if err != nil {
		return err
	}
	if _, err := s.client.Collection(s.collection).Doc(doc.ReportID).Set(ctx, doc); err != nil {
		s.logger.Error("firestore save failed", "report_id", doc.ReportID, "error", err)
		return fmt.Errorf("save result %s: %w", doc.ReportID, err)
	}
	s.logger.Debug("result saved", "report_id", doc.ReportID, "collection", s.collection)
	return nil
}

func (s *FirestoreStore) GetResult(ctx context.Context, reportID string) (entity.ReportResult, error) {
	snap, err := s.client.Collection(s.collection).Doc(reportID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return entity.ReportResult{}, fmt.Errorf("report %s: %w", reportID, common.ErrNotFound)
		}
		return entity.ReportResult{}, fmt.Errorf("get report %s: %w", reportID, err)
	}
	var doc resultDoc
	if err := snap.DataTo(&doc); err != nil {
		return entity.ReportResult{}, fmt.Errorf("decode report %s: %w", reportID, err)
	}
	return doc.result()
}

// FindByHash returns the stored result for a content hash, if any.
func (s *FirestoreStore) FindByHash(ctx context.Context, contentHash string) (entity.ReportResult, bool, error) {
	docs, err := s.client.Collection(s.collection).Where("contentHash", "==", contentHash).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return entity.ReportResult{}, false, fmt.Errorf("query by hash: %w", err)
	}
	if len(docs) == 0 {
		return entity.ReportResult{}, false, nil
	}
	var doc resultDoc
	if err := docs[0].DataTo(&doc); err != nil {
		return entity.ReportResult{}, false, err
	}
	r, err := doc.result()
	return r, err == nil, err
}

// ListResults returns up to limit results, newest first.
func (s *FirestoreStore) ListResults(ctx context.Context, limit int) ([]entity.ReportResult, error) {
	if limit <= 0 {
		limit = 50
	}
	iter := s.client.Collection(s.collection).OrderBy("createdAt", firestore.Desc).Limit(limit).Documents(ctx)
	defer iter.Stop()

	var out []entity.ReportResult
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list results: %w", err)
		}
		var doc resultDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", snap.Ref.ID, err)
		}
		r, err := doc.result()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *FirestoreStore) StartJob(ctx context.Context, job entity.ReportJob) error {
	return s.putJob(ctx, job)
}

func (s *FirestoreStore) FinishJob(ctx context.Context, job entity.ReportJob) error {
	updates := []firestore.Update{
		{Path: "status", Value: string(job.Status)},
		{Path: "finishedAt", Value: job.FinishedAt},
	}
	if job.ErrorMessage != nil {
		updates = append(updates, firestore.Update{Path: "errorDetails", Value: *job.ErrorMessage})
	}
	if _, err := s.jobs().Doc(job.ID.String()).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return s.putJob(ctx, job)
		}
		return fmt.Errorf("update job %s: %w", job.ID, err)
	}
	return nil
}

func (s *FirestoreStore) putJob(ctx context.Context, job entity.ReportJob) error {
	doc := jobDoc{
		Source:       job.Source,
		ContentHash:  job.ContentHash,
		Status:       string(job.Status),
		ErrorMessage: job.ErrorMessage,
		StartedAt:    job.StartedAt,
		FinishedAt:   job.FinishedAt,
	}
	if _, err := s.jobs().Doc(job.ID.String()).Set(ctx, doc); err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}

func (s *FirestoreStore) jobs() *firestore.CollectionRef {
	return s.client.Collection(s.collection + "_jobs")
}
