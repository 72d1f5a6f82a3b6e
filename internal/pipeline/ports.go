package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

// DocumentSource loads a raw document by reference (a local path or a gs:// URI).
type DocumentSource interface {
	Open(ctx context.Context, ref string) (entity.RawDocument, error)
}

// ResultStore persists analyzed reports. Saving the same ReportID twice replaces the earlier row.
type ResultStore interface {
	SaveResult(ctx context.Context, result entity.ReportResult) error
}

// ResultFinder looks up an earlier result by document content hash.
type ResultFinder interface {
	FindByHash(ctx context.Context, contentHash string) (entity.ReportResult, bool, error)
}

// JobTracker records document progress. Optional.
type JobTracker interface {
	StartJob(ctx context.Context, job entity.ReportJob) error
	FinishJob(ctx context.Context, job entity.ReportJob) error
}

// Completion carries counts only; report contents never leave through a notifier.
type Completion struct {
	ReportID      uuid.UUID `json:"report_id"`
	Source        string    `json:"source"`
	Violations    int       `json:"violations"`
	Discrepancies int       `json:"discrepancies"`
	TotalImpact   int       `json:"total_impact"`
}

// Notifier is told when a report finishes analysis.
type Notifier interface {
	AnalysisCompleted(ctx context.Context, c Completion) error
}

// Stores saves to each store in order and stops at the first failure.
type Stores []ResultStore

func (s Stores) SaveResult(ctx context.Context, result entity.ReportResult) error {
	for _, st := range s {
		if st == nil {
			continue
		}
		if err := st.SaveResult(ctx, result); err != nil {
			return err
		}
	}
	return nil
}
