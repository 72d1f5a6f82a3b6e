package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/credit-audit/constants"
	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

// reportNamespace derives stable report IDs from content hashes, so reprocessing a file updates
// its stored result instead of adding another.
var reportNamespace = uuid.MustParse("6f1c2a7e-3b0d-5c4e-9a61-0d7e2b8f4c13")

// ReportID returns the ID a document with the given content hash is stored under.
func ReportID(contentHash string) uuid.UUID {
	return uuid.NewSHA1(reportNamespace, []byte(contentHash))
}

// Processor coordinates extraction, analysis, persistence and notification for one document.
type Processor struct {
	Source     DocumentSource
	Extraction *ExtractionPipeline
	Analysis   *AnalysisPipeline
	Store      ResultStore
	Jobs       JobTracker
	Finder     ResultFinder
	Notifier   Notifier
	Client     entity.Client
	Options    Options
	Logger     *slog.Logger
	now        func() time.Time
}

type ProcessorOption func(*Processor)

func WithJobTracker(j JobTracker) ProcessorOption {
	return func(p *Processor) { p.Jobs = j }
}

// WithSkipProcessed returns the stored result instead of reprocessing content seen before.
func WithSkipProcessed(f ResultFinder) ProcessorOption {
	return func(p *Processor) { p.Finder = f }
}

func WithNotifier(n Notifier) ProcessorOption {
	return func(p *Processor) { p.Notifier = n }
}

// WithClient makes the processor build a dispute plan for the client.
func WithClient(c entity.Client) ProcessorOption {
	return func(p *Processor) { p.Client = c }
}

func WithExtractOptions(o Options) ProcessorOption {
	return func(p *Processor) { p.Options = o }
}

func WithProcessorClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) { p.now = now }
}

func NewProcessor(source DocumentSource, extraction *ExtractionPipeline, analysis *AnalysisPipeline, store ResultStore, logger *slog.Logger, opts ...ProcessorOption) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		Source:     source,
		Extraction: extraction,
		Analysis:   analysis,
		Store:      store,
		Logger:     logger,
		now:        time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Process runs one document end to end and returns what was stored.
func (p *Processor) Process(ctx context.Context, ref string) (entity.ReportResult, error) {
	doc, err := p.Source.Open(ctx, ref)
	if err != nil {
		common.LoggerFromContext(ctx, p.Logger).Error("processor.open.failed", "ref", ref, "err", err)
		return entity.ReportResult{}, fmt.Errorf("open %s: %w", ref, err)
	}
	sum := sha256.Sum256(doc.Data)
	hash := hex.EncodeToString(sum[:])
	reportID := ReportID(hash)
	ctx = common.WithReportID(ctx, reportID.String())
	log := common.LoggerFromContext(ctx, p.Logger)
	if doc.ID == "" {
		doc.ID = reportID.String()
	}
	if prev, ok := p.findProcessed(ctx, hash); ok {
		log.Info("report already processed, skipping", "ref", ref, "first_source", prev.Source)
		return prev, nil
	}

	job := entity.ReportJob{
		ID:          uuid.New(),
		Source:      ref,
		ContentHash: hash,
		Status:      constants.JobStatusRunning,
		StartedAt:   p.now().UTC(),
	}
	p.startJob(ctx, job)

	text, report, err := p.Extraction.Extract(ctx, doc, p.Options)
	if err != nil {
		log.Error("processor.extract.failed", "ref", ref, "err", err)
		p.finishJob(ctx, job, constants.JobStatusFailed, err)
		return entity.ReportResult{}, err
	}
	log.Debug("processor extract success", "ref", ref, "method", text.Method, "pages", text.Pages)

	res, err := p.Analysis.Analyze(report, p.Client, 1)
	if err != nil {
		log.Error("processor.analyze.failed", "ref", ref, "err", err)
		p.finishJob(ctx, job, constants.JobStatusFailed, err)
		return entity.ReportResult{}, err
	}

	result := entity.ReportResult{
		ReportID:    reportID,
		Source:      ref,
		ContentHash: hash,
		Method:      text.Method,
		Strategy:    text.Strategy,
		Pages:       text.Pages,
		Report:      res.Report,
		Analysis:    res.Analysis,
		Plan:        res.Plan,
		CreatedAt:   p.now().UTC(),
	}
	if err := p.Store.SaveResult(ctx, result); err != nil {
		log.Error("processor.save.failed", "ref", ref, "err", err)
		p.finishJob(ctx, job, constants.JobStatusFailed, err)
		return result, fmt.Errorf("save result: %w", err)
	}
	p.finishJob(ctx, job, constants.JobStatusAnalyzed, nil)

	if p.Notifier != nil {
		c := Completion{
			ReportID:      reportID,
			Source:        ref,
			Violations:    res.Analysis.TotalViolations,
			Discrepancies: res.Analysis.TotalDiscrepancies,
			TotalImpact:   res.Analysis.TotalImpact,
		}
		if err := p.Notifier.AnalysisCompleted(ctx, c); err != nil {
			log.Warn("completion notification failed", "err", err)
		}
	}

	log.Info("processed report successfully",
		"ref", ref,
		"violations", res.Analysis.TotalViolations,
		"discrepancies", res.Analysis.TotalDiscrepancies,
		"impact", res.Analysis.TotalImpact,
	)
	return result, nil
}

func (p *Processor) findProcessed(ctx context.Context, hash string) (entity.ReportResult, bool) {
	if p.Finder == nil {
		return entity.ReportResult{}, false
	}
	prev, ok, err := p.Finder.FindByHash(ctx, hash)
	if err != nil {
		common.LoggerFromContext(ctx, p.Logger).Warn("duplicate lookup failed, processing anyway", "err", err)
		return entity.ReportResult{}, false
	}
	return prev, ok
}

func (p *Processor) startJob(ctx context.Context, job entity.ReportJob) {
	if p.Jobs == nil {
		return
	}
	if err := p.Jobs.StartJob(ctx, job); err != nil {
		common.LoggerFromContext(ctx, p.Logger).Warn("job start not recorded", "job_id", job.ID, "err", err)
	}
}

func (p *Processor) finishJob(ctx context.Context, job entity.ReportJob, status constants.JobStatus, cause error) {
	if p.Jobs == nil {
		return
	}
	finished := p.now().UTC()
	job.Status = status
	job.FinishedAt = &finished
	if cause != nil {
		msg := cause.Error()
		job.ErrorMessage = &msg
	}
	if err := p.Jobs.FinishJob(ctx, job); err != nil {
		common.LoggerFromContext(ctx, p.Logger).Warn("job finish not recorded", "job_id", job.ID, "err", err)
	}
}
