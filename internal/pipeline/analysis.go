package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/detect"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
	"github.com/joseph-ayodele/credit-audit/internal/parser"
	"github.com/joseph-ayodele/credit-audit/internal/reportschema"
	"github.com/joseph-ayodele/credit-audit/internal/rules"
	"github.com/joseph-ayodele/credit-audit/internal/strategy"
)

// Result is the output of the analysis pipeline. Plan is nil when no client was given.
type Result struct {
	Report   entity.StructuredReport `json:"report"`
	Analysis entity.Analysis         `json:"analysis"`
	Plan     *entity.Strategy        `json:"plan,omitempty"`
}

// AnalysisPipeline runs error detection and, for a known client, strategy building.
type AnalysisPipeline struct {
	Detector *detect.Detector
	Builder  *strategy.Builder
	Schema   *reportschema.Validator
	Logger   *slog.Logger
}

type AnalysisOption func(*analysisSettings)

type analysisSettings struct {
	now func() time.Time
}

// WithAnalysisClock fixes the evaluation time used by age rules and the timeline.
func WithAnalysisClock(now func() time.Time) AnalysisOption {
	return func(s *analysisSettings) { s.now = now }
}

// NewAnalysisPipeline wires a detector, builder and input validator over one catalog.
func NewAnalysisPipeline(catalog *rules.Catalog, logger *slog.Logger, opts ...AnalysisOption) (*AnalysisPipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if catalog == nil {
		catalog = rules.Default()
	}
	s := analysisSettings{now: time.Now}
	for _, o := range opts {
		o(&s)
	}

	schema, err := reportschema.NewValidator(catalog)
	if err != nil {
		return nil, fmt.Errorf("compile input schemas: %w", err)
	}
	return &AnalysisPipeline{
		Detector: detect.NewDetector(catalog, logger, detect.WithClock(s.now)),
		Builder:  strategy.NewBuilder(catalog, logger, strategy.WithClock(s.now)),
		Schema:   schema,
		Logger:   logger,
	}, nil
}

// Analyze detects violations in report and builds a plan for client starting at startRound.
// An empty client ID skips planning.
func (p *AnalysisPipeline) Analyze(report entity.StructuredReport, client entity.Client, startRound int) (Result, error) {
	res := Result{Report: report, Analysis: p.Detector.Detect(report)}
	if client.ID == "" {
		return res, nil
	}
	plan, err := p.Builder.Build(res.Analysis.Violations, client, startRound)
	if err != nil {
		return res, err
	}
	res.Plan = &plan
	return res, nil
}

// AnalyzeJSON validates a StructuredReport document against the input schema, then analyzes it.
// Account numbers in the document are treated as raw: they key cross-bureau matching and are
// masked before anything is reported.
func (p *AnalysisPipeline) AnalyzeJSON(data []byte, client entity.Client, startRound int) (Result, error) {
	if err := p.Schema.ValidateReport(data); err != nil {
		p.Logger.Warn("report input rejected", "err", err)
		return Result{}, err
	}
	var report entity.StructuredReport
	if err := json.Unmarshal(data, &report); err != nil {
		return Result{}, common.NewAppError("VALIDATION_ERROR", "decode report", err)
	}
	for i := range report.Accounts {
		a := &report.Accounts[i]
		if a.AccountNumber == "" {
			a.AccountNumber = a.AccountNumberMasked
		}
		a.AccountNumberMasked = parser.MaskAccountNumber(a.AccountNumber)
	}
	return p.Analyze(report, client, startRound)
}

// PlanJSON builds a plan straight from a JSON array of violations, filling catalog metadata the
// caller left out. This is how consumer-attested types such as not_my_account enter a plan.
func (p *AnalysisPipeline) PlanJSON(data []byte, client entity.Client, startRound int) (entity.Strategy, error) {
	if err := p.Schema.ValidateViolations(data); err != nil {
		p.Logger.Warn("violations input rejected", "err", err)
		return entity.Strategy{}, err
	}
	var violations []entity.Violation
	if err := json.Unmarshal(data, &violations); err != nil {
		return entity.Strategy{}, common.NewAppError("VALIDATION_ERROR", "decode violations", err)
	}
	for i := range violations {
		violations[i] = p.Detector.Complete(violations[i])
	}
	return p.Builder.Build(violations, client, startRound)
}
