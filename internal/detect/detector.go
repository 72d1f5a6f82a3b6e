// Package detect evaluates a StructuredReport against the violation rules and produces the
// ranked Analysis consumed by strategy building and letter templating.
package detect

import (
	"log/slog"
	"sort"
	"time"

	"github.com/joseph-ayodele/credit-audit/internal/entity"
	"github.com/joseph-ayodele/credit-audit/internal/rules"
)

// MaxRecommendations caps the recommended dispute list.
const MaxRecommendations = 15

// Detector runs every rule over a report. It holds no per-report state and is safe for
// concurrent use.
type Detector struct {
	catalog *rules.Catalog
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Detector)

// WithClock overrides the evaluation time used by Detect.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) { d.now = now }
}

func NewDetector(catalog *rules.Catalog, logger *slog.Logger, opts ...Option) *Detector {
	if catalog == nil {
		catalog = rules.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Detector{
		catalog: catalog,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect analyzes report at the detector's current time.
func (d *Detector) Detect(report entity.StructuredReport) entity.Analysis {
	return d.Analyze(report, d.now())
}

// Analyze evaluates all rules with now as the reference point for age checks. The result depends
// only on report and now.
func (d *Detector) Analyze(report entity.StructuredReport, now time.Time) entity.Analysis {
	var violations []entity.Violation
	for i := range report.Accounts {
		violations = append(violations, d.accountViolations(report.Accounts[i])...)
	}
	violations = append(violations, d.outdatedNegatives(report.Accounts, now)...)
	violations = append(violations, d.outdatedInquiries(report.Inquiries, now)...)
	violations = append(violations, d.publicRecordViolations(report.PublicRecords)...)

	discrepancies := d.crossBureauDiscrepancies(report.Accounts)

	a := entity.Analysis{
		TotalViolations:    len(violations),
		TotalDiscrepancies: len(discrepancies),
		Violations:         violations,
		Discrepancies:      discrepancies,
		Stats:              statsOf(report),
	}
	if a.Violations == nil {
		a.Violations = []entity.Violation{}
	}
	if a.Discrepancies == nil {
		a.Discrepancies = []entity.Discrepancy{}
	}
	for _, v := range violations {
		a.TotalImpact += v.EstimatedImpact
		switch v.Severity {
		case rules.SeverityCritical:
			a.Summary.Critical++
		case rules.SeverityHigh:
			a.Summary.High++
		case rules.SeverityMedium:
			a.Summary.Medium++
		default:
			a.Summary.Low++
		}
	}
	a.Ranking = Rank(violations)
	a.Recommendations = Recommend(a.Ranking, MaxRecommendations)

	d.logger.Debug("detect.ok",
		"violations", a.TotalViolations,
		"discrepancies", a.TotalDiscrepancies,
		"impact", a.TotalImpact,
	)
	return a
}

// newViolation stamps catalog metadata onto a detected instance. Types missing from the catalog
// get medium severity, impact 10 and the factual dispute.
func (d *Detector) newViolation(t rules.ViolationType, ref *entity.AccountRef, description string) entity.Violation {
	info, ok := d.catalog.Violation(t)
	if !ok {
		d.logger.Warn("violation type not in catalog", "type", t)
		info = rules.ViolationInfo{
			Type:        t,
			Name:        string(t),
			Severity:    rules.SeverityMedium,
			FCRASection: "623(a)(1)",
			Impact:      10,
			Strategy:    rules.StrategyFactualDispute,
		}
	}
	return entity.Violation{
		Type:            t,
		Name:            info.Name,
		Description:     description,
		Severity:        info.Severity,
		FCRASection:     info.FCRASection,
		EstimatedImpact: info.Impact,
		Account:         ref,
		DisputeStrategy: info.Strategy,
		Priority:        info.Severity.Priority(),
	}
}

// Complete fills catalog metadata a caller-supplied violation left blank. Explicit values win.
func (d *Detector) Complete(v entity.Violation) entity.Violation {
	stamped := d.newViolation(v.Type, v.Account, v.Description)
	if v.Name == "" {
		v.Name = stamped.Name
	}
	if v.Severity == "" {
		v.Severity = stamped.Severity
	}
	if v.FCRASection == "" {
		v.FCRASection = stamped.FCRASection
	}
	if v.EstimatedImpact == 0 {
		v.EstimatedImpact = stamped.EstimatedImpact
	}
	if v.DisputeStrategy == "" {
		v.DisputeStrategy = stamped.DisputeStrategy
	}
	if v.Priority == 0 {
		v.Priority = v.Severity.Priority()
	}
	return v
}

// Rank orders violations by priority ascending, then estimated impact descending. Ties keep
// their detection order. The input slice is not modified.
func Rank(violations []entity.Violation) []entity.Violation {
	out := make([]entity.Violation, len(violations))
	copy(out, violations)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].EstimatedImpact > out[j].EstimatedImpact
	})
	return out
}

// Recommend turns the first limit ranked violations into dispute recommendations.
func Recommend(ranked []entity.Violation, limit int) []entity.Recommendation {
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]entity.Recommendation, 0, len(ranked))
	for i, v := range ranked {
		out = append(out, entity.Recommendation{
			Rank:            i + 1,
			ErrorType:       v.Type,
			Creditor:        v.Creditor(),
			Strategy:        v.DisputeStrategy,
			Priority:        v.Priority,
			EstimatedImpact: v.EstimatedImpact,
			LegalBasis:      rules.LegalBasis(v.FCRASection),
		})
	}
	return out
}

func statsOf(report entity.StructuredReport) entity.ReportStats {
	s := entity.ReportStats{
		TotalAccounts: len(report.Accounts),
		PublicRecords: len(report.PublicRecords),
	}
	for _, a := range report.Accounts {
		if a.IsNegative {
			s.NegativeAccounts++
		}
		if a.IsCollection {
			s.Collections++
		}
		if validAmount(a.Balance) {
			s.TotalDebt += a.Balance
		}
	}
	for _, q := range report.Inquiries {
		if q.Type == entity.InquiryHard {
			s.HardInquiries++
		}
	}
	return s
}
