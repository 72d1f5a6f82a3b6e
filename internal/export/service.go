package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/credit-audit/constants"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

const (
	SheetSummary       = "Summary"
	SheetViolations    = "Violations"
	SheetDiscrepancies = "Discrepancies"
	SheetRounds        = "Rounds"
	SheetTimeline      = "Timeline"
	SheetReports       = "Reports"
)

// ResultLister is the read side of a result store.
type ResultLister interface {
	ListResults(ctx context.Context, limit int) ([]entity.ReportResult, error)
}

// Service renders analysis results as XLSX workbooks.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// AuditWorkbook renders one analyzed report: summary, violations, discrepancies and, when a plan
// exists, its rounds and timeline.
func (s *Service) AuditWorkbook(result entity.ReportResult) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()
	defer f.Close()

	// the default "Sheet1" becomes the summary
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return nil, err
	}
	a := result.Analysis
	summary := [][]any{
		{"Report ID", result.ReportID.String()},
		{"Source", result.Source},
		{"Bureau", string(result.Report.Bureau)},
		{"Format", result.Report.Format},
		{"Extraction Method", result.Method},
		{"Pages", result.Pages},
		{"Accounts", a.Stats.TotalAccounts},
		{"Negative Accounts", a.Stats.NegativeAccounts},
		{"Collections", a.Stats.Collections},
		{"Total Debt", a.Stats.TotalDebt},
		{"Violations", a.TotalViolations},
		{"Discrepancies", a.TotalDiscrepancies},
		{"Estimated Impact", a.TotalImpact},
		{"Critical", a.Summary.Critical},
		{"High", a.Summary.High},
		{"Medium", a.Summary.Medium},
		{"Low", a.Summary.Low},
	}
	if err := writeRows(f, SheetSummary, nil, summary); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 20)
	_ = f.SetColWidth(SheetSummary, "B", "B", 44)

	var violations [][]any
	for _, v := range a.Ranking {
		violations = append(violations, []any{
			v.Priority, string(v.Type), v.Name, string(v.Severity), v.Creditor(), accountOf(v),
			v.EstimatedImpact, v.FCRASection, string(v.DisputeStrategy), truncate(v.Description, 140),
		})
	}
	if err := writeSheet(f, SheetViolations, []string{
		"Priority", "Type", "Name", "Severity", "Creditor", "Account", "Impact", "FCRA Section", "Strategy", "Description",
	}, violations); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(SheetViolations, "B", "C", 28)
	_ = f.SetColWidth(SheetViolations, "E", "E", 24)
	_ = f.SetColWidth(SheetViolations, "J", "J", 60)

	var discrepancies [][]any
	for _, d := range a.Discrepancies {
		discrepancies = append(discrepancies, []any{d.AccountNumber, d.Field, strings.Join(d.Values, " | "), string(d.Severity), d.Description})
	}
	if err := writeSheet(f, SheetDiscrepancies, []string{"Account", "Field", "Values", "Severity", "Description"}, discrepancies); err != nil {
		return nil, err
	}

	if p := result.Plan; p != nil {
		var rounds [][]any
		for _, r := range p.Rounds {
			for _, b := range constants.Bureaus() {
				for _, item := range r.Items[b] {
					rounds = append(rounds, []any{
						r.Round, string(b), string(item.Violation.Type), item.Violation.Creditor(),
						string(item.LetterType), item.Strategy.Name, item.LegalBasis,
					})
				}
			}
		}
		if err := writeSheet(f, SheetRounds, []string{"Round", "Bureau", "Violation", "Creditor", "Letter", "Strategy", "Legal Basis"}, rounds); err != nil {
			return nil, err
		}

		var timeline [][]any
		for _, e := range p.Timeline {
			timeline = append(timeline, []any{e.Round, e.SendDate, e.ResponseDeadline, e.FollowUpDate, joinBureaus(e.Bureaus)})
		}
		if err := writeSheet(f, SheetTimeline, []string{"Round", "Send", "Response Due", "Follow Up", "Bureaus"}, timeline); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"report_id", result.ReportID.String(),
		"violations", len(violations),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ReportsWorkbook lists up to limit stored results, one row each.
func (s *Service) ReportsWorkbook(ctx context.Context, lister ResultLister, limit int) ([]byte, error) {
	results, err := lister.ListResults(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), SheetReports); err != nil {
		return nil, err
	}
	var rows [][]any
	for _, r := range results {
		rows = append(rows, []any{
			r.CreatedAt.UTC().Format("2006-01-02 15:04"), r.ReportID.String(), r.Source, string(r.Report.Bureau),
			r.Method, r.Analysis.TotalViolations, r.Analysis.TotalDiscrepancies, r.Analysis.TotalImpact,
		})
	}
	if err := writeSheet(f, SheetReports, []string{
		"Analyzed", "Report ID", "Source", "Bureau", "Method", "Violations", "Discrepancies", "Impact",
	}, rows); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(SheetReports, "A", "A", 18)
	_ = f.SetColWidth(SheetReports, "B", "C", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok", "rows", len(rows))
	return buf.Bytes(), nil
}

// writeSheet creates sheet if needed and writes a bold header row followed by rows.
func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	if idx, _ := f.GetSheetIndex(sheet); idx == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	return writeRows(f, sheet, headers, rows)
}

func writeRows(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	row := 1
	if len(headers) > 0 {
		hdr := make([]any, len(headers))
		for i, h := range headers {
			hdr[i] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &hdr); err != nil {
			return err
		}
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return err
		}
		row++
	}
	for _, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
		row++
	}
	return nil
}

func accountOf(v entity.Violation) string {
	if v.Account == nil {
		return ""
	}
	return v.Account.AccountNumberMasked
}

func joinBureaus(bs []constants.Bureau) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = string(b)
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
