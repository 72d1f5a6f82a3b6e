// Package parser turns extracted credit report text into a StructuredReport.
//
// Every field lookup is best effort: a lookup that finds nothing returns ok=false and the
// corresponding report field stays empty. Nothing in this package returns an error.
package parser

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/credit-audit/constants"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

const (
	FormatSmartCredit        = "SmartCredit"
	FormatIdentityIQ         = "IdentityIQ"
	FormatMyFICO             = "MyFICO"
	FormatAnnualCreditReport = "AnnualCreditReport"
	FormatUnknown            = "Unknown"
	FormatOCR                = "OCR_Extracted"
	FormatImageOCR           = "Image_OCR"
)

var formatMarkers = []struct {
	format  string
	needles []string
}{
	{FormatSmartCredit, []string{"smartcredit", "smart credit"}},
	{FormatIdentityIQ, []string{"identityiq", "identity iq"}},
	{FormatMyFICO, []string{"myfico"}},
	{FormatAnnualCreditReport, []string{"annualcreditreport"}},
}

type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract builds a StructuredReport from text and any layout tables. bureauHint, when it names a
// known bureau, overrides detection.
func (e *Extractor) Extract(text entity.ExtractedText, bureauHint string) entity.StructuredReport {
	body := text.Text

	bureau := DetectBureau(body)
	if hinted, ok := constants.CanonicalizeBureau(bureauHint); ok {
		bureau = hinted
	}
	format := DetectFormat(body)
	if format == FormatUnknown && text.Method == entity.MethodOCR {
		format = FormatOCR
		if text.Kind == constants.IMAGE {
			format = FormatImageOCR
		}
	}

	report := entity.StructuredReport{
		Format:           format,
		Bureau:           bureau,
		PersonalInfo:     ExtractPersonalInfo(body),
		Scores:           ExtractScores(body, bureau, format),
		Accounts:         ExtractAccounts(body, text.Tables, bureau),
		Inquiries:        ExtractInquiries(body),
		PublicRecords:    ExtractPublicRecords(body),
		ExtractionMethod: text.Method,
		RawText:          truncateRunes(body, entity.MaxRawTextLen),
	}

	e.logger.Debug("parser.extract.ok",
		"format", report.Format,
		"bureau", report.Bureau,
		"scores", len(report.Scores),
		"accounts", len(report.Accounts),
		"inquiries", len(report.Inquiries),
		"public_records", len(report.PublicRecords),
		"tables", len(text.Tables),
	)
	return report
}

// DetectBureau returns the bureau named most often in text, or UnknownBureau when none is named.
// Ties go to the earlier bureau in scheduling order.
func DetectBureau(text string) constants.Bureau {
	lower := strings.ToLower(text)
	best, bestCount := constants.UnknownBureau, 0
	for _, b := range constants.Bureaus() {
		if n := strings.Count(lower, string(b)); n > bestCount {
			best, bestCount = b, n
		}
	}
	return best
}

// DetectFormat recognizes the aggregator product that produced the report.
func DetectFormat(text string) string {
	lower := strings.ToLower(text)
	for _, m := range formatMarkers {
		for _, n := range m.needles {
			if strings.Contains(lower, n) {
				return m.format
			}
		}
	}
	return FormatUnknown
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
