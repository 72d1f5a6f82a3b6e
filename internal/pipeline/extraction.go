package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/credit-audit/constants"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
	"github.com/joseph-ayodele/credit-audit/internal/ocr"
	"github.com/joseph-ayodele/credit-audit/internal/parser"
)

// TextSource turns a raw document into text. *ocr.Extractor is the production implementation.
type TextSource interface {
	DirectText(ctx context.Context, doc entity.RawDocument) (entity.ExtractedText, error)
	OCR(ctx context.Context, doc entity.RawDocument, opts ocr.Options) (entity.ExtractedText, error)
}

// Options tunes one extraction. Zero values select the extractor defaults.
type Options struct {
	BureauHint string
	DPI        int
	Strategy   ocr.Strategy
}

// ExtractionPipeline runs text extraction followed by structured field extraction.
type ExtractionPipeline struct {
	Text   TextSource
	Parser *parser.Extractor
	Logger *slog.Logger
}

func NewExtractionPipeline(text TextSource, p *parser.Extractor, logger *slog.Logger) *ExtractionPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if p == nil {
		p = parser.NewExtractor(logger)
	}
	return &ExtractionPipeline{Text: text, Parser: p, Logger: logger}
}

// Extract reads a PDF's text layer first and keeps it when the parsed result is sufficient.
// Scanned PDFs, PDFs whose text yields nothing useful, and images go through OCR.
func (p *ExtractionPipeline) Extract(ctx context.Context, doc entity.RawDocument, opts Options) (entity.ExtractedText, entity.StructuredReport, error) {
	hint := opts.BureauHint
	if hint == "" {
		hint = doc.BureauHint
	}

	var fallback []string
	if doc.Kind == constants.PDF {
		text, err := p.Text.DirectText(ctx, doc)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return entity.ExtractedText{}, entity.StructuredReport{}, ctx.Err()
			}
			p.Logger.Warn("direct extraction failed, falling back to ocr", "doc_id", doc.ID, "err", err)
			fallback = append(fallback, fmt.Sprintf("direct extraction failed: %v", err))
		case strings.TrimSpace(text.Text) == "":
			p.Logger.Info("pdf has no text layer, falling back to ocr", "doc_id", doc.ID)
			fallback = append(fallback, "direct extraction returned no text")
		default:
			report := p.Parser.Extract(text, hint)
			if report.Sufficient() {
				p.logResult(doc, text, report)
				return text, report, nil
			}
			p.Logger.Info("direct text insufficient, falling back to ocr", "doc_id", doc.ID, "chars", len(text.Text))
			fallback = append(fallback, "direct extraction found no personal info, scores or accounts")
		}
	}

	text, err := p.Text.OCR(ctx, doc, ocr.Options{DPI: opts.DPI, Strategy: opts.Strategy})
	if err != nil {
		p.Logger.Error("pipeline.extract.failed", "doc_id", doc.ID, "kind", doc.Kind, "err", err)
		return text, entity.StructuredReport{}, fmt.Errorf("extract %s: %w", docLabel(doc), err)
	}
	if len(fallback) > 0 {
		text.Warnings = append(fallback, text.Warnings...)
	}
	report := p.Parser.Extract(text, hint)
	p.logResult(doc, text, report)
	return text, report, nil
}

func (p *ExtractionPipeline) logResult(doc entity.RawDocument, text entity.ExtractedText, report entity.StructuredReport) {
	p.Logger.Info("pipeline.extract.ok",
		"doc_id", doc.ID,
		"method", text.Method,
		"strategy", text.Strategy,
		"pages", text.Pages,
		"format", report.Format,
		"bureau", report.Bureau,
		"accounts", len(report.Accounts),
		"warnings", len(text.Warnings),
	)
}

func docLabel(doc entity.RawDocument) string {
	if doc.Name != "" {
		return doc.Name
	}
	return doc.ID
}
