// Package ocr gets text out of credit report documents: pdftotext for PDFs with a text layer,
// and rasterize + preprocess + recognize for scans and images.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/credit-audit/constants"
	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Language    string // default "eng"
	TessdataDir string
	DPI         int      // rasterization DPI for scanned PDFs, default 300
	Strategy    Strategy // default adaptive

	PageTimeout time.Duration // per page, default 60s
	MaxPages    int           // 0 = no limit
	Concurrency int           // pages in flight, default 4
}

// ConfigFrom maps the environment-driven settings onto an extractor Config.
func ConfigFrom(c common.OCRConfig) Config {
	return Config{
		Pdftotext:   c.Pdftotext,
		Pdftoppm:    c.Pdftoppm,
		Tesseract:   c.Tesseract,
		Language:    c.Language,
		TessdataDir: c.TessdataDir,
		DPI:         c.DPI,
		Strategy:    Strategy(c.Strategy),
		PageTimeout: c.PageTimeout,
		MaxPages:    c.MaxPages,
		Concurrency: c.Concurrency,
	}
}

// Options override the configured DPI and strategy for one call.
type Options struct {
	DPI      int
	Strategy Strategy
}

type Extractor struct {
	cfg        Config
	shell      Shell
	recognizer Recognizer
	logger     *slog.Logger
}

type Option func(*Extractor)

// WithShell replaces os/exec for the poppler and tesseract binaries.
func WithShell(s Shell) Option {
	return func(e *Extractor) { e.shell = s }
}

// WithRecognizer replaces the tesseract CLI, e.g. with the in-process engine.
func WithRecognizer(r Recognizer) Option {
	return func(e *Extractor) { e.recognizer = r }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.Strategy == "" {
		cfg.Strategy = DefaultStrategy
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 60 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	e := &Extractor{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	if e.shell == nil {
		e.shell = NewExecShell(logger)
	}
	if e.recognizer == nil {
		e.recognizer = NewTesseractCLI(cfg.Tesseract, cfg.Language, cfg.TessdataDir, e.shell)
	}
	return e
}

// DirectText reads the embedded text layer of a PDF along with any layout tables.
func (e *Extractor) DirectText(ctx context.Context, doc entity.RawDocument) (entity.ExtractedText, error) {
	start := time.Now()
	if doc.Kind != constants.PDF {
		return entity.ExtractedText{}, fmt.Errorf("direct text needs a PDF, got %q: %w", doc.Kind, common.ErrUnsupportedMedia)
	}

	dir, cleanup, err := e.stage(doc)
	if err != nil {
		return entity.ExtractedText{}, err
	}
	defer cleanup()

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, err := e.shell.Exec(ctx, Command{
		Name: e.cfg.Pdftotext,
		Args: []string{"-layout", "-enc", "UTF-8", "-eol", "unix", filepath.Join(dir, stagedPDF), "-"},
	})
	if err != nil {
		failed := entity.ExtractedText{Kind: constants.PDF, Method: entity.MethodDirect}
		var cerr *CommandError
		if errors.As(err, &cerr) && cerr.Stderr != "" {
			failed.Warnings = []string{cerr.Stderr}
		}
		return failed, fmt.Errorf("direct text: %w", err)
	}
	text := string(out)

	// pdftotext ends every page with a form feed
	pages := strings.Count(text, "\f")
	if !strings.HasSuffix(strings.TrimRight(text, "\n"), "\f") {
		pages++
	}

	res := entity.ExtractedText{
		Text:     text,
		Kind:     constants.PDF,
		Method:   entity.MethodDirect,
		Pages:    pages,
		Tables:   TablesFromLayout(text),
		Duration: time.Since(start),
	}
	e.logger.Debug("ocr.direct.ok", "doc_id", doc.ID, "pages", res.Pages, "tables", len(res.Tables), "chars", len(text))
	return res, nil
}

// OCR recognizes a scanned PDF or an image with the given preprocessing.
func (e *Extractor) OCR(ctx context.Context, doc entity.RawDocument, opts Options) (entity.ExtractedText, error) {
	start := time.Now()
	if opts.DPI <= 0 {
		opts.DPI = e.cfg.DPI
	}
	if opts.Strategy == "" {
		opts.Strategy = e.cfg.Strategy
	}
	if _, err := ParseStrategy(string(opts.Strategy)); err != nil {
		return entity.ExtractedText{}, err
	}

	e.logger.Debug("starting ocr extraction", "doc_id", doc.ID, "kind", doc.Kind, "strategy", opts.Strategy, "dpi", opts.DPI)

	var (
		res entity.ExtractedText
		err error
	)
	switch doc.Kind {
	case constants.PDF:
		res, err = e.ocrPDF(ctx, doc, opts)
	case constants.IMAGE:
		res, err = e.ocrImage(ctx, doc, opts)
	default:
		e.logger.Error("unsupported media kind", "doc_id", doc.ID, "kind", doc.Kind)
		return entity.ExtractedText{}, fmt.Errorf("kind %q: %w", doc.Kind, common.ErrUnsupportedMedia)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	e.logger.Debug("ocr.ok", "doc_id", doc.ID, "pages", res.Pages, "warnings", len(res.Warnings), "duration_ms", res.Duration.Milliseconds())
	return res, nil
}

const stagedPDF = "document.pdf"

// stage writes the document into a fresh temp dir for the poppler tools.
func (e *Extractor) stage(doc entity.RawDocument) (string, func(), error) {
	dir, err := os.MkdirTemp("", "credit-audit-*")
	if err != nil {
		return "", func() {}, err
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, stagedPDF), doc.Data, 0o600); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return dir, cleanup, nil
}
