package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/credit-audit/internal/async"
	"github.com/joseph-ayodele/credit-audit/internal/bootstrap"
	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
	"github.com/joseph-ayodele/credit-audit/internal/export"
	"github.com/joseph-ayodele/credit-audit/internal/ingest"
	"github.com/joseph-ayodele/credit-audit/internal/ocr"
	"github.com/joseph-ayodele/credit-audit/internal/pipeline"
	"github.com/joseph-ayodele/credit-audit/internal/storage"
)

type extractFlags struct {
	hint     *string
	strategy *string
	dpi      *int
}

func addExtractFlags(fs *flag.FlagSet, cfg *common.Config) extractFlags {
	return extractFlags{
		hint:     fs.String("hint", "", "bureau hint (equifax, experian, transunion); defaults to the file name"),
		strategy: fs.String("strategy", cfg.OCR.Strategy, "OCR preprocessing strategy: "+strategyNames()),
		dpi:      fs.Int("dpi", cfg.OCR.DPI, "rasterization DPI for scanned pages"),
	}
}

func (f extractFlags) options() (pipeline.Options, error) {
	s, err := ocr.ParseStrategy(*f.strategy)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{BureauHint: *f.hint, DPI: *f.dpi, Strategy: s}, nil
}

func strategyNames() string {
	var names []string
	for _, s := range ocr.Strategies() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

func runExtract(ctx context.Context, e env, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	in := fs.String("in", "", "report document (PDF or image) (required)")
	withText := fs.Bool("text", false, "include the raw extracted text in the output")
	xf := addExtractFlags(fs, e.cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("-in is required: %w", common.ErrInvalidInput)
	}
	opts, err := xf.options()
	if err != nil {
		return err
	}

	doc, err := storage.NewLocalSource("", e.logger).Open(ctx, *in)
	if err != nil {
		return err
	}
	extraction, _, err := bootstrap.Pipelines(e.cfg, e.logger)
	if err != nil {
		return err
	}
	text, report, err := extraction.Extract(ctx, doc, opts)
	if err != nil {
		return err
	}

	out := struct {
		Method   string                  `json:"method"`
		Strategy string                  `json:"strategy,omitempty"`
		Pages    int                     `json:"pages"`
		Warnings []string                `json:"warnings,omitempty"`
		Text     string                  `json:"text,omitempty"`
		Report   entity.StructuredReport `json:"report"`
	}{text.Method, text.Strategy, text.Pages, text.Warnings, "", report}
	if *withText {
		out.Text = text.Text
	}
	return writeJSON(out)
}

func runAnalyze(ctx context.Context, e env, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	in := fs.String("in", "", "report document, or structured report JSON (.json) (required)")
	round := fs.Int("round", 1, "number of the first dispute round")
	save := fs.Bool("save", false, "store the result and job in the database")
	id, name := clientFlags(fs)
	xf := addExtractFlags(fs, e.cfg)
	db := addDBFlags(fs, e.cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("-in is required: %w", common.ErrInvalidInput)
	}
	opts, err := xf.options()
	if err != nil {
		return err
	}
	extraction, analysis, err := bootstrap.Pipelines(e.cfg, e.logger)
	if err != nil {
		return err
	}
	c := client(*id, *name)

	if strings.EqualFold(filepath.Ext(*in), ".json") {
		data, err := readInput(*in)
		if err != nil {
			return err
		}
		res, err := analysis.AnalyzeJSON(data, c, *round)
		if err != nil {
			return err
		}
		return writeJSON(res)
	}

	if *save {
		store, err := db.open(ctx, e)
		if err != nil {
			return err
		}
		defer store.Close()
		p := pipeline.NewProcessor(storage.NewLocalSource("", e.logger), extraction, analysis, store, e.logger,
			pipeline.WithJobTracker(store),
			pipeline.WithClient(c),
			pipeline.WithExtractOptions(opts),
		)
		res, err := p.Process(ctx, *in)
		if err != nil {
			return err
		}
		return writeJSON(res)
	}

	doc, err := storage.NewLocalSource("", e.logger).Open(ctx, *in)
	if err != nil {
		return err
	}
	_, report, err := extraction.Extract(ctx, doc, opts)
	if err != nil {
		return err
	}
	res, err := analysis.Analyze(report, c, *round)
	if err != nil {
		return err
	}
	return writeJSON(res)
}

func runStrategy(_ context.Context, e env, args []string) error {
	fs := flag.NewFlagSet("strategy", flag.ContinueOnError)
	in := fs.String("in", "-", "violations JSON array; - reads stdin")
	round := fs.Int("round", 1, "number of the first dispute round")
	id, name := clientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	_, analysis, err := bootstrap.Pipelines(e.cfg, e.logger)
	if err != nil {
		return err
	}
	data, err := readInput(*in)
	if err != nil {
		return err
	}
	plan, err := analysis.PlanJSON(data, client(*id, *name), *round)
	if err != nil {
		return err
	}
	return writeJSON(plan)
}

func runExport(ctx context.Context, e env, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	id := fs.String("id", "", "report id of a stored result")
	in := fs.String("in", "", "saved result JSON (output of analyze -save)")
	list := fs.Int("list", 0, "export a summary of the newest N stored results instead of one audit")
	out := fs.String("out", "", "output XLSX path (defaults to audit-<report id>.xlsx or reports.xlsx)")
	db := addDBFlags(fs, e.cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	svc := export.NewService(e.logger)

	if *list > 0 {
		store, err := db.open(ctx, e)
		if err != nil {
			return err
		}
		defer store.Close()
		data, err := svc.ReportsWorkbook(ctx, store, *list)
		if err != nil {
			return err
		}
		return writeFile(defaultString(*out, "reports.xlsx"), data)
	}

	var result entity.ReportResult
	switch {
	case *in != "":
		data, err := readInput(*in)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &result); err != nil {
			return fmt.Errorf("decode %s: %w", *in, err)
		}
	case *id != "":
		reportID, err := uuid.Parse(*id)
		if err != nil {
			return fmt.Errorf("bad -id: %w", common.ErrInvalidInput)
		}
		store, err := db.open(ctx, e)
		if err != nil {
			return err
		}
		defer store.Close()
		if result, err = store.GetResult(ctx, reportID); err != nil {
			return err
		}
	default:
		return fmt.Errorf("one of -id, -in or -list is required: %w", common.ErrInvalidInput)
	}

	data, err := svc.AuditWorkbook(result)
	if err != nil {
		return err
	}
	return writeFile(defaultString(*out, fmt.Sprintf("audit-%s.xlsx", result.ReportID)), data)
}

// countingHandler tallies batch outcomes as the queue workers finish.
type countingHandler struct {
	*pipeline.Processor
	ok, failed atomic.Int64
}

func (h *countingHandler) Process(ctx context.Context, ref string) (entity.ReportResult, error) {
	res, err := h.Processor.Process(ctx, ref)
	if err != nil {
		h.failed.Add(1)
	} else {
		h.ok.Add(1)
	}
	return res, err
}

func runBatch(ctx context.Context, e env, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	dir := fs.String("dir", "", "directory of report documents (required)")
	out := fs.String("out", "", "summary XLSX path (defaults to reports.xlsx next to -dir)")
	skipHidden := fs.Bool("skip-hidden", true, "skip hidden files and directories")
	id, name := clientFlags(fs)
	xf := addExtractFlags(fs, e.cfg)
	db := addDBFlags(fs, e.cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" {
		return fmt.Errorf("-dir is required: %w", common.ErrInvalidInput)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "reports.xlsx")
	}
	opts, err := xf.options()
	if err != nil {
		return err
	}
	// The file name decides the bureau hint per document.
	opts.BureauHint = ""

	store, err := db.open(ctx, e)
	if err != nil {
		return err
	}
	defer store.Close()
	extraction, analysis, err := bootstrap.Pipelines(e.cfg, e.logger)
	if err != nil {
		return err
	}
	notifier, err := bootstrap.Notifier(e.cfg.Notify, e.logger)
	if err != nil {
		return err
	}
	h := &countingHandler{Processor: pipeline.NewProcessor(storage.NewLocalSource("", e.logger), extraction, analysis, store, e.logger,
		pipeline.WithJobTracker(store),
		pipeline.WithSkipProcessed(store),
		pipeline.WithNotifier(notifier),
		pipeline.WithClient(client(*id, *name)),
		pipeline.WithExtractOptions(opts),
	)}
	queue := async.NewProcessorQueue(h, e.logger,
		async.WithWorkers(e.cfg.Pipeline.Workers),
		async.WithQueueSize(e.cfg.Pipeline.QueueSize),
		async.WithProcessTimeout(e.cfg.Pipeline.ProcessTimeout),
	)

	e.logger.Info("starting ingestion", "dir", *dir)
	_, stats, err := ingest.NewIngestor(queue, e.logger).IngestDirectory(ctx, *dir, *skipHidden)
	queue.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", *dir, err)
	}

	data, err := export.NewService(e.logger).ReportsWorkbook(ctx, store, int(stats.Succeeded))
	if err != nil {
		return err
	}
	if err := writeFile(*out, data); err != nil {
		return err
	}

	e.logger.Info("batch processing complete",
		"matched", stats.Matched, "queued", stats.Succeeded, "failed_ingest", stats.Failed,
		"processed", h.ok.Load(), "failed", h.failed.Load(), "output_file", *out)
	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Documents queued: %d\n", stats.Succeeded)
	fmt.Printf("- Documents processed: %d\n", h.ok.Load())
	fmt.Printf("- Failures: %d\n", h.failed.Load()+int64(stats.Failed))
	fmt.Printf("- Output: %s\n", *out)
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, common.ErrNotFound)
	}
	return data, err
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", path, len(data))
	return nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
