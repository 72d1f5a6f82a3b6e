// Package bootstrap builds the shared pieces every binary wires the same way: the logger, the
// text extractor and the two pipeline halves.
package bootstrap

import (
	"io"
	"log/slog"

	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/notify"
	"github.com/joseph-ayodele/credit-audit/internal/ocr"
	"github.com/joseph-ayodele/credit-audit/internal/parser"
	"github.com/joseph-ayodele/credit-audit/internal/pipeline"
	"github.com/joseph-ayodele/credit-audit/internal/rules"
)

// Logger returns a JSON logger at the configured level and installs it as the default.
func Logger(w io.Writer, cfg *common.Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	return logger
}

// Extractor builds the OCR extractor. OCR_ENGINE=gosseract recognizes in-process when the binary
// was built with the gosseract tag; otherwise pages go through the tesseract binary.
func Extractor(cfg common.OCRConfig, logger *slog.Logger) *ocr.Extractor {
	var opts []ocr.Option
	if cfg.Engine == "gosseract" {
		if r := inProcessRecognizer(cfg, logger); r != nil {
			opts = append(opts, ocr.WithRecognizer(r))
		} else {
			logger.Warn("gosseract engine not compiled in, using tesseract CLI")
		}
	}
	logger.Debug("ocr engine selected", "engine", cfg.Engine, "strategy", cfg.Strategy)
	return ocr.NewExtractor(ocr.ConfigFrom(cfg), logger, opts...)
}

// Pipelines builds the extraction and analysis halves over the default rule catalog.
func Pipelines(cfg *common.Config, logger *slog.Logger) (*pipeline.ExtractionPipeline, *pipeline.AnalysisPipeline, error) {
	extraction := pipeline.NewExtractionPipeline(Extractor(cfg.OCR, logger), parser.NewExtractor(logger), logger)
	analysis, err := pipeline.NewAnalysisPipeline(rules.Default(), logger)
	if err != nil {
		return nil, nil, err
	}
	return extraction, analysis, nil
}

// ExtractOptions maps the OCR settings onto per-document extraction options.
func ExtractOptions(cfg common.OCRConfig) pipeline.Options {
	return pipeline.Options{DPI: cfg.DPI, Strategy: ocr.Strategy(cfg.Strategy)}
}

// Notifier always logs completions, and also posts a CloudEvent when a sink URL is configured.
func Notifier(cfg common.NotifyConfig, logger *slog.Logger) (pipeline.Notifier, error) {
	n := notify.Multi{notify.NewLogNotifier(logger)}
	if cfg.SinkURL == "" {
		return n, nil
	}
	ce, err := notify.NewCloudEventsNotifier(cfg.SinkURL, cfg.Source, logger)
	if err != nil {
		return nil, err
	}
	return append(n, ce), nil
}
