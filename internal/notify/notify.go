package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/credit-audit/internal/pipeline"
)

// LogNotifier records completions in the log.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) AnalysisCompleted(_ context.Context, c pipeline.Completion) error {
	n.logger.Info("analysis.completed",
		"report_id", c.ReportID,
		"source", c.Source,
		"violations", c.Violations,
		"discrepancies", c.Discrepancies,
		"total_impact", c.TotalImpact,
	)
	return nil
}

// Multi fans a completion out to every notifier and joins their errors.
type Multi []pipeline.Notifier

func (m Multi) AnalysisCompleted(ctx context.Context, c pipeline.Completion) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.AnalysisCompleted(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
