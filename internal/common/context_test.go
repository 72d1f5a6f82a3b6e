package common

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(context.Background(), base.With("worker_id", 3))
	ctx = WithRequestID(ctx, "trace-1")
	ctx = WithReportID(ctx, "report-9")
	LoggerFromContext(ctx, nil).Info("hello")

	out := buf.String()
	for _, want := range []string{"worker_id=3", "trace_id=trace-1", "report_id=report-9"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q missing %q", out, want)
		}
	}

	buf.Reset()
	LoggerFromContext(context.Background(), base).Info("plain")
	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("unexpected trace id in %q", buf.String())
	}
	if LoggerFromContext(context.Background(), nil) == nil {
		t.Error("nil fallback should resolve to slog.Default()")
	}
}
