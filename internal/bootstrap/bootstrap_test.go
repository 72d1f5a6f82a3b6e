package bootstrap

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/notify"
)

func TestLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := Logger(&buf, &common.Config{LogLevel: "warn"})
	logger.Info("dropped")
	logger.Warn("kept", "k", 1)
	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, `"msg":"kept"`) {
		t.Errorf("log output = %q", out)
	}
}

func TestNotifier(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		name string
		cfg  common.NotifyConfig
		want int
	}{
		{"log only", common.NotifyConfig{}, 1},
		{"with sink", common.NotifyConfig{SinkURL: "http://localhost:9/events", Source: "test"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Notifier(tt.cfg, logger)
			if err != nil {
				t.Fatalf("Notifier: %v", err)
			}
			m, ok := n.(notify.Multi)
			if !ok {
				t.Fatalf("Notifier type = %T", n)
			}
			if len(m) != tt.want {
				t.Errorf("len = %d, want %d", len(m), tt.want)
			}
		})
	}
}

func TestPipelines(t *testing.T) {
	cfg := &common.Config{OCR: common.OCRConfig{Engine: "gosseract", DPI: 200, Strategy: "deskew"}}
	extraction, analysis, err := Pipelines(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Pipelines: %v", err)
	}
	if extraction == nil || analysis == nil {
		t.Fatal("nil pipeline")
	}
	opts := ExtractOptions(cfg.OCR)
	if opts.DPI != 200 || opts.Strategy != "deskew" {
		t.Errorf("ExtractOptions = %+v", opts)
	}
}
