//go:build gosseract

package bootstrap

import (
	"log/slog"

	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/ocr"
	"github.com/joseph-ayodele/credit-audit/internal/ocr/tesseract"
)

func inProcessRecognizer(cfg common.OCRConfig, logger *slog.Logger) ocr.Recognizer {
	return tesseract.NewEngine(cfg.Language, cfg.TessdataDir, cfg.DPI, logger)
}
