//go:build !gosseract

package bootstrap

import (
	"log/slog"

	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/ocr"
)

func inProcessRecognizer(common.OCRConfig, *slog.Logger) ocr.Recognizer { return nil }
