//go:build gosseract

// Package tesseract recognizes page images in-process through libtesseract. It needs cgo, the
// tesseract development headers and the gosseract build tag.
package tesseract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/otiai10/gosseract/v2"
)

// Engine implements ocr.Recognizer with a fresh gosseract client per page, since a client is
// not safe for concurrent use.
type Engine struct {
	Language    string
	TessdataDir string
	DPI         int

	clientFactory func() *gosseract.Client
	logger        *slog.Logger
}

func NewEngine(language, tessdataDir string, dpi int, logger *slog.Logger) *Engine {
	if language == "" {
		language = "eng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		Language:      language,
		TessdataDir:   tessdataDir,
		DPI:           dpi,
		clientFactory: gosseract.NewClient,
		logger:        logger,
	}
}

func (e *Engine) Recognize(ctx context.Context, png []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := e.clientFactory()
	defer c.Close()

	if e.TessdataDir != "" {
		if err := c.SetTessdataPrefix(e.TessdataDir); err != nil {
			return "", fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := c.SetLanguage(e.Language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("set page seg mode: %w", err)
	}
	if e.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(e.DPI)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}
	if err := c.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	e.logger.Debug("gosseract page recognized", "chars", len(text), "confidence", meanConfidence(c))
	return text, nil
}

// meanConfidence averages word confidences in 0..1; 0 when tesseract reports no words.
func meanConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes)) / 100
}
