package ocr

import (
	"fmt"

	"github.com/joseph-ayodele/credit-audit/internal/common"
)

// ExtractionFailed reports that a document yielded no usable text. It matches
// common.ErrExtractionFailed under errors.Is.
type ExtractionFailed struct {
	Strategy Strategy
	Pages    int // 0 when the page count is unknown
	Reason   string
	Err      error
}

func (e *ExtractionFailed) Error() string {
	msg := fmt.Sprintf("extraction failed (strategy=%s, pages=%d): %s", e.Strategy, e.Pages, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionFailed) Unwrap() []error {
	if e.Err == nil {
		return []error{common.ErrExtractionFailed}
	}
	return []error{common.ErrExtractionFailed, e.Err}
}
