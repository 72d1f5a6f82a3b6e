package entity

import (
	"time"

	"github.com/joseph-ayodele/credit-audit/constants"
)

// RawDocument is an opaque credit report file as received. It is consumed once by extraction.
type RawDocument struct {
	ID         string
	Name       string
	Kind       constants.MediaKind
	Data       []byte
	BureauHint string
}

// Table is one block of layout rows, header first when the source had one.
type Table [][]string

const (
	MethodDirect = "direct"
	MethodOCR    = "ocr"
)

// ExtractedText is the text of one document with page markers preserved.
type ExtractedText struct {
	Text     string              `json:"text"`
	Kind     constants.MediaKind `json:"kind"`
	Method   string              `json:"method"`             // MethodDirect | MethodOCR
	Strategy string              `json:"strategy,omitempty"` // preprocessing strategy, OCR only
	Pages    int                 `json:"pages"`
	Tables   []Table             `json:"-"`
	Warnings []string            `json:"warnings,omitempty"`
	Duration time.Duration       `json:"duration"`
}
