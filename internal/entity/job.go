package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/credit-audit/constants"
)

// ReportJob tracks one document through the pipeline.
type ReportJob struct {
	ID           uuid.UUID           `json:"id"`
	Source       string              `json:"source"` // local path or gs:// URI
	ContentHash  string              `json:"content_hash"`
	Status       constants.JobStatus `json:"status"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
}

// ReportResult is everything persisted for an analyzed document.
type ReportResult struct {
	ReportID    uuid.UUID        `json:"report_id"`
	Source      string           `json:"source"`
	ContentHash string           `json:"content_hash"`
	Method      string           `json:"method"`
	Strategy    string           `json:"strategy,omitempty"`
	Pages       int              `json:"pages"`
	Report      StructuredReport `json:"report"`
	Analysis    Analysis         `json:"analysis"`
	Plan        *Strategy        `json:"plan,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}
