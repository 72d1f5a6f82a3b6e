package constants

// JobStatus is the canonical status for rows in credit_report.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued    JobStatus = "QUEUED"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusExtracted JobStatus = "EXTRACTED" // stage 1+2 completed (structured report)
	JobStatusAnalyzed  JobStatus = "ANALYZED"  // stage 3+4 completed (violations + strategy)
	JobStatusFailed    JobStatus = "FAILED"
)
