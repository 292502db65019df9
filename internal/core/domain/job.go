package domain

import "time"

type JobStatus string

const (
	StatusDetected       JobStatus = "detected"
	StatusStable         JobStatus = "stable"
	StatusExtracted      JobStatus = "extracted"
	StatusClassified     JobStatus = "classified"
	StatusExtractFailed  JobStatus = "extract_failed"
	StatusClassifyFailed JobStatus = "classify_failed"
	StatusRouted         JobStatus = "routed"
	StatusLogged         JobStatus = "logged"
	StatusFailed         JobStatus = "failed"
)

// Reserved fallback categories. Registry rejects service-proposed names
// that would collide with them.
const (
	CategoryUnsupported  = "_unsupported"
	CategoryUnclassified = "_unclassified"
)

// Fixed summaries recorded for fallback-routed files.
const (
	SummaryUnsupported  = "Unsupported file type; stored without classification."
	SummaryUnclassified = "Could not extract or classify this document."
)

func IsReservedCategory(name string) bool {
	return name == CategoryUnsupported || name == CategoryUnclassified
}

// ProcessingJob tracks a single file through the pipeline. Exactly one job
// per source path may be in flight at a time.
type ProcessingJob struct {
	ID             string
	SourcePath     string
	ExtractedText  string
	Status         JobStatus
	Classification *ClassificationResult
	FinalPath      string
	Err            error
	DetectedAt     time.Time

	// FallbackFrom records the failure status that diverted the job into
	// fallback routing. Empty for cleanly classified files. Fallback
	// routing overwrites Status on its way to logged; this keeps the
	// originating failure observable.
	FallbackFrom JobStatus
}

// ClassificationResult is the schema-validated output of the classification
// service after category reconciliation and filename sanitization.
type ClassificationResult struct {
	Category     string `json:"category"`
	FilenameStem string `json:"filename"`
	Summary      string `json:"summary"`
}

// FileRecord is the append-only audit entry for a terminal job.
type FileRecord struct {
	ID               int64     `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	NewFilename      string    `json:"new_filename"`
	Category         string    `json:"category"`
	Summary          string    `json:"summary"`
	FinalPath        string    `json:"final_path"`
	ProcessedAt      time.Time `json:"processed_at"`
}
