package processor

import (
	"github.com/asapdigest/content-pipeline/internal/dedup"
	"github.com/asapdigest/content-pipeline/internal/domain"
)

// Result is the outcome of one pipeline run. Business-rule failures
// (validation, duplicate, quality threshold) are expected outcomes carried in
// Errors; they are never raised as Go errors.
type Result struct {
	Success  bool              `json:"success"`
	Errors   map[string]string `json:"errors,omitempty"`
	Warnings map[string]string `json:"warnings,omitempty"`

	Item        domain.ContentItem       `json:"item"`
	Fingerprint string                   `json:"fingerprint,omitempty"`
	Quality     domain.QualityAssessment `json:"quality"`

	// AIQuality is set when an enricher is configured; a degraded external
	// call still yields an assessment with Pass=false.
	AIQuality *domain.AIQualityAssessment `json:"aiQuality,omitempty"`

	// Duplicate is set when the fingerprint collided with a persisted row.
	Duplicate *dedup.DuplicateDetails `json:"duplicate,omitempty"`
}

func failure(errs map[string]string) *Result {
	return &Result{Success: false, Errors: errs}
}

// SaveResult is the outcome of persisting a processed item.
type SaveResult struct {
	Success   bool              `json:"success"`
	Errors    map[string]string `json:"errors,omitempty"`
	ContentID int64             `json:"contentId,omitempty"`
}

// Stats is the reporting snapshot over the content table.
type Stats struct {
	Total          int64                        `json:"total"`
	ByStatus       map[domain.Status]int64      `json:"byStatus"`
	ByType         map[domain.ContentType]int64 `json:"byType"`
	ScoreHistogram map[string]int64             `json:"scoreHistogram"`
	Recent         []domain.ContentItem         `json:"recent"`
}
