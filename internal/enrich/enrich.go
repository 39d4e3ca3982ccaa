// Package enrich wraps the external AI enrichment service. Every operation
// is fallible and best-effort: callers catch per-call errors and degrade the
// affected field rather than failing the item.
package enrich

import (
	"context"
)

// QualityOptions tune an AI quality assessment request.
type QualityOptions struct {
	// MaxChars truncates the assessed text; 0 means the default (1500).
	MaxChars int
	// MinScore is the pass threshold on the 0-10 overall scale; 0 means
	// the default (6.0).
	MinScore float64
}

// QualityResponse is the loosely-shaped payload an assessment model returns.
// Providers disagree on structure: some return the dimensions at the top
// level, some nest them under Scores, some omit Overall entirely. The scorer
// normalizes all of these.
type QualityResponse struct {
	Overall      *float64           `json:"overall,omitempty"`
	Coherence    *float64           `json:"coherence,omitempty"`
	Clarity      *float64           `json:"clarity,omitempty"`
	Accuracy     *float64           `json:"accuracy,omitempty"`
	Relevance    *float64           `json:"relevance,omitempty"`
	Engagement   *float64           `json:"engagement,omitempty"`
	Scores       map[string]float64 `json:"scores,omitempty"`
	Explanations map[string]string  `json:"explanations,omitempty"`
}

// Service is the AI enrichment contract consumed by the pipeline.
type Service interface {
	Summarize(ctx context.Context, text string) (string, error)
	ExtractEntities(ctx context.Context, text string) ([]string, error)
	Classify(ctx context.Context, text string, taxonomy []string) ([]string, error)
	GenerateKeywords(ctx context.Context, text string) ([]string, error)
	AssessQuality(ctx context.Context, text string, opts QualityOptions) (*QualityResponse, error)
}
