// Package scorer computes content quality: a rule-based 1-100 composite and
// an optional external AI assessment on a 0-10 scale.
package scorer

import (
	"math"
	"time"

	"github.com/asapdigest/content-pipeline/internal/domain"
	"github.com/asapdigest/content-pipeline/pkg/textutil"
)

const (
	// lowQualityScore is the fixed score for items that already failed
	// validation badly; the weighted computation is skipped.
	lowQualityScore      = 30
	maxValidationErrors  = 2
	completenessMinChars = 100
)

// subWeight is the contribution of each sub-score; the four are equally
// weighted.
const subWeight = 25.0

type Heuristic struct {
	now func() time.Time
}

func NewHeuristic() *Heuristic {
	return &Heuristic{now: time.Now}
}

// Score computes the composite quality assessment. validationErrors is the
// error count the validator produced for this item: more than two errors
// short-circuits to a fixed low score.
func (h *Heuristic) Score(item domain.ContentItem, validationErrors int) domain.QualityAssessment {
	if validationErrors > maxValidationErrors {
		return domain.QualityAssessment{Score: lowQualityScore}
	}

	a := domain.QualityAssessment{
		Completeness: h.completeness(item),
		Recency:      h.recency(item),
		Length:       h.length(item),
		Structure:    h.structure(item),
	}

	raw := subWeight * (a.Completeness + a.Recency + a.Length + a.Structure)
	a.Score = clampScore(int(math.Round(raw)))
	return a
}

// completeness rewards presence of the four content-bearing fields, each
// worth a quarter of the sub-score.
func (h *Heuristic) completeness(item domain.ContentItem) float64 {
	var score float64
	if textutil.StripTags(item.Title) != "" {
		score += 0.25
	}
	if len(textutil.StripTags(item.Content)) >= completenessMinChars {
		score += 0.25
	}
	if textutil.StripTags(item.Summary) != "" {
		score += 0.25
	}
	if item.SourceURL != "" {
		score += 0.25
	}
	return score
}

// recency tiers by publish age. Items without a usable date sit in the
// middle rather than being punished.
func (h *Heuristic) recency(item domain.ContentItem) float64 {
	if item.PublishDate == "" {
		return 0.5
	}
	published, err := domain.ParsePublishDate(item.PublishDate)
	if err != nil {
		return 0.5
	}

	age := h.now().Sub(published)
	switch {
	case age <= 24*time.Hour:
		return 1.0
	case age <= 7*24*time.Hour:
		return 0.8
	case age <= 30*24*time.Hour:
		return 0.6
	case age <= 90*24*time.Hour:
		return 0.4
	default:
		return 0.2
	}
}

func (h *Heuristic) length(item domain.ContentItem) float64 {
	switch chars := len(textutil.StripTags(item.Content)); {
	case chars > 5000:
		return 1.0
	case chars > 2000:
		return 0.8
	case chars > 1000:
		return 0.6
	case chars > 500:
		return 0.4
	default:
		return 0.2
	}
}

// structure rewards paragraph breaks, with a small bonus when the raw
// content carries markup beyond its stripped text.
func (h *Heuristic) structure(item domain.ContentItem) float64 {
	var score float64
	switch paragraphs := len(textutil.Paragraphs(item.Content)); {
	case paragraphs >= 5:
		score = 0.8
	case paragraphs >= 3:
		score = 0.6
	case paragraphs >= 2:
		score = 0.4
	default:
		score = 0.2
	}

	if textutil.HasMarkup(item.Content) {
		score += 0.2
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func clampScore(s int) int {
	if s < 1 {
		return 1
	}
	if s > 100 {
		return 100
	}
	return s
}
