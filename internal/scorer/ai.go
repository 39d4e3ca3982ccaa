package scorer

import (
	"context"
	"fmt"

	"github.com/asapdigest/content-pipeline/internal/domain"
	"github.com/asapdigest/content-pipeline/internal/enrich"
	"github.com/asapdigest/content-pipeline/internal/errlog"
	"github.com/asapdigest/content-pipeline/pkg/textutil"
)

const (
	// DefaultAIThreshold is the pass mark on the 0-10 overall scale.
	DefaultAIThreshold = 6.0
	// DefaultAIMaxChars truncates assessed content.
	DefaultAIMaxChars = 1500

	// minAssessableChars rejects content too short to assess.
	minAssessableChars = 50

	// lowDimension marks a dimension as needing a recommendation.
	lowDimension = 7.0
)

// AIScorer wraps the external quality assessment. It never fails past its
// own boundary: any upstream error degrades to an all-zero, failing result.
type AIScorer struct {
	svc       enrich.Service
	log       *errlog.Logger
	threshold float64
	maxChars  int
}

type AIScorerOption func(*AIScorer)

func WithThreshold(threshold float64) AIScorerOption {
	return func(s *AIScorer) { s.threshold = threshold }
}

func WithMaxChars(maxChars int) AIScorerOption {
	return func(s *AIScorer) { s.maxChars = maxChars }
}

func NewAIScorer(svc enrich.Service, log *errlog.Logger, opts ...AIScorerOption) *AIScorer {
	s := &AIScorer{
		svc:       svc,
		log:       log,
		threshold: DefaultAIThreshold,
		maxChars:  DefaultAIMaxChars,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score assesses content through the external model and normalizes whatever
// shape comes back into the six-field assessment.
func (s *AIScorer) Score(ctx context.Context, content string) domain.AIQualityAssessment {
	stripped := textutil.StripTags(content)
	if len(stripped) < minAssessableChars {
		return domain.AIQualityAssessment{
			Recommendations: []string{"Content is too short for a quality assessment."},
		}
	}

	resp, err := s.svc.AssessQuality(ctx, textutil.Truncate(stripped, s.maxChars), enrich.QualityOptions{
		MaxChars: s.maxChars,
		MinScore: s.threshold,
	})
	if err != nil {
		s.log.Log(ctx, "content_processing/ai_quality", "external_call", err.Error(),
			map[string]any{"content_chars": len(stripped)}, errlog.SeverityWarning)
		return domain.AIQualityAssessment{
			Recommendations: []string{"Quality assessment unavailable; content was not scored."},
		}
	}

	a := normalize(resp)
	a.Pass = a.Overall >= s.threshold
	a.Recommendations = recommendations(a, resp.Explanations)
	return a
}

// normalize reconciles the provider response shapes: direct fields win,
// the nested scores map fills gaps, and a missing overall is derived from
// the dimension average. Every value is clamped to [0,10].
func normalize(resp *enrich.QualityResponse) domain.AIQualityAssessment {
	dim := func(direct *float64, key string) float64 {
		if direct != nil {
			return clampDimension(*direct)
		}
		if v, ok := resp.Scores[key]; ok {
			return clampDimension(v)
		}
		return 0
	}

	a := domain.AIQualityAssessment{
		Coherence:  dim(resp.Coherence, "coherence"),
		Clarity:    dim(resp.Clarity, "clarity"),
		Accuracy:   dim(resp.Accuracy, "accuracy"),
		Relevance:  dim(resp.Relevance, "relevance"),
		Engagement: dim(resp.Engagement, "engagement"),
	}

	switch {
	case resp.Overall != nil:
		a.Overall = clampDimension(*resp.Overall)
	default:
		if v, ok := resp.Scores["overall"]; ok {
			a.Overall = clampDimension(v)
		} else {
			a.Overall = clampDimension(
				(a.Coherence + a.Clarity + a.Accuracy + a.Relevance + a.Engagement) / 5,
			)
		}
	}

	return a
}

var adviceTemplates = map[string]string{
	"coherence":  "Reorder the content so each section follows from the previous one.",
	"clarity":    "Simplify long sentences and define jargon on first use.",
	"accuracy":   "Verify claims against primary sources and cite them.",
	"relevance":  "Cut tangents that do not serve the main topic.",
	"engagement": "Open with the most newsworthy detail and tighten the lead.",
}

// recommendations prefers the model's own explanation for each low-scoring
// dimension, falls back to templated advice, and finally to a generic note
// when nothing specific is available.
func recommendations(a domain.AIQualityAssessment, explanations map[string]string) []string {
	dims := []struct {
		name  string
		score float64
	}{
		{"coherence", a.Coherence},
		{"clarity", a.Clarity},
		{"accuracy", a.Accuracy},
		{"relevance", a.Relevance},
		{"engagement", a.Engagement},
	}

	var recs []string
	for _, d := range dims {
		if d.score >= lowDimension {
			continue
		}
		if expl, ok := explanations[d.name]; ok && expl != "" {
			recs = append(recs, expl)
			continue
		}
		if advice, ok := adviceTemplates[d.name]; ok {
			recs = append(recs, fmt.Sprintf("%s (%s scored %.1f/10)", advice, d.name, d.score))
		}
	}

	if len(recs) == 0 && !a.Pass {
		recs = append(recs, "Overall quality is below the acceptance threshold; review the content before resubmitting.")
	}
	return recs
}

func clampDimension(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
