package scorer

import (
	"strings"
	"testing"
	"time"

	"github.com/asapdigest/content-pipeline/internal/domain"
	"github.com/stretchr/testify/assert"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestHeuristic_ShortCircuitOnValidationErrors(t *testing.T) {
	a := NewHeuristic().Score(domain.ContentItem{}, 3)

	assert.Equal(t, 30, a.Score)
	assert.Zero(t, a.Completeness)
}

func TestHeuristic_Bounds(t *testing.T) {
	h := NewHeuristic()

	// Empty item still scores at least 1.
	a := h.Score(domain.ContentItem{}, 0)
	assert.GreaterOrEqual(t, a.Score, 1)
	assert.LessOrEqual(t, a.Score, 100)

	// Fully loaded item never exceeds 100.
	best := domain.ContentItem{
		Title:       "A Thorough Look At Everything",
		Content:     "<article>" + strings.Repeat("A long and winding paragraph of body text.\n\n", 200) + "</article>",
		Summary:     "A summary of the thorough look.",
		SourceURL:   "https://example.com/thorough",
		PublishDate: time.Now().Format(time.RFC3339),
	}
	a = h.Score(best, 0)
	assert.LessOrEqual(t, a.Score, 100)
	assert.GreaterOrEqual(t, a.Score, 90)
}

func TestHeuristic_RecencyTiers(t *testing.T) {
	now := time.Date(2025, 8, 25, 12, 0, 0, 0, time.UTC)
	h := &Heuristic{now: fixedNow(now)}

	tests := []struct {
		name string
		date string
		want float64
	}{
		{"same day", "2025-08-25T08:00:00Z", 1.0},
		{"three days", "2025-08-22T12:00:00Z", 0.8},
		{"two weeks", "2025-08-11T12:00:00Z", 0.6},
		{"two months", "2025-06-25T12:00:00Z", 0.4},
		{"last year", "2024-01-01T00:00:00Z", 0.2},
		{"missing", "", 0.5},
		{"unparsable", "around noon", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := h.Score(domain.ContentItem{PublishDate: tt.date}, 0)
			assert.Equal(t, tt.want, a.Recency)
		})
	}
}

func TestHeuristic_LengthTiers(t *testing.T) {
	h := NewHeuristic()

	tests := []struct {
		chars int
		want  float64
	}{
		{100, 0.2},
		{600, 0.4},
		{1200, 0.6},
		{2500, 0.8},
		{6000, 1.0},
	}

	for _, tt := range tests {
		a := h.Score(domain.ContentItem{Content: strings.Repeat("x", tt.chars)}, 0)
		assert.Equal(t, tt.want, a.Length, "chars=%d", tt.chars)
	}
}

func TestHeuristic_Structure(t *testing.T) {
	h := NewHeuristic()

	one := h.Score(domain.ContentItem{Content: "single block of text"}, 0)
	assert.Equal(t, 0.2, one.Structure)

	three := h.Score(domain.ContentItem{Content: "one\n\ntwo\n\nthree"}, 0)
	assert.Equal(t, 0.6, three.Structure)

	five := h.Score(domain.ContentItem{Content: "a\n\nb\n\nc\n\nd\n\ne"}, 0)
	assert.Equal(t, 0.8, five.Structure)

	// Markup bonus on top of the paragraph tier, capped at 1.0.
	marked := h.Score(domain.ContentItem{Content: "<p>a</p>\n\n<p>b</p>\n\n<p>c</p>\n\n<p>d</p>\n\n<p>e</p>"}, 0)
	assert.Equal(t, 1.0, marked.Structure)
}

func TestHeuristic_Completeness(t *testing.T) {
	h := NewHeuristic()

	partial := h.Score(domain.ContentItem{
		Title:     "Just A Title",
		SourceURL: "https://example.com",
	}, 0)
	assert.Equal(t, 0.5, partial.Completeness)

	full := h.Score(domain.ContentItem{
		Title:     "Just A Title",
		Content:   strings.Repeat("body ", 30),
		Summary:   "short but present summary",
		SourceURL: "https://example.com",
	}, 0)
	assert.Equal(t, 1.0, full.Completeness)
}
