// Package validator checks candidate content items against structural and
// quality-heuristic rules before they enter the dedup/scoring stages.
package validator

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/asapdigest/content-pipeline/internal/domain"
	"github.com/asapdigest/content-pipeline/pkg/textutil"
)

const (
	minTitleLen   = 5
	minContentLen = 100
	minSummaryLen = 10
	minWordCount  = 50

	// titleRatioMax caps the stripped title length at 20% of the stripped
	// content length.
	titleRatioMax = 0.20

	// Keyword stuffing: only checked for content of at least
	// stuffingMinWords words; a single word (>3 chars, case-folded) above
	// stuffingMaxShare of the total is flagged.
	stuffingMinWords = 100
	stuffingMaxShare = 0.05
	stuffingWordLen  = 3
)

type Validator struct {
	now func() time.Time
}

func New() *Validator {
	return &Validator{now: time.Now}
}

// Validate runs every rule and accumulates field-keyed errors; rules never
// short-circuit each other. The item is valid iff no errors were recorded.
// Warnings (e.g. a future publish date) do not fail validation.
func (v *Validator) Validate(item domain.ContentItem) (bool, domain.ValidationResult) {
	res := domain.NewValidationResult()

	v.validateRequired(item, res)
	v.validateLengths(item, res)
	v.validatePublishDate(item, res)
	v.validateSourceURL(item, res)
	v.validateContentQuality(item, res)

	return res.Valid(), res
}

func (v *Validator) validateRequired(item domain.ContentItem, res domain.ValidationResult) {
	if strings.TrimSpace(string(item.Type)) == "" {
		res.AddError("type", "type is required")
	}
	if strings.TrimSpace(item.Title) == "" {
		res.AddError("title", "title is required")
	}
	if strings.TrimSpace(item.Content) == "" {
		res.AddError("content", "content is required")
	}
	if strings.TrimSpace(item.SourceURL) == "" {
		res.AddError("source_url", "source_url is required")
	}
}

func (v *Validator) validateLengths(item domain.ContentItem, res domain.ValidationResult) {
	if title := textutil.StripTags(item.Title); title != "" && len(title) < minTitleLen {
		res.AddError("title", fmt.Sprintf("title must be at least %d characters", minTitleLen))
	}
	if content := textutil.StripTags(item.Content); content != "" && len(content) < minContentLen {
		res.AddError("content", fmt.Sprintf("content must be at least %d characters", minContentLen))
	}
	// Summary is optional; length is only checked when present.
	if summary := textutil.StripTags(item.Summary); summary != "" && len(summary) < minSummaryLen {
		res.AddError("summary", fmt.Sprintf("summary must be at least %d characters", minSummaryLen))
	}
}

func (v *Validator) validatePublishDate(item domain.ContentItem, res domain.ValidationResult) {
	if item.PublishDate == "" {
		return
	}
	parsed, err := domain.ParsePublishDate(item.PublishDate)
	if err != nil {
		res.AddError("publish_date", "publish_date is not a recognized date format")
		return
	}
	if parsed.After(v.now()) {
		res.AddWarning("publish_date", "publish_date is in the future")
	}
}

func (v *Validator) validateSourceURL(item domain.ContentItem, res domain.ValidationResult) {
	raw := strings.TrimSpace(item.SourceURL)
	if raw == "" {
		return // required-field rule already reported it
	}
	u, err := url.Parse(raw)
	if err != nil {
		res.AddError("source_url", "source_url is not a valid URL")
		return
	}
	if u.Scheme == "" || u.Host == "" {
		res.AddError("source_url", "source_url must include a scheme and host")
	}
}

func (v *Validator) validateContentQuality(item domain.ContentItem, res domain.ValidationResult) {
	content := textutil.StripTags(item.Content)
	if content == "" {
		return
	}

	title := textutil.StripTags(item.Title)
	if len(title) > 0 && float64(len(title)) > float64(len(content))*titleRatioMax {
		res.AddError("title_ratio", "title is disproportionately long for the content")
	}

	words := textutil.Words(content)
	if len(words) < minWordCount {
		res.AddError("word_count", fmt.Sprintf("content must contain at least %d words", minWordCount))
	}

	if len(words) >= stuffingMinWords {
		if word, share := dominantWord(words); share > stuffingMaxShare {
			res.AddError("keyword_stuffing",
				fmt.Sprintf("word %q makes up %.1f%% of the content", word, share*100))
		}
	}
}

// dominantWord returns the most frequent word longer than stuffingWordLen
// and its share of the total word count.
func dominantWord(words []string) (string, float64) {
	freq := make(map[string]int)
	for _, w := range words {
		if len(w) > stuffingWordLen {
			freq[w]++
		}
	}

	var top string
	var topCount int
	for w, c := range freq {
		if c > topCount {
			top, topCount = w, c
		}
	}
	if top == "" {
		return "", 0
	}
	return top, float64(topCount) / float64(len(words))
}
