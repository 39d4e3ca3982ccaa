package validator

import (
	"strings"
	"testing"
	"time"

	"github.com/asapdigest/content-pipeline/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBody = `Quarterly earnings across the semiconductor sector surprised analysts this week, with several manufacturers reporting stronger demand than forecast models predicted.

Supply chains that struggled during the previous cycle appear to have stabilized, and inventory levels returned to historical norms according to industry observers tracking shipment data.

Executives cautioned that currency headwinds and shifting export regulations could still complicate guidance for the coming fiscal year, though most reiterated their capital expenditure plans.`

func validItem() domain.ContentItem {
	return domain.ContentItem{
		Type:      domain.TypeArticle,
		Title:     "Five Word Title Here Now",
		Content:   validBody,
		SourceURL: "https://example.com/a",
	}
}

func TestValidate_ValidItem(t *testing.T) {
	ok, res := New().Validate(validItem())

	assert.True(t, ok)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidate_ErrorsAccumulate(t *testing.T) {
	item := validItem()
	item.Title = ""
	item.Content = "ten chars."

	ok, res := New().Validate(item)

	require.False(t, ok)
	// Both failures must be reported in one pass.
	assert.Contains(t, res.Errors, "title")
	assert.Contains(t, res.Errors, "content")
}

func TestValidate_RequiredFields(t *testing.T) {
	ok, res := New().Validate(domain.ContentItem{})

	require.False(t, ok)
	for _, field := range []string{"type", "title", "content", "source_url"} {
		assert.Contains(t, res.Errors, field)
	}
}

func TestValidate_SourceURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		ok   bool
	}{
		{"https", "https://example.com/a", true},
		{"http with query", "http://example.com/a?b=1", true},
		{"no scheme", "example.com/a", false},
		{"scheme only", "https://", false},
		{"garbage", "ht tp://%%", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			item.SourceURL = tt.url

			ok, res := New().Validate(item)

			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.Contains(t, res.Errors, "source_url")
			}
		})
	}
}

func TestValidate_PublishDate(t *testing.T) {
	v := New()

	item := validItem()
	item.PublishDate = "not-a-date"
	ok, res := v.Validate(item)
	require.False(t, ok)
	assert.Contains(t, res.Errors, "publish_date")

	// A future date is a warning, not an error.
	item = validItem()
	item.PublishDate = time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	ok, res = v.Validate(item)
	assert.True(t, ok)
	assert.Contains(t, res.Warnings, "publish_date")

	item = validItem()
	item.PublishDate = "2024-03-01"
	ok, _ = v.Validate(item)
	assert.True(t, ok)
}

func TestValidate_TitleRatio(t *testing.T) {
	item := validItem()
	item.Content = strings.Repeat("word ", 30) + strings.Repeat("filler ", 25)
	item.Title = strings.Repeat("very long headline ", 10)

	ok, res := New().Validate(item)

	require.False(t, ok)
	assert.Contains(t, res.Errors, "title_ratio")
}

func TestValidate_KeywordStuffing(t *testing.T) {
	item := validItem()
	item.Content = strings.Repeat("spam ", 2000)

	ok, res := New().Validate(item)

	require.False(t, ok)
	assert.Contains(t, res.Errors, "keyword_stuffing")
}

func TestValidate_StrippedLengths(t *testing.T) {
	item := validItem()
	item.Summary = "<p>short</p>"

	ok, res := New().Validate(item)

	require.False(t, ok)
	assert.Contains(t, res.Errors, "summary")
}
