package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "hello world", "hello world"},
		{"simple markup", "<p>hello <b>world</b></p>", "hello world"},
		{"nested markup", "<div><p>first</p><p> second </p></div>", "first second"},
		{"whitespace collapsed", "hello   \n\t world", "hello world"},
		{"angle brackets without markup", "a < b > c", "a < b > c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripTags(tt.in))
		})
	}
}

func TestNormalize_MarkupVariantsConverge(t *testing.T) {
	a := Normalize("<p>Hello   World</p>")
	b := Normalize("hello world")

	assert.Equal(t, a, b)
}

func TestWords_TrimsPunctuation(t *testing.T) {
	got := Words(`"Hello," she said. (Really!)`)

	assert.Equal(t, []string{"hello", "she", "said", "really"}, got)
}

func TestParagraphs(t *testing.T) {
	got := Paragraphs("first\n\nsecond\r\n\r\nthird\n\n  \n\n")

	assert.Len(t, got, 3)
	assert.Equal(t, "first", got[0])
}

func TestHasMarkup(t *testing.T) {
	assert.True(t, HasMarkup("<p>hello</p>"))
	assert.False(t, HasMarkup("hello world"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hel", Truncate("hello", 3))
	assert.Equal(t, "hi", Truncate("hi", 10))
	assert.Equal(t, "héll", Truncate("héllo", 4))
}
