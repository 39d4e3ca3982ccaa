// Package textutil holds the canonicalization helpers shared by validation,
// fingerprinting and scoring. Stripping and collapsing are deliberately lossy
// so near-duplicate markup variants of the same text normalize to the same
// string.
package textutil

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripTags removes HTML/markup from s and collapses whitespace. Plain text
// passes through (collapsed) unchanged.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return Collapse(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return Collapse(s)
	}
	return Collapse(doc.Text())
}

// Collapse trims s and folds all whitespace runs to single spaces.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Normalize lower-cases the stripped, collapsed form of s. This is the
// canonical form used for fingerprinting.
func Normalize(s string) string {
	return strings.ToLower(StripTags(s))
}

// WordCount counts whitespace-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Words splits s into lower-cased words with surrounding punctuation trimmed.
func Words(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.Trim(f, ".,;:!?\"'()[]{}")
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// Paragraphs splits raw text on blank lines, dropping empty chunks.
func Paragraphs(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var paragraphs []string
	for _, chunk := range strings.Split(s, "\n\n") {
		if strings.TrimSpace(chunk) != "" {
			paragraphs = append(paragraphs, chunk)
		}
	}
	return paragraphs
}

// HasMarkup reports whether raw carries markup beyond its stripped text.
func HasMarkup(raw string) bool {
	return Collapse(raw) != StripTags(raw)
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
