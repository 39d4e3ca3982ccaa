package dedup

import (
	"net/url"

	"github.com/asapdigest/content-pipeline/internal/domain"
	"github.com/asapdigest/content-pipeline/pkg/textutil"
)

const (
	// fuzzyThreshold is the minimum Similarity for a fuzzy match.
	fuzzyThreshold = 0.5
	// fuzzyScanLimit bounds how many recent rows a fuzzy scan considers.
	fuzzyScanLimit = 500

	titleWeight  = 0.6
	sourceWeight = 0.2
	typeWeight   = 0.2
)

// Similarity scores two items in [0,1] from title token overlap, source host
// and content type. It deliberately ignores the body: fuzzy matching exists
// to catch re-posts with rewritten bodies under near-identical headlines.
func Similarity(a, b domain.ContentItem) float64 {
	score := titleWeight * jaccard(textutil.Words(textutil.StripTags(a.Title)), textutil.Words(textutil.StripTags(b.Title)))
	if host(a.SourceURL) != "" && host(a.SourceURL) == host(b.SourceURL) {
		score += sourceWeight
	}
	if a.Type != "" && a.Type == b.Type {
		score += typeWeight
	}
	return score
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, w := range a {
		set[w] = struct{}{}
	}

	union := make(map[string]struct{}, len(a)+len(b))
	for _, w := range a {
		union[w] = struct{}{}
	}
	intersection := 0
	for _, w := range b {
		if _, ok := set[w]; ok {
			// Count each shared word once.
			delete(set, w)
			intersection++
		}
		union[w] = struct{}{}
	}
	return float64(intersection) / float64(len(union))
}

func host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
