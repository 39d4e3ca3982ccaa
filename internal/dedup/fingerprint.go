package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/asapdigest/content-pipeline/internal/domain"
	"github.com/asapdigest/content-pipeline/pkg/textutil"
)

// fingerprintDelimiter joins the canonicalized fields. It must never change:
// existing index entries depend on it.
const fingerprintDelimiter = "|"

// GenerateFingerprint derives the deduplication hash for an item. Content is
// stripped of markup, lower-cased and whitespace-collapsed before hashing, so
// near-duplicates that differ only in markup or spacing collapse to the same
// fingerprint. The title is deliberately left out: syndicated reposts
// routinely re-title identical bodies, and those must collide.
func GenerateFingerprint(item domain.ContentItem) string {
	parts := []string{
		textutil.Normalize(item.Content),
		strings.ToLower(strings.TrimSpace(item.SourceURL)),
		strings.TrimSpace(item.PublishDate),
		strings.TrimSpace(item.SourceID),
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, fingerprintDelimiter)))
	return hex.EncodeToString(sum[:])
}
