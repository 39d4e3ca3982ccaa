package enrich

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultTaxonomy is used for classification when no taxonomy file is
// configured.
var DefaultTaxonomy = []string{
	"business", "technology", "finance", "markets", "politics",
	"science", "health", "culture", "sports",
}

type taxonomyFile struct {
	Categories []string `yaml:"categories"`
}

// LoadTaxonomy reads a YAML taxonomy ({categories: [...]}) from r.
func LoadTaxonomy(r io.Reader) ([]string, error) {
	var f taxonomyFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode taxonomy: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("taxonomy has no categories")
	}
	return f.Categories, nil
}

// LoadTaxonomyFile reads a taxonomy from disk, falling back to
// DefaultTaxonomy when path is empty.
func LoadTaxonomyFile(path string) ([]string, error) {
	if path == "" {
		return DefaultTaxonomy, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open taxonomy %s: %w", path, err)
	}
	defer f.Close()
	return LoadTaxonomy(f)
}
