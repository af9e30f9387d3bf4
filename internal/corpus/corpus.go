// Package corpus loads candidate profiles from YAML files for indexing and
// local search.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/talentsearch/internal/domain/candidate"
)

type profile struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Title           string   `yaml:"title"`
	Summary         string   `yaml:"summary"`
	Resume          string   `yaml:"resume"`
	Location        string   `yaml:"location"`
	Skills          []string `yaml:"skills"`
	YearsExperience float64  `yaml:"years_experience"`
}

type file struct {
	Scope      string    `yaml:"scope"`
	Candidates []profile `yaml:"candidates"`
}

// Corpus is a set of candidate profiles owned by one user scope.
type Corpus struct {
	Scope      string
	Candidates []candidate.Document
}

// Load reads a corpus file. A non-empty scope overrides the one in the file.
func Load(path, scope string) (Corpus, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Corpus{}, fmt.Errorf("read corpus %s: %w", path, err)
	}
	return Parse(data, scope)
}

// Parse decodes corpus YAML. Candidate ids must be unique.
func Parse(data []byte, scope string) (Corpus, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Corpus{}, fmt.Errorf("parse corpus: %w", err)
	}
	if s := strings.TrimSpace(scope); s != "" {
		f.Scope = s
	}
	if strings.TrimSpace(f.Scope) == "" {
		return Corpus{}, errors.New("corpus scope is required")
	}

	seen := make(map[string]bool, len(f.Candidates))
	docs := make([]candidate.Document, 0, len(f.Candidates))
	for i, p := range f.Candidates {
		d, err := candidate.New(candidate.Params{
			ID:              strings.TrimSpace(p.ID),
			Name:            p.Name,
			Title:           p.Title,
			Summary:         p.Summary,
			RawText:         p.Resume,
			Location:        p.Location,
			Skills:          p.Skills,
			YearsExperience: p.YearsExperience,
		})
		if err != nil {
			return Corpus{}, fmt.Errorf("candidate %d: %w", i, err)
		}
		if seen[d.ID()] {
			return Corpus{}, fmt.Errorf("duplicate candidate id %q", d.ID())
		}
		seen[d.ID()] = true
		docs = append(docs, d)
	}

	return Corpus{Scope: f.Scope, Candidates: docs}, nil
}
