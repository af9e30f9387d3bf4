// Package memory is an in-process candidate index for local runs and tests.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/kailas-cloud/talentsearch/internal/domain/candidate"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/request"
)

// Canonicalizer maps profile skills to vocabulary names.
type Canonicalizer interface {
	Canonicalize(skill string) string
}

type entry struct {
	doc    candidate.Document
	skills map[string]bool // canonical
}

// Index keeps candidates per scope in insertion order. Safe for concurrent use.
type Index struct {
	vocab Canonicalizer

	mu     sync.RWMutex
	scopes map[string][]entry
	byID   map[string]map[string]int
}

// New creates an empty index.
func New(vocab Canonicalizer) *Index {
	return &Index{
		vocab:  vocab,
		scopes: make(map[string][]entry),
		byID:   make(map[string]map[string]int),
	}
}

// Add inserts or replaces candidates in a scope.
func (x *Index) Add(scope string, docs ...candidate.Document) {
	x.mu.Lock()
	defer x.mu.Unlock()

	ids := x.byID[scope]
	if ids == nil {
		ids = make(map[string]int)
		x.byID[scope] = ids
	}
	for _, d := range docs {
		e := entry{doc: d, skills: make(map[string]bool, len(d.Skills()))}
		for _, s := range d.Skills() {
			e.skills[x.vocab.Canonicalize(s)] = true
		}
		if i, ok := ids[d.ID()]; ok {
			x.scopes[scope][i] = e
			continue
		}
		ids[d.ID()] = len(x.scopes[scope])
		x.scopes[scope] = append(x.scopes[scope], e)
	}
}

// SearchBySkill returns candidates holding any of the canonical skills.
func (x *Index) SearchBySkill(
	_ context.Context, scope string, skills []string, filters filter.Expression, limit int,
) ([]candidate.Document, error) {
	if len(skills) == 0 {
		return nil, nil
	}
	return x.collect(scope, filters, limit, func(e *entry) bool {
		for _, s := range skills {
			if e.skills[s] {
				return true
			}
		}
		return false
	}), nil
}

// SearchByText returns candidates mentioning any term in the field.
func (x *Index) SearchByText(
	_ context.Context, scope string, field candidate.TextField, terms []string,
	filters filter.Expression, limit int,
) ([]candidate.Document, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	return x.collect(scope, filters, limit, func(e *entry) bool {
		return e.doc.Mentions(field, terms)
	}), nil
}

// GetByIDs returns the known candidates among ids, in ids order.
func (x *Index) GetByIDs(_ context.Context, scope string, ids []string) ([]candidate.Document, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]candidate.Document, 0, len(ids))
	for _, id := range ids {
		if i, ok := x.byID[scope][id]; ok {
			out = append(out, x.scopes[scope][i].doc)
		}
	}
	return out, nil
}

// CorpusStats computes exact statistics for the scope.
func (x *Index) CorpusStats(_ context.Context, scope string, terms []string) (candidate.Stats, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	entries := x.scopes[scope]
	total := 0
	df := make(map[string]int, len(terms))
	for _, t := range terms {
		df[t] = 0
	}
	for i := range entries {
		d := &entries[i].doc
		total += d.DocLength()
		for _, t := range terms {
			if d.TermFrequency(t) > 0 {
				df[t]++
			}
		}
	}

	var avg float64
	if len(entries) > 0 {
		avg = float64(total) / float64(len(entries))
	}
	return candidate.NewStats(len(entries), avg, df), nil
}

func (x *Index) collect(scope string, filters filter.Expression, limit int, match func(*entry) bool) []candidate.Document {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var out []candidate.Document
	for i := range x.scopes[scope] {
		if limit > 0 && len(out) >= limit {
			break
		}
		e := &x.scopes[scope][i]
		if !filters.Matches(record{&e.doc}) || !match(e) {
			continue
		}
		out = append(out, e.doc)
	}
	return out
}

// record exposes a candidate to filter evaluation.
type record struct {
	d *candidate.Document
}

func (r record) Tags(key string) []string {
	if key != request.FieldLocation {
		return nil
	}
	if l := strings.TrimSpace(r.d.Location()); l != "" {
		return []string{l}
	}
	return nil
}

func (r record) Number(key string) (float64, bool) {
	if key == request.FieldYearsExperience {
		return r.d.YearsExperience(), true
	}
	return 0, false
}
