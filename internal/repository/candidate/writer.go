package candidate

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/talentsearch/internal/db"
	"github.com/kailas-cloud/talentsearch/internal/domain/candidate"
)

// EnsureIndex creates the candidate index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context, vectorDim int, hnsw HNSWConfig) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}
	def, err := buildIndex(vectorDim, hnsw)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// DropIndex removes the index definition. Stored hashes are kept.
func (r *Repo) DropIndex(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, IndexName); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index: %w", err)
	}
	return nil
}

// Upsert writes candidates for a scope in one pipeline. vectors is either
// nil or parallel to docs.
func (r *Repo) Upsert(ctx context.Context, scope string, docs []candidate.Document, vectors [][]float32) error {
	if vectors != nil && len(vectors) != len(docs) {
		return fmt.Errorf("got %d vectors for %d candidates", len(vectors), len(docs))
	}
	items := make([]db.HashSetItem, len(docs))
	for i := range docs {
		d := &docs[i]
		var vec []float32
		if vectors != nil {
			vec = vectors[i]
		}
		items[i] = db.HashSetItem{
			Key:    candidateKey(scope, d.ID()),
			Fields: buildHashFields(scope, d, r.skillTags(d.Skills()), vec),
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("write candidates: %w", err)
	}
	return nil
}

// WriteStats stores the corpus size used by BM25 for a scope.
func (r *Repo) WriteStats(ctx context.Context, scope string, docs []candidate.Document) error {
	total := 0
	for i := range docs {
		total += docs[i].DocLength()
	}
	err := r.store.HSet(ctx, statsKey(scope), map[string]string{
		statsDocCount:    strconv.Itoa(len(docs)),
		statsTotalLength: strconv.Itoa(total),
	})
	if err != nil {
		return fmt.Errorf("write corpus stats: %w", err)
	}
	return nil
}

func (r *Repo) skillTags(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		c := r.vocab.Canonicalize(s)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
