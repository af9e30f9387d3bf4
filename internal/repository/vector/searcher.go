// Package vector is the semantic leg of the hybrid search: it embeds the
// query text and runs a KNN lookup over candidate vectors. It never fails a
// search; any error is reported as "no signal".
package vector

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/talentsearch/internal/domain"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/talentsearch/internal/logger"
)

// index is the consumer interface for KNN lookups (ISP).
type index interface {
	SearchByVector(
		ctx context.Context, scope string, vec []float32, filters filter.Expression, k int,
	) (map[string]float64, error)
}

// Searcher embeds queries and searches the candidate vector index.
type Searcher struct {
	embedder domain.Embedder
	index    index
}

// New creates a vector searcher.
func New(embedder domain.Embedder, idx index) *Searcher {
	return &Searcher{embedder: embedder, index: idx}
}

// Similar returns candidate ids with similarity in [0,1]. ok is false when
// the embedding provider or the index could not be reached.
func (s *Searcher) Similar(
	ctx context.Context, text, scope string, filters filter.Expression, limit int,
) (map[string]float64, bool) {
	log := logger.FromContext(ctx)

	emb, err := s.embedder.Embed(ctx, text)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn("Query embedding unavailable", zap.Error(err))
		}
		return nil, false
	}

	scores, err := s.index.SearchByVector(ctx, scope, emb.Embedding, filters, limit)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn("Vector search unavailable", zap.Error(err))
		}
		return nil, false
	}
	return scores, true
}

// Noop is the vector adapter used when semantic search is disabled.
type Noop struct{}

// Similar always reports the capability as unavailable.
func (Noop) Similar(context.Context, string, string, filter.Expression, int) (map[string]float64, bool) {
	return nil, false
}
