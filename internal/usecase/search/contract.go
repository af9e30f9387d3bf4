package search

import (
	"context"

	"github.com/kailas-cloud/talentsearch/internal/domain/candidate"
	"github.com/kailas-cloud/talentsearch/internal/domain/query"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/result"
)

// Parser turns raw query text into a structured query.
type Parser interface {
	Parse(text string) query.Parsed
}

// CandidateIndex is read-only, user-scoped access to candidate documents.
type CandidateIndex interface {
	SearchBySkill(
		ctx context.Context, scope string, skills []string, filters filter.Expression, limit int,
	) ([]candidate.Document, error)
	SearchByText(
		ctx context.Context, scope string, field candidate.TextField, terms []string,
		filters filter.Expression, limit int,
	) ([]candidate.Document, error)
	GetByIDs(ctx context.Context, scope string, ids []string) ([]candidate.Document, error)
}

// StatsSource provides corpus statistics for BM25.
type StatsSource interface {
	CorpusStats(ctx context.Context, scope string, terms []string) (candidate.Stats, error)
}

// VectorSearcher is the semantic leg. It never fails; ok=false means no signal.
type VectorSearcher interface {
	Similar(
		ctx context.Context, text, scope string, filters filter.Expression, limit int,
	) (scores map[string]float64, ok bool)
}

// Enhancer produces a natural-language explanation for one ranked candidate.
type Enhancer interface {
	Explain(ctx context.Context, c result.Candidate, q *query.Parsed, rank int) (result.Explanation, error)
}

// ResultCache stores final result snapshots per (scope, normalized query).
// Implementations are best-effort: failures surface as misses.
type ResultCache interface {
	Get(ctx context.Context, scope, query string) ([]result.Candidate, bool)
	Put(ctx context.Context, scope, query string, cands []result.Candidate)
}
