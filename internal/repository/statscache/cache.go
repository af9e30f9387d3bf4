// Package statscache keeps corpus statistics in process for a short TTL so
// BM25 does not hit the index for every query.
package statscache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kailas-cloud/talentsearch/internal/domain/candidate"
)

// source is the consumer interface for the wrapped index (ISP).
type source interface {
	CorpusStats(ctx context.Context, scope string, terms []string) (candidate.Stats, error)
}

type corpusSize struct {
	count int
	avgdl float64
}

// Cache memoizes corpus size per scope and document frequency per scope and
// term. Unknown frequencies are not cached.
type Cache struct {
	inner source
	sizes *expirable.LRU[string, corpusSize]
	df    *expirable.LRU[string, int]
}

// New wraps inner. size bounds the number of cached terms.
func New(inner source, size int, ttl time.Duration) *Cache {
	return &Cache{
		inner: inner,
		sizes: expirable.NewLRU[string, corpusSize](max(1, size/16), nil, ttl),
		df:    expirable.NewLRU[string, int](max(1, size), nil, ttl),
	}
}

// CorpusStats answers from cache and asks the inner source only for the
// missing parts.
func (c *Cache) CorpusStats(ctx context.Context, scope string, terms []string) (candidate.Stats, error) {
	df := make(map[string]int, len(terms))
	var missing []string
	for _, t := range terms {
		if n, ok := c.df.Get(dfKey(scope, t)); ok {
			df[t] = n
			continue
		}
		missing = append(missing, t)
	}

	size, sized := c.sizes.Get(scope)
	if sized && len(missing) == 0 {
		return candidate.NewStats(size.count, size.avgdl, df), nil
	}

	fresh, err := c.inner.CorpusStats(ctx, scope, missing)
	if err != nil {
		return candidate.Stats{}, err
	}
	size = corpusSize{count: fresh.DocumentCount(), avgdl: fresh.AverageDocLength()}
	c.sizes.Add(scope, size)
	for _, t := range missing {
		if n, ok := fresh.DocumentFrequency(t); ok {
			df[t] = n
			c.df.Add(dfKey(scope, t), n)
		}
	}
	return candidate.NewStats(size.count, size.avgdl, df), nil
}

func dfKey(scope, term string) string {
	return scope + "\x00" + term
}
