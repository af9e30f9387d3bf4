package ranking

import (
	"github.com/kailas-cloud/talentsearch/internal/domain/candidate"
	"github.com/kailas-cloud/talentsearch/internal/domain/query"
)

// Quick scores documents for the instant stage without corpus statistics or
// vectors: the weighted skill ratio when the query names skills, otherwise
// the share of query terms found in title or summary.
func (r *Reranker) Quick(q query.Parsed, docs []candidate.Document) []Scored {
	out := make([]Scored, 0, len(docs))
	terms := q.Terms()
	for _, d := range docs {
		var h float64
		switch {
		case len(q.Skills()) > 0:
			h = r.MatchRatio(q, &d)
		case len(terms) > 0:
			h = float64(d.HeadlineHits(terms)) / float64(len(terms))
		}
		out = append(out, Scored{Doc: d, Hybrid: h})
	}
	return out
}
