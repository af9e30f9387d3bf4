package ranking

import (
	"github.com/kailas-cloud/talentsearch/internal/domain/candidate"
	"github.com/kailas-cloud/talentsearch/internal/domain/query"
)

// Scored is a candidate with its pre-tier scores.
type Scored struct {
	Doc     candidate.Document
	Keyword float64
	Vector  float64
	Hybrid  float64
}

// Weights returns the keyword and vector weights for a query type.
func Weights(t query.Type) (keyword, vector float64) {
	switch t {
	case query.TypeTechnical:
		return 0.4, 0.6
	case query.TypeSoftSkills:
		return 0.2, 0.8
	case query.TypeExactMatch:
		return 0.7, 0.3
	default:
		return 0.3, 0.7
	}
}

// Combine blends the keyword and vector legs. Each leg is divided by its own
// maximum, so an empty leg contributes nothing. Only documents with a score in
// at least one leg are returned, in docs order.
func Combine(docs []candidate.Document, keyword, vector map[string]float64, t query.Type) []Scored {
	wk, wv := Weights(t)
	maxK, maxV := maxValue(keyword), maxValue(vector)

	out := make([]Scored, 0, len(docs))
	for _, d := range docs {
		k, inK := keyword[d.ID()]
		v, inV := vector[d.ID()]
		if !inK && !inV {
			continue
		}
		var h float64
		if maxK > 0 {
			h += wk * k / maxK
		}
		if maxV > 0 {
			h += wv * v / maxV
		}
		out = append(out, Scored{Doc: d, Keyword: k, Vector: v, Hybrid: h})
	}
	return out
}

func maxValue(m map[string]float64) float64 {
	var best float64
	for _, v := range m {
		best = max(best, v)
	}
	return best
}
