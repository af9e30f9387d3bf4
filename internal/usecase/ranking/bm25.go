package ranking

import (
	"math"
	"strings"

	"github.com/kailas-cloud/talentsearch/internal/domain/candidate"
	"github.com/kailas-cloud/talentsearch/internal/domain/query"
	"github.com/kailas-cloud/talentsearch/internal/domain/tokens"
)

// Okapi BM25 parameters.
const (
	bm25K1 = 1.2
	bm25B  = 0.75

	// idfFloor keeps very common terms from lowering a score.
	idfFloor = 1e-3
)

// KeywordTerms is the de-duplicated BM25 term set for a query: each skill with
// its synonym surfaces, then the remaining free-text terms.
func KeywordTerms(q query.Parsed, vocab Vocabulary) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(t string) {
		t = strings.Join(tokens.Split(t), " ")
		if t == "" || seen[t] || vocab.IsStopword(t) {
			return
		}
		seen[t] = true
		out = append(out, t)
	}
	for _, s := range q.Skills() {
		add(s)
		for _, syn := range vocab.Synonyms(s) {
			add(syn)
		}
	}
	for _, t := range q.Terms() {
		add(t)
	}
	return out
}

// BM25 scores every document against terms and returns the positive scores
// by candidate id. Documents with no matching term are left out.
func BM25(docs []candidate.Document, terms []string, stats candidate.Stats) map[string]float64 {
	scores := make(map[string]float64, len(docs))
	if len(terms) == 0 {
		return scores
	}

	n := stats.DocumentCount()
	avgdl := stats.AverageDocLength()
	if avgdl <= 0 {
		avgdl = averageLength(docs)
	}

	idf := make([]float64, len(terms))
	for i, t := range terms {
		idf[i] = inverseDocumentFrequency(n, documentFrequency(stats, t))
	}

	for i := range docs {
		d := &docs[i]
		dl := float64(d.DocLength())
		var score float64
		for j, t := range terms {
			tf := float64(d.TermFrequency(t))
			if tf == 0 {
				continue
			}
			norm := 1 - bm25B + bm25B*dl/avgdl
			score += idf[j] * tf * (bm25K1 + 1) / (tf + bm25K1*norm)
		}
		if score > 0 {
			scores[d.ID()] = score
		}
	}
	return scores
}

// documentFrequency falls back to N/10 when the index cannot tell.
func documentFrequency(stats candidate.Stats, term string) int {
	if df, ok := stats.DocumentFrequency(term); ok {
		return df
	}
	return max(1, stats.DocumentCount()/10)
}

func inverseDocumentFrequency(n, df int) float64 {
	idf := math.Log((float64(n-df) + 0.5) / (float64(df) + 0.5))
	if idf < idfFloor || math.IsNaN(idf) {
		return idfFloor
	}
	return idf
}

func averageLength(docs []candidate.Document) float64 {
	if len(docs) == 0 {
		return 1
	}
	total := 0
	for i := range docs {
		total += docs[i].DocLength()
	}
	if total == 0 {
		return 1
	}
	return float64(total) / float64(len(docs))
}
