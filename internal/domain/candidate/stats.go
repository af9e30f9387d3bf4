package candidate

// Stats is the corpus-level input to BM25 for one user scope.
type Stats struct {
	documentCount     int
	averageDocLength  float64
	documentFrequency map[string]int
}

// NewStats creates corpus statistics. df may be nil when per-term document
// frequencies are unknown.
func NewStats(documentCount int, averageDocLength float64, df map[string]int) Stats {
	return Stats{
		documentCount:     max(0, documentCount),
		averageDocLength:  max(0, averageDocLength),
		documentFrequency: df,
	}
}

// DocumentCount returns N.
func (s Stats) DocumentCount() int { return s.documentCount }

// AverageDocLength returns avgdl.
func (s Stats) AverageDocLength() float64 { return s.averageDocLength }

// DocumentFrequency returns how many documents contain term, if known.
func (s Stats) DocumentFrequency(term string) (int, bool) {
	df, ok := s.documentFrequency[term]
	return df, ok
}

// WithAverageDocLength returns a copy with avgdl replaced.
func (s Stats) WithAverageDocLength(avg float64) Stats {
	s.averageDocLength = max(0, avg)
	return s
}
