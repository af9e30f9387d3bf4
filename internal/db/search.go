package db

import "github.com/kailas-cloud/talentsearch/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	VectorField  string // defaults to "vector"
	Filters      filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextMatch restricts a filtered search to documents whose TEXT field
// contains any of the terms.
type TextMatch struct {
	Field string
	Terms []string
}

// FilterQuery is the input for pre-filtered FT.SEARCH lookups without
// server-side scoring. Text is optional.
type FilterQuery struct {
	IndexName    string
	Filters      filter.Expression
	Text         *TextMatch
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
