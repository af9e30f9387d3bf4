package statscache

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/kailas-cloud/talentsearch/internal/domain/candidate"
)

type mockSource struct {
	calls [][]string
	df    map[string]int
	err   error
}

func (m *mockSource) CorpusStats(_ context.Context, _ string, terms []string) (candidate.Stats, error) {
	m.calls = append(m.calls, slices.Clone(terms))
	if m.err != nil {
		return candidate.Stats{}, m.err
	}
	df := make(map[string]int)
	for _, t := range terms {
		if n, ok := m.df[t]; ok {
			df[t] = n
		}
	}
	return candidate.NewStats(10, 42, df), nil
}

func TestCorpusStats_CachesSizeAndTerms(t *testing.T) {
	src := &mockSource{df: map[string]int{"go": 3, "rust": 1}}
	c := New(src, 100, time.Minute)
	ctx := context.Background()

	s, err := c.CorpusStats(ctx, "acme", []string{"go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.DocumentCount() != 10 || s.AverageDocLength() != 42 {
		t.Errorf("size = %d / %v", s.DocumentCount(), s.AverageDocLength())
	}

	s, _ = c.CorpusStats(ctx, "acme", []string{"go", "rust"})
	if df, _ := s.DocumentFrequency("rust"); df != 1 {
		t.Errorf("df(rust) = %d", df)
	}
	if df, _ := s.DocumentFrequency("go"); df != 3 {
		t.Errorf("df(go) = %d", df)
	}

	_, _ = c.CorpusStats(ctx, "acme", []string{"rust", "go"})

	want := [][]string{{"go"}, {"rust"}}
	if len(src.calls) != 2 || !slices.Equal(src.calls[0], want[0]) || !slices.Equal(src.calls[1], want[1]) {
		t.Errorf("calls = %v, want %v", src.calls, want)
	}
}

func TestCorpusStats_UnknownNotCached(t *testing.T) {
	src := &mockSource{df: map[string]int{}}
	c := New(src, 100, time.Minute)

	for range 2 {
		s, _ := c.CorpusStats(context.Background(), "acme", []string{"cobol"})
		if _, ok := s.DocumentFrequency("cobol"); ok {
			t.Error("cobol must stay unknown")
		}
	}
	if len(src.calls) != 2 {
		t.Errorf("calls = %d, want 2", len(src.calls))
	}
}

func TestCorpusStats_ScopesAreSeparate(t *testing.T) {
	src := &mockSource{df: map[string]int{"go": 3}}
	c := New(src, 100, time.Minute)
	_, _ = c.CorpusStats(context.Background(), "a", []string{"go"})
	_, _ = c.CorpusStats(context.Background(), "b", []string{"go"})
	if len(src.calls) != 2 {
		t.Errorf("calls = %d, want 2", len(src.calls))
	}
}

func TestCorpusStats_Error(t *testing.T) {
	c := New(&mockSource{err: errors.New("down")}, 10, time.Minute)
	if _, err := c.CorpusStats(context.Background(), "acme", nil); err == nil {
		t.Error("expected error")
	}
}
