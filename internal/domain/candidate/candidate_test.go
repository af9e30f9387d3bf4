package candidate

import "testing"

func TestNew_BuildsSearchableText(t *testing.T) {
	d, err := New(Params{
		ID:      "c1",
		Title:   "Backend Engineer",
		Summary: "Builds data pipelines",
		RawText: "Python and Python tooling",
		Skills:  []string{"Python", " ", "AWS"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(d.Skills()); got != 2 {
		t.Errorf("skills = %v, want blanks dropped", d.Skills())
	}
	// backend engineer builds data pipelines python and python tooling python aws
	if d.DocLength() != 11 {
		t.Errorf("DocLength() = %d, want 11", d.DocLength())
	}
	if got := d.TermFrequency("python"); got != 3 {
		t.Errorf("TermFrequency(python) = %d, want 3", got)
	}
	if got := d.TermFrequency("data pipelines"); got != 1 {
		t.Errorf("TermFrequency(data pipelines) = %d, want 1", got)
	}
	if got := d.HeadlineHits([]string{"backend", "python", "pipelines"}); got != 2 {
		t.Errorf("HeadlineHits = %d, want 2", got)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Params{ID: "  "}); err == nil {
		t.Error("expected error for blank id")
	}
	if _, err := New(Params{ID: "c1", YearsExperience: -1}); err == nil {
		t.Error("expected error for negative experience")
	}
}

func TestStats(t *testing.T) {
	s := NewStats(10, 120, map[string]int{"go": 3})
	if df, ok := s.DocumentFrequency("go"); !ok || df != 3 {
		t.Errorf("df(go) = %d, %v", df, ok)
	}
	if _, ok := s.DocumentFrequency("rust"); ok {
		t.Error("unknown term must report not ok")
	}

	s2 := s.WithAverageDocLength(50)
	if s.AverageDocLength() != 120 || s2.AverageDocLength() != 50 {
		t.Errorf("WithAverageDocLength mutated receiver: %v / %v", s.AverageDocLength(), s2.AverageDocLength())
	}
	if NewStats(-1, -5, nil).DocumentCount() != 0 {
		t.Error("negative count must clamp to zero")
	}
}

func TestMentions(t *testing.T) {
	d, err := New(Params{ID: "c1", Title: "Data Engineer", RawText: "spark and machine learning"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Mentions(FieldSearchable, []string{"rust", "machine learning"}) {
		t.Error("expected searchable mention")
	}
	if d.Mentions(FieldHeadline, []string{"spark"}) {
		t.Error("spark is not in the headline")
	}
	if !d.Mentions(FieldHeadline, []string{"Engineer"}) {
		t.Error("expected headline mention")
	}
}

func TestEmbeddingText(t *testing.T) {
	d, err := New(Params{
		ID:      "c1",
		Title:   "Backend Engineer",
		Summary: "Builds data pipelines",
		RawText: "  Ten years of Python.  ",
		Skills:  []string{"Python", "AWS"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Backend Engineer Builds data pipelines\nSkills: Python, AWS\nTen years of Python."
	if got := d.EmbeddingText(); got != want {
		t.Errorf("EmbeddingText() = %q, want %q", got, want)
	}

	bare, err := New(Params{ID: "c2", Skills: []string{"Go"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := bare.EmbeddingText(); got != "Skills: Go" {
		t.Errorf("EmbeddingText() = %q, want %q", got, "Skills: Go")
	}
}
