package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_CandidateSchema(t *testing.T) {
	idx, err := NewIndex("talentsearch:candidates").
		Prefix("talentsearch:cand:").
		Tag("owner", "").
		Tag("skills", ",").
		Text("headline", 2).
		Text("searchable", 0).
		Numeric("years_experience", true).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(idx.Fields) != 5 {
		t.Fatalf("fields count = %d, want 5", len(idx.Fields))
	}
	if idx.Fields[1].TagSeparator != "," {
		t.Errorf("separator = %q, want ,", idx.Fields[1].TagSeparator)
	}
	if idx.Fields[2].TextWeight != 2 {
		t.Errorf("weight = %v, want 2", idx.Fields[2].TextWeight)
	}
	if !idx.Fields[4].Sortable {
		t.Error("expected sortable numeric field")
	}
}

func TestIndexBuilder_VectorHNSW(t *testing.T) {
	idx, err := NewIndex("hnsw-idx").
		Prefix("doc:").
		Tag("owner", "").
		VectorHNSW("vector", 768, DistanceCosine, 32, 400).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := idx.Fields[1]
	if f.VectorAlgo != VectorHNSW {
		t.Errorf("algo = %q, want HNSW", f.VectorAlgo)
	}
	if f.VectorDim != 768 {
		t.Errorf("dim = %d, want 768", f.VectorDim)
	}
	if f.VectorM != 32 || f.VectorEFConstruct != 400 {
		t.Errorf("M/EF = %d/%d, want 32/400", f.VectorM, f.VectorEFConstruct)
	}
}

func TestIndexBuilder_VectorFlat(t *testing.T) {
	idx, err := NewIndex("flat-idx").VectorFlat("vector", 3, DistanceL2).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Fields[0].VectorAlgo != VectorFlat {
		t.Errorf("algo = %q, want FLAT", idx.Fields[0].VectorAlgo)
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder *IndexBuilder
		wantErr string
	}{
		{"empty name", NewIndex("").Tag("x", ""), "index name is required"},
		{"bad name", NewIndex("bad name").Tag("x", ""), "invalid characters"},
		{"no fields", NewIndex("idx"), "at least one field"},
		{"duplicate", NewIndex("idx").Tag("x", "").Text("x", 0), "duplicate field name"},
		{"zero dim", NewIndex("idx").VectorFlat("v", 0, DistanceCosine), "positive DIM"},
		{"negative weight", NewIndex("idx").Text("t", -1), "weight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestIndexBuilder_BuildReturnsCopy(t *testing.T) {
	b := NewIndex("idx").Tag("a", "")
	first, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.Tag("b", "")
	if len(first.Fields) != 1 {
		t.Errorf("built definition changed after builder mutation: %d fields", len(first.Fields))
	}
}

func TestIndexDefinition_String(t *testing.T) {
	idx, err := NewIndex("idx").
		Prefix("p:").
		Tag("owner", "").
		Text("searchable", 0).
		VectorFlat("vector", 4, DistanceCosine).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := idx.String()
	want := "FT.CREATE idx ON HASH PREFIX p: SCHEMA owner TAG searchable TEXT vector VECTOR FLAT"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"idx", "talentsearch:candidates", "a_b-c"}
	for _, s := range valid {
		if !IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = false", s)
		}
	}
	invalid := []string{"", "a b", "a/b", "idx*"}
	for _, s := range invalid {
		if IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = true", s)
		}
	}
}
