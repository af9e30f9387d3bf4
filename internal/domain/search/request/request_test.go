package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/talentsearch/internal/domain"
)

func floatPtr(f float64) *float64 { return &f }

func TestNew_Defaults(t *testing.T) {
	r, err := New(Params{Query: "  senior python developer ", UserScope: "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "senior python developer" {
		t.Errorf("Query() = %q", r.Query())
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), DefaultLimit)
	}
	if !r.Filters().IsEmpty() {
		t.Error("expected empty filters")
	}
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		p     Params
		field string
	}{
		{"empty query", Params{Query: "", UserScope: "u1"}, "query"},
		{"whitespace query", Params{Query: "   ", UserScope: "u1"}, "query"},
		{"long query", Params{Query: strings.Repeat("a", MaxQueryLength+1), UserScope: "u1"}, "query"},
		{"limit too high", Params{Query: "go", UserScope: "u1", Limit: 51}, "limit"},
		{"negative limit", Params{Query: "go", UserScope: "u1", Limit: -1}, "limit"},
		{"missing scope", Params{Query: "go"}, "user_scope"},
		{"negative years", Params{Query: "go", UserScope: "u1", MinYears: floatPtr(-1)}, "min_years"},
		{"inverted years", Params{Query: "go", UserScope: "u1", MinYears: floatPtr(8), MaxYears: floatPtr(3)}, "min_years"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.p)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if ve.Field != tc.field {
				t.Errorf("Field = %q, want %q", ve.Field, tc.field)
			}
		})
	}
}

func TestNew_QueryAtMaxLength(t *testing.T) {
	if _, err := New(Params{Query: strings.Repeat("a", MaxQueryLength), UserScope: "u1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_Filters(t *testing.T) {
	r, err := New(Params{
		Query:     "go",
		UserScope: "u1",
		Location:  "Berlin",
		MinYears:  floatPtr(3),
		MaxYears:  floatPtr(8),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	must := r.Filters().Must()
	if len(must) != 2 {
		t.Fatalf("expected 2 must conditions, got %d", len(must))
	}
	if must[0].Key() != FieldLocation || must[0].Match() != "Berlin" {
		t.Errorf("location condition = %s/%s", must[0].Key(), must[0].Match())
	}
	rng := must[1].Range()
	if rng == nil || *rng.GTE() != 3 || *rng.LTE() != 8 {
		t.Errorf("years condition = %+v", rng)
	}
}

func TestNormalizedQuery(t *testing.T) {
	a, _ := New(Params{Query: "Senior   PYTHON developer", UserScope: "u1"})
	b, _ := New(Params{Query: "senior python developer", UserScope: "u1", Limit: 5})
	if a.NormalizedQuery() != b.NormalizedQuery() {
		t.Errorf("%q != %q", a.NormalizedQuery(), b.NormalizedQuery())
	}

	c, _ := New(Params{Query: "senior python developer", UserScope: "u1", Location: "Berlin"})
	if c.NormalizedQuery() == a.NormalizedQuery() {
		t.Error("filters must change the normalized query")
	}
	if c.NormalizedQuery() != "senior python developer|loc=berlin" {
		t.Errorf("NormalizedQuery() = %q", c.NormalizedQuery())
	}
}
