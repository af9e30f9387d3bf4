package talentsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/talentsearch/internal/domain"
	"github.com/kailas-cloud/talentsearch/internal/domain/candidate"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/request"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/result"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/stage"
)

// ErrInvalidRequest is returned by Search for rejected parameters.
var ErrInvalidRequest = domain.ErrInvalidRequest

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Candidate is a profile to index.
type Candidate struct {
	ID              string
	Name            string
	Title           string
	Summary         string
	Resume          string
	Location        string
	Skills          []string
	YearsExperience float64
}

// SearchParams are the parameters of one search.
type SearchParams struct {
	Query     string
	Limit     int // 1..50, 0 selects 10
	UserScope string
	Location  string
	MinYears  *float64
	MaxYears  *float64
}

// Stage names a refinement step.
type Stage string

// Stages in delivery order.
const (
	StageInstant     Stage = Stage(stage.Instant)
	StageEnhanced    Stage = Stage(stage.Enhanced)
	StageIntelligent Stage = Stage(stage.Intelligent)
)

// StageResult is one refinement of a search.
type StageResult struct {
	SearchID     string
	Stage        Stage
	Number       int
	Matches      []Match
	Elapsed      time.Duration
	IsFinal      bool
	QualityScore *float64
	CacheHit     bool
	Degraded     Degraded
}

// Degraded lists capabilities that were unavailable for a stage.
type Degraded struct {
	VectorUnavailable      bool
	EnhancementUnavailable bool
	Partial                bool
}

// Match is a ranked candidate. Tier is 0 when the query named no skills.
type Match struct {
	ID               string
	Name             string
	Title            string
	Summary          string
	Location         string
	YearsExperience  float64
	Skills           []string
	KeywordScore     float64
	VectorScore      float64
	HybridScore      float64
	FinalScore       float64
	Tier             int
	MatchedSkills    []string
	MissingSkills    []string
	AdditionalSkills []string
	Explanation      *Explanation
}

// Explanation justifies a ranking.
type Explanation struct {
	Summary    string
	Strengths  []string
	Concerns   []string
	FitLevel   string
	Confidence float64
	Source     string // "model" or "rules"
}

func toDocument(c *Candidate) (candidate.Document, error) {
	d, err := candidate.New(candidate.Params{
		ID:              c.ID,
		Name:            c.Name,
		Title:           c.Title,
		Summary:         c.Summary,
		RawText:         c.Resume,
		Location:        c.Location,
		Skills:          c.Skills,
		YearsExperience: c.YearsExperience,
	})
	if err != nil {
		return candidate.Document{}, fmt.Errorf("candidate %q: %w", c.ID, err)
	}
	return d, nil
}

func toRequest(p *SearchParams) (request.Request, error) {
	r, err := request.New(request.Params{
		Query:     p.Query,
		Limit:     p.Limit,
		UserScope: p.UserScope,
		Location:  p.Location,
		MinYears:  p.MinYears,
		MaxYears:  p.MaxYears,
	})
	if err != nil {
		return request.Request{}, fmt.Errorf("talentsearch: %w", err)
	}
	return r, nil
}

func fromStage(r *stage.Result) StageResult {
	matches := make([]Match, len(r.Results))
	for i, c := range r.Results {
		matches[i] = fromCandidate(c)
	}
	return StageResult{
		SearchID:     r.SearchID,
		Stage:        Stage(r.Stage),
		Number:       r.Number(),
		Matches:      matches,
		Elapsed:      r.Elapsed,
		IsFinal:      r.IsFinal,
		QualityScore: r.QualityScore,
		CacheHit:     r.CacheHit,
		Degraded: Degraded{
			VectorUnavailable:      r.Degraded.VectorUnavailable,
			EnhancementUnavailable: r.Degraded.EnhancementUnavailable,
			Partial:                r.Degraded.Partial,
		},
	}
}

func fromCandidate(c result.Candidate) Match {
	p := c.Params()
	m := Match{
		ID:               p.ID,
		Name:             p.Name,
		Title:            p.Title,
		Summary:          p.Summary,
		Location:         p.Location,
		YearsExperience:  p.YearsExperience,
		Skills:           p.Skills,
		KeywordScore:     p.KeywordScore,
		VectorScore:      p.VectorScore,
		HybridScore:      p.HybridScore,
		FinalScore:       p.FinalScore,
		Tier:             p.Tier,
		MatchedSkills:    p.MatchedSkills,
		MissingSkills:    p.MissingSkills,
		AdditionalSkills: p.AdditionalSkills,
	}
	if e := p.Explanation; e != nil {
		m.Explanation = &Explanation{
			Summary:    e.Summary,
			Strengths:  e.Strengths,
			Concerns:   e.Concerns,
			FitLevel:   string(e.FitLevel),
			Confidence: e.Confidence,
			Source:     string(e.Source),
		}
	}
	return m
}

// embedderAdapter bridges the public Embedder to domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vec, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}
