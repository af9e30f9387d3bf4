package result

import "slices"

// FitLevel grades how well a candidate fits the query.
type FitLevel string

// Fit levels, best first.
const (
	FitExcellent FitLevel = "excellent"
	FitStrong    FitLevel = "strong"
	FitModerate  FitLevel = "moderate"
	FitWeak      FitLevel = "weak"
)

// Source tells who produced an explanation.
type Source string

// Explanation sources.
const (
	SourceModel Source = "model"
	SourceRules Source = "rules"
)

// Explanation is the human-readable justification for a ranking.
type Explanation struct {
	Summary    string
	Strengths  []string
	Concerns   []string
	FitLevel   FitLevel
	Confidence float64
	Source     Source
}

// IsZero reports whether the explanation carries no content.
func (e Explanation) IsZero() bool {
	return e.Summary == "" && len(e.Strengths) == 0 && len(e.Concerns) == 0
}

// Candidate is a ranked candidate. Immutable: stages derive new values.
type Candidate struct {
	p CandidateParams
}

// CandidateParams carries every field of a Candidate. Tier 0 means untiered.
type CandidateParams struct {
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

// NewCandidate creates a Candidate; slices are copied.
func NewCandidate(p CandidateParams) Candidate {
	return Candidate{p: cloneParams(p)}
}

func cloneParams(p CandidateParams) CandidateParams {
	p.Skills = slices.Clone(p.Skills)
	p.MatchedSkills = slices.Clone(p.MatchedSkills)
	p.MissingSkills = slices.Clone(p.MissingSkills)
	p.AdditionalSkills = slices.Clone(p.AdditionalSkills)
	if p.Explanation != nil {
		e := *p.Explanation
		e.Strengths = slices.Clone(e.Strengths)
		e.Concerns = slices.Clone(e.Concerns)
		p.Explanation = &e
	}
	return p
}

// Params returns a copy of the candidate fields.
func (c Candidate) Params() CandidateParams { return cloneParams(c.p) }

// WithExplanation returns a copy carrying the explanation.
func (c Candidate) WithExplanation(e Explanation) Candidate {
	p := c.Params()
	p.Explanation = &e
	return NewCandidate(p)
}

// ID returns the candidate identifier.
func (c Candidate) ID() string { return c.p.ID }

// Name returns the display name.
func (c Candidate) Name() string { return c.p.Name }

// Title returns the display title.
func (c Candidate) Title() string { return c.p.Title }

// Summary returns the display summary.
func (c Candidate) Summary() string { return c.p.Summary }

// Location returns the candidate location.
func (c Candidate) Location() string { return c.p.Location }

// YearsExperience returns years of professional experience.
func (c Candidate) YearsExperience() float64 { return c.p.YearsExperience }

// Skills returns the candidate skill set.
func (c Candidate) Skills() []string { return c.p.Skills }

// KeywordScore returns the raw BM25 score.
func (c Candidate) KeywordScore() float64 { return c.p.KeywordScore }

// VectorScore returns the semantic similarity in [0,1].
func (c Candidate) VectorScore() float64 { return c.p.VectorScore }

// HybridScore returns the weighted blend of normalized legs.
func (c Candidate) HybridScore() float64 { return c.p.HybridScore }

// FinalScore returns the score after the tier multiplier.
func (c Candidate) FinalScore() float64 { return c.p.FinalScore }

// Tier returns the skill tier (1..5), or false when the query named no skills.
func (c Candidate) Tier() (int, bool) { return c.p.Tier, c.p.Tier > 0 }

// MatchedSkills returns query skills present in the candidate skill set.
func (c Candidate) MatchedSkills() []string { return c.p.MatchedSkills }

// MissingSkills returns query skills the candidate lacks.
func (c Candidate) MissingSkills() []string { return c.p.MissingSkills }

// AdditionalSkills returns related skills that were not asked for.
func (c Candidate) AdditionalSkills() []string { return c.p.AdditionalSkills }

// Explanation returns the attached explanation, if any.
func (c Candidate) Explanation() (Explanation, bool) {
	if c.p.Explanation == nil {
		return Explanation{}, false
	}
	return *c.p.Explanation, true
}
