package resultcache

import "github.com/kailas-cloud/talentsearch/internal/domain/search/result"

type explanationDTO struct {
	Summary    string   `json:"summary"`
	Strengths  []string `json:"strengths,omitempty"`
	Concerns   []string `json:"concerns,omitempty"`
	FitLevel   string   `json:"fit_level"`
	Confidence float64  `json:"confidence"`
	Source     string   `json:"source"`
}

// candidateDTO is the cached snapshot of a ranked candidate. Long profile
// text is not stored.
type candidateDTO struct {
	ID               string          `json:"id"`
	Name             string          `json:"name,omitempty"`
	Title            string          `json:"title,omitempty"`
	Location         string          `json:"location,omitempty"`
	YearsExperience  float64         `json:"years_experience,omitempty"`
	Skills           []string        `json:"skills,omitempty"`
	KeywordScore     float64         `json:"keyword_score"`
	VectorScore      float64         `json:"vector_score"`
	HybridScore      float64         `json:"hybrid_score"`
	FinalScore       float64         `json:"final_score"`
	Tier             int             `json:"tier,omitempty"`
	MatchedSkills    []string        `json:"matched_skills,omitempty"`
	MissingSkills    []string        `json:"missing_skills,omitempty"`
	AdditionalSkills []string        `json:"additional_skills,omitempty"`
	Explanation      *explanationDTO `json:"explanation,omitempty"`
}

func toDTOs(cands []result.Candidate) []candidateDTO {
	out := make([]candidateDTO, len(cands))
	for i, c := range cands {
		p := c.Params()
		out[i] = candidateDTO{
			ID:               p.ID,
			Name:             p.Name,
			Title:            p.Title,
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
			out[i].Explanation = &explanationDTO{
				Summary:    e.Summary,
				Strengths:  e.Strengths,
				Concerns:   e.Concerns,
				FitLevel:   string(e.FitLevel),
				Confidence: e.Confidence,
				Source:     string(e.Source),
			}
		}
	}
	return out
}

func fromDTOs(dtos []candidateDTO) []result.Candidate {
	out := make([]result.Candidate, len(dtos))
	for i, d := range dtos {
		p := result.CandidateParams{
			ID:               d.ID,
			Name:             d.Name,
			Title:            d.Title,
			Location:         d.Location,
			YearsExperience:  d.YearsExperience,
			Skills:           d.Skills,
			KeywordScore:     d.KeywordScore,
			VectorScore:      d.VectorScore,
			HybridScore:      d.HybridScore,
			FinalScore:       d.FinalScore,
			Tier:             d.Tier,
			MatchedSkills:    d.MatchedSkills,
			MissingSkills:    d.MissingSkills,
			AdditionalSkills: d.AdditionalSkills,
		}
		if e := d.Explanation; e != nil {
			p.Explanation = &result.Explanation{
				Summary:    e.Summary,
				Strengths:  e.Strengths,
				Concerns:   e.Concerns,
				FitLevel:   result.FitLevel(e.FitLevel),
				Confidence: e.Confidence,
				Source:     result.Source(e.Source),
			}
		}
		out[i] = result.NewCandidate(p)
	}
	return out
}
