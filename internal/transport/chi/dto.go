package chi

import (
	"github.com/kailas-cloud/talentsearch/internal/domain/search/result"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/stage"
)

// ErrorResponseCode is a machine-readable error class.
type ErrorResponseCode string

// Error codes returned by the API.
const (
	ErrorResponseCodeBadRequest             ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed       ErrorResponseCode = "validation_failed"
	ErrorResponseCodeUnauthorized           ErrorResponseCode = "unauthorized"
	ErrorResponseCodeRateLimited            ErrorResponseCode = "rate_limited"
	ErrorResponseCodeEmbeddingProviderError ErrorResponseCode = "embedding_provider_error"
	ErrorResponseCodeIndexUnavailable       ErrorResponseCode = "index_unavailable"
	ErrorResponseCodeStreamingUnsupported   ErrorResponseCode = "streaming_unsupported"
	ErrorResponseCodeInternalError          ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Query    string   `json:"query"`
	Limit    *int     `json:"limit,omitempty"`
	Location *string  `json:"location,omitempty"`
	MinYears *float64 `json:"min_years,omitempty"`
	MaxYears *float64 `json:"max_years,omitempty"`
}

// SearchStreamParams are the query parameters of GET /v1/search/stream.
type SearchStreamParams struct {
	Query    string
	Limit    *int
	Location *string
	MinYears *float64
	MaxYears *float64
}

// SearchResponse carries every stage of a non-streaming search.
type SearchResponse struct {
	SearchID string          `json:"search_id"`
	Stages   []StageResponse `json:"stages"`
}

// StageResponse is one stage record, also the payload of an SSE "stage" event.
type StageResponse struct {
	SearchID     string              `json:"search_id"`
	Stage        string              `json:"stage"`
	StageNumber  int                 `json:"stage_number"`
	Results      []CandidateResponse `json:"results"`
	ElapsedMs    float64             `json:"elapsed_ms"`
	IsFinal      bool                `json:"is_final"`
	QualityScore *float64            `json:"quality_score,omitempty"`
	CacheHit     bool                `json:"cache_hit"`
	Degraded     *DegradedResponse   `json:"degraded,omitempty"`
}

// DegradedResponse lists capabilities that were unavailable for a stage.
type DegradedResponse struct {
	VectorUnavailable      bool `json:"vector_unavailable,omitempty"`
	EnhancementUnavailable bool `json:"enhancement_unavailable,omitempty"`
	Partial                bool `json:"partial,omitempty"`
}

// CandidateResponse is a ranked candidate.
type CandidateResponse struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	Title            string               `json:"title"`
	Summary          string               `json:"summary,omitempty"`
	Location         string               `json:"location,omitempty"`
	YearsExperience  float64              `json:"years_experience"`
	Skills           []string             `json:"skills"`
	KeywordScore     float64              `json:"keyword_score"`
	VectorScore      float64              `json:"vector_score"`
	HybridScore      float64              `json:"hybrid_score"`
	FinalScore       float64              `json:"final_score"`
	Tier             *int                 `json:"tier"`
	MatchedSkills    []string             `json:"matched_skills"`
	MissingSkills    []string             `json:"missing_skills"`
	AdditionalSkills []string             `json:"additional_skills"`
	Explanation      *ExplanationResponse `json:"explanation,omitempty"`
}

// ExplanationResponse is the justification attached in the intelligent stage.
type ExplanationResponse struct {
	Summary    string   `json:"summary"`
	Strengths  []string `json:"strengths"`
	Concerns   []string `json:"concerns"`
	FitLevel   string   `json:"fit_level"`
	Confidence float64  `json:"confidence"`
	Source     string   `json:"source"`
}

// CompleteEvent is the payload of the terminating SSE "complete" event.
type CompleteEvent struct {
	SearchID string `json:"search_id"`
	Stages   int    `json:"stages"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func stageToResponse(r *stage.Result) StageResponse {
	items := make([]CandidateResponse, len(r.Results))
	for i, c := range r.Results {
		items[i] = candidateToResponse(c)
	}

	resp := StageResponse{
		SearchID:     r.SearchID,
		Stage:        string(r.Stage),
		StageNumber:  r.Number(),
		Results:      items,
		ElapsedMs:    float64(r.Elapsed.Microseconds()) / 1000,
		IsFinal:      r.IsFinal,
		QualityScore: r.QualityScore,
		CacheHit:     r.CacheHit,
	}
	if r.Degraded.Any() {
		resp.Degraded = &DegradedResponse{
			VectorUnavailable:      r.Degraded.VectorUnavailable,
			EnhancementUnavailable: r.Degraded.EnhancementUnavailable,
			Partial:                r.Degraded.Partial,
		}
	}
	return resp
}

func candidateToResponse(c result.Candidate) CandidateResponse {
	resp := CandidateResponse{
		ID:               c.ID(),
		Name:             c.Name(),
		Title:            c.Title(),
		Summary:          c.Summary(),
		Location:         c.Location(),
		YearsExperience:  c.YearsExperience(),
		Skills:           nonNil(c.Skills()),
		KeywordScore:     c.KeywordScore(),
		VectorScore:      c.VectorScore(),
		HybridScore:      c.HybridScore(),
		FinalScore:       c.FinalScore(),
		MatchedSkills:    nonNil(c.MatchedSkills()),
		MissingSkills:    nonNil(c.MissingSkills()),
		AdditionalSkills: nonNil(c.AdditionalSkills()),
	}
	if tier, ok := c.Tier(); ok {
		resp.Tier = &tier
	}
	if e, ok := c.Explanation(); ok {
		resp.Explanation = &ExplanationResponse{
			Summary:    e.Summary,
			Strengths:  nonNil(e.Strengths),
			Concerns:   nonNil(e.Concerns),
			FitLevel:   string(e.FitLevel),
			Confidence: e.Confidence,
			Source:     string(e.Source),
		}
	}
	return resp
}

// nonNil keeps empty lists as [] on the wire.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
