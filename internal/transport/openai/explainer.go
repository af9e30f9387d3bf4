package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talentsearch/internal/domain"
	"github.com/kailas-cloud/talentsearch/internal/domain/query"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/result"
)

const explainSystemPrompt = `You are a recruiting assistant. Explain how well a candidate fits a search.
Reply with a JSON object only:
{"summary": string, "strengths": [string], "concerns": [string],
 "fit_level": "excellent"|"strong"|"moderate"|"weak", "confidence": number between 0 and 1}.
Keep the summary to one sentence and each list to at most three short items.
Use only the facts given; do not invent experience.`

// ExplainerConfig holds the chat completion settings for explanations.
type ExplainerConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      *zap.Logger
}

// Explainer generates candidate explanations with a chat completion model in JSON mode.
type Explainer struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewExplainer creates an OpenAI-compatible explanation provider.
func NewExplainer(cfg *ExplainerConfig) *Explainer {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 300
	}
	return &Explainer{
		client:      newClient(cfg.APIKey, cfg.BaseURL),
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
	}
}

type explanationPayload struct {
	Summary    string   `json:"summary"`
	Strengths  []string `json:"strengths"`
	Concerns   []string `json:"concerns"`
	FitLevel   string   `json:"fit_level"`
	Confidence float64  `json:"confidence"`
}

// Explain asks the model to justify the ranking of one candidate.
// Errors wrap domain.ErrEnhancementUnavailable.
func (e *Explainer) Explain(
	ctx context.Context, c result.Candidate, q *query.Parsed, rank int,
) (result.Explanation, error) {
	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: explainSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: explainPrompt(c, q, rank)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return result.Explanation{}, parseAPIError("chat", err, domain.ErrEnhancementUnavailable)
	}
	if len(resp.Choices) == 0 {
		return result.Explanation{}, fmt.Errorf("empty chat response: %w", domain.ErrEnhancementUnavailable)
	}

	exp, err := decodeExplanation(resp.Choices[0].Message.Content)
	if err != nil {
		return result.Explanation{}, err
	}

	e.logger.Debug("Candidate explained",
		zap.String("candidate_id", c.ID()),
		zap.Int("rank", rank),
		zap.Duration("duration", time.Since(start)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return exp, nil
}

// HealthCheck verifies API availability.
func (e *Explainer) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, e.client)
}

func decodeExplanation(content string) (result.Explanation, error) {
	var p explanationPayload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return result.Explanation{}, fmt.Errorf("decode explanation: %w: %w", domain.ErrEnhancementUnavailable, err)
	}
	p.Summary = strings.TrimSpace(p.Summary)
	if p.Summary == "" {
		return result.Explanation{}, fmt.Errorf("explanation without summary: %w", domain.ErrEnhancementUnavailable)
	}

	level := result.FitLevel(strings.ToLower(strings.TrimSpace(p.FitLevel)))
	switch level {
	case result.FitExcellent, result.FitStrong, result.FitModerate, result.FitWeak:
	default:
		return result.Explanation{}, fmt.Errorf("unknown fit level %q: %w", p.FitLevel, domain.ErrEnhancementUnavailable)
	}

	return result.Explanation{
		Summary:    p.Summary,
		Strengths:  nonEmpty(p.Strengths),
		Concerns:   nonEmpty(p.Concerns),
		FitLevel:   level,
		Confidence: min(1, max(0, p.Confidence)),
		Source:     result.SourceModel,
	}, nil
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func explainPrompt(c result.Candidate, q *query.Parsed, rank int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search: %s\n", q.Original())
	if skills := q.Skills(); len(skills) > 0 {
		fmt.Fprintf(&b, "Requested skills: %s\n", strings.Join(skills, ", "))
	}
	if s := q.Seniority(); s != query.SeniorityAny {
		fmt.Fprintf(&b, "Seniority: %s\n", s)
	}
	if r := q.RoleType(); r != query.RoleAny {
		fmt.Fprintf(&b, "Role: %s\n", r)
	}

	fmt.Fprintf(&b, "\nCandidate (rank %d, score %.2f):\n", rank, c.FinalScore())
	if c.Title() != "" {
		fmt.Fprintf(&b, "Title: %s\n", c.Title())
	}
	if c.YearsExperience() > 0 {
		fmt.Fprintf(&b, "Experience: %g years\n", c.YearsExperience())
	}
	if c.Location() != "" {
		fmt.Fprintf(&b, "Location: %s\n", c.Location())
	}
	if s := c.Summary(); s != "" {
		fmt.Fprintf(&b, "Summary: %s\n", s)
	}
	if len(c.Skills()) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(c.Skills(), ", "))
	}
	if len(c.MatchedSkills()) > 0 {
		fmt.Fprintf(&b, "Matched: %s\n", strings.Join(c.MatchedSkills(), ", "))
	}
	if len(c.MissingSkills()) > 0 {
		fmt.Fprintf(&b, "Missing: %s\n", strings.Join(c.MissingSkills(), ", "))
	}
	return b.String()
}
