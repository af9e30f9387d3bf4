package ranking

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/talentsearch/internal/domain/search/result"
)

const (
	fallbackConfidence = 0.5
	maxListed          = 3
)

// FitLevelFor grades a final score.
func FitLevelFor(score float64) result.FitLevel {
	switch {
	case score >= 0.8:
		return result.FitExcellent
	case score >= 0.6:
		return result.FitStrong
	case score >= 0.4:
		return result.FitModerate
	default:
		return result.FitWeak
	}
}

// Explain builds a rule-based explanation from scores and skill coverage.
func Explain(c result.Candidate) result.Explanation {
	fit := FitLevelFor(c.FinalScore())
	matched, missing := c.MatchedSkills(), c.MissingSkills()

	var strengths, concerns []string
	if len(matched) > 0 {
		strengths = append(strengths, "Has "+strings.Join(matched, ", "))
	}
	if extra := c.AdditionalSkills(); len(extra) > 0 {
		strengths = append(strengths, "Related experience with "+strings.Join(head(extra), ", "))
	}
	if y := c.YearsExperience(); y > 0 {
		strengths = append(strengths, fmt.Sprintf("%g years of experience", y))
	}
	for _, s := range missing {
		concerns = append(concerns, "No "+s+" listed")
	}

	var summary string
	switch total := len(matched) + len(missing); {
	case total == 0:
		summary = fmt.Sprintf("%s match on profile text", capitalize(string(fit)))
	default:
		summary = fmt.Sprintf("%s match: %d of %d requested skills", capitalize(string(fit)), len(matched), total)
	}
	if title := c.Title(); title != "" {
		summary += " (" + title + ")"
	}

	return result.Explanation{
		Summary:    summary,
		Strengths:  strengths,
		Concerns:   concerns,
		FitLevel:   fit,
		Confidence: fallbackConfidence,
		Source:     result.SourceRules,
	}
}

func head(s []string) []string {
	if len(s) > maxListed {
		return s[:maxListed]
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
