package candidate

import (
	"errors"
	"strings"

	"github.com/kailas-cloud/talentsearch/internal/domain/tokens"
)

// Document is a read-only view of an indexed candidate profile.
type Document struct {
	id              string
	name            string
	title           string
	summary         string
	rawText         string
	location        string
	skills          []string
	yearsExperience float64
	searchable      []string
	headline        []string
}

// Params carries the raw profile fields for New.
type Params struct {
	ID              string
	Name            string
	Title           string
	Summary         string
	RawText         string
	Location        string
	Skills          []string
	YearsExperience float64
}

// New builds a Document. Searchable text is title, summary, raw text and
// skills; doc length is its token count.
func New(p Params) (Document, error) {
	if strings.TrimSpace(p.ID) == "" {
		return Document{}, errors.New("candidate id is required")
	}
	if p.YearsExperience < 0 {
		return Document{}, errors.New("years of experience must not be negative")
	}

	skills := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}

	searchable := strings.Join([]string{p.Title, p.Summary, p.RawText, strings.Join(skills, " ")}, " ")

	return Document{
		id:              p.ID,
		name:            p.Name,
		title:           p.Title,
		summary:         p.Summary,
		rawText:         p.RawText,
		location:        p.Location,
		skills:          skills,
		yearsExperience: p.YearsExperience,
		searchable:      tokens.Split(searchable),
		headline:        tokens.Split(p.Title + " " + p.Summary),
	}, nil
}

// ID returns the candidate identifier.
func (d *Document) ID() string { return d.id }

// Name returns the display name.
func (d *Document) Name() string { return d.name }

// Title returns the current job title.
func (d *Document) Title() string { return d.title }

// Summary returns the profile summary.
func (d *Document) Summary() string { return d.summary }

// RawText returns the free-form resume text.
func (d *Document) RawText() string { return d.rawText }

// Location returns the candidate location.
func (d *Document) Location() string { return d.location }

// Skills returns the skill set in display case.
func (d *Document) Skills() []string { return d.skills }

// YearsExperience returns total years of professional experience.
func (d *Document) YearsExperience() float64 { return d.yearsExperience }

// DocLength returns the token count of the searchable text.
func (d *Document) DocLength() int { return len(d.searchable) }

// TermFrequency counts occurrences of a (possibly multi-word) term in the
// searchable text.
func (d *Document) TermFrequency(term string) int {
	return tokens.Count(d.searchable, tokens.Split(term))
}

// HeadlineHits counts how many of the terms occur in title or summary.
func (d *Document) HeadlineHits(terms []string) int {
	hits := 0
	for _, t := range terms {
		if tokens.Contains(d.headline, tokens.Split(t)) {
			hits++
		}
	}
	return hits
}

// SearchableText returns the normalized searchable text.
func (d *Document) SearchableText() string { return strings.Join(d.searchable, " ") }

// Headline returns title and summary joined for display and text lookups.
func (d *Document) Headline() string {
	return strings.TrimSpace(d.title + " " + d.summary)
}

// EmbeddingText is the text vectorized for semantic search.
func (d *Document) EmbeddingText() string {
	parts := make([]string, 0, 3)
	if h := d.Headline(); h != "" {
		parts = append(parts, h)
	}
	if len(d.skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(d.skills, ", "))
	}
	if t := strings.TrimSpace(d.rawText); t != "" {
		parts = append(parts, t)
	}
	return strings.Join(parts, "\n")
}

// TextField selects which text a lookup searches.
type TextField string

// Searchable text fields.
const (
	FieldHeadline   TextField = "headline"
	FieldSearchable TextField = "searchable"
)

// Mentions reports whether any of the terms occurs in the selected text.
func (d *Document) Mentions(field TextField, terms []string) bool {
	text := d.searchable
	if field == FieldHeadline {
		text = d.headline
	}
	for _, t := range terms {
		if tokens.Contains(text, tokens.Split(t)) {
			return true
		}
	}
	return false
}
