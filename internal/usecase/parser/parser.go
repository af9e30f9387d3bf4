// Package parser turns free-text recruiter queries into query.Parsed values.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/kailas-cloud/talentsearch/internal/domain/query"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/request"
	"github.com/kailas-cloud/talentsearch/internal/domain/tokens"
)

const yearsUnit = `\s*(?:years?|yrs?)\b`

var (
	yearsRange   = regexp.MustCompile(`\b(\d{1,2})\s*(?:-|–|to)\s*(\d{1,2})\s*\+?` + yearsUnit)
	yearsAtLeast = regexp.MustCompile(`\b(?:at\s+least|minimum(?:\s+of)?|min\.?|over|more\s+than)\s+(\d{1,2})\s*\+?` + yearsUnit)
	yearsPlus    = regexp.MustCompile(`\b(\d{1,2})\s*\+` + yearsUnit)
	yearsPlain   = regexp.MustCompile(`\b(\d{1,2})` + yearsUnit)
)

// Parser is stateless apart from the vocabulary and safe for concurrent use.
type Parser struct {
	vocab Vocabulary
}

// New creates a parser over the given vocabulary.
func New(vocab Vocabulary) *Parser {
	return &Parser{vocab: vocab}
}

// Parse interprets a query. It never fails: empty input yields no skills and
// an exploratory query.
func (p *Parser) Parse(text string) query.Parsed {
	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > request.MaxQueryLength {
		text = string(r[:request.MaxQueryLength])
	}
	toks := tokens.Split(text)
	if len(toks) == 0 {
		return query.New(query.Params{Original: text, Type: query.TypeExploratory})
	}

	skills, consumed, corrected := p.extractSkills(toks)
	seniority, role := p.keywords(toks)
	yearsMin, yearsMax := parseYears(strings.ToLower(text))
	soft := p.countSoftSkills(toks)

	params := query.Params{
		Original:  text,
		Skills:    skills,
		Terms:     p.terms(toks, consumed),
		YearsMin:  yearsMin,
		YearsMax:  yearsMax,
		Seniority: seniority,
		RoleType:  role,
	}
	if corrected != nil {
		params.Corrected = strings.Join(corrected, " ")
	}

	switch {
	case p.vocab.HasExactPhrase(toks) || strings.Count(text, `"`) >= 2:
		params.Type = query.TypeExactMatch
	case soft >= 2:
		params.Type = query.TypeSoftSkills
	case (seniority != query.SeniorityAny || yearsMin != nil || yearsMax != nil) && len(skills) < 2:
		params.Type = query.TypeExperience
	case len(skills) >= 3:
		params.Type = query.TypeTechnical
	default:
		params.Type = query.TypeExploratory
	}

	return query.New(params)
}

// extractSkills scans longest phrases first. The returned corrected token
// stream is nil unless a fuzzy correction happened.
func (p *Parser) extractSkills(toks []string) (skills []string, consumed []bool, corrected []string) {
	consumed = make([]bool, len(toks))
	out := make([]string, 0, len(toks))
	seen := make(map[string]bool)
	fixed := false

	add := func(skill string) {
		if !seen[skill] {
			seen[skill] = true
			skills = append(skills, skill)
		}
	}

	maxWords := max(1, p.vocab.MaxPhraseWords())
	for i := 0; i < len(toks); {
		matched := false
		for n := min(maxWords, len(toks)-i); n >= 1; n-- {
			phrase := strings.Join(toks[i:i+n], " ")
			skill, ok := p.vocab.Lookup(phrase)
			if !ok {
				continue
			}
			add(skill)
			for j := i; j < i+n; j++ {
				consumed[j] = true
			}
			out = append(out, toks[i:i+n]...)
			i += n
			matched = true
			break
		}
		if matched {
			continue
		}

		tok := toks[i]
		if !isNumeric(tok) {
			if skill, ok := p.vocab.Correct(tok); ok {
				add(skill)
				consumed[i] = true
				out = append(out, skill)
				fixed = true
				i++
				continue
			}
		}
		out = append(out, tok)
		i++
	}

	if fixed {
		corrected = out
	}
	return skills, consumed, corrected
}

// keywords returns the first seniority and role keywords, bigrams before unigrams.
func (p *Parser) keywords(toks []string) (query.Seniority, query.RoleType) {
	seniority, role := query.SeniorityAny, query.RoleAny
	for i := range toks {
		for n := min(2, len(toks)-i); n >= 1; n-- {
			phrase := strings.Join(toks[i:i+n], " ")
			if seniority == query.SeniorityAny {
				if s, ok := p.vocab.Seniority(phrase); ok {
					seniority = s
				}
			}
			if role == query.RoleAny {
				if r, ok := p.vocab.Role(phrase); ok {
					role = r
				}
			}
		}
	}
	return seniority, role
}

func (p *Parser) countSoftSkills(toks []string) int {
	n := 0
	for _, t := range toks {
		if p.vocab.IsSoftSkill(t) {
			n++
		}
	}
	return n
}

// terms keeps the tokens that still carry meaning once skills are removed.
func (p *Parser) terms(toks []string, consumed []bool) []string {
	var out []string
	seen := make(map[string]bool)
	for i, t := range toks {
		if consumed[i] || seen[t] || isNumeric(t) || p.vocab.IsStopword(t) {
			continue
		}
		if p.vocab.HasExactPhrase([]string{t}) {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func parseYears(text string) (minYears, maxYears *int) {
	if m := yearsRange.FindStringSubmatch(text); m != nil {
		lo, hi := atoi(m[1]), atoi(m[2])
		if lo > hi {
			lo, hi = hi, lo
		}
		return &lo, &hi
	}
	for _, re := range []*regexp.Regexp{yearsAtLeast, yearsPlus, yearsPlain} {
		if m := re.FindStringSubmatch(text); m != nil {
			lo := atoi(m[1])
			return &lo, nil
		}
	}
	return nil, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return min(n, request.MaxYears)
}

func isNumeric(tok string) bool {
	digits := false
	for _, r := range tok {
		switch {
		case unicode.IsDigit(r):
			digits = true
		case r == '+' || r == '-' || r == '.':
		default:
			return false
		}
	}
	return digits
}
