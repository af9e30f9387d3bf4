// Package vocabulary is the read-only skill, synonym and keyword dictionary
// shared by the query parser and the reranker.
package vocabulary

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xrash/smetrics"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/talentsearch/internal/domain/query"
	"github.com/kailas-cloud/talentsearch/internal/domain/tokens"
)

//go:embed vocabulary.yaml
var defaultData []byte

type skillEntry struct {
	Name     string   `yaml:"name"`
	Family   string   `yaml:"family"`
	Synonyms []string `yaml:"synonyms"`
}

type fileFormat struct {
	Skills       []skillEntry        `yaml:"skills"`
	Corrections  map[string]string   `yaml:"corrections"`
	NeverCorrect []string            `yaml:"never_correct"`
	SoftSkills   []string            `yaml:"soft_skills"`
	Seniority    map[string][]string `yaml:"seniority"`
	Roles        map[string][]string `yaml:"roles"`
	ExactPhrases []string            `yaml:"exact_phrases"`
	Stopwords    []string            `yaml:"stopwords"`
}

// Vocabulary is immutable after construction and safe for concurrent use.
type Vocabulary struct {
	surfaces     map[string]string // tokenized surface form -> canonical name
	family       map[string]string // canonical -> family
	synonyms     map[string][]string
	order        []string // single-word surfaces in file order, for fuzzy matching
	corrections  map[string]string
	neverCorrect map[string]bool
	soft         map[string]bool
	seniority    map[string]query.Seniority
	roles        map[string]query.RoleType
	exact        [][]string
	stop         map[string]bool
	maxWords     int
}

var defaultVocabulary = sync.OnceValues(func() (*Vocabulary, error) {
	return Parse(defaultData)
})

// Default returns the embedded vocabulary.
func Default() *Vocabulary {
	v, err := defaultVocabulary()
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary: %v", err))
	}
	return v
}

// Load reads a vocabulary file from disk.
func Load(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a vocabulary from YAML.
func Parse(data []byte) (*Vocabulary, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	if len(f.Skills) == 0 {
		return nil, errors.New("vocabulary has no skills")
	}

	v := &Vocabulary{
		surfaces:     make(map[string]string),
		family:       make(map[string]string),
		synonyms:     make(map[string][]string),
		corrections:  make(map[string]string),
		neverCorrect: toSet(f.NeverCorrect),
		soft:         toSet(f.SoftSkills),
		seniority:    make(map[string]query.Seniority),
		roles:        make(map[string]query.RoleType),
		stop:         toSet(f.Stopwords),
	}

	for _, s := range f.Skills {
		canonical := strings.ToLower(strings.TrimSpace(s.Name))
		if normalize(canonical) == "" {
			return nil, errors.New("vocabulary skill with empty name")
		}
		if _, dup := v.family[canonical]; dup {
			return nil, fmt.Errorf("duplicate skill %q", canonical)
		}
		v.family[canonical] = strings.ToLower(strings.TrimSpace(s.Family))

		for _, surface := range append([]string{s.Name}, s.Synonyms...) {
			key := normalize(surface)
			if key == "" {
				continue
			}
			if owner, taken := v.surfaces[key]; taken && owner != canonical {
				return nil, fmt.Errorf("surface %q claimed by %q and %q", key, owner, canonical)
			}
			v.surfaces[key] = canonical
			v.synonyms[canonical] = append(v.synonyms[canonical], key)
			words := strings.Count(key, " ") + 1
			v.maxWords = max(v.maxWords, words)
			if words == 1 {
				v.order = append(v.order, key)
			}
		}
	}

	for typo, target := range f.Corrections {
		canonical, ok := v.surfaces[normalize(target)]
		if !ok {
			return nil, fmt.Errorf("correction %q points at unknown skill %q", typo, target)
		}
		v.corrections[normalize(typo)] = canonical
	}

	for level, words := range f.Seniority {
		s := query.Seniority(level)
		if !s.IsValid() || s == query.SeniorityAny {
			return nil, fmt.Errorf("unknown seniority %q", level)
		}
		for _, w := range words {
			v.seniority[normalize(w)] = s
		}
	}

	for role, words := range f.Roles {
		r := query.RoleType(role)
		if !r.IsValid() || r == query.RoleAny {
			return nil, fmt.Errorf("unknown role %q", role)
		}
		for _, w := range words {
			v.roles[normalize(w)] = r
		}
	}

	for _, p := range f.ExactPhrases {
		if t := tokens.Split(p); len(t) > 0 {
			v.exact = append(v.exact, t)
		}
	}

	return v, nil
}

func normalize(s string) string {
	return strings.Join(tokens.Split(s), " ")
}

func toSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[normalize(w)] = true
	}
	return m
}

// Lookup resolves a surface form (exact name or synonym) to its canonical skill.
func (v *Vocabulary) Lookup(surface string) (string, bool) {
	c, ok := v.surfaces[normalize(surface)]
	return c, ok
}

// minFuzzyRunes is the shortest token, and the shortest surface, that edit
// distance may match. Shorter typos need an entry in the corrections table.
const minFuzzyRunes = 6

// Correct maps a misspelled single token to a canonical skill: first via the
// corrections table, then by edit distance (1 for tokens of 6-7 runes, 2 for
// longer ones) against surfaces of at least 6 runes sharing the first letter.
// Ties go to the entry listed first.
func (v *Vocabulary) Correct(token string) (string, bool) {
	token = normalize(token)
	if c, ok := v.corrections[token]; ok {
		return c, true
	}
	n := len([]rune(token))
	if n < minFuzzyRunes || v.neverCorrect[token] || v.stop[token] || v.soft[token] {
		return "", false
	}
	if _, ok := v.seniority[token]; ok {
		return "", false
	}
	if _, ok := v.roles[token]; ok {
		return "", false
	}
	if _, ok := v.surfaces[token]; ok {
		return "", false
	}

	limit := 1
	if n >= 8 {
		limit = 2
	}

	best, bestDist := "", limit+1
	for _, surface := range v.order {
		sn := len([]rune(surface))
		if sn < minFuzzyRunes || surface[0] != token[0] || abs(sn-n) > limit {
			continue
		}
		if d := smetrics.WagnerFischer(token, surface, 1, 1, 1); d < bestDist {
			best, bestDist = surface, d
		}
	}
	if best == "" {
		return "", false
	}
	return v.surfaces[best], true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Canonicalize maps a free-form skill (as written on a profile) to its
// canonical name, or returns it lower-cased when unknown.
func (v *Vocabulary) Canonicalize(skill string) string {
	key := normalize(skill)
	if c, ok := v.surfaces[key]; ok {
		return c
	}
	return key
}

// Synonyms returns every tokenized surface form of a canonical skill, the
// name itself first.
func (v *Vocabulary) Synonyms(canonical string) []string {
	return v.synonyms[canonical]
}

// Related reports whether two canonical skills belong to the same family.
func (v *Vocabulary) Related(a, b string) bool {
	fa, oka := v.family[a]
	fb, okb := v.family[b]
	return oka && okb && fa != "" && fa == fb
}

// IsSoftSkill reports whether token names a soft skill.
func (v *Vocabulary) IsSoftSkill(token string) bool { return v.soft[normalize(token)] }

// IsStopword reports whether token carries no search meaning.
func (v *Vocabulary) IsStopword(token string) bool { return v.stop[normalize(token)] }

// Seniority resolves a seniority keyword.
func (v *Vocabulary) Seniority(phrase string) (query.Seniority, bool) {
	s, ok := v.seniority[normalize(phrase)]
	return s, ok
}

// Role resolves a role keyword.
func (v *Vocabulary) Role(phrase string) (query.RoleType, bool) {
	r, ok := v.roles[normalize(phrase)]
	return r, ok
}

// HasExactPhrase reports whether the token stream contains an explicit
// requirement phrase such as "must have".
func (v *Vocabulary) HasExactPhrase(toks []string) bool {
	for _, p := range v.exact {
		if tokens.Contains(toks, p) {
			return true
		}
	}
	return false
}

// MaxPhraseWords returns the longest multi-word skill surface, in tokens.
func (v *Vocabulary) MaxPhraseWords() int { return v.maxWords }
