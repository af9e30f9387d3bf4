package parser

import "github.com/kailas-cloud/talentsearch/internal/domain/query"

// Vocabulary resolves skills and keywords while parsing.
type Vocabulary interface {
	Lookup(surface string) (string, bool)
	Correct(token string) (string, bool)
	IsSoftSkill(token string) bool
	IsStopword(token string) bool
	Seniority(phrase string) (query.Seniority, bool)
	Role(phrase string) (query.RoleType, bool)
	HasExactPhrase(toks []string) bool
	MaxPhraseWords() int
}
