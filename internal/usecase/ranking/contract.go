package ranking

// Vocabulary supplies skill synonyms and families to the scorers.
type Vocabulary interface {
	Canonicalize(skill string) string
	Synonyms(canonical string) []string
	Related(a, b string) bool
	IsStopword(token string) bool
}
