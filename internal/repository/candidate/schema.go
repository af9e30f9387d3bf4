package candidate

import (
	"github.com/kailas-cloud/talentsearch/internal/db"
	"github.com/kailas-cloud/talentsearch/internal/domain"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/request"
)

// Hash field names of a stored candidate.
const (
	fieldID         = "id"
	fieldOwner      = "owner"
	fieldName       = "name"
	fieldTitle      = "title"
	fieldSummary    = "summary"
	fieldRawText    = "raw_text"
	fieldHeadline   = "headline"
	fieldSearchable = "searchable"
	fieldSkills     = "skills"
	fieldSkillTags  = "skill_tags"
	fieldLocation   = request.FieldLocation
	fieldYears      = request.FieldYearsExperience
	fieldDocLength  = "doc_length"
	fieldVector     = "vector"

	statsDocCount    = "doc_count"
	statsTotalLength = "total_length"

	skillSeparator = ","
)

var (
	// IndexName is the FT index over all candidate hashes.
	IndexName = domain.KeyPrefix + "candidates"

	candidatePrefix = domain.KeyPrefix + "cand:"
	statsPrefix     = domain.KeyPrefix + "stats:"

	documentFields = []string{
		fieldID, fieldName, fieldTitle, fieldSummary, fieldRawText,
		fieldLocation, fieldSkills, fieldYears,
	}
)

// HNSWConfig holds vector index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// buildIndex returns the candidate index definition. A zero dimension leaves
// the vector field out, which disables semantic search.
func buildIndex(vectorDim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	b := db.NewIndex(IndexName).
		Prefix(candidatePrefix).
		Tag(fieldOwner, "|").
		Tag(fieldSkillTags, skillSeparator).
		Tag(fieldLocation, "|").
		Numeric(fieldYears, true).
		Text(fieldHeadline, 2).
		Text(fieldSearchable, 0)
	if vectorDim > 0 {
		b = b.VectorHNSW(fieldVector, vectorDim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct)
	}
	return b.Build()
}

func candidateKey(scope, id string) string {
	return candidatePrefix + scope + ":" + id
}

func statsKey(scope string) string {
	return statsPrefix + scope
}
