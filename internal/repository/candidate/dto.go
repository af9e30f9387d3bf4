package candidate

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/talentsearch/internal/domain/candidate"
)

// buildHashFields converts a candidate into a flat map for HSET. vector may be nil.
func buildHashFields(scope string, d *candidate.Document, skillTags []string, vector []float32) map[string]string {
	m := map[string]string{
		fieldID:         d.ID(),
		fieldOwner:      scope,
		fieldName:       d.Name(),
		fieldTitle:      d.Title(),
		fieldSummary:    d.Summary(),
		fieldRawText:    d.RawText(),
		fieldHeadline:   d.Headline(),
		fieldSearchable: d.SearchableText(),
		fieldSkills:     strings.Join(d.Skills(), skillSeparator),
		fieldSkillTags:  strings.Join(skillTags, skillSeparator),
		fieldLocation:   d.Location(),
		fieldYears:      strconv.FormatFloat(d.YearsExperience(), 'f', -1, 64),
		fieldDocLength:  strconv.Itoa(d.DocLength()),
	}
	if len(vector) > 0 {
		m[fieldVector] = vectorToBytes(vector)
	}
	return m
}

// parseHashFields rebuilds a candidate from stored fields.
func parseHashFields(m map[string]string) (candidate.Document, error) {
	var skills []string
	if s := m[fieldSkills]; s != "" {
		skills = strings.Split(s, skillSeparator)
	}
	years, _ := strconv.ParseFloat(m[fieldYears], 64)
	return candidate.New(candidate.Params{
		ID:              m[fieldID],
		Name:            m[fieldName],
		Title:           m[fieldTitle],
		Summary:         m[fieldSummary],
		RawText:         m[fieldRawText],
		Location:        m[fieldLocation],
		Skills:          skills,
		YearsExperience: max(0, years),
	})
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
