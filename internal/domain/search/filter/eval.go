package filter

import "strings"

// Record exposes document fields to in-memory evaluation.
type Record interface {
	// Tags returns the tag values stored under key.
	Tags(key string) []string
	// Number returns the numeric value stored under key.
	Number(key string) (float64, bool)
}

// Matches evaluates the expression against a record: every must condition,
// at least one should condition (when any), and no must_not condition.
func (e Expression) Matches(r Record) bool {
	for _, c := range e.must {
		if !c.Matches(r) {
			return false
		}
	}
	if len(e.should) > 0 {
		hit := false
		for _, c := range e.should {
			if c.Matches(r) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	for _, c := range e.mustNot {
		if c.Matches(r) {
			return false
		}
	}
	return true
}

// Matches evaluates a single condition. Missing fields never match.
func (c Condition) Matches(r Record) bool {
	if c.IsRange() {
		v, ok := r.Number(c.key)
		return ok && c.rangeExpr.Contains(v)
	}
	for _, tag := range r.Tags(c.key) {
		if strings.EqualFold(strings.TrimSpace(tag), c.match) {
			return true
		}
	}
	return false
}

// Contains reports whether v satisfies every bound of the range.
func (r Range) Contains(v float64) bool {
	if r.gt != nil && v <= *r.gt {
		return false
	}
	if r.gte != nil && v < *r.gte {
		return false
	}
	if r.lt != nil && v >= *r.lt {
		return false
	}
	if r.lte != nil && v > *r.lte {
		return false
	}
	return true
}
