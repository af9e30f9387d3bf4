// Package query holds the structured interpretation of a free-text search.
package query

// Seniority is the requested career level.
type Seniority string

// Seniority levels.
const (
	SeniorityAny    Seniority = "any"
	SeniorityJunior Seniority = "junior"
	SeniorityMid    Seniority = "mid"
	SenioritySenior Seniority = "senior"
	SeniorityLead   Seniority = "lead"
)

// IsValid checks if the seniority is one of the supported values.
func (s Seniority) IsValid() bool {
	switch s {
	case SeniorityAny, SeniorityJunior, SeniorityMid, SenioritySenior, SeniorityLead:
		return true
	}
	return false
}

// RoleType is the requested role family.
type RoleType string

// Role types.
const (
	RoleAny       RoleType = "any"
	RoleFrontend  RoleType = "frontend"
	RoleBackend   RoleType = "backend"
	RoleFullstack RoleType = "fullstack"
	RoleDevOps    RoleType = "devops"
	RoleData      RoleType = "data"
	RoleMobile    RoleType = "mobile"
)

// IsValid checks if the role type is one of the supported values.
func (r RoleType) IsValid() bool {
	switch r {
	case RoleAny, RoleFrontend, RoleBackend, RoleFullstack, RoleDevOps, RoleData, RoleMobile:
		return true
	}
	return false
}

// Type drives the keyword/vector weighting of the hybrid combiner.
type Type string

// Query types.
const (
	TypeTechnical   Type = "technical"
	TypeSoftSkills  Type = "soft_skills"
	TypeExperience  Type = "experience"
	TypeExactMatch  Type = "exact_match"
	TypeExploratory Type = "exploratory"
)

// Parsed is the output of the query parser. Immutable.
type Parsed struct {
	original  string
	corrected string
	skills    []string
	terms     []string
	yearsMin  *int
	yearsMax  *int
	seniority Seniority
	roleType  RoleType
	queryType Type
}

// Params carries parser output for New.
type Params struct {
	Original  string
	Corrected string
	Skills    []string
	Terms     []string
	YearsMin  *int
	YearsMax  *int
	Seniority Seniority
	RoleType  RoleType
	Type      Type
}

// New creates a Parsed query. Unknown enums fall back to "any"/exploratory.
func New(p Params) Parsed {
	if !p.Seniority.IsValid() {
		p.Seniority = SeniorityAny
	}
	if !p.RoleType.IsValid() {
		p.RoleType = RoleAny
	}
	if p.Type == "" {
		p.Type = TypeExploratory
	}
	return Parsed{
		original:  p.Original,
		corrected: p.Corrected,
		skills:    p.Skills,
		terms:     p.Terms,
		yearsMin:  p.YearsMin,
		yearsMax:  p.YearsMax,
		seniority: p.Seniority,
		roleType:  p.RoleType,
		queryType: p.Type,
	}
}

// Original returns the raw query text.
func (q *Parsed) Original() string { return q.original }

// Corrected returns the typo-corrected text and whether any correction happened.
func (q *Parsed) Corrected() (string, bool) { return q.corrected, q.corrected != "" }

// Skills returns canonical skills in first-seen order.
func (q *Parsed) Skills() []string { return q.skills }

// PrimarySkill returns the first skill, if any.
func (q *Parsed) PrimarySkill() (string, bool) {
	if len(q.skills) == 0 {
		return "", false
	}
	return q.skills[0], true
}

// Terms returns non-stopword query tokens that are not part of a skill.
func (q *Parsed) Terms() []string { return q.terms }

// YearsMin returns the minimum requested years of experience.
func (q *Parsed) YearsMin() *int { return q.yearsMin }

// YearsMax returns the maximum requested years of experience.
func (q *Parsed) YearsMax() *int { return q.yearsMax }

// Seniority returns the requested level.
func (q *Parsed) Seniority() Seniority { return q.seniority }

// RoleType returns the requested role family.
func (q *Parsed) RoleType() RoleType { return q.roleType }

// Type returns the query type.
func (q *Parsed) Type() Type { return q.queryType }
