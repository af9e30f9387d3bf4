package ranking

import (
	"cmp"
	"slices"

	"github.com/kailas-cloud/talentsearch/internal/domain/candidate"
	"github.com/kailas-cloud/talentsearch/internal/domain/query"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/result"
	"github.com/kailas-cloud/talentsearch/internal/domain/tokens"
)

// Tier multipliers applied to the hybrid score.
var tierMultiplier = [...]float64{1: 1.5, 2: 0.8, 3: 0.5, 4: 0.2, 5: 0.05}

// Reranker assigns skill tiers and final scores.
type Reranker struct {
	vocab Vocabulary
}

// NewReranker creates a reranker over the vocabulary.
func NewReranker(vocab Vocabulary) *Reranker {
	return &Reranker{vocab: vocab}
}

type skillMatch struct {
	matched    []string // candidate display forms, one per matched query skill
	missing    []string // query canonicals
	additional []string
	primary    bool
	secondary  int
	ratio      float64
}

// Rerank tiers every scored candidate against the query skills and returns
// them sorted. Without query skills nothing is tiered and hybrid order wins.
func (r *Reranker) Rerank(q query.Parsed, scored []Scored) []result.Candidate {
	skills := q.Skills()
	out := make([]result.Candidate, 0, len(scored))
	for _, s := range scored {
		p := baseParams(s)
		if len(skills) == 0 {
			p.FinalScore = s.Hybrid
			out = append(out, result.NewCandidate(p))
			continue
		}
		m := r.match(skills, &s.Doc)
		p.Tier = tierOf(m)
		p.FinalScore = finalScore(p.Tier, s.Hybrid)
		p.MatchedSkills = m.matched
		p.MissingSkills = m.missing
		p.AdditionalSkills = m.additional
		out = append(out, result.NewCandidate(p))
	}
	Sort(out)
	return out
}

// MatchRatio is the weighted share of query skills a document covers: the
// primary skill weighs one half, the secondaries share the other half.
func (r *Reranker) MatchRatio(q query.Parsed, doc *candidate.Document) float64 {
	if len(q.Skills()) == 0 {
		return 0
	}
	return r.match(q.Skills(), doc).ratio
}

func (r *Reranker) match(skills []string, doc *candidate.Document) skillMatch {
	var m skillMatch
	candSkills := doc.Skills()
	canon := make([]string, len(candSkills))
	toks := make([][]string, len(candSkills))
	for i, s := range candSkills {
		canon[i] = r.vocab.Canonicalize(s)
		toks[i] = tokens.Split(s)
	}

	used := make([]bool, len(candSkills))
	for qi, qs := range skills {
		hit := -1
		for ci := range candSkills {
			if r.skillMatches(qs, canon[ci], toks[ci]) {
				hit = ci
				break
			}
		}
		if hit < 0 {
			m.missing = append(m.missing, qs)
			continue
		}
		// A candidate skill may satisfy several query skills; mark all hits.
		for ci := range candSkills {
			if r.skillMatches(qs, canon[ci], toks[ci]) {
				used[ci] = true
			}
		}
		m.matched = append(m.matched, candSkills[hit])
		if qi == 0 {
			m.primary = true
		} else {
			m.secondary++
		}
	}

	seen := make(map[string]bool)
	for ci, s := range candSkills {
		if used[ci] || seen[canon[ci]] {
			continue
		}
		for _, qs := range skills {
			if r.vocab.Related(canon[ci], qs) {
				seen[canon[ci]] = true
				m.additional = append(m.additional, s)
				break
			}
		}
	}

	switch {
	case len(skills) == 1:
		if m.primary {
			m.ratio = 1
		}
	default:
		if m.primary {
			m.ratio = 0.5
		}
		m.ratio += 0.5 * float64(m.secondary) / float64(len(skills)-1)
	}
	return m
}

// skillMatches compares a canonical query skill with one candidate skill:
// equal after canonicalization, or any surface of the query skill appears as
// a whole-token phrase inside the candidate skill ("IBM WebSphere 8").
func (r *Reranker) skillMatches(querySkill, candCanon string, candToks []string) bool {
	if candCanon == querySkill {
		return true
	}
	surfaces := r.vocab.Synonyms(querySkill)
	if len(surfaces) == 0 {
		surfaces = []string{querySkill}
	}
	for _, s := range surfaces {
		if tokens.Contains(candToks, tokens.Split(s)) {
			return true
		}
	}
	return false
}

func tierOf(m skillMatch) int {
	const eps = 1e-9
	switch {
	case m.ratio >= 1-eps:
		return 1
	case m.primary && m.ratio >= 0.75-eps:
		return 2
	case m.primary && m.ratio >= 0.5-eps:
		return 3
	case !m.primary && m.secondary > 0:
		return 4
	default:
		return 5
	}
}

func finalScore(tier int, hybrid float64) float64 {
	if tier == 1 {
		return min(1, hybrid*tierMultiplier[1])
	}
	return hybrid * tierMultiplier[tier]
}

func baseParams(s Scored) result.CandidateParams {
	d := &s.Doc
	return result.CandidateParams{
		ID:              d.ID(),
		Name:            d.Name(),
		Title:           d.Title(),
		Summary:         d.Summary(),
		Location:        d.Location(),
		YearsExperience: d.YearsExperience(),
		Skills:          d.Skills(),
		KeywordScore:    s.Keyword,
		VectorScore:     s.Vector,
		HybridScore:     s.Hybrid,
	}
}

// Sort orders candidates by tier, then hybrid score descending, then id.
// Untiered candidates compare as tier 0. Within a tier the final score is
// capped at 1.0, so it cannot separate strong tier-1 matches.
func Sort(cands []result.Candidate) {
	slices.SortStableFunc(cands, func(a, b result.Candidate) int {
		ta, _ := a.Tier()
		tb, _ := b.Tier()
		if c := cmp.Compare(ta, tb); c != 0 {
			return c
		}
		if c := cmp.Compare(b.HybridScore(), a.HybridScore()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID(), b.ID())
	})
}

// Merge overlays next on prev by candidate id, keeping next's version, and
// returns the re-sorted union.
func Merge(prev, next []result.Candidate) []result.Candidate {
	idx := make(map[string]int, len(prev)+len(next))
	out := make([]result.Candidate, 0, len(prev)+len(next))
	for _, c := range prev {
		if i, ok := idx[c.ID()]; ok {
			out[i] = c
			continue
		}
		idx[c.ID()] = len(out)
		out = append(out, c)
	}
	for _, c := range next {
		if i, ok := idx[c.ID()]; ok {
			out[i] = c
			continue
		}
		idx[c.ID()] = len(out)
		out = append(out, c)
	}
	Sort(out)
	return out
}
