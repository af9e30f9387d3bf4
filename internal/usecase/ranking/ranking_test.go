package ranking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/talentsearch/internal/domain/candidate"
	"github.com/kailas-cloud/talentsearch/internal/domain/query"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/result"
	"github.com/kailas-cloud/talentsearch/internal/vocabulary"
)

func doc(t *testing.T, id, title string, skills ...string) candidate.Document {
	t.Helper()
	d, err := candidate.New(candidate.Params{ID: id, Name: "Name " + id, Title: title, Skills: skills})
	require.NoError(t, err)
	return d
}

func skillsQuery(skills ...string) query.Parsed {
	return query.New(query.Params{Original: "q", Skills: skills, Type: query.TypeExploratory})
}

func ids(cands []result.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.ID()
	}
	return out
}

func byID(cands []result.Candidate, id string) result.Candidate {
	for _, c := range cands {
		if c.ID() == id {
			return c
		}
	}
	return result.Candidate{}
}

// --- BM25 ---

func TestKeywordTerms(t *testing.T) {
	q := query.New(query.Params{
		Skills: []string{"python", "aws"},
		Terms:  []string{"senior", "developer", "senior"},
	})
	terms := KeywordTerms(q, vocabulary.Default())
	assert.Equal(t, []string{"python", "py", "python3", "aws", "amazon web services", "senior", "developer"}, terms)
}

func TestBM25_ExactValue(t *testing.T) {
	d := doc(t, "a", "python a b c d e f g h i") // 10 tokens
	stats := candidate.NewStats(100, 10, nil)    // df falls back to N/10

	scores := BM25([]candidate.Document{d}, []string{"python"}, stats)

	// tf=1, dl=avgdl: the term score reduces to idf.
	assert.InDelta(t, math.Log(90.5/10.5), scores["a"], 1e-9)
}

func TestBM25_NoTermMeansExcluded(t *testing.T) {
	docs := []candidate.Document{
		doc(t, "a", "python engineer"),
		doc(t, "b", "marketing manager"),
	}
	scores := BM25(docs, []string{"python"}, candidate.NewStats(2, 2, nil))
	assert.Contains(t, scores, "a")
	assert.NotContains(t, scores, "b")
}

func TestBM25_HigherFrequencyScoresHigher(t *testing.T) {
	docs := []candidate.Document{
		doc(t, "once", "python engineer with cloud background"),
		doc(t, "twice", "python engineer python cloud background"),
	}
	scores := BM25(docs, []string{"python"}, candidate.NewStats(50, 5, nil))
	assert.Greater(t, scores["twice"], scores["once"])
}

func TestBM25_KnownDocumentFrequency(t *testing.T) {
	docs := []candidate.Document{doc(t, "a", "python kafka")}
	stats := candidate.NewStats(100, 2, map[string]int{"python": 90, "kafka": 2})

	common := BM25(docs, []string{"python"}, stats)["a"]
	rare := BM25(docs, []string{"kafka"}, stats)["a"]
	assert.Greater(t, rare, common)
}

func TestBM25_CommonTermFloored(t *testing.T) {
	docs := []candidate.Document{doc(t, "a", "python")}
	stats := candidate.NewStats(10, 1, map[string]int{"python": 10})
	s := BM25(docs, []string{"python"}, stats)["a"]
	assert.Greater(t, s, 0.0)
}

func TestBM25_PhraseTerm(t *testing.T) {
	docs := []candidate.Document{
		doc(t, "a", "machine learning engineer"),
		doc(t, "b", "learning machine operator"),
	}
	scores := BM25(docs, []string{"machine learning"}, candidate.NewStats(2, 3, nil))
	assert.Contains(t, scores, "a")
	assert.NotContains(t, scores, "b")
}

// --- Hybrid ---

func TestWeights(t *testing.T) {
	tests := []struct {
		typ    query.Type
		kw, vc float64
	}{
		{query.TypeTechnical, 0.4, 0.6},
		{query.TypeSoftSkills, 0.2, 0.8},
		{query.TypeExactMatch, 0.7, 0.3},
		{query.TypeExperience, 0.3, 0.7},
		{query.TypeExploratory, 0.3, 0.7},
	}
	for _, tc := range tests {
		kw, vc := Weights(tc.typ)
		assert.InDelta(t, tc.kw, kw, 1e-9, tc.typ)
		assert.InDelta(t, tc.vc, vc, 1e-9, tc.typ)
	}
}

func TestCombine_NormalizesEachLeg(t *testing.T) {
	docs := []candidate.Document{doc(t, "a", "x"), doc(t, "b", "y"), doc(t, "c", "z")}
	kw := map[string]float64{"a": 4, "b": 2}
	vec := map[string]float64{"b": 0.5, "c": 0.25}

	got := Combine(docs, kw, vec, query.TypeTechnical)
	require.Len(t, got, 3)
	assert.InDelta(t, 0.4*1.0, got[0].Hybrid, 1e-9)
	assert.InDelta(t, 0.4*0.5+0.6*1.0, got[1].Hybrid, 1e-9)
	assert.InDelta(t, 0.6*0.5, got[2].Hybrid, 1e-9)
	assert.InDelta(t, 4.0, got[0].Keyword, 1e-9)
}

func TestCombine_EmptyVectorLeg(t *testing.T) {
	docs := []candidate.Document{doc(t, "a", "x"), doc(t, "b", "y")}
	got := Combine(docs, map[string]float64{"a": 3}, nil, query.TypeExploratory)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Doc.ID())
	assert.InDelta(t, 0.3, got[0].Hybrid, 1e-9)
}

// --- Tiers ---

func TestRerank_NoSkillsUntiered(t *testing.T) {
	r := NewReranker(vocabulary.Default())
	scored := []Scored{
		{Doc: doc(t, "a", "x"), Hybrid: 0.2},
		{Doc: doc(t, "b", "y"), Hybrid: 0.9},
		{Doc: doc(t, "c", "z"), Hybrid: 0.9},
	}
	got := r.Rerank(query.New(query.Params{Original: "friendly people"}), scored)

	assert.Equal(t, []string{"b", "c", "a"}, ids(got))
	for _, c := range got {
		_, tiered := c.Tier()
		assert.False(t, tiered)
		assert.InDelta(t, c.HybridScore(), c.FinalScore(), 1e-12)
	}
}

func TestRerank_SeniorPythonWithAWS(t *testing.T) {
	r := NewReranker(vocabulary.Default())
	scored := []Scored{
		{Doc: doc(t, "java", "Java dev", "Java", "Spring"), Hybrid: 0.99},
		{Doc: doc(t, "aws", "Cloud engineer", "AWS", "Terraform"), Hybrid: 0.9},
		{Doc: doc(t, "py", "Python dev", "Python", "Django"), Hybrid: 0.8},
		{Doc: doc(t, "both", "Senior Python developer", "Python", "AWS"), Hybrid: 0.3},
	}
	got := r.Rerank(skillsQuery("python", "aws"), scored)

	assert.Equal(t, []string{"both", "py", "aws", "java"}, ids(got))

	tiers := map[string]int{}
	for _, c := range got {
		tiers[c.ID()], _ = c.Tier()
	}
	assert.Equal(t, map[string]int{"both": 1, "py": 3, "aws": 4, "java": 5}, tiers)

	both := byID(got, "both")
	assert.InDelta(t, 0.45, both.FinalScore(), 1e-9)
	assert.Equal(t, []string{"Python", "AWS"}, both.MatchedSkills())
	assert.Empty(t, both.MissingSkills())

	py := byID(got, "py")
	assert.InDelta(t, 0.4, py.FinalScore(), 1e-9)
	assert.Equal(t, []string{"aws"}, py.MissingSkills())
	assert.Equal(t, []string{"Django"}, py.AdditionalSkills())

	assert.InDelta(t, 0.18, byID(got, "aws").FinalScore(), 1e-9)
	assert.InDelta(t, 0.99*0.05, byID(got, "java").FinalScore(), 1e-9)
}

func TestRerank_TierDominatesScore(t *testing.T) {
	r := NewReranker(vocabulary.Default())
	scored := []Scored{
		{Doc: doc(t, "weak-match", "", "Go"), Hybrid: 0.01},
		{Doc: doc(t, "strong-miss", "", "Rust"), Hybrid: 1},
	}
	got := r.Rerank(skillsQuery("go"), scored)
	assert.Equal(t, []string{"weak-match", "strong-miss"}, ids(got))
}

func TestRerank_Tier2(t *testing.T) {
	r := NewReranker(vocabulary.Default())
	scored := []Scored{{Doc: doc(t, "a", "", "python", "aws"), Hybrid: 0.5}}
	got := r.Rerank(skillsQuery("python", "aws", "docker"), scored)
	tier, _ := got[0].Tier()
	assert.Equal(t, 2, tier)
	assert.InDelta(t, 0.4, got[0].FinalScore(), 1e-9)
}

func TestRerank_Tier1Capped(t *testing.T) {
	r := NewReranker(vocabulary.Default())
	got := r.Rerank(skillsQuery("go"), []Scored{{Doc: doc(t, "a", "", "Golang"), Hybrid: 0.9}})
	assert.InDelta(t, 1.0, got[0].FinalScore(), 1e-12)
}

func TestRerank_WebSphereCaseInsensitive(t *testing.T) {
	r := NewReranker(vocabulary.Default())
	scored := []Scored{
		{Doc: doc(t, "upper", "", "WEBSPHERE"), Hybrid: 0.5},
		{Doc: doc(t, "ibm", "", "IBM WebSphere 8.5"), Hybrid: 0.4},
		{Doc: doc(t, "other", "", "Tomcat"), Hybrid: 0.9},
	}
	got := r.Rerank(skillsQuery("websphere"), scored)

	assert.Equal(t, []string{"upper", "ibm", "other"}, ids(got))
	for _, id := range []string{"upper", "ibm"} {
		tier, _ := byID(got, id).Tier()
		assert.Equal(t, 1, tier, id)
	}
	assert.Equal(t, []string{"Tomcat"}, byID(got, "other").AdditionalSkills())
}

func TestRerank_NoFalseSubstringMatch(t *testing.T) {
	r := NewReranker(vocabulary.Default())
	got := r.Rerank(skillsQuery("java"), []Scored{{Doc: doc(t, "a", "", "JavaScript"), Hybrid: 0.5}})
	tier, _ := got[0].Tier()
	assert.Equal(t, 5, tier)
	assert.Empty(t, got[0].AdditionalSkills())

	got = r.Rerank(skillsQuery("go"), []Scored{{Doc: doc(t, "b", "", "MongoDB"), Hybrid: 0.5}})
	tier, _ = got[0].Tier()
	assert.Equal(t, 5, tier)
}

func TestRerank_TieBreakByID(t *testing.T) {
	r := NewReranker(vocabulary.Default())
	scored := []Scored{
		{Doc: doc(t, "b", "", "Go"), Hybrid: 0.5},
		{Doc: doc(t, "a", "", "Go"), Hybrid: 0.5},
	}
	got := r.Rerank(skillsQuery("go"), scored)
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestRerank_CappedTierOrderedByHybrid(t *testing.T) {
	r := NewReranker(vocabulary.Default())
	scored := []Scored{
		{Doc: doc(t, "a-weaker", "", "Go"), Hybrid: 0.70},
		{Doc: doc(t, "b-stronger", "", "Go"), Hybrid: 0.95},
	}
	got := r.Rerank(skillsQuery("go"), scored)

	assert.Equal(t, []string{"b-stronger", "a-weaker"}, ids(got))
	for _, c := range got {
		tier, _ := c.Tier()
		assert.Equal(t, 1, tier)
		assert.InDelta(t, 1.0, c.FinalScore(), 1e-12, "both capped at 1.0")
	}
}

func TestQuick(t *testing.T) {
	r := NewReranker(vocabulary.Default())
	docs := []candidate.Document{
		doc(t, "a", "Platform lead", "Python", "AWS"),
		doc(t, "b", "Data analyst", "AWS"),
	}
	got := r.Quick(skillsQuery("python", "aws"), docs)
	assert.InDelta(t, 1.0, got[0].Hybrid, 1e-9)
	assert.InDelta(t, 0.5, got[1].Hybrid, 1e-9)

	text := query.New(query.Params{Terms: []string{"platform", "lead", "remote"}})
	got = r.Quick(text, docs)
	assert.InDelta(t, 2.0/3.0, got[0].Hybrid, 1e-9)
	assert.InDelta(t, 0.0, got[1].Hybrid, 1e-9)
}

func TestMerge_LaterWins(t *testing.T) {
	first := []result.Candidate{
		result.NewCandidate(result.CandidateParams{ID: "a", HybridScore: 0.6, FinalScore: 0.9, Tier: 1}),
		result.NewCandidate(result.CandidateParams{ID: "b", HybridScore: 0.33, FinalScore: 0.5, Tier: 1}),
	}
	second := []result.Candidate{
		result.NewCandidate(result.CandidateParams{ID: "a", HybridScore: 0.07, FinalScore: 0.1, Tier: 1}),
		result.NewCandidate(result.CandidateParams{ID: "c", HybridScore: 0.47, FinalScore: 0.7, Tier: 1}),
	}
	got := Merge(first, second)
	assert.Equal(t, []string{"c", "b", "a"}, ids(got))
	assert.InDelta(t, 0.1, byID(got, "a").FinalScore(), 1e-12)
}

// --- Quality and fallback explanations ---

func TestQuality(t *testing.T) {
	assert.InDelta(t, 0.0, Quality(nil, 10), 1e-12)

	top := result.NewCandidate(result.CandidateParams{ID: "a", FinalScore: 1, Tier: 1})
	assert.InDelta(t, 1.0, Quality([]result.Candidate{top}, 10), 1e-12)

	low := result.NewCandidate(result.CandidateParams{ID: "b", FinalScore: 0.1, Tier: 5})
	assert.InDelta(t, (1.0+0.06)/2, Quality([]result.Candidate{top, low}, 10), 1e-12)
	assert.InDelta(t, 1.0, Quality([]result.Candidate{top, low}, 1), 1e-12)

	untiered := result.NewCandidate(result.CandidateParams{ID: "c", FinalScore: 0.5, HybridScore: 0.5})
	assert.InDelta(t, 0.5, Quality([]result.Candidate{untiered}, 10), 1e-12)
}

func TestFitLevelFor(t *testing.T) {
	assert.Equal(t, result.FitExcellent, FitLevelFor(0.8))
	assert.Equal(t, result.FitStrong, FitLevelFor(0.6))
	assert.Equal(t, result.FitModerate, FitLevelFor(0.45))
	assert.Equal(t, result.FitWeak, FitLevelFor(0.1))
}

func TestExplain(t *testing.T) {
	c := result.NewCandidate(result.CandidateParams{
		ID:               "a",
		Title:            "Backend engineer",
		YearsExperience:  6,
		FinalScore:       0.65,
		Tier:             3,
		MatchedSkills:    []string{"Python"},
		MissingSkills:    []string{"aws"},
		AdditionalSkills: []string{"Django"},
	})
	e := Explain(c)

	assert.Equal(t, result.FitStrong, e.FitLevel)
	assert.Equal(t, result.SourceRules, e.Source)
	assert.InDelta(t, 0.5, e.Confidence, 1e-12)
	assert.Equal(t, "Strong match: 1 of 2 requested skills (Backend engineer)", e.Summary)
	assert.Equal(t, []string{"Has Python", "Related experience with Django", "6 years of experience"}, e.Strengths)
	assert.Equal(t, []string{"No aws listed"}, e.Concerns)
}
