package ranking

import "github.com/kailas-cloud/talentsearch/internal/domain/search/result"

var tierQuality = [...]float64{1: 1.0, 2: 0.75, 3: 0.5, 4: 0.25, 5: 0}

// Quality rates a final result list in [0,1]: the mean over the top limit of
// 0.6*final + 0.4*tier quality. Untiered candidates use their hybrid score in
// place of tier quality. Empty lists score 0.
func Quality(cands []result.Candidate, limit int) float64 {
	if limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}
	if len(cands) == 0 {
		return 0
	}
	var sum float64
	for _, c := range cands {
		tq := c.HybridScore()
		if tier, ok := c.Tier(); ok && tier < len(tierQuality) {
			tq = tierQuality[tier]
		}
		sum += 0.6*c.FinalScore() + 0.4*tq
	}
	return clamp01(sum / float64(len(cands)))
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
