package search

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/talentsearch/internal/domain/candidate"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/result"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/stage"
	"github.com/kailas-cloud/talentsearch/internal/metrics"
	"github.com/kailas-cloud/talentsearch/internal/usecase/ranking"
)

// instant serves the cached snapshot or a skill-match pass over a small pool.
func (s *Service) instant(ctx context.Context, r *run) stage.Result {
	scope, limit := r.req.UserScope(), r.req.Limit()

	sctx, cancel := context.WithTimeout(ctx, s.cfg.InstantTimeout)
	defer cancel()

	if s.cache != nil {
		if cached, ok := s.cache.Get(sctx, scope, r.req.NormalizedQuery()); ok {
			return s.result(r, stage.Instant, stage.Result{Results: top(cached, limit), CacheHit: true})
		}
	}

	var (
		docs []candidate.Document
		err  error
	)
	if skills := r.parsed.Skills(); len(skills) > 0 {
		docs, err = s.index.SearchBySkill(sctx, scope, skills, r.req.Filters(), limit*2)
	} else {
		docs, err = s.index.SearchByText(sctx, scope, candidate.FieldHeadline, r.parsed.Terms(), r.req.Filters(), limit*2)
	}
	if err != nil {
		s.partial(ctx, r, stage.Instant, err)
	}

	ranked := s.reranker.Rerank(r.parsed, s.reranker.Quick(r.parsed, docs))
	return s.result(r, stage.Instant, stage.Result{Results: top(ranked, limit)})
}

// enhanced runs BM25 and vector retrieval concurrently, blends, reranks and
// merges with the instant results.
func (s *Service) enhanced(ctx context.Context, r *run, prev []result.Candidate) stage.Result {
	scope, filters := r.req.UserScope(), r.req.Filters()
	pool := s.cfg.CandidatePool

	sctx, cancel := context.WithTimeout(ctx, s.cfg.EnhancedTimeout)
	defer cancel()

	terms := ranking.KeywordTerms(r.parsed, s.vocab)

	var (
		docs      []candidate.Document
		keyword   map[string]float64
		vector    map[string]float64
		vectorOK  bool
		lexicalEr error
	)

	var g errgroup.Group
	g.Go(func() error {
		docs, keyword, lexicalEr = s.lexical(sctx, r, terms)
		return nil
	})
	g.Go(func() error {
		if s.vector == nil {
			return nil
		}
		vector, vectorOK = s.vector.Similar(sctx, s.embeddingText(r), scope, filters, pool)
		return nil
	})
	_ = g.Wait()

	if lexicalEr != nil {
		s.partial(ctx, r, stage.Enhanced, lexicalEr)
	}
	if !vectorOK && !r.degraded.VectorUnavailable {
		r.degraded.VectorUnavailable = true
		metrics.DegradedTotal.WithLabelValues("vector").Inc()
	}

	docs = s.withVectorHits(sctx, r, docs, vector)

	ranked := s.reranker.Rerank(r.parsed, ranking.Combine(docs, keyword, vector, r.parsed.Type()))
	merged := ranking.Merge(prev, ranked)
	r.snapshot = slices.Clone(top(merged, s.cfg.CacheTopN))
	return s.result(r, stage.Enhanced, stage.Result{Results: top(merged, 2*r.req.Limit())})
}

// lexical gathers the candidate pool (skill tags and full-text matches) and
// scores it with BM25 against corpus statistics.
func (s *Service) lexical(
	ctx context.Context, r *run, terms []string,
) ([]candidate.Document, map[string]float64, error) {
	scope, filters, pool := r.req.UserScope(), r.req.Filters(), s.cfg.CandidatePool

	var errs []error
	bySkill, err := s.index.SearchBySkill(ctx, scope, r.parsed.Skills(), filters, pool)
	if err != nil {
		errs = append(errs, err)
	}
	byText, err := s.index.SearchByText(ctx, scope, candidate.FieldSearchable, terms, filters, pool)
	if err != nil {
		errs = append(errs, err)
	}
	docs := union(bySkill, byText)

	stats, err := s.stats.CorpusStats(ctx, scope, terms)
	if err != nil {
		errs = append(errs, err)
		stats = candidate.NewStats(len(docs), 0, nil)
	}
	return docs, ranking.BM25(docs, terms, stats), errors.Join(errs...)
}

// withVectorHits loads documents that only the vector leg found.
func (s *Service) withVectorHits(
	ctx context.Context, r *run, docs []candidate.Document, vector map[string]float64,
) []candidate.Document {
	if len(vector) == 0 {
		return docs
	}
	have := make(map[string]bool, len(docs))
	for i := range docs {
		have[docs[i].ID()] = true
	}
	var missing []string
	for id := range vector {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return docs
	}
	slices.Sort(missing)

	extra, err := s.index.GetByIDs(ctx, r.req.UserScope(), missing)
	if err != nil {
		s.partial(ctx, r, stage.Enhanced, err)
		return docs
	}
	return append(docs, extra...)
}

// embeddingText prefers the typo-corrected query for the semantic leg.
func (s *Service) embeddingText(r *run) string {
	if corrected, ok := r.parsed.Corrected(); ok {
		return corrected
	}
	return r.parsed.Original()
}

// intelligent explains the top results, scores overall quality and stores the
// snapshot for later instant hits. The snapshot is the enhanced ranking cut to
// CacheTopN, independent of the request limit, with the explained results
// overlaid.
func (s *Service) intelligent(ctx context.Context, r *run, prev []result.Candidate) stage.Result {
	limit := r.req.Limit()
	final := s.explain(ctx, r, top(prev, limit))

	quality := ranking.Quality(final, limit)
	if s.cache != nil && ctx.Err() == nil {
		if r.degraded.Partial {
			r.log.Debug("Skipping cache write for partial results")
		} else {
			snapshot := top(ranking.Merge(r.snapshot, final), s.cfg.CacheTopN)
			s.cache.Put(ctx, r.req.UserScope(), r.req.NormalizedQuery(), snapshot)
		}
	}

	return s.result(r, stage.Intelligent, stage.Result{
		Results:      final,
		IsFinal:      true,
		QualityScore: &quality,
	})
}

// explain attaches an explanation to every candidate, fanning out to the
// enhancer on the worker pool and falling back to rules per candidate.
func (s *Service) explain(ctx context.Context, r *run, cands []result.Candidate) []result.Candidate {
	out := make([]result.Candidate, len(cands))
	if s.enhancer == nil {
		for i, c := range cands {
			out[i] = c.WithExplanation(ranking.Explain(c))
		}
		return out
	}

	sctx, cancel := context.WithTimeout(ctx, s.cfg.IntelligentTimeout)
	defer cancel()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		fallbacks int
	)
	for i, c := range cands {
		task := func() {
			exp, ok := s.enhance(sctx, r, c, i+1)
			if !ok {
				mu.Lock()
				fallbacks++
				mu.Unlock()
			}
			out[i] = c.WithExplanation(exp)
		}
		wg.Add(1)
		if err := s.pool.Submit(func() { defer wg.Done(); task() }); err != nil {
			r.log.Debug("Enhancement pool saturated", zap.Error(err))
			wg.Done()
			out[i] = c.WithExplanation(ranking.Explain(c))
			metrics.EnhancementRequestsTotal.WithLabelValues("fallback").Inc()
			mu.Lock()
			fallbacks++
			mu.Unlock()
		}
	}
	wg.Wait()

	if fallbacks > 0 && !r.degraded.EnhancementUnavailable {
		r.degraded.EnhancementUnavailable = true
		metrics.DegradedTotal.WithLabelValues("enhancement").Inc()
		if ctx.Err() == nil {
			r.log.Warn("Explanations fell back to rules",
				zap.Int("fallbacks", fallbacks), zap.Int("candidates", len(cands)))
		}
	}
	return out
}

func (s *Service) enhance(ctx context.Context, r *run, c result.Candidate, rank int) (result.Explanation, bool) {
	exp, err := s.enhancer.Explain(ctx, c, &r.parsed, rank)
	if err == nil {
		metrics.EnhancementRequestsTotal.WithLabelValues("success").Inc()
		return exp, true
	}
	metrics.EnhancementRequestsTotal.WithLabelValues("error").Inc()
	r.log.Debug("Explanation unavailable", zap.String("candidate_id", c.ID()), zap.Error(err))
	return ranking.Explain(c), false
}

// partial records that a stage ran on incomplete data. Errors caused by the
// consumer leaving are not logged.
func (s *Service) partial(ctx context.Context, r *run, at stage.Stage, err error) {
	if ctx.Err() != nil {
		return
	}
	if !r.degraded.Partial {
		metrics.DegradedTotal.WithLabelValues("index").Inc()
	}
	r.degraded.Partial = true
	r.log.Warn("Stage proceeding with partial candidates", zap.String("stage", string(at)), zap.Error(err))
}

func union(a, b []candidate.Document) []candidate.Document {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]candidate.Document, 0, len(a)+len(b))
	for _, list := range [][]candidate.Document{a, b} {
		for i := range list {
			if seen[list[i].ID()] {
				continue
			}
			seen[list[i].ID()] = true
			out = append(out, list[i])
		}
	}
	return out
}

func top(cands []result.Candidate, n int) []result.Candidate {
	if len(cands) > n {
		return cands[:n]
	}
	return cands
}
