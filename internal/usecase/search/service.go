// Package search runs the progressive candidate search: an instant
// skill-match pass, a hybrid BM25 and vector pass, and an explained final
// pass, delivered in order as a lazy sequence.
package search

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talentsearch/internal/domain/query"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/request"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/result"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/stage"
	"github.com/kailas-cloud/talentsearch/internal/logger"
	"github.com/kailas-cloud/talentsearch/internal/metrics"
	"github.com/kailas-cloud/talentsearch/internal/usecase/ranking"
)

// Default stage budgets and sizes.
const (
	DefaultInstantTimeout     = 50 * time.Millisecond
	DefaultEnhancedTimeout    = 200 * time.Millisecond
	DefaultIntelligentTimeout = 500 * time.Millisecond
	DefaultCandidatePool      = 200
	DefaultEnhanceWorkers     = 8
	DefaultCacheTopN          = request.MaxLimit
)

// Config tunes the pipeline. Zero values select the defaults.
type Config struct {
	InstantTimeout     time.Duration
	EnhancedTimeout    time.Duration
	IntelligentTimeout time.Duration
	// CandidatePool caps the documents fetched per retrieval leg in stage 2.
	CandidatePool int
	// EnhanceWorkers sizes the shared explanation worker pool.
	EnhanceWorkers int
	// CacheTopN is the length of the cached snapshot. Values below
	// request.MaxLimit are raised so any limit can be served from a hit.
	CacheTopN int
}

func (c *Config) applyDefaults() {
	if c.InstantTimeout <= 0 {
		c.InstantTimeout = DefaultInstantTimeout
	}
	if c.EnhancedTimeout <= 0 {
		c.EnhancedTimeout = DefaultEnhancedTimeout
	}
	if c.IntelligentTimeout <= 0 {
		c.IntelligentTimeout = DefaultIntelligentTimeout
	}
	if c.CandidatePool <= 0 {
		c.CandidatePool = DefaultCandidatePool
	}
	if c.EnhanceWorkers <= 0 {
		c.EnhanceWorkers = DefaultEnhanceWorkers
	}
	if c.CacheTopN < DefaultCacheTopN {
		c.CacheTopN = DefaultCacheTopN
	}
}

// Deps are the collaborators of the pipeline. Vector, Enhancer and Cache are
// optional.
type Deps struct {
	Parser     Parser
	Index      CandidateIndex
	Stats      StatsSource
	Vector     VectorSearcher
	Enhancer   Enhancer
	Cache      ResultCache
	Vocabulary ranking.Vocabulary
	Logger     *zap.Logger
}

// Service orchestrates progressive searches. Safe for concurrent use.
type Service struct {
	parser   Parser
	index    CandidateIndex
	stats    StatsSource
	vector   VectorSearcher
	enhancer Enhancer
	cache    ResultCache
	vocab    ranking.Vocabulary
	reranker *ranking.Reranker
	pool     *ants.Pool
	cfg      Config
	logger   *zap.Logger
}

// New creates a search service. Call Close to release the worker pool.
func New(deps Deps, cfg Config) (*Service, error) {
	if deps.Parser == nil || deps.Index == nil || deps.Stats == nil || deps.Vocabulary == nil {
		return nil, errors.New("search: parser, index, stats and vocabulary are required")
	}
	cfg.applyDefaults()

	pool, err := ants.NewPool(cfg.EnhanceWorkers, ants.WithMaxBlockingTasks(cfg.EnhanceWorkers*request.MaxLimit))
	if err != nil {
		return nil, fmt.Errorf("create enhancement pool: %w", err)
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		parser:   deps.Parser,
		index:    deps.Index,
		stats:    deps.Stats,
		vector:   deps.Vector,
		enhancer: deps.Enhancer,
		cache:    deps.Cache,
		vocab:    deps.Vocabulary,
		reranker: ranking.NewReranker(deps.Vocabulary),
		pool:     pool,
		cfg:      cfg,
		logger:   log,
	}, nil
}

// Close releases the enhancement worker pool.
func (s *Service) Close() {
	s.pool.Release()
}

// run is the state of one search invocation.
type run struct {
	id       string
	req      *request.Request
	parsed   query.Parsed
	start    time.Time
	degraded stage.Degraded
	log      *zap.Logger
	// snapshot is the enhanced ranking cut to CacheTopN, cached after stage 3.
	snapshot []result.Candidate
}

// Search returns the lazy, ordered sequence of stage results for a validated
// request. Each stage runs only when the consumer asks for it; breaking out
// of the loop or cancelling ctx stops the pipeline, and no stage is repeated.
func (s *Service) Search(ctx context.Context, req *request.Request) iter.Seq[stage.Result] {
	return func(yield func(stage.Result) bool) {
		id := uuid.NewString()
		base := ctx
		if _, ok := logger.Lookup(base); !ok {
			base = logger.ContextWithLogger(base, s.logger)
		}
		ctx := logger.With(base,
			zap.String("search_id", id),
			zap.String("user_scope", req.UserScope()),
		)
		r := &run{
			id:     id,
			req:    req,
			parsed: s.parser.Parse(req.Query()),
			start:  time.Now(),
			log:    logger.FromContext(ctx),
		}
		if corrected, ok := r.parsed.Corrected(); ok {
			r.log.Debug("Query corrected", zap.String("corrected", corrected))
		}

		instant := s.instant(ctx, r)
		if !s.emit(ctx, r, instant, yield) {
			return
		}
		enhanced := s.enhanced(ctx, r, instant.Results)
		if !s.emit(ctx, r, enhanced, yield) {
			return
		}
		final := s.intelligent(ctx, r, enhanced.Results)
		if !s.emit(ctx, r, final, yield) {
			return
		}
		metrics.SearchesTotal.WithLabelValues("completed").Inc()
	}
}

// emit hands a stage to the consumer unless the search was cancelled.
func (s *Service) emit(ctx context.Context, r *run, res stage.Result, yield func(stage.Result) bool) bool {
	if ctx.Err() != nil {
		s.cancelled(r, res.Stage)
		return false
	}
	metrics.StageDuration.WithLabelValues(string(res.Stage)).Observe(res.Elapsed.Seconds())
	r.log.Debug("Stage ready",
		zap.String("stage", string(res.Stage)),
		zap.Int("results", len(res.Results)),
		zap.Duration("elapsed", res.Elapsed),
		zap.Bool("cache_hit", res.CacheHit),
	)
	if !yield(res) {
		s.cancelled(r, res.Stage)
		return false
	}
	return true
}

func (s *Service) cancelled(r *run, at stage.Stage) {
	metrics.SearchesTotal.WithLabelValues("cancelled").Inc()
	r.log.Debug("Search cancelled by consumer", zap.String("stage", string(at)))
}

func (s *Service) result(r *run, st stage.Stage, res stage.Result) stage.Result {
	res.SearchID = r.id
	res.Stage = st
	res.Elapsed = time.Since(r.start)
	res.Degraded = r.degraded
	return res
}
