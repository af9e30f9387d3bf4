package talentsearch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/talentsearch/internal/db"
	dbRedis "github.com/kailas-cloud/talentsearch/internal/db/redis"
	"github.com/kailas-cloud/talentsearch/internal/domain"
	"github.com/kailas-cloud/talentsearch/internal/domain/candidate"
	candidaterepo "github.com/kailas-cloud/talentsearch/internal/repository/candidate"
	"github.com/kailas-cloud/talentsearch/internal/repository/embcache"
	"github.com/kailas-cloud/talentsearch/internal/repository/memory"
	"github.com/kailas-cloud/talentsearch/internal/repository/resultcache"
	"github.com/kailas-cloud/talentsearch/internal/repository/statscache"
	"github.com/kailas-cloud/talentsearch/internal/repository/vector"
	openaiTransport "github.com/kailas-cloud/talentsearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/talentsearch/internal/usecase/embedding"
	"github.com/kailas-cloud/talentsearch/internal/usecase/parser"
	searchuc "github.com/kailas-cloud/talentsearch/internal/usecase/search"
	"github.com/kailas-cloud/talentsearch/internal/vocabulary"
)

const openAIProvider = "openai"

// Client is the talentsearch SDK entry point.
type Client struct {
	store       db.Store // nil in memory mode
	memory      *memory.Index
	repo        *candidaterepo.Repo
	docEmbedder domain.Embedder // nil without semantic search
	search      *searchuc.Service
	cfg         *clientConfig
}

// New creates a Client. In redis mode it waits for the database before
// returning.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.embedder != nil && cfg.openAI != nil && cfg.openAI.embeddingModel != "" {
		return nil, errors.New("talentsearch: WithEmbedder and WithOpenAI are mutually exclusive")
	}
	if cfg.openAI != nil && cfg.openAI.apiKey == "" && cfg.openAI.baseURL == "" {
		return nil, errors.New("talentsearch: OpenAI api key or base url required (use WithOpenAI)")
	}

	vocab := vocabulary.Default()
	if cfg.vocabularyPath != "" {
		v, err := vocabulary.Load(cfg.vocabularyPath)
		if err != nil {
			return nil, fmt.Errorf("talentsearch: %w", err)
		}
		vocab = v
	}

	c := &Client{cfg: cfg}
	deps := searchuc.Deps{
		Parser:     parser.New(vocab),
		Vector:     vector.Noop{},
		Vocabulary: vocab,
		Logger:     cfg.logger,
	}

	switch cfg.driver {
	case driverMemory:
		c.memory = memory.New(vocab)
		deps.Index = c.memory
		deps.Stats = c.memory
		deps.Cache = resultcache.NewMemory(cfg.cacheSize, cfg.cacheTTL, nil)
	case driverRedis:
		store, err := createStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		c.store = store
		c.repo = candidaterepo.New(store, vocab, cfg.logger)
		deps.Index = c.repo
		deps.Stats = statscache.New(c.repo, defaultStatsCacheSize, defaultStatsCacheTTL)
		deps.Cache = resultcache.NewRedis(store, cfg.cacheTTL, nil, cfg.logger)

		queryEmb, docEmb := buildEmbedders(cfg, store)
		if queryEmb != nil && cfg.dimensions <= 0 {
			store.Close()
			return nil, errors.New("talentsearch: vector dimensions required for semantic search")
		}
		if queryEmb != nil {
			deps.Vector = vector.New(queryEmb, c.repo)
			c.docEmbedder = docEmb
		}
	default:
		return nil, fmt.Errorf("talentsearch: unknown driver %q", cfg.driver)
	}

	if cfg.openAI != nil && cfg.openAI.enhancementModel != "" {
		deps.Enhancer = openaiTransport.NewExplainer(&openaiTransport.ExplainerConfig{
			APIKey:  cfg.openAI.apiKey,
			BaseURL: cfg.openAI.baseURL,
			Model:   cfg.openAI.enhancementModel,
			Logger:  cfg.logger,
		})
	}

	svc, err := searchuc.New(deps, searchuc.Config{
		InstantTimeout:     cfg.instantTimeout,
		EnhancedTimeout:    cfg.enhancedTimeout,
		IntelligentTimeout: cfg.intelligentTimeout,
		CandidatePool:      cfg.candidatePool,
		EnhanceWorkers:     cfg.enhanceWorkers,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("talentsearch: %w", err)
	}
	c.search = svc
	return c, nil
}

func createStore(ctx context.Context, cfg *clientConfig) (db.Store, error) {
	if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
		return nil, errors.New("talentsearch: redis address required")
	}
	s, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("talentsearch: create redis store: %w", err)
	}
	if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		s.Close()
		return nil, fmt.Errorf("talentsearch: database not ready: %w", err)
	}
	return s, nil
}

// buildEmbedders returns the query and document embedders, or nils when
// semantic search is off. Queries go through the redis embedding cache.
func buildEmbedders(cfg *clientConfig, store db.KVStore) (query, document domain.Embedder) {
	var (
		base  domain.Embedder
		model string
	)
	switch {
	case cfg.embedder != nil:
		base = &embedderAdapter{inner: cfg.embedder}
		model = "custom"
	case cfg.openAI != nil && cfg.openAI.embeddingModel != "":
		base = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.openAI.apiKey,
			BaseURL:    cfg.openAI.baseURL,
			Model:      cfg.openAI.embeddingModel,
			Dimensions: cfg.dimensions,
			Provider:   openAIProvider,
			Logger:     cfg.logger,
		})
		model = cfg.openAI.embeddingModel
	default:
		return nil, nil
	}

	document = embeddinguc.NewInstrumentedEmbedder(base, openAIProvider, model, 0, cfg.logger)
	query = embcache.New(document, store, model, defaultEmbeddingTTL, nil, cfg.logger)
	return query, document
}

// Close releases the worker pool and the database connection.
func (c *Client) Close() {
	if c.search != nil {
		c.search.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity. Always nil in memory mode.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("talentsearch: %w", err)
	}
	return nil
}

// Index adds or replaces candidates owned by scope. In redis mode it creates
// the index on first use and embeds profiles when semantic search is on;
// cands must then be the scope's full corpus, since corpus statistics are
// rewritten from them.
func (c *Client) Index(ctx context.Context, scope string, cands []Candidate) error {
	if scope == "" {
		return errors.New("talentsearch: scope is required")
	}
	docs := make([]candidate.Document, len(cands))
	for i := range cands {
		d, err := toDocument(&cands[i])
		if err != nil {
			return fmt.Errorf("talentsearch: %w", err)
		}
		docs[i] = d
	}

	if c.memory != nil {
		c.memory.Add(scope, docs...)
		return nil
	}
	return c.indexRedis(ctx, scope, docs)
}

func (c *Client) indexRedis(ctx context.Context, scope string, docs []candidate.Document) error {
	var dims int
	if c.docEmbedder != nil {
		dims = c.cfg.dimensions
	}
	hnsw := candidaterepo.HNSWConfig{M: c.cfg.hnswM, EFConstruct: c.cfg.hnswEFConstruct}
	if err := c.repo.EnsureIndex(ctx, dims, hnsw); err != nil {
		return fmt.Errorf("talentsearch: %w", err)
	}

	var vectors [][]float32
	if c.docEmbedder != nil && len(docs) > 0 {
		texts := make([]string, len(docs))
		for i := range docs {
			texts[i] = docs[i].EmbeddingText()
		}
		res, err := embedAll(ctx, c.docEmbedder, texts)
		if err != nil {
			return fmt.Errorf("talentsearch: embed candidates: %w", err)
		}
		vectors = res.Embeddings
	}

	if err := c.repo.Upsert(ctx, scope, docs, vectors); err != nil {
		return fmt.Errorf("talentsearch: %w", err)
	}
	if err := c.repo.WriteStats(ctx, scope, docs); err != nil {
		return fmt.Errorf("talentsearch: %w", err)
	}
	c.cfg.logger.Info("Candidates indexed", zap.String("scope", scope), zap.Int("count", len(docs)))
	return nil
}

func embedAll(ctx context.Context, e domain.Embedder, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := e.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts)
	}
	return domain.BatchFallback(ctx, e, texts)
}

// Search validates params and starts a progressive search. Read the stream
// to the end or Close it.
func (c *Client) Search(ctx context.Context, params SearchParams) (*Stream, error) {
	req, err := toRequest(&params)
	if err != nil {
		return nil, err
	}
	return &Stream{inner: c.search.Stream(ctx, &req)}, nil
}
