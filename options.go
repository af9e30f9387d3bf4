package talentsearch

import (
	"time"

	"go.uber.org/zap"
)

const (
	driverMemory = "memory"
	driverRedis  = "redis"

	defaultReadinessTimeout = 10 * time.Second
	defaultCacheSize        = 1024
	defaultCacheTTL         = time.Hour
	defaultStatsCacheSize   = 4096
	defaultStatsCacheTTL    = 5 * time.Minute
	defaultEmbeddingTTL     = 24 * time.Hour
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "memory" or "redis"
	addrs    []string
	password string

	embedder   Embedder
	dimensions int
	openAI     *openAIConfig

	vocabularyPath string

	instantTimeout     time.Duration
	enhancedTimeout    time.Duration
	intelligentTimeout time.Duration
	candidatePool      int
	enhanceWorkers     int

	cacheSize int
	cacheTTL  time.Duration

	hnswM           int
	hnswEFConstruct int

	logger *zap.Logger
}

type openAIConfig struct {
	apiKey           string
	baseURL          string
	embeddingModel   string
	enhancementModel string
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		driver:    driverMemory,
		cacheSize: defaultCacheSize,
		cacheTTL:  defaultCacheTTL,
		logger:    zap.NewNop(),
	}
}

// WithMemory keeps candidates in process. This is the default.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMemory
		c.addrs = nil
	})
}

// WithRedis stores candidates in a Redis 8+ instance with the query engine.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder enables semantic search with a custom embedding function.
// dimensions must match the vectors it returns. Redis mode only.
func WithEmbedder(e Embedder, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
		c.dimensions = dimensions
	})
}

// WithOpenAI enables semantic search through an OpenAI-compatible embedding
// API. An empty baseURL selects the OpenAI default.
func WithOpenAI(apiKey, baseURL, model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		if c.openAI == nil {
			c.openAI = &openAIConfig{}
		}
		c.openAI.apiKey = apiKey
		c.openAI.baseURL = baseURL
		c.openAI.embeddingModel = model
		c.dimensions = dimensions
	})
}

// WithEnhancement enables model-written explanations in the final stage,
// reusing the WithOpenAI credentials. Without it explanations come from rules.
func WithEnhancement(model string) Option {
	return optionFunc(func(c *clientConfig) {
		if c.openAI == nil {
			c.openAI = &openAIConfig{}
		}
		c.openAI.enhancementModel = model
	})
}

// WithVocabularyFile replaces the built-in skill vocabulary.
func WithVocabularyFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.vocabularyPath = path
	})
}

// WithStageTimeouts sets the soft budget of each stage. Zero keeps the default.
func WithStageTimeouts(instant, enhanced, intelligent time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.instantTimeout = instant
		c.enhancedTimeout = enhanced
		c.intelligentTimeout = intelligent
	})
}

// WithCandidatePool caps the documents each retrieval leg fetches.
func WithCandidatePool(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.candidatePool = n
	})
}

// WithEnhanceWorkers sizes the explanation worker pool.
func WithEnhanceWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.enhanceWorkers = n
	})
}

// WithResultCache sizes the final-results cache. size applies to memory mode.
func WithResultCache(size int, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		if size > 0 {
			c.cacheSize = size
		}
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	})
}

// WithHNSW sets vector index build parameters for redis mode.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	})
}
