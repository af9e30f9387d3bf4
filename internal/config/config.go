package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the talentsearch API configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Corpus      CorpusConfig      `yaml:"corpus"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Enhancement EnhancementConfig `yaml:"enhancement"`
	Search      SearchConfig      `yaml:"search"`
	Index       IndexConfig       `yaml:"index"`
	Vocabulary  VocabularyConfig  `yaml:"vocabulary"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// Database drivers.
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, memory (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// CorpusConfig points the memory driver at a YAML candidate file.
type CorpusConfig struct {
	Path  string `yaml:"path"`
	Scope string `yaml:"scope"` // overrides the scope written in the file
}

// EmbeddingConfig holds the query/document embedding provider settings.
// Semantic search is disabled when no model is configured.
type EmbeddingConfig struct {
	Provider            string `yaml:"provider"`
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
	CacheTTLSec         int    `yaml:"cache_ttl_sec"`
}

// Enabled reports whether a provider is configured.
func (e EmbeddingConfig) Enabled() bool { return e.Model != "" }

// EnhancementConfig holds the explanation model settings.
type EnhancementConfig struct {
	Enabled     bool    `yaml:"enabled"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
	Workers     int     `yaml:"workers"`
}

// SearchConfig holds pipeline budgets and cache sizing.
type SearchConfig struct {
	InstantTimeoutMs     int `yaml:"instant_timeout_ms"`
	EnhancedTimeoutMs    int `yaml:"enhanced_timeout_ms"`
	IntelligentTimeoutMs int `yaml:"intelligent_timeout_ms"`
	CandidatePool        int `yaml:"candidate_pool"`
	ResultCacheTTLSec    int `yaml:"result_cache_ttl_sec"`
	ResultCacheSize      int `yaml:"result_cache_size"` // memory driver only
	ResultCacheTopN      int `yaml:"result_cache_top_n"`
	StatsCacheTTLSec     int `yaml:"stats_cache_ttl_sec"`
	StatsCacheSize       int `yaml:"stats_cache_size"`
}

// IndexConfig holds HNSW index settings.
type IndexConfig struct {
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
}

// VocabularyConfig optionally replaces the embedded skill vocabulary.
type VocabularyConfig struct {
	Path string `yaml:"path"`
}

// Duration converts a millisecond setting.
func Duration(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }

// Seconds converts a second setting.
func Seconds(sec int) time.Duration { return time.Duration(sec) * time.Second }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.CacheTTLSec <= 0 {
		c.Embedding.CacheTTLSec = 24 * 3600
	}
	if c.Enhancement.Workers <= 0 {
		c.Enhancement.Workers = 8
	}
	if c.Enhancement.MaxTokens <= 0 {
		c.Enhancement.MaxTokens = 300
	}
	if c.Search.InstantTimeoutMs <= 0 {
		c.Search.InstantTimeoutMs = 50
	}
	if c.Search.EnhancedTimeoutMs <= 0 {
		c.Search.EnhancedTimeoutMs = 200
	}
	if c.Search.IntelligentTimeoutMs <= 0 {
		c.Search.IntelligentTimeoutMs = 500
	}
	if c.Search.CandidatePool <= 0 {
		c.Search.CandidatePool = 200
	}
	if c.Search.ResultCacheTTLSec <= 0 {
		c.Search.ResultCacheTTLSec = 3600
	}
	if c.Search.ResultCacheSize <= 0 {
		c.Search.ResultCacheSize = 1024
	}
	if c.Search.ResultCacheTopN <= 0 {
		c.Search.ResultCacheTopN = 50
	}
	if c.Search.StatsCacheTTLSec <= 0 {
		c.Search.StatsCacheTTLSec = 300
	}
	if c.Search.StatsCacheSize <= 0 {
		c.Search.StatsCacheSize = 4096
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return errors.New("database.addrs is required for the redis driver")
		}
	case DriverMemory:
		if c.Corpus.Path == "" {
			return errors.New("corpus.path is required for the memory driver")
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverRedis, DriverMemory, c.Database.Driver)
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	if c.Enhancement.Enabled && c.Enhancement.Model == "" {
		return errors.New("enhancement.model is required when enhancement is enabled")
	}
	if c.Enhancement.Temperature < 0 || c.Enhancement.Temperature > 2 {
		return fmt.Errorf("enhancement.temperature must be between 0 and 2, got %g", c.Enhancement.Temperature)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
