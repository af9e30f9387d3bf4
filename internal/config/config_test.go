package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Driver: DriverRedis, Addrs: []string{"localhost:6379"}},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = []string{}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing redis addrs")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "postgres"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}

	expected := `database.driver must be "redis" or "memory", got "postgres"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_MemoryDriver(t *testing.T) {
	tests := []struct {
		name    string
		corpus  string
		wantErr bool
	}{
		{name: "with corpus", corpus: "testdata/corpus.yaml"},
		{name: "without corpus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				HTTP:     HTTPConfig{Port: 8080},
				Database: DatabaseConfig{Driver: DriverMemory},
				Corpus:   CorpusConfig{Path: tt.corpus},
			}

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_Enhancement(t *testing.T) {
	cfg := validConfig()
	cfg.Enhancement = EnhancementConfig{Enabled: true}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for enabled enhancement without model")
	}

	cfg.Enhancement.Model = "gpt-4o-mini"
	cfg.Enhancement.Temperature = 3
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range temperature")
	}

	cfg.Enhancement.Temperature = 0.2
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != DriverRedis {
		t.Errorf("expected Driver=redis, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Search.InstantTimeoutMs != 50 {
		t.Errorf("expected InstantTimeoutMs=50, got %d", cfg.Search.InstantTimeoutMs)
	}
	if cfg.Search.EnhancedTimeoutMs != 200 {
		t.Errorf("expected EnhancedTimeoutMs=200, got %d", cfg.Search.EnhancedTimeoutMs)
	}
	if cfg.Search.IntelligentTimeoutMs != 500 {
		t.Errorf("expected IntelligentTimeoutMs=500, got %d", cfg.Search.IntelligentTimeoutMs)
	}
	if cfg.Search.CandidatePool != 200 {
		t.Errorf("expected CandidatePool=200, got %d", cfg.Search.CandidatePool)
	}
	if cfg.Search.ResultCacheTopN != 50 {
		t.Errorf("expected ResultCacheTopN=50, got %d", cfg.Search.ResultCacheTopN)
	}
	if cfg.Enhancement.Workers != 8 {
		t.Errorf("expected Workers=8, got %d", cfg.Enhancement.Workers)
	}
	if cfg.Index.HNSWM != 16 {
		t.Errorf("expected HNSWM=16, got %d", cfg.Index.HNSWM)
	}
	if cfg.Index.HNSWEFConstruct != 200 {
		t.Errorf("expected HNSWEFConstruct=200, got %d", cfg.Index.HNSWEFConstruct)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{Driver: DriverMemory, ReadinessTimeout: 15},
		Search:   SearchConfig{InstantTimeoutMs: 20, CandidatePool: 50},
		Index:    IndexConfig{HNSWM: 32, HNSWEFConstruct: 400},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("expected Driver=memory, got %q", cfg.Database.Driver)
	}
	if cfg.Search.InstantTimeoutMs != 20 {
		t.Errorf("expected InstantTimeoutMs=20, got %d", cfg.Search.InstantTimeoutMs)
	}
	if cfg.Search.CandidatePool != 50 {
		t.Errorf("expected CandidatePool=50, got %d", cfg.Search.CandidatePool)
	}
	if cfg.Index.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Index.HNSWM)
	}
}

func TestEmbeddingEnabled(t *testing.T) {
	if (EmbeddingConfig{}).Enabled() {
		t.Error("expected embedding disabled without a model")
	}
	if !(EmbeddingConfig{Model: "text-embedding-3-small"}).Enabled() {
		t.Error("expected embedding enabled with a model")
	}
}

func TestDuration(t *testing.T) {
	if got := Duration(250); got != 250*time.Millisecond {
		t.Errorf("Duration(250) = %v", got)
	}
	if got := Seconds(3); got != 3*time.Second {
		t.Errorf("Seconds(3) = %v", got)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TALENTSEARCH_TEST_KEY", "secret")

	got := string(expandEnvVars([]byte("a: ${TALENTSEARCH_TEST_KEY}\nb: ${TALENTSEARCH_TEST_MISSING:-fallback}\nc: ${TALENTSEARCH_TEST_MISSING}")))
	want := "a: secret\nb: fallback\nc: "
	if got != want {
		t.Errorf("expandEnvVars() = %q, want %q", got, want)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	data := strings.Join([]string{
		"http:",
		"  port: ${TALENTSEARCH_TEST_PORT:-9090}",
		"database:",
		"  driver: memory",
		"corpus:",
		"  path: corpus.yaml",
		"search:",
		"  candidate_pool: 120",
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, "config", "unit.yaml"), []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load("unit")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected Port=9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Search.CandidatePool != 120 {
		t.Errorf("expected CandidatePool=120, got %d", cfg.Search.CandidatePool)
	}
	if cfg.Search.InstantTimeoutMs != 50 {
		t.Errorf("expected defaults applied, got InstantTimeoutMs=%d", cfg.Search.InstantTimeoutMs)
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "bad.yaml"), []byte("http:\n  port: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	if _, err := Load("bad"); err == nil {
		t.Fatal("expected error for invalid config")
	}
}
