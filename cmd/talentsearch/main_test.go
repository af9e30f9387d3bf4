package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/talentsearch/internal/config"
	"github.com/kailas-cloud/talentsearch/internal/db"
	"github.com/kailas-cloud/talentsearch/internal/domain"
	logpkg "github.com/kailas-cloud/talentsearch/internal/logger"
	chiTransport "github.com/kailas-cloud/talentsearch/internal/transport/chi"
)

func TestJSONRecoverer(t *testing.T) {
	handler := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/search", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", rr.Code)
	}
	var resp chiTransport.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != chiTransport.ErrorResponseCodeInternalError {
		t.Errorf("code: got %s", resp.Code)
	}
}

func TestWideEventMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	var sawLogger bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawLogger = logpkg.Lookup(r.Context())
		w.WriteHeader(http.StatusAccepted)
	})
	handler := chiMiddleware.RequestID(wideEventMiddleware(zap.New(core))(inner))

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	req.Header.Set(chiTransport.UserScopeHeader, "recruiter-1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !sawLogger {
		t.Error("handler should receive a request logger")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("canonical log lines: got %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusAccepted) {
		t.Errorf("status field: got %v", fields["status"])
	}
	if fields["user_scope"] != "recruiter-1" {
		t.Errorf("user_scope field: got %v", fields["user_scope"])
	}
}

type staticEmbedder struct {
	calls int
	texts []string
}

func (s *staticEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	s.calls++
	s.texts = append(s.texts, text)
	return domain.EmbeddingResult{Embedding: []float32{0.6, 0.8}}, nil
}

type mapKV struct {
	data map[string][]byte
}

func (m *mapKV) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mapKV) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mapKV) Del(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestBuildQueryEmbedder_CachesAndPrefixes(t *testing.T) {
	base := &staticEmbedder{}
	kv := &mapKV{data: make(map[string][]byte)}
	emb := buildQueryEmbedder(base, config.EmbeddingConfig{
		Provider:         "openai",
		Model:            "text-embedding-3-small",
		QueryInstruction: "query: ",
		CacheTTLSec:      60,
	}, kv, zap.NewNop())

	for range 2 {
		res, err := emb.Embed(context.Background(), "python developer")
		if err != nil {
			t.Fatalf("Embed: %v", err)
		}
		if len(res.Embedding) != 2 {
			t.Fatalf("embedding: got %v", res.Embedding)
		}
	}

	if base.calls != 1 {
		t.Errorf("provider calls: got %d, want 1 (second served from cache)", base.calls)
	}
	if base.texts[0] != "query: python developer" {
		t.Errorf("provider text: got %q", base.texts[0])
	}
}
