// Package resultcache stores final ranked snapshots per user scope and
// normalized query. Every operation is best-effort: failures are logged and
// read as a miss.
package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talentsearch/internal/db"
	"github.com/kailas-cloud/talentsearch/internal/domain"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/result"
)

var cacheKeyPrefix = domain.KeyPrefix + "results:"

// store is the consumer interface for the redis cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Redis keeps snapshots as JSON strings with a TTL.
type Redis struct {
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// NewRedis creates a redis-backed cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), may be nil.
func NewRedis(s store, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Redis {
	return &Redis{store: s, ttl: ttl, cacheTotal: cacheTotal, logger: logger}
}

// Get returns the cached snapshot, if any.
func (c *Redis) Get(ctx context.Context, scope, query string) ([]result.Candidate, bool) {
	key := Key(scope, query)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read result cache", zap.String("key", key), zap.Error(err))
		}
		inc(c.cacheTotal, "miss")
		return nil, false
	}

	var dtos []candidateDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		c.logger.Warn("Failed to decode result cache", zap.String("key", key), zap.Error(err))
		inc(c.cacheTotal, "miss")
		return nil, false
	}
	inc(c.cacheTotal, "hit")
	return fromDTOs(dtos), true
}

// Put overwrites the snapshot for scope and query.
func (c *Redis) Put(ctx context.Context, scope, query string, cands []result.Candidate) {
	key := Key(scope, query)
	data, err := json.Marshal(toDTOs(cands))
	if err != nil {
		c.logger.Warn("Failed to encode result cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to write result cache", zap.String("key", key), zap.Error(err))
	}
}

// Memory keeps snapshots in a bounded in-process LRU with a TTL.
type Memory struct {
	lru        *expirable.LRU[string, []result.Candidate]
	cacheTotal *prometheus.CounterVec
}

// NewMemory creates an in-process cache holding up to size snapshots.
func NewMemory(size int, ttl time.Duration, cacheTotal *prometheus.CounterVec) *Memory {
	return &Memory{
		lru:        expirable.NewLRU[string, []result.Candidate](max(1, size), nil, ttl),
		cacheTotal: cacheTotal,
	}
}

// Get returns the cached snapshot, if any.
func (c *Memory) Get(_ context.Context, scope, query string) ([]result.Candidate, bool) {
	cands, ok := c.lru.Get(Key(scope, query))
	if !ok {
		inc(c.cacheTotal, "miss")
		return nil, false
	}
	inc(c.cacheTotal, "hit")
	return cands, true
}

// Put overwrites the snapshot for scope and query.
func (c *Memory) Put(_ context.Context, scope, query string, cands []result.Candidate) {
	c.lru.Add(Key(scope, query), fromDTOs(toDTOs(cands)))
}

// Key derives the storage key for a scope and normalized query.
func Key(scope, query string) string {
	h := sha256.Sum256([]byte(scope + "\x00" + query))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func inc(c *prometheus.CounterVec, label string) {
	if c != nil {
		c.WithLabelValues(label).Inc()
	}
}
