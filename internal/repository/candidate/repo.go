// Package candidate is the redis-backed candidate index: user-scoped hashes
// under one FT index plus a per-scope corpus statistics hash.
package candidate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/talentsearch/internal/db"
	"github.com/kailas-cloud/talentsearch/internal/domain"
	"github.com/kailas-cloud/talentsearch/internal/domain/candidate"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/filter"
)

// maxDFLookups bounds concurrent FT.SEARCH count queries per stats call.
const maxDFLookups = 8

// store is the consumer interface for candidates (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchFiltered(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, q *db.FilterQuery) (int, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Canonicalizer maps profile skills to vocabulary names for tag lookups.
type Canonicalizer interface {
	Canonicalize(skill string) string
}

// Repo implements the candidate index adapter on redis.
type Repo struct {
	store  store
	vocab  Canonicalizer
	logger *zap.Logger
}

// New creates a candidate repository.
func New(s store, vocab Canonicalizer, logger *zap.Logger) *Repo {
	return &Repo{store: s, vocab: vocab, logger: logger}
}

// SearchBySkill returns up to limit candidates whose canonical skill tags
// include any of the skills.
func (r *Repo) SearchBySkill(
	ctx context.Context, scope string, skills []string, filters filter.Expression, limit int,
) ([]candidate.Document, error) {
	if len(skills) == 0 || limit <= 0 {
		return nil, nil
	}
	if len(skills) > filter.MaxConditionsPerGroup {
		skills = skills[:filter.MaxConditionsPerGroup]
	}

	should := make([]filter.Condition, 0, len(skills))
	for _, s := range skills {
		c, err := filter.NewMatch(fieldSkillTags, s)
		if err != nil {
			return nil, fmt.Errorf("skill filter: %w", err)
		}
		should = append(should, c)
	}
	bySkill, err := filter.NewExpression(nil, should, nil)
	if err != nil {
		return nil, fmt.Errorf("skill filter: %w", err)
	}

	base, err := scoped(scope, filters)
	if err != nil {
		return nil, err
	}
	return r.search(ctx, &db.FilterQuery{
		IndexName:    IndexName,
		Filters:      base.And(bySkill),
		Limit:        limit,
		ReturnFields: documentFields,
	})
}

// SearchByText returns up to limit candidates mentioning any term in the field.
func (r *Repo) SearchByText(
	ctx context.Context, scope string, field candidate.TextField, terms []string,
	filters filter.Expression, limit int,
) ([]candidate.Document, error) {
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}
	base, err := scoped(scope, filters)
	if err != nil {
		return nil, err
	}
	return r.search(ctx, &db.FilterQuery{
		IndexName:    IndexName,
		Filters:      base,
		Text:         &db.TextMatch{Field: textField(field), Terms: terms},
		Limit:        limit,
		ReturnFields: documentFields,
	})
}

// GetByIDs loads candidates by id. Unknown ids are skipped.
func (r *Repo) GetByIDs(ctx context.Context, scope string, ids []string) ([]candidate.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = candidateKey(scope, id)
	}
	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("%w: hgetall candidates: %w", domain.ErrIndexUnavailable, err)
	}

	docs := make([]candidate.Document, 0, len(maps))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		d, err := parseHashFields(m)
		if err != nil {
			r.logger.Warn("Skipping malformed candidate", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// SearchByVector returns up to k candidate ids nearest to the vector with
// their cosine similarity in [0,1].
func (r *Repo) SearchByVector(
	ctx context.Context, scope string, vec []float32, filters filter.Expression, k int,
) (map[string]float64, error) {
	if len(vec) == 0 || k <= 0 {
		return nil, nil
	}
	base, err := scoped(scope, filters)
	if err != nil {
		return nil, err
	}
	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName,
		VectorField:  fieldVector,
		Filters:      base,
		Vector:       vec,
		K:            k,
		ReturnFields: []string{fieldID},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: knn: %w", domain.ErrIndexUnavailable, err)
	}
	if res == nil {
		return nil, nil
	}

	prefix := candidateKey(scope, "")
	scores := make(map[string]float64, len(res.Entries))
	for _, e := range res.Entries {
		id := e.Fields[fieldID]
		if id == "" {
			id = strings.TrimPrefix(e.Key, prefix)
		}
		if id == "" {
			continue
		}
		scores[id] = e.Score
	}
	return scores, nil
}

// CorpusStats returns document count and average length for the scope, plus
// per-term document frequencies. A term whose count fails is left unknown.
func (r *Repo) CorpusStats(ctx context.Context, scope string, terms []string) (candidate.Stats, error) {
	count, avgdl, err := r.corpusSize(ctx, scope)
	if err != nil {
		return candidate.Stats{}, err
	}

	base, err := scoped(scope, filter.Expression{})
	if err != nil {
		return candidate.Stats{}, err
	}

	var mu sync.Mutex
	df := make(map[string]int, len(terms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxDFLookups)
	for _, term := range terms {
		g.Go(func() error {
			n, err := r.store.SearchCount(gctx, &db.FilterQuery{
				IndexName: IndexName,
				Filters:   base,
				Text:      &db.TextMatch{Field: fieldSearchable, Terms: []string{term}},
			})
			if err != nil {
				r.logger.Debug("Document frequency unavailable", zap.String("term", term), zap.Error(err))
				return nil
			}
			mu.Lock()
			df[term] = n
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return candidate.NewStats(count, avgdl, df), nil
}

// corpusSize reads the stats hash written at index time, falling back to a
// live count with unknown average length.
func (r *Repo) corpusSize(ctx context.Context, scope string) (int, float64, error) {
	m, err := r.store.HGetAll(ctx, statsKey(scope))
	if err == nil {
		count, _ := strconv.Atoi(m[statsDocCount])
		total, _ := strconv.ParseFloat(m[statsTotalLength], 64)
		if count > 0 {
			return count, total / float64(count), nil
		}
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		return 0, 0, fmt.Errorf("%w: read corpus stats: %w", domain.ErrIndexUnavailable, err)
	}

	base, err := scoped(scope, filter.Expression{})
	if err != nil {
		return 0, 0, err
	}
	n, err := r.store.SearchCount(ctx, &db.FilterQuery{IndexName: IndexName, Filters: base})
	if err != nil {
		return 0, 0, fmt.Errorf("%w: count candidates: %w", domain.ErrIndexUnavailable, err)
	}
	return n, 0, nil
}

func (r *Repo) search(ctx context.Context, q *db.FilterQuery) ([]candidate.Document, error) {
	res, err := r.store.SearchFiltered(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	if res == nil {
		return nil, nil
	}
	docs := make([]candidate.Document, 0, len(res.Entries))
	for _, e := range res.Entries {
		d, err := parseHashFields(e.Fields)
		if err != nil {
			r.logger.Warn("Skipping malformed candidate", zap.String("key", e.Key), zap.Error(err))
			continue
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func scoped(scope string, filters filter.Expression) (filter.Expression, error) {
	owner, err := filter.NewMatch(fieldOwner, scope)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("scope filter: %w", err)
	}
	own, err := filter.NewExpression([]filter.Condition{owner}, nil, nil)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("scope filter: %w", err)
	}
	return own.And(filters), nil
}

func textField(f candidate.TextField) string {
	if f == candidate.FieldHeadline {
		return fieldHeadline
	}
	return fieldSearchable
}
