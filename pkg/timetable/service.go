package timetable

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ezz-ae/entrestate-engine/pkg/hashing"
	"github.com/ezz-ae/entrestate-engine/pkg/metrics"
	"github.com/ezz-ae/entrestate-engine/pkg/models"
)

// Service fronts the materializer with a content-addressed cache.
// The cache key derives from the stable serialization of the spec, so
// identical specs share one entry; concurrent materializations of the
// same spec collapse into a single inventory query via singleflight.
// A nil redis client disables caching without changing behavior.
type Service struct {
	materializer *Materializer
	cache        *redis.Client
	ttl          time.Duration
	group        singleflight.Group
	logger       *zap.Logger
}

// NewService creates the Time Table service. Pass a nil cache client
// to run uncached.
func NewService(m *Materializer, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		materializer: m,
		cache:        cache,
		ttl:          ttl,
		logger:       logger.Named("timetable"),
	}
}

// Materialize returns the Time Table for the spec, from cache when
// possible. Cache failures degrade to a direct materialization.
func (s *Service) Materialize(ctx context.Context, spec models.TableSpec) (*models.TimeTable, error) {
	key, err := cacheKey(spec)
	if err != nil {
		return nil, err
	}

	if table := s.lookup(ctx, key); table != nil {
		return table, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		start := time.Now()
		table, err := s.materializer.Materialize(ctx, spec)
		if err != nil {
			return nil, err
		}
		metrics.MaterializationDuration.
			WithLabelValues(spec.RowGrain.String()).
			Observe(time.Since(start).Seconds())

		s.store(ctx, key, table)
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.TimeTable), nil
}

// Preview materializes the spec and truncates the result. The metadata
// still describes the full set.
func (s *Service) Preview(ctx context.Context, spec models.TableSpec, limit int) (*models.Preview, error) {
	table, err := s.Materialize(ctx, spec)
	if err != nil {
		return nil, err
	}
	return PreviewOf(table, limit), nil
}

func (s *Service) lookup(ctx context.Context, key string) *models.TimeTable {
	if s.cache == nil {
		metrics.CacheRequestsTotal.WithLabelValues("bypass").Inc()
		return nil
	}

	payload, err := s.cache.Get(ctx, key).Bytes()
	switch {
	case err == redis.Nil:
		metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
		return nil
	case err != nil:
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("cache lookup failed", zap.Error(err))
		return nil
	}

	var table models.TimeTable
	if err := json.Unmarshal(payload, &table); err != nil {
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("cache entry undecodable, discarding", zap.String("key", key), zap.Error(err))
		return nil
	}

	metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
	return &table
}

func (s *Service) store(ctx context.Context, key string, table *models.TimeTable) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(table)
	if err != nil {
		s.logger.Warn("cache encode failed", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("cache store failed", zap.Error(err))
	}
}

func cacheKey(spec models.TableSpec) (string, error) {
	specHash, err := hashing.Hash(spec)
	if err != nil {
		return "", fmt.Errorf("hash spec for cache key: %w", err)
	}
	return "timetable:spec:" + specHash, nil
}
