package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/db"
)

const metricsKeyPrefix = "manpower:metrics:"

// redisClient is the subset of *redis.Client used by the cache
type redisClient interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type cachedMetrics struct {
	WorkloadPoints  decimal.Decimal `json:"workloadPoints"`
	BlindTestPoints decimal.Decimal `json:"blindTestPoints"`
	AverageRating   decimal.Decimal `json:"averageRating"`
}

// MetricsCache is a read-through Redis cache in front of a db.MetricsProvider.
// Redis failures are logged and fall back to the underlying provider.
type MetricsCache struct {
	client redisClient
	next   db.MetricsProvider
	ttl    time.Duration
	logger *zap.Logger
}

var _ db.MetricsProvider = (*MetricsCache)(nil)

// NewMetricsCache wraps next with a cache whose entries expire after ttl
func NewMetricsCache(client redisClient, next db.MetricsProvider, ttl time.Duration, logger *zap.Logger) *MetricsCache {
	return &MetricsCache{client: client, next: next, ttl: ttl, logger: logger}
}

func metricsKey(employeeID int64) string {
	return metricsKeyPrefix + strconv.FormatInt(employeeID, 10)
}

// GetMetrics returns cached metrics where present and loads the rest from the
// underlying provider, caching what it finds
func (c *MetricsCache) GetMetrics(ctx context.Context, employeeIDs []int64) (map[int64]model.EmployeeMetrics, error) {
	result := make(map[int64]model.EmployeeMetrics, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return result, nil
	}

	keys := make([]string, len(employeeIDs))
	for i, id := range employeeIDs {
		keys[i] = metricsKey(id)
	}

	misses := employeeIDs
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("Metrics cache read failed, loading from store", zap.Error(err))
	} else {
		misses = c.collectHits(employeeIDs, values, result)
	}

	c.logger.Debug("Metrics cache lookup",
		zap.Int("requested", len(employeeIDs)),
		zap.Int("hits", len(result)),
		zap.Int("misses", len(misses)))

	if len(misses) == 0 {
		return result, nil
	}

	loaded, err := c.next.GetMetrics(ctx, misses)
	if err != nil {
		return nil, fmt.Errorf("failed to load metrics: %w", err)
	}

	for id, m := range loaded {
		result[id] = m
		c.store(ctx, id, m)
	}

	return result, nil
}

// collectHits decodes cached values into result and returns the IDs that
// were missing or unreadable
func (c *MetricsCache) collectHits(employeeIDs []int64, values []interface{}, result map[int64]model.EmployeeMetrics) []int64 {
	var misses []int64
	for i, id := range employeeIDs {
		raw, ok := values[i].(string)
		if !ok {
			misses = append(misses, id)
			continue
		}

		var cached cachedMetrics
		if err := json.Unmarshal([]byte(raw), &cached); err != nil {
			c.logger.Warn("Discarding unreadable metrics cache entry",
				zap.Int64("employee_id", id),
				zap.Error(err))
			misses = append(misses, id)
			continue
		}

		result[id] = model.EmployeeMetrics{
			WorkloadPoints:  cached.WorkloadPoints,
			BlindTestPoints: cached.BlindTestPoints,
			AverageRating:   cached.AverageRating,
		}
	}
	return misses
}

func (c *MetricsCache) store(ctx context.Context, employeeID int64, m model.EmployeeMetrics) {
	payload, err := json.Marshal(cachedMetrics{
		WorkloadPoints:  m.WorkloadPoints,
		BlindTestPoints: m.BlindTestPoints,
		AverageRating:   m.AverageRating,
	})
	if err != nil {
		c.logger.Warn("Failed to encode metrics for cache", zap.Int64("employee_id", employeeID), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, metricsKey(employeeID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write metrics cache entry", zap.Int64("employee_id", employeeID), zap.Error(err))
	}
}

// Invalidate drops the cached metrics for the given employees
func (c *MetricsCache) Invalidate(ctx context.Context, employeeIDs ...int64) error {
	if len(employeeIDs) == 0 {
		return nil
	}

	keys := make([]string, len(employeeIDs))
	for i, id := range employeeIDs {
		keys[i] = metricsKey(id)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate metrics cache: %w", err)
	}
	return nil
}
