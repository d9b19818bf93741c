package commands

import (
	"context"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/jakechorley/manpower/internal/config"
	"github.com/jakechorley/manpower/pkg/cache"
	"github.com/jakechorley/manpower/pkg/core/services"
	"github.com/jakechorley/manpower/pkg/db"
	"github.com/jakechorley/manpower/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Database *postgres.DB

	// Metrics is the metrics cache when Redis is configured, otherwise Database
	Metrics db.MetricsProvider
	// MetricsCache and Redis are nil when Redis is not configured
	MetricsCache *cache.MetricsCache
	Redis        *redis.Client

	// Notifier is nil when notifications are disabled
	Notifier services.Notifier

	Logger *zap.Logger
	Ctx    context.Context
}

// Close releases the Redis client and database pool opened by initApp
func (a *AppContext) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil && a.Logger != nil {
			a.Logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	if a.Database != nil {
		a.Database.Close()
	}
}
