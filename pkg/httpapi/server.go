package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"

	"github.com/jakechorley/manpower/pkg/core/services"
	"github.com/jakechorley/manpower/pkg/db"
)

const shutdownTimeout = 10 * time.Second

// Options configures the API server
type Options struct {
	Store db.Database

	// Metrics defaults to Store when nil
	Metrics db.MetricsProvider

	// Notifier may be nil to disable schedule notifications
	Notifier services.Notifier

	Logger    *zap.Logger
	RateLimit limiter.Rate

	// Today returns the reference date used when a request omits one
	Today func() time.Time
}

// Server exposes the manpower operations as a JSON API
type Server struct {
	store    db.Database
	metrics  db.MetricsProvider
	notifier services.Notifier
	logger   *zap.Logger
	today    func() time.Time
	router   *gin.Engine
}

// NewServer builds the router and registers every route
func NewServer(opts Options) *Server {
	s := &Server{
		store:    opts.Store,
		metrics:  opts.Metrics,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		today:    opts.Today,
	}
	if s.metrics == nil {
		s.metrics = opts.Store
	}
	if s.today == nil {
		s.today = func() time.Time { return time.Now().UTC() }
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.healthz)

	api := r.Group("/api/v1")
	if opts.RateLimit.Limit > 0 {
		api.Use(RateLimit(opts.RateLimit))
	}
	{
		requests := api.Group("/requests")
		requests.POST("", s.createRequest)
		requests.GET("/:id/candidates", s.rankCandidates)
		requests.POST("/:id/fulfill", s.fulfillRequest)
		requests.POST("/:id/reject", s.rejectRequest)

		schedules := api.Group("/schedules")
		schedules.POST("/:id/accept", s.acceptSchedule)
		schedules.POST("/:id/reject", s.rejectSchedule)

		permits := api.Group("/permits")
		permits.POST("", s.filePermit)
		permits.POST("/:id/approve", s.approvePermit)
		permits.POST("/:id/reject", s.rejectPermit)
		permits.POST("/:id/cancel", s.cancelPermit)
	}

	s.router = r
	return s
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves the API on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down api server: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
