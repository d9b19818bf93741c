package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"

	"github.com/jakechorley/manpower/pkg/core/services"
	"github.com/jakechorley/manpower/pkg/httpapi"
)

const (
	notificationQueueSize  = 256
	notificationDrainLimit = time.Minute
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.Cfg.HTTP.Addr
			}

			rate, err := limiter.NewRateFromFormatted(app.Cfg.HTTP.RateLimit)
			if err != nil {
				return fmt.Errorf("invalid rate limit %q: %w", app.Cfg.HTTP.RateLimit, err)
			}

			// Fulfil responses do not wait on the mail provider's send interval
			var notifier services.Notifier
			if app.Notifier != nil {
				queue := services.NewNotificationQueue(app.Notifier, app.Logger, notificationQueueSize)
				defer func() {
					drainCtx, cancel := context.WithTimeout(context.Background(), notificationDrainLimit)
					defer cancel()
					if err := queue.Close(drainCtx); err != nil {
						app.Logger.Warn("Pending notifications were not all sent", zap.Error(err))
					}
				}()
				notifier = queue
			}

			gin.SetMode(gin.ReleaseMode)
			server := httpapi.NewServer(httpapi.Options{
				Store:     app.Database,
				Metrics:   app.Metrics,
				Notifier:  notifier,
				Logger:    app.Logger,
				RateLimit: rate,
				Today:     app.Cfg.Today,
			})

			ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			app.Logger.Info("Starting API server",
				zap.String("addr", addr),
				zap.String("rate_limit", app.Cfg.HTTP.RateLimit))
			fmt.Printf("\nServing on %s (Ctrl+C to stop)\n\n", addr)

			return server.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")

	return cmd
}
