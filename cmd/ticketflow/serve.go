package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/lborres/ticketflow"
	fiberadapter "github.com/lborres/ticketflow/adapters/fiber"
	"github.com/lborres/ticketflow/config"
	"github.com/lborres/ticketflow/core"
	"github.com/lborres/ticketflow/pkg/ids"
	"github.com/lborres/ticketflow/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the ticketflow HTTP server",
	Long: `Starts the ticketflow HTTP server. Usage:

	ticketflow serve
	ticketflow serve --port 9000
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Port = port
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("port", "", "listen port (overrides PORT)")
}

func serve(ctx context.Context, cfg config.Config) error {
	// config + logger
	l := logger.New(cfg.Env)

	// storage
	storage, closeStorage, err := openStorage(ctx, cfg.Storage, l)
	if err != nil {
		l.Error().Err(err).Str("backend", cfg.Storage.Backend).Msg("storage connect failed")
		return err
	}
	defer closeStorage()

	tf, err := ticketflow.New(ticketflow.Config{
		Storage:      storage,
		DisableCache: cfg.DisableCache,
		Logger:       &l,
		Latency: &ticketflow.LatencyConfig{
			Auth:    cfg.Latency.Auth,
			Tickets: cfg.Latency.Tickets,
		},
		KeyPrefix:       cfg.KeyPrefix,
		DisableDemoData: cfg.DisableDemoData,
		NewID:           newIDFunc(cfg.IDs),
	})
	if err != nil {
		return err
	}
	if err := tf.Bootstrap(ctx); err != nil {
		// Managers that failed to load retry on first use.
		l.Warn().Err(err).Msg("bootstrap incomplete")
	}

	// http
	app := fiber.New(fiber.Config{
		AppName:      "ticketflow",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	app.Use(recover.New())

	if err := fiberadapter.New(app, tf).RegisterRoutes(); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		l.Info().Str("addr", addr).Str("backend", cfg.Storage.Backend).Msg("api listening")
		errc <- app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	// graceful shutdown
	select {
	case err := <-errc:
		l.Error().Err(err).Msg("server error")
		return err
	case <-ctx.Done():
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		l.Error().Err(err).Msg("shutdown failed")
	}
	if stats, ok := tf.CacheStats(); ok {
		l.Info().Int64("hits", stats.Hits).Int64("misses", stats.Misses).Msg("cache stats")
	}
	l.Info().Msg("shutdown complete")
	return nil
}

// newIDFunc returns nil for UUIDs, which ticketflow.New defaults to.
func newIDFunc(scheme string) core.IDFunc {
	if scheme == config.IDsNanoID {
		return ids.Default().Next
	}
	return nil
}
