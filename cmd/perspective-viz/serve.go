package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gilchrisn/perspective-viz/backend/api"
	"github.com/gilchrisn/perspective-viz/backend/service"
	"github.com/gilchrisn/perspective-viz/pkg/config"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve perspective sessions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}
}

// serve runs the HTTP server and the session cleanup until ctx is done
func serve(ctx context.Context, cfg *config.Config) error {
	sessions := service.NewSessionService(cfg)
	handlers := api.NewHandlers(sessions, cfg)

	server := &http.Server{
		Addr: cfg.ServerAddress(),
		Handler: api.NewRouter(handlers, api.RouterOptions{
			AllowedOrigins: cfg.AllowedOrigins(),
			RateLimitRPS:   cfg.RateLimitRPS(),
			RateLimitBurst: cfg.RateLimitBurst(),
		}),
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("address", server.Addr).
			Dur("session_ttl", cfg.SessionTTL()).
			Msg("HTTP server starting")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sessions.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		log.Info().Msg("Server shutdown complete")
		return nil
	})

	return g.Wait()
}
