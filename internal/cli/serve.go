package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/tripnest/backend/internal/auth"
	"github.com/tripnest/backend/internal/blob"
	"github.com/tripnest/backend/internal/changes"
	"github.com/tripnest/backend/internal/config"
	"github.com/tripnest/backend/internal/events"
	"github.com/tripnest/backend/internal/handler"
	"github.com/tripnest/backend/internal/middleware"
	"github.com/tripnest/backend/internal/repo"
	"github.com/tripnest/backend/internal/service"
)

// shutdownGrace is how long in-flight requests get to finish after a
// termination signal.
const shutdownGrace = 15 * time.Second

func addServe(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(os.Stdout, cfg.LogLevel)
			slog.SetDefault(log)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
	topLevel.AddCommand(cmd)
}

// serve wires every dependency and blocks until ctx is cancelled, then
// shuts the server down gracefully.
func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the ping does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	log.Info("database connection established")

	// --- Change feed ------------------------------------------------------
	differ, err := changes.New()
	if err != nil {
		return err
	}
	broker, err := newBroker(cfg, log)
	if err != nil {
		return err
	}

	// --- Services ---------------------------------------------------------
	repos := repo.NewRepos(pool)
	tx := repo.NewTxRunner(pool)
	svcs := handler.Services{
		Trips: service.NewTripService(repos, tx, broker, log,
			service.WithClock(service.Clock{Location: cfg.Location()}),
			service.WithCollation(cfg.Language()),
			service.WithDiffer(differ),
		),
		Itinerary:   service.NewItineraryService(repos, tx),
		Export:      service.NewExportService(repos),
		Chat:        service.NewChatService(repos, tx),
		Marketplace: service.NewMarketplaceService(repos.Marketplace),
		Videos:      service.NewVideoService(repos.Videos, blob.New(cfg.BlobDir), log),
		Profiles:    service.NewProfileService(repos.Profiles),
		Changes:     broker,
	}
	api := handler.NewServer(svcs, log, handler.WithAllowedOrigins(cfg.CORSOrigins))
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: newRouter(api, tokens, cfg, log),
		// No whole-request read or write timeout: uploads, video streams and
		// the change feed are long-lived. Headers must still arrive promptly.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	// Shutdown does not wait for hijacked connections; closing the broker
	// ends every change feed subscription.
	srv.RegisterOnShutdown(func() {
		if err := broker.Close(); err != nil {
			log.Warn("close broker", "err", err)
		}
	})

	errc := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		_ = broker.Close()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// newRouter applies the cross-cutting middleware in order:
// RequestID → RealIP → Logger → Recoverer → CORS, then mounts the API.
func newRouter(api *handler.Server, tokens middleware.TokenVerifier, cfg config.Config, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))

	r.Mount("/", api.Routes(middleware.NewAuthenticator(tokens), handler.Limits{
		Body:   cfg.MaxBodyBytes,
		Upload: cfg.MaxUploadBytes,
	}))
	return r
}

func newBroker(cfg config.Config, log *slog.Logger) (events.Broker, error) {
	if cfg.Broker == config.BrokerRabbitMQ {
		b, err := events.NewRabbitBroker(cfg.RabbitMQURL, log)
		if err != nil {
			return nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		return b, nil
	}
	return events.NewMemoryBroker(log), nil
}
