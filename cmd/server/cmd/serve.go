package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Togather-Foundation/eventos/internal/api"
	"github.com/Togather-Foundation/eventos/internal/api/handlers"
	"github.com/Togather-Foundation/eventos/internal/audit"
	"github.com/Togather-Foundation/eventos/internal/auth"
	"github.com/Togather-Foundation/eventos/internal/config"
	"github.com/Togather-Foundation/eventos/internal/domain/comments"
	"github.com/Togather-Foundation/eventos/internal/domain/events"
	"github.com/Togather-Foundation/eventos/internal/domain/licenses"
	"github.com/Togather-Foundation/eventos/internal/domain/notifications"
	"github.com/Togather-Foundation/eventos/internal/domain/reports"
	"github.com/Togather-Foundation/eventos/internal/domain/rsvps"
	"github.com/Togather-Foundation/eventos/internal/domain/users"
	"github.com/Togather-Foundation/eventos/internal/metrics"
	"github.com/Togather-Foundation/eventos/internal/storage/postgres"
	"github.com/Togather-Foundation/eventos/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout     = 10 * time.Second
	dbCollectorInterval = 15 * time.Second
)

func newServeCommand() *cobra.Command {
	var (
		serverHost string
		serverPort int
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (and --config file if provided)
- Apply migrations when MIGRATE_ON_START is set
- Seed license types when SEED_ON_START is set
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if serverHost != "" {
				cfg.Server.Host = serverHost
			}
			if serverPort != 0 {
				cfg.Server.Port = serverPort
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 5000)")
	return serveCmd
}

// runServer blocks until ctx is cancelled or the listener fails, then drains
// in-flight requests.
func runServer(ctx context.Context, cfg config.Config) error {
	logger := config.NewLogger(cfg.Logging)
	build := buildInfo()
	logger.Info().Str("version", build.Version).Str("environment", cfg.Environment).Msg("starting eventos server")

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, build.Version, cfg.Environment)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	metrics.Init(build.Version, build.GitCommit, build.BuildDate)

	if cfg.Database.MigrateOnStart {
		if err := postgres.MigrateUp(cfg.Database.URL); err != nil {
			return err
		}
		logger.Info().Msg("migrations applied")
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return fmt.Errorf("repository init failed: %w", err)
	}

	dbCollector := metrics.NewDBCollector(pool)
	go dbCollector.Start(ctx, dbCollectorInterval)
	defer dbCollector.Stop()

	deps := newDependencies(cfg, logger, repo, build)
	if cfg.Database.SeedOnStart {
		if _, err := deps.Licenses.Seed(ctx); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(ctx, deps),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func newDependencies(cfg config.Config, logger zerolog.Logger, repo *postgres.Repository, build api.BuildInfo) api.Dependencies {
	return api.Dependencies{
		Config:        cfg,
		Logger:        logger,
		Build:         build,
		Users:         users.NewService(repo.Users(), logger),
		Events:        events.NewService(repo.Events(), logger),
		RSVPs:         rsvps.NewService(repo.RSVPs(), logger),
		Comments:      comments.NewService(repo.Comments(), logger),
		Reports:       reports.NewService(repo.Reports(), logger),
		Licenses:      licenses.NewService(repo.Licenses(), logger),
		Notifications: notifications.NewService(repo.Notifications()),
		Tokens:        auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer),
		Audit:         audit.NewLoggerWithZerolog(logger),
		Checks: map[string]handlers.ReadinessCheck{
			"database":   repo.Ping,
			"migrations": migrationsCheck(repo),
		},
	}
}

type schemaStater interface {
	SchemaState(ctx context.Context) (version int64, dirty bool, err error)
}

// migrationsCheck fails readiness until a clean schema version is applied.
func migrationsCheck(db schemaStater) handlers.ReadinessCheck {
	return func(ctx context.Context) error {
		version, dirty, err := db.SchemaState(ctx)
		if err != nil {
			return err
		}
		if dirty {
			return fmt.Errorf("schema version %d is dirty", version)
		}
		if version == 0 {
			return errors.New("no migrations applied")
		}
		return nil
	}
}
