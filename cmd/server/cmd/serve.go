package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/RafexStrike/eventment-server/internal/api"
	"github.com/RafexStrike/eventment-server/internal/auth"
	"github.com/RafexStrike/eventment-server/internal/config"
	"github.com/RafexStrike/eventment-server/internal/metrics"
	"github.com/RafexStrike/eventment-server/internal/storage/mongodb"
	"github.com/RafexStrike/eventment-server/internal/telemetry"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// serveOptions override config values from flags.
type serveOptions struct {
	host string
	port int
}

func newServeCommand() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Eventment HTTP server",
		Long: `Start the HTTP server and begin accepting API requests.

The server will:
- Load a .env file when present, then the --config file and environment
- Connect to MongoDB and ensure indexes (unless MONGODB_ENSURE_INDEXES=false)
- Verify bearer tokens with Firebase (or HS256 JWTs when AUTH_PROVIDER=jwt)
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with configuration from the environment
  server serve

  # Start on a specific port with debug logging
  server serve --port 3001 --log-level debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.host, "host", "", "server host address (default: 0.0.0.0)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "server port (default: 3001)")
	return cmd
}

func runServer(ctx context.Context, opts serveOptions) error {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().
		Str("version", Version).
		Str("environment", cfg.Environment).
		Msg("starting eventment server")

	metrics.Init(Version, GitCommit, BuildDate)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing init failed: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	client, repo, err := openStore(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Error().Err(err).Msg("mongodb disconnect error")
		}
	}()
	logger.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	if cfg.Mongo.EnsureIndexesOnBoot {
		names, err := repo.EnsureIndexes(ctx)
		if err != nil {
			// Serving without indexes is slower, and join races go unguarded.
			logger.Warn().Err(err).Msg("ensure indexes failed")
		} else {
			logger.Info().Strs("indexes", names).Msg("indexes ensured")
		}
	}

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return fmt.Errorf("auth init failed: %w", err)
	}
	logger.Info().Str("provider", cfg.Auth.Provider).Msg("token verifier ready")

	server := &http.Server{
		Addr: net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler: api.NewRouter(cfg, logger, api.Dependencies{
			Store:     repo,
			Verifier:  verifier,
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
		}),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return serve(ctx, server, logger)
}

// serve runs server until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, server *http.Server, logger zerolog.Logger) error {
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
		logger.Info().Msg("server stopped")
		return nil
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongodb.Repository, error) {
	uri, err := cfg.ConnectionURI()
	if err != nil {
		return nil, nil, err
	}

	client, err := mongodb.Open(ctx, uri, cfg.ConnectTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	repo, err := mongodb.NewRepository(client.Database(cfg.Database), mongodb.Options{
		EventsCollection: cfg.EventsCollection,
		JoinedCollection: cfg.JoinedCollection,
		OperationTimeout: cfg.OperationTimeout,
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("repository init failed: %w", err)
	}
	return client, repo, nil
}

func newVerifier(ctx context.Context, cfg config.Config) (auth.Verifier, error) {
	switch cfg.Auth.Provider {
	case config.AuthProviderJWT:
		return auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer), nil
	case config.AuthProviderFirebase:
		credentials, err := cfg.Auth.ServiceAccountJSON()
		if err != nil {
			return nil, err
		}
		return auth.NewFirebaseVerifier(ctx, credentials, cfg.Auth.FirebaseProjectID)
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
	}
}
