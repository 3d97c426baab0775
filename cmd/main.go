package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/okian/glicko/internal/adapters/http/api"
	"github.com/okian/glicko/internal/adapters/http/swagger"
	"github.com/okian/glicko/internal/adapters/repository"
	app "github.com/okian/glicko/internal/app"
	"github.com/okian/glicko/internal/config"
	"github.com/okian/glicko/pkg/logger"
	"github.com/okian/glicko/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 15 * time.Second
)

func main() {
	// A missing .env is fine; anything else is reported once logging is up.
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Named("main")
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		log.Warn(ctx, "ignoring unreadable .env", logger.Error(envErr))
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal(ctx, "server exited", logger.Error(err))
	}
}

// run serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	svc := newService(cfg, store)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return err
	}
	defer svc.Stop()

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "server stopped")
	return nil
}

// openStore picks BoltDB when a path is configured, memory otherwise.
func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.StorePath == "" {
		return repository.NewMemoryStore(), nil
	}
	return repository.OpenBoltStore(cfg.StorePath)
}

func newService(cfg *config.Config, store repository.Store) *app.Service {
	return app.New(
		app.WithStore(store),
		app.WithTau(cfg.Tau),
		app.WithDefaultVolatility(cfg.DefaultVolatility),
		app.WithMaxSolverIterations(cfg.MaxSolverIterations),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithObserver(metrics.Default()),
		app.WithLogger(logger.Named("service")),
	)
}

func newHandler(ctx context.Context, svc *app.Service, log logger.Logger) http.Handler {
	mux := http.NewServeMux()
	api.NewServer(svc).Register(ctx, mux)
	swagger.Register(ctx, mux)
	return api.LoggingMiddleware(mux, log)
}

// startServiceMetricsUpdater refreshes the roster gauges in the background.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.GetStats(ctx)
		}
	}
}
