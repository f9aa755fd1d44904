package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/satlens/internal/adapters/catalog"
	"github.com/okian/satlens/internal/adapters/filesource"
	"github.com/okian/satlens/internal/adapters/http/api"
	"github.com/okian/satlens/internal/adapters/http/site"
	"github.com/okian/satlens/internal/adapters/http/swagger"
	service "github.com/okian/satlens/internal/app"
	"github.com/okian/satlens/internal/config"
	"github.com/okian/satlens/internal/domain/selection"
	"github.com/okian/satlens/pkg/logger"
	"github.com/okian/satlens/pkg/metrics"
	"github.com/okian/satlens/pkg/tracing"
	"golang.org/x/sync/errgroup"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithOptions(logger.Options{Format: cfg.LogFormat}); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "satlens stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

// run starts the viewer service and HTTP server and blocks until ctx is done.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	shutdownTracing, err := tracing.Init(ctx, tracing.Config{Enabled: cfg.TracingEnabled}, log.Named("tracing"))
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer tracing.Shutdown(context.WithoutCancel(ctx), shutdownTracing, log)

	svc, err := buildService(cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop(context.WithoutCancel(ctx))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})
	g.Go(func() error {
		startServiceMetricsUpdater(gctx, svc)
		return nil
	})
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		log.Info(gctx, "server stopped")
		return nil
	})
	return g.Wait()
}

// buildService wires the dataset loader and the viewer service from cfg.
func buildService(cfg *config.Config, log logger.Logger) (*service.Service, error) {
	mode, err := selection.ParseMode(cfg.SelectionMode)
	if err != nil {
		return nil, err
	}

	opts := []service.Option{
		service.WithLogger(log.Named("service")),
		service.WithSelectionMode(mode),
		service.WithBinCount(cfg.BinCount),
		service.WithRanking(cfg.DefaultMetric, cfg.TopN, cfg.BottomN),
		service.WithDefaultMetric(cfg.DefaultMetric),
		service.WithFlyDuration(cfg.FlyDuration()),
		service.WithQueueSize(cfg.EventQueueSize),
		service.WithInitialSearch(cfg.InitialSearchID),
	}

	if cfg.DatasetFile != "" {
		src, err := filesource.New(cfg.DatasetFile,
			filesource.WithMaxBytes(cfg.MaxDatasetBytes),
			filesource.WithLogger(log.Named("filesource")),
		)
		if err != nil {
			return nil, fmt.Errorf("dataset file: %w", err)
		}
		opts = append(opts, service.WithLoader(service.FileLoader{Source: src}))
		if cfg.WatchDataset {
			opts = append(opts, service.WithWatcher(src))
		}
		return service.New(opts...), nil
	}

	client, err := catalog.New(cfg.CatalogBaseURL, cfg.AccessToken,
		catalog.WithTimeout(cfg.FetchTimeout()),
		catalog.WithMaxBytes(cfg.MaxDatasetBytes),
		catalog.WithLogger(log.Named("catalog")),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog client: %w", err)
	}
	opts = append(opts, service.WithLoader(service.CatalogLoader{Client: client, AssetID: cfg.AssetID}))
	return service.New(opts...), nil
}

// newMux registers the viewer site, API docs and API routes.
func newMux(ctx context.Context, cfg *config.Config, svc *service.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	site.Register(ctx, mux, svc, log.Named("site"), site.WithToken(cfg.APIToken))
	swagger.Register(ctx, mux)
	api.NewServer(svc,
		api.WithToken(cfg.APIToken),
		api.WithLogger(log.Named("api")),
	).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes service gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes gauges derived from service stats.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()
	if objects, ok := stats["objects"].(int); ok {
		metrics.UpdateDatasetObjects(objects)
	}
	if highlighted, ok := stats["highlighted"].(int); ok {
		metrics.UpdateHighlightedCount(highlighted)
	}
}
