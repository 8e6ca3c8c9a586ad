// Projectd is the project registry daemon.
//
// It serves the provider-style and direct-invocation HTTP surfaces over a
// single lifecycle service, with the registry held in memory or in badger.
//
// Configuration is loaded from ~/.config/projectd/config.yaml (or the file
// given with -config) and PROJECTD_* environment variables. See
// internal/config for details.
//
// Usage:
//
//	# Start with defaults (in-memory registry on localhost:9191)
//	projectd
//
//	# Persist the registry and publish analytics
//	PROJECTD_STORAGE_PROVIDER=badger PROJECTD_STORAGE_PATH=/var/lib/projectd \
//	PROJECTD_ANALYTICS_ENABLED=true PROJECTD_ANALYTICS_NATS_URL=nats://localhost:4222 projectd
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectd/internal/analytics"
	"github.com/fyrsmithlabs/projectd/internal/config"
	httpserver "github.com/fyrsmithlabs/projectd/internal/http"
	"github.com/fyrsmithlabs/projectd/internal/instances"
	"github.com/fyrsmithlabs/projectd/internal/lifecycle"
	"github.com/fyrsmithlabs/projectd/internal/logging"
	"github.com/fyrsmithlabs/projectd/internal/project"
	"github.com/fyrsmithlabs/projectd/internal/resolver"
	"github.com/fyrsmithlabs/projectd/internal/settings"
	"github.com/fyrsmithlabs/projectd/internal/storage"
	"github.com/fyrsmithlabs/projectd/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.config/projectd/config.yaml)")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  projectd [-config path]   Start the projectd daemon\n")
			fmt.Fprintf(os.Stderr, "  projectd version           Show version information\n")
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWithFile(*configPath)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if err := run(ctx, cfg); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

func printVersion() {
	fmt.Printf("projectd by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run wires every component from cfg and serves until ctx is cancelled.
//
//  1. Initializes telemetry and logger
//  2. Opens the registry (memory or badger)
//  3. Connects analytics sinks (Prometheus, optional NATS)
//  4. Builds the lifecycle service and resolver
//  5. Starts the HTTP server and shuts it down on cancellation
func run(ctx context.Context, cfg *config.Config) error {
	tel, err := telemetry.New(ctx, telemetry.FromAppConfig(cfg.Telemetry, version))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() { _ = tel.Shutdown(context.Background()) }()

	logger, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info(ctx, "starting projectd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Provider),
		zap.Bool("telemetry", cfg.Telemetry.Enabled))

	deps, err := initDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	svc, err := lifecycle.NewService(lifecycle.Deps{
		Projects: deps.projects,
		Settings: deps.settings,
		Current:  deps.current,
		Guard:    instances.NewUnsentGuard(deps.instances),
		Cleaners: []lifecycle.ProjectCleaner{deps.instances, deps.forms},
		Sink:     deps.sink,
		Logger:   logger.Named("lifecycle"),
		Tracer:   tel.TracerProvider(),
		Policy:   lifecycle.DeletePolicy(cfg.Lifecycle.DeletePolicy),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize lifecycle: %w", err)
	}

	srv, err := httpserver.NewServer(httpserver.Deps{
		Lifecycle: svc,
		Resolver:  resolver.New(svc, resolver.WithLogger(logger.Named("resolver")), resolver.WithTracerProvider(tel.TracerProvider())),
		Projects:  deps.projects,
		Current:   deps.current,
		Settings:  deps.settings,
		Forms:     deps.forms,
		Instances: deps.instances,
		Gatherer:  prometheus.DefaultGatherer,
		Meter:     tel.MeterProvider(),
	}, logger.Named("http"), &httpserver.Config{
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func initLogger(cfg *config.Config) (*logging.Logger, error) {
	logCfg, err := logging.FromAppConfig(cfg.Logging)
	if err != nil {
		return nil, err
	}
	var provider otellog.LoggerProvider
	if cfg.Telemetry.Enabled {
		logCfg.Output.OTEL = true
		provider = global.GetLoggerProvider()
	}
	return logging.NewLogger(logCfg, provider)
}

// dependencies holds the registry stores and analytics connections.
type dependencies struct {
	projects  project.Repository
	settings  settings.Store
	current   *project.DataService
	forms     instances.FormStore
	instances instances.InstancesRepository
	sink      analytics.Sink

	db       *storage.DB
	natsConn *nats.Conn
	logger   *logging.Logger
}

// Close releases all infrastructure resources.
func (d *dependencies) Close() {
	if d.natsConn != nil {
		_ = d.natsConn.Drain()
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			d.logger.Warn(context.Background(), "failed to close store", zap.Error(err))
		}
	}
}

func initDependencies(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*dependencies, error) {
	d := &dependencies{logger: logger}

	var pointer project.PointerStore
	switch cfg.Storage.Provider {
	case config.StorageBadger:
		db, err := storage.Open(ctx, cfg.Storage.Path, logger.Named("storage"))
		if err != nil {
			return nil, err
		}
		d.db = db
		d.projects = storage.NewProjectRepository(db)
		d.settings = storage.NewSettingsStore(db)
		pointer = storage.NewPointerStore(db)
		d.forms = storage.NewFormStore(db)
		d.instances = storage.NewInstanceStore(db)
	default:
		d.projects = project.NewMemoryRepository()
		d.settings = settings.NewMemoryStore()
		pointer = project.NewMemoryPointer()
		d.forms = instances.NewMemoryForms()
		d.instances = instances.NewMemoryInstances()
	}
	d.current = project.NewDataService(d.projects, pointer)

	sinks := analytics.Multi{analytics.NewPrometheusSink(prometheus.DefaultRegisterer)}
	if cfg.Analytics.Enabled && cfg.Analytics.NATSURL != "" {
		nc, err := analytics.Connect(cfg.Analytics.NATSURL)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.natsConn = nc
		sinks = append(sinks, analytics.NewNATSSink(nc, cfg.Analytics.SubjectPrefix, logger.Named("analytics")))
		logger.Info(ctx, "analytics publishing to nats", zap.String("subject_prefix", cfg.Analytics.SubjectPrefix))
	}
	d.sink = sinks

	return d, nil
}
