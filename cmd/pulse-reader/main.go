package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"

	"github.com/pribylovaa/pulse-reader/internal/auth"
	"github.com/pribylovaa/pulse-reader/internal/cache"
	"github.com/pribylovaa/pulse-reader/internal/classifier"
	"github.com/pribylovaa/pulse-reader/internal/config"
	pulsehttp "github.com/pribylovaa/pulse-reader/internal/http"
	"github.com/pribylovaa/pulse-reader/internal/metrics"
	logctx "github.com/pribylovaa/pulse-reader/internal/pkg/log"
	"github.com/pribylovaa/pulse-reader/internal/pkg/redact"
	"github.com/pribylovaa/pulse-reader/internal/rss"
	"github.com/pribylovaa/pulse-reader/internal/scheduler"
	"github.com/pribylovaa/pulse-reader/internal/service"
	"github.com/pribylovaa/pulse-reader/internal/storage"
	"github.com/pribylovaa/pulse-reader/internal/storage/memory"
	"github.com/pribylovaa/pulse-reader/internal/storage/postgres"
	grpcserver "github.com/pribylovaa/pulse-reader/internal/transport/grpc"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting pulse-reader", "env", cfg.Env, "db_driver", cfg.DB.Driver)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()
	rootCtx = logctx.Into(rootCtx, log)

	store, err := openStorage(rootCtx, cfg)
	if err != nil {
		log.Error("storage_init_failed", logctx.Err(err))
		os.Exit(1)
	}
	defer store.Close()
	log.Info("storage_initialized", slog.String("db_url", redact.URL(cfg.DB.URL)))

	var profileCache service.ProfileCache
	if cfg.Redis.URL != "" {
		rc, err := cache.NewRedisCache(rootCtx, cfg.Redis.URL, cfg.Redis.Prefix, cfg.Redis.ProfileTTL)
		if err != nil {
			log.Error("redis_connect_failed",
				slog.String("redis_url", redact.URL(cfg.Redis.URL)),
				logctx.Err(err),
			)
			os.Exit(1)
		}
		defer func() {
			if cerr := rc.Close(); cerr != nil {
				log.Warn("redis_close_failed", logctx.Err(cerr))
			}
		}()

		profileCache = rc
		log.Info("redis_connected", slog.String("redis_url", redact.URL(cfg.Redis.URL)))
	}

	var cls service.Classifier = classifier.Disabled{}
	if cfg.Classifier.APIKey != "" {
		cls = classifier.NewOpenAI(classifier.Config{
			APIKey:    cfg.Classifier.APIKey,
			BaseURL:   cfg.Classifier.BaseURL,
			Model:     cfg.Classifier.Model,
			Timeout:   cfg.Classifier.Timeout,
			RPS:       cfg.Classifier.RPS,
			Burst:     cfg.Classifier.Burst,
			MaxTopics: cfg.Classifier.MaxTopics,
		})
		log.Info("classifier_enabled",
			slog.String("model", cfg.Classifier.Model),
			slog.String("api_key", redact.Secret(cfg.Classifier.APIKey)),
		)
	} else {
		log.Warn("classifier_disabled", slog.String("reason", "no api key"))
	}

	svc := service.New(service.Deps{
		Storage:    store,
		Fetcher:    rss.NewFetcher(&http.Client{}, cfg.Fetcher.Timeout, cfg.Fetcher.UserAgent, cfg.Fetcher.MaxBodyBytes),
		Parser:     rss.NewParser(),
		Classifier: cls,
		Cache:      profileCache,
		Metrics:    metrics.New(prometheus.DefaultRegisterer),
		Config:     cfg,
	})
	log.Info("service_initialized")

	if _, err := svc.EnsureSources(rootCtx, cfg.Fetcher.Sources); err != nil {
		log.Error("sources_seed_failed", logctx.Err(err))
		os.Exit(1)
	}

	// Фоновые задачи.
	var jobs sync.WaitGroup
	jobs.Add(2)
	go func() {
		defer jobs.Done()
		scheduler.Run(rootCtx, "ingest", cfg.Fetcher.Interval, func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, cfg.Fetcher.CycleTimeout)
			defer cancel()

			if _, err := svc.RunIngestionCycle(ctx); err != nil {
				return err
			}
			_, err := svc.ReclassifyPending(ctx, cfg.Classifier.ReclassifyBatch)
			return err
		})
	}()
	go func() {
		defer jobs.Done()
		scheduler.Run(rootCtx, "retention", cfg.Retention.Interval, func(ctx context.Context) error {
			_, err := svc.RunRetentionSweep(ctx)
			return err
		})
	}()

	// gRPC: только health.
	grpcSrv := grpcserver.NewServer(log, cfg.Timeouts.Service, cfg.Env == envLocal || cfg.Env == envDev)
	go grpcSrv.WatchStore(rootCtx, store, 10*time.Second)

	grpcAddr := cfg.GRPC.Addr()
	grpcLis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Error("grpc_listen_failed", slog.String("addr", grpcAddr), logctx.Err(err))
		os.Exit(1)
	}
	log.Info("grpc_listen_start", slog.String("addr", grpcAddr))

	// HTTP: REST API, /metrics, /livez, /healthz.
	router := pulsehttp.NewRouter(svc, auth.NewVerifier(auth.Config{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
	}), pulsehttp.Options{
		Logger:          log,
		Timeout:         cfg.Timeouts.Service,
		IngestTimeout:   cfg.Fetcher.CycleTimeout,
		AdminRole:       cfg.Auth.AdminRole,
		ReclassifyBatch: cfg.Classifier.ReclassifyBatch,
		Pinger:          store,
	})

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	httpLis, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), logctx.Err(err))
		os.Exit(1)
	}
	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 2)
	go func() {
		if err := grpcSrv.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErrCh <- err
		}
	}()
	go func() {
		if err := httpSrv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
	}()

	log.Info("service_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		log.Error("serve_failed", logctx.Err(err))
		rootCancel()
	}

	grpcSrv.SetServing(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", logctx.Err(err))
	} else {
		log.Info("http_stopped")
	}

	done := make(chan struct{})
	go func() {
		grpcSrv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("grpc_stopped")
	case <-shutdownCtx.Done():
		log.Warn("grpc_force_stop")
		grpcSrv.Stop()
	}

	// Текущая итерация ингеста прерывается по rootCtx.
	jobs.Wait()

	log.Info("service_stopped")
}

// openStorage выбирает реализацию хранилища по db.driver.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.DB.Driver == config.DriverMemory {
		return memory.New(), nil
	}

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return postgres.New(dbCtx, cfg.DB.URL)
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
