package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mobile-forms/internal/common/auth"
	"mobile-forms/internal/common/aws"
	"mobile-forms/internal/common/camunda"
	"mobile-forms/internal/common/config"
	"mobile-forms/internal/common/database"
	commonhttp "mobile-forms/internal/common/http"
	"mobile-forms/internal/common/logger"
	"mobile-forms/internal/common/observability"
	"mobile-forms/internal/httpapi"
	"mobile-forms/internal/posts"
	"mobile-forms/internal/profileform"
	"mobile-forms/internal/sink"
	"mobile-forms/internal/tasks"
	validateprofile "mobile-forms/internal/workers/profile/validate-profile"
	"mobile-forms/pkg/registry"
)

const sweepInterval = time.Minute

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting form service...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("sink", cfg.Sink.Kind),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := sink.Deps{Logger: log, Observability: obs}

	// --- Zeebe: needed for the zeebe sink and for the job worker ---
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled || cfg.Sink.Kind == config.SinkZeebe {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				ConnectionTimeout:      10 * time.Second,
				RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		deps.Starter = zeebe
		zapLog.Info("Zeebe client connected successfully")
	}

	// --- Sink backend ---
	switch cfg.Sink.Kind {
	case config.SinkPostgres:
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		if err := pg.EnsureProfilesTable(ctx, cfg.Sink.Postgres.Table); err != nil {
			zapLog.Fatal("profiles table setup failed", zap.Error(err))
		}
		deps.DB = pg.DB
		deps.Hasher = auth.NewHasher(auth.DefaultParams)
		zapLog.Info("PostgreSQL connected successfully")

	case config.SinkElasticsearch:
		esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("elasticsearch client failed", zap.Error(err))
		}
		err = retryWithBackoff(func() error {
			return database.PingElasticsearch(ctx, esClient)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		deps.Elasticsearch = esClient
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Notifications ---
	if cfg.Notifications.Email.Enabled {
		ses, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region, cfg.Notifications.Email.FromEmail)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		deps.Email = ses
	}
	if cfg.Notifications.SMS.Enabled {
		sns, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region, cfg.Notifications.SMS.SenderID)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		deps.SMS = sns
	}

	profileSink, err := sink.Build(cfg, deps)
	if err != nil {
		zapLog.Fatal("sink setup failed", zap.Error(err))
	}

	// --- Posts feed, optionally cached in Redis ---
	storeOpts := posts.StoreOptions{
		CacheTTL: config.GetDuration(cfg.Cache.PostsTTL),
		Logger:   log,
	}
	if cfg.Cache.Enabled {
		rdb := database.NewRedis(cfg.Database.Redis)
		defer rdb.Close()
		if err := database.PingRedis(ctx, rdb); err != nil {
			zapLog.Warn("redis unavailable, posts cache will miss", zap.Error(err))
		}
		storeOpts.Cache = rdb
	}
	postsAPI := posts.NewClient(cfg.APIs.Posts.BaseURL, config.GetDuration(cfg.APIs.Posts.Timeout), commonhttp.WithRetries(2))
	postStore := posts.NewStore(postsAPI, storeOpts)

	forms, err := registry.LoadOrDefault(cfg.Form.RegistryPath)
	if err != nil {
		zapLog.Fatal("form registry failed", zap.Error(err))
	}

	sessions := httpapi.NewSessionRegistry(config.GetDuration(cfg.Server.SessionTTL), log)
	api := httpapi.NewServer(httpapi.Options{
		ServiceName: cfg.App.Name,
		Catalog:     profileform.NewCatalog(cfg.Form.Locale),
		Sink:        profileSink,
		Sessions:    sessions,
		Forms:       forms,
		Posts:       postStore,
		Composer:    posts.NewComposer(postsAPI, postStore, cfg.APIs.Posts.UserID, log),
		Details:     posts.NewDetails(postsAPI, log),
		Tasks:       tasks.NewSeededStore(),
		Logger:      log,
	})

	// --- Job worker ---
	if cfg.Camunda.Enabled && config.IsWorkerEnabled(cfg, validateprofile.WorkerName) {
		wcfg := config.GetWorkerConfig(cfg, validateprofile.WorkerName)
		handler := validateprofile.NewHandler(validateprofile.NewConfig(cfg), log, obs)
		w := camunda.NewWorker(
			zeebe.GetClient(),
			validateprofile.TaskType,
			wcfg.MaxJobsActive,
			config.GetDuration(wcfg.Timeout),
			handler,
			log,
		)
		defer w.Stop(context.Background())
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Router(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions.Run(gctx, sweepInterval)
		return nil
	})
	g.Go(func() error {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLog.Info("Shutdown signal received, draining requests...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		sessions.Close()
		return err
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("form service stopped with error", zap.Error(err))
		return
	}
	zapLog.Info("Form service stopped gracefully")
}
