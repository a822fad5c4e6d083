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

	"golang.org/x/sync/errgroup"

	"inmo24x7_backend/internal/bot"
	"inmo24x7_backend/internal/catalog"
	apphttp "inmo24x7_backend/internal/http"
	"inmo24x7_backend/internal/http/router"
	"inmo24x7_backend/internal/leads"
	"inmo24x7_backend/internal/scheduler"
	"inmo24x7_backend/internal/session"
	"inmo24x7_backend/migrations"
	"inmo24x7_backend/platform/ai/openaichat"
	"inmo24x7_backend/platform/config"
	"inmo24x7_backend/platform/db"
	"inmo24x7_backend/platform/logger"
	"inmo24x7_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	store := initSessionStore(cfg, log)

	enqueuer, closeEnqueuer := initHandoffEnqueuer(cfg, log)
	if closeEnqueuer != nil {
		defer closeEnqueuer()
	}

	modelClient := openaichat.NewClient(openaichat.Config{
		APIKey:  cfg.GetModelAPIKey(),
		BaseURL: cfg.GetModelBaseURL(),
		Model:   cfg.GetModelName(),
	})

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	catalogModule := catalog.NewModule(cfg, log)
	if err := catalogModule.Service().Warm(); err != nil {
		log.Error("failed to load property catalog", "error", err)
		panic("failed to load property catalog: " + err.Error())
	}
	log.Info("property catalog loaded", "properties", catalogModule.Service().Count())

	leadsModule := leads.NewModule(pool, val, log)

	botModule, err := bot.NewModule(bot.Deps{
		ModelCfg: cfg,
		BotCfg:   cfg,
		Store:    store,
		Catalog:  catalogModule.Service(),
		Leads:    leadsModule.Service(),
		Enqueuer: enqueuer,
		Model:    modelClient,
		Val:      val,
		Log:      log,
	})
	if err != nil {
		log.Error("failed to initialize bot module", "error", err)
		panic("failed to initialize bot module: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: pool,
		Modules: []apphttp.Module{
			botModule,
			leadsModule,
			catalogModule,
		},
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
}

// initSessionStore picks Redis when configured so sessions survive restarts,
// falling back to the in-memory store for local development.
func initSessionStore(cfg config.SessionConfig, log *logger.Logger) session.Store {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; sessions are in-memory and lost on restart")
		return session.NewMemoryStore()
	}

	store, err := session.NewRedisStore(cfg.GetRedisURL(), cfg.GetSessionTTL())
	if err != nil {
		log.Error("failed to initialize redis session store", "error", err)
		panic("failed to initialize redis session store: " + err.Error())
	}
	return store
}

func initHandoffEnqueuer(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.HandoffEnqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; handoff notifications disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize handoff scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
