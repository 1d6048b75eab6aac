package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/baharkarakas/reliefshare/internal/api"
	"github.com/baharkarakas/reliefshare/internal/auth"
	"github.com/baharkarakas/reliefshare/internal/config"
	"github.com/baharkarakas/reliefshare/internal/db"
	"github.com/baharkarakas/reliefshare/internal/events"
	"github.com/baharkarakas/reliefshare/internal/metrics"
	repo "github.com/baharkarakas/reliefshare/internal/repository"
	"github.com/baharkarakas/reliefshare/internal/repository/memory"
	"github.com/baharkarakas/reliefshare/internal/repository/postgres"
	"github.com/baharkarakas/reliefshare/internal/repository/redis"
	"github.com/baharkarakas/reliefshare/internal/services"
	"github.com/baharkarakas/reliefshare/internal/worker"
)

const pruneSchedule = "@every 15m"

type stores struct {
	users     repo.Users
	resources repo.Resources
	watchlist repo.Watchlist
	sessions  repo.Sessions
}

func serve(ctx context.Context, cfg config.Config) error {
	log := slog.Default()
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	var st stores
	switch cfg.Storage {
	case "memory":
		m := memory.NewRepositories()
		st = stores{m.Users, m.Resources, m.Watchlist, m.Sessions}
		log.Warn("using in-memory storage; data is lost on restart")
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		closers = append(closers, pool.Close)
		if cfg.Migrate {
			if err := db.RunMigrations(ctx, pool); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
		}
		p := postgres.NewRepositories(pool)
		st = stores{p.Users, p.Resources, p.Watchlist, p.Sessions}
	default:
		return fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}

	switch cfg.SessionStore {
	case "postgres":
		if cfg.Storage != "postgres" {
			return errors.New("SESSION_STORE=postgres requires STORAGE=postgres")
		}
	case "memory":
		st.sessions = memory.NewSessions()
	case "redis":
		rdb := redis.NewClient(cfg.RedisAddr, cfg.RedisPassword)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return fmt.Errorf("redis connect: %w", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		st.sessions = redis.NewSessions(rdb)
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
	}

	var pub events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		nc, err := events.Connect(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		closers = append(closers, nc.Close)
		pub = nc
	}

	if cfg.IsProd() && cfg.SessionSecret == "changeme-secret" {
		return errors.New("SESSION_SECRET must be set in prod")
	}

	wp := worker.NewPool(4)

	sessions := auth.NewSessionManager(st.sessions, auth.NewTokenSigner(cfg.SessionSecret, "reliefshare"), cfg.SessionTTL)

	c := cron.New()
	if _, err := c.AddFunc(pruneSchedule, func() { prune(ctx, sessions) }); err != nil {
		return fmt.Errorf("schedule prune: %w", err)
	}
	c.Start()
	closers = append(closers, func() { <-c.Stop().Done() })

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Cfg:       cfg,
		Users:     services.NewUserService(st.users),
		Resources: services.NewResourceService(st.resources, st.users, pub),
		Watchlist: services.NewWatchlistService(st.watchlist, st.resources, wp, pub),
		Sessions:  sessions,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("server starting",
			"port", cfg.HTTPPort,
			"env", cfg.Env,
			"storage", cfg.Storage,
			"session_store", cfg.SessionStore,
			"nats", cfg.NATSURL != "",
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	wp.Stop()
	return nil
}

func prune(ctx context.Context, sm *auth.SessionManager) {
	n, err := sm.Prune(ctx)
	if err != nil {
		slog.Error("prune sessions", "err", err)
		return
	}
	metrics.SessionsPruned.Add(float64(n))
	if n > 0 {
		slog.Info("pruned sessions", "count", n)
	}
}
