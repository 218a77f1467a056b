package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"newsdesk-engine/internal/cleanup"
	"newsdesk-engine/internal/events"
	"newsdesk-engine/internal/httpapi"
	"newsdesk-engine/internal/logging"
	"newsdesk-engine/internal/ratelimit"
	"newsdesk-engine/internal/scheduler"
	"newsdesk-engine/internal/secrets"
	"newsdesk-engine/internal/store"
)

const (
	shutdownTimeout   = 5 * time.Second
	limiterPruneEvery = 5 * time.Minute
	limiterIdle       = 10 * time.Minute
)

func newServeCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and event stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), o)
		},
	}
	cmd.Flags().StringVar(&o.host, "host", "", "listen host (env HOST)")
	cmd.Flags().IntVar(&o.port, "port", 0, "listen port (env PORT)")
	return cmd
}

func runServe(ctx context.Context, o *rootOptions) error {
	cfg, cfgPath, warnings, err := loadConfig(o)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg, warnings)

	// One registry per data dir: a second server would hold its own
	// subscribers and never see the first one's mutations.
	lock := dataLock(cfg.App.DataDir)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock data dir: %w", err)
	}
	if !locked {
		return fmt.Errorf("another newsdesk process is using %s", cfg.App.DataDir)
	}
	defer func() { _ = lock.Unlock() }()

	dbPath := filepath.Join(cfg.App.DataDir, "newsdesk.db")
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	broadcaster := events.Default()
	clock := clockwork.NewRealClock()

	secret, err := secrets.CleanupSecret(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("cleanup endpoint disabled")
	}

	var limiter *ratelimit.KeyLimiter
	if cfg.RateLimit.MutationsPerSecond > 0 {
		var opts []ratelimit.Option
		if cfg.RateLimit.TrustProxy {
			opts = append(opts, ratelimit.TrustForwarded())
		}
		limiter = ratelimit.New(cfg.RateLimit.MutationsPerSecond, cfg.RateLimit.Burst, clock, opts...)
	}

	g, gctx := errgroup.WithContext(ctx)

	addr := net.JoinHostPort(cfg.App.Host, strconv.Itoa(cfg.App.Port))
	srv := &http.Server{
		Addr: addr,
		Handler: httpapi.NewRouter(httpapi.Deps{
			DB:            db.Pool,
			Publisher:     broadcaster,
			Registry:      broadcaster.Registry(),
			Config:        cfg,
			ConfigPath:    cfgPath,
			CleanupSecret: secret,
			Limiter:       limiter,
			Clock:         clock,
			Logger:        logging.Component(logger, "http"),
		}),
		ReadHeaderTimeout: 5 * time.Second,
		// Streams end when we shut down; Shutdown does not wait for
		// hijacked websockets and would otherwise block on open SSE responses.
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		logger.Info().Str("addr", "http://"+addr).Str("db", dbPath).Str("config", cfgPath).Msg("newsdesk listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if interval := cfg.CleanupInterval(); interval > 0 {
		cleanupLogger := logging.Component(logger, "cleanup")
		g.Go(func() error {
			scheduler.Every(gctx, interval, "expired-articles", func(ctx context.Context) error {
				_, err := cleanup.Run(ctx, db.Pool, broadcaster, clock.Now(), cleanupLogger)
				return err
			}, scheduler.WithLogger(cleanupLogger), scheduler.WithClock(clock))
			return nil
		})
	}
	if limiter != nil {
		g.Go(func() error {
			scheduler.Every(gctx, limiterPruneEvery, "ratelimit-prune", func(context.Context) error {
				limiter.Prune(limiterIdle)
				return nil
			}, scheduler.WithLogger(logger), scheduler.WithClock(clock))
			return nil
		})
	}

	err = g.Wait()
	logger.Info().Msg("newsdesk stopped")
	return err
}
