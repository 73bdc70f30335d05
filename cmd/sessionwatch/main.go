package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"newsdesk/internal/auth"
	"newsdesk/internal/config"
	"newsdesk/internal/logging"
	"newsdesk/internal/session"
	"newsdesk/internal/storage/filecache"
	"newsdesk/internal/storage/rediscache"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	logout := flag.Bool("logout", false, "end the session and clear cached user data, then exit")
	flag.Parse()

	logger := logging.New("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache, closeCache, err := openCache(ctx, cfg.Cache, logger)
	if err != nil {
		logger.Error("failed to open session cache", "backend", cfg.Cache.Backend, "error", err)
		os.Exit(1)
	}
	defer closeCache()

	client, err := auth.New(auth.Config{
		BaseURL:       cfg.Auth.BaseURL,
		Timeout:       cfg.Auth.Timeout,
		SessionCookie: cfg.Auth.SessionCookie,
		SessionToken:  cfg.Auth.SessionToken,
	}, logger)
	if err != nil {
		logger.Error("failed to create auth client", "error", err)
		os.Exit(1)
	}

	reconciler := session.NewReconciler(client, cache, logger)

	if *logout {
		message, err := reconciler.Logout(ctx)
		if err != nil {
			logger.Error("logout failed, local session cleared", "error", err)
			os.Exit(1)
		}
		logger.Info("logged out", "message", message)
		return
	}

	state := reconciler.VerifyAuth(ctx)
	logger.Info("initial session check", "state", state.String())

	watcher := session.NewWatcher(reconciler, cache, cfg.Watcher.Interval, clockwork.NewRealClock(), logger)
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("watcher error", "error", err)
		os.Exit(1)
	}
}

func openCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (session.Cache, func(), error) {
	switch cfg.Backend {
	case "memory":
		c := session.NewMemoryCache(cfg.Key)
		return c, func() { c.Close() }, nil
	case "file":
		c, err := filecache.New(cfg.Path, cfg.Key, logger)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { c.Close() }, nil
	case "redis":
		rdb, err := rediscache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		c, err := rediscache.New(ctx, rdb, cfg.Key, logger)
		if err != nil {
			rdb.Close()
			return nil, nil, err
		}
		return c, func() {
			c.Close()
			rdb.Close()
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
