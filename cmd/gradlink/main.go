// Command gradlink is a command-line front end for the GradLink backend.
//
// It keeps the logged-in session in a local store (SQLite by default,
// Redis or memory by configuration), so a `gradlink login` is remembered
// by every later command until `gradlink logout`.
//
// Usage:
//
//	gradlink [-metrics] <command> [flags] [args]
//
// Run `gradlink help` for the command list.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/redis/go-redis/v9"

	"github.com/sakif/gradlink/internal/api"
	"github.com/sakif/gradlink/internal/apiclient"
	"github.com/sakif/gradlink/internal/config"
	"github.com/sakif/gradlink/internal/middleware"
	"github.com/sakif/gradlink/internal/service"
	"github.com/sakif/gradlink/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run is main without the process globals, so tests can drive it.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gradlink", flag.ContinueOnError)
	fs.SetOutput(stderr)
	showMetrics := fs.Bool("metrics", false, "print request metrics to stderr after the command")
	fs.Usage = func() { printUsage(stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		printUsage(stderr)
		return 2
	}

	// === 1. CONFIGURATION AND LOGGING ===
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	// === 2. SESSION STORE ===
	storage, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		logger.Error("opening session store",
			slog.String("store", string(cfg.SessionStore)),
			slog.String("error", err.Error()),
		)
		return 1
	}
	defer closeStorage()
	store := session.New(storage, logger)

	// === 3. CLIENT ===
	reg := prometheus.NewRegistry()
	client, err := apiclient.New(apiclient.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.Timeout,
	}, store, logger, apiclient.WithMetrics(middleware.NewClientMetrics(reg)))
	if err != nil {
		logger.Error("invalid API configuration", slog.String("error", err.Error()))
		return 1
	}
	catalog := api.New(client)

	a := &app{
		api:   catalog,
		auth:  service.NewAuthService(catalog, store, logger),
		out:   stdout,
		usage: stderr,
	}

	// === 4. DISPATCH ===
	err = a.dispatch(ctx, fs.Args())

	if *showMetrics {
		if merr := writeMetrics(stderr, reg); merr != nil {
			logger.Warn("writing metrics", slog.String("error", merr.Error()))
		}
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	}
	logger.Error("command failed",
		slog.String("command", fs.Arg(0)),
		slog.String("error", describe(err)),
	)
	return 1
}

// openStorage returns the configured storage and its cleanup function.
func openStorage(ctx context.Context, cfg config.Config) (session.Storage, func(), error) {
	switch cfg.SessionStore {
	case config.StoreMemory:
		return session.NewMemoryStorage(), func() {}, nil

	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return session.NewRedisStorage(rdb, "gradlink:"), func() { rdb.Close() }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SessionDB), 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating session directory: %w", err)
	}
	db, err := session.OpenSQLite(cfg.SessionDB)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { db.Close() }, nil
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// describe prefers the backend's own wording for HTTP errors.
func describe(err error) string {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		if msg := apiErr.Message(); msg != "" {
			return fmt.Sprintf("%s (HTTP %d)", msg, apiErr.StatusCode)
		}
	}
	return err.Error()
}
