// Command devserver runs a local, in-memory GradLink backend.
//
// Point the CLI at it with GRADLINK_API_URL=http://localhost:8000/api/.
// Nothing is persisted: every restart starts from an empty (or freshly
// seeded) database.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/sakif/gradlink/internal/config"
	"github.com/sakif/gradlink/internal/devserver"
)

func main() {
	seed := flag.Bool("seed", false, "preload demo accounts, an event and a job")
	flag.Parse()

	// === 1. CONFIGURATION ===
	// DEVSERVER_PORT and DEVSERVER_JWT_SECRET, from the environment or .env.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. LOGGING ===
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	if cfg.JWTSecret == config.DevJWTSecret {
		logger.Warn("DEVSERVER_JWT_SECRET not set, signing tokens with the public development secret")
	}

	// === 3. CREATE AND START THE SERVER ===
	srv, err := devserver.New(devserver.Config{
		Port:      cfg.DevserverPort,
		JWTSecret: cfg.JWTSecret,
		Seed:      *seed,
	}, logger)
	if err != nil {
		logger.Error("failed to create devserver", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *seed {
		logger.Info("demo accounts ready",
			slog.String("student", devserver.DemoStudent),
			slog.String("alumni", devserver.DemoAlumni),
			slog.String("password", devserver.DemoPassword),
		)
	}

	// Start() blocks until SIGINT or SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
