// Package main runs the scry-tutor HTTP server, which drives voice
// flashcard sessions and records their transcripts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/phrazzld/scry-tutor/internal/config"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"github.com/phrazzld/scry-tutor/internal/platform/sqlstore"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply database migrations and exit")
	flag.Parse()

	if err := run(context.Background(), *migrateOnly); err != nil {
		log.Fatalf("scry-tutor: %v", err)
	}
}

func run(ctx context.Context, migrateOnly bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("cache_backend", cfg.Cache.Backend),
		slog.String("version", version))

	dialect, err := sqlstore.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return err
	}
	db, err := sqlstore.Open(ctx, dialect, cfg.Database.URL)
	if err != nil {
		return err
	}

	applied, err := sqlstore.Migrate(ctx, db, dialect, appLogger)
	if err != nil {
		_ = db.Close()
		return err
	}
	appLogger.Info("database migrations applied", slog.Int("count", applied))
	if migrateOnly {
		return db.Close()
	}

	app, err := newApplication(ctx, cfg, appLogger, db, dialect)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
