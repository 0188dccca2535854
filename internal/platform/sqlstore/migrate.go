package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

func (d Dialect) gooseDialect() goose.Dialect {
	if d == DialectPostgres {
		return goose.DialectPostgres
	}
	return goose.DialectSQLite3
}

// Migrate applies all pending migrations and returns the number applied.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect, log *slog.Logger) (int, error) {
	if log == nil {
		log = slog.Default()
	}

	migrations, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect.gooseDialect(), db, migrations)
	if err != nil {
		return 0, fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("failed to apply migrations: %w", err)
	}

	for _, r := range results {
		log.Info("applied migration",
			slog.String("component", "migrate"),
			slog.Int64("version", r.Source.Version),
			slog.Duration("duration", r.Duration))
	}
	return len(results), nil
}
