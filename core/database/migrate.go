package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"calendar-service/core/constants"
	"calendar-service/core/logger"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies every embedded migration not yet recorded in the
// migrations table, in file name order, one transaction per file.
func (d *Database) Migrate(ctx context.Context) error {
	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, constants.MigrationTableName)
	if err := d.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var applied []string
	if err := d.SelectContext(ctx, &applied, "SELECT version FROM "+constants.MigrationTableName); err != nil {
		return fmt.Errorf("load applied migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		version := strings.TrimSuffix(strings.TrimPrefix(name, "migrations/"), ".sql")
		if done[version] {
			continue
		}
		body, err := migrationFiles.ReadFile(name)
		if err != nil {
			return err
		}
		err = d.WithTx(ctx, func(tx *sqlx.Tx) error {
			if _, err := tx.ExecContext(ctx, string(body)); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, "INSERT INTO "+constants.MigrationTableName+" (version) VALUES ($1)", version)
			return err
		})
		if err != nil {
			logger.Error("Database:Migrate", err, "version", version)
			return fmt.Errorf("migration %s: %w", version, err)
		}
		logger.Info("Database:Migrate:Applied", "version", version)
	}
	return nil
}
