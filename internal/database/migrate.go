package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate brings the store schema up to date. Every numbered .up.sql file not
// yet recorded in schema_migrations is applied in its own transaction, in
// version order.
func Migrate(database *sql.DB) error {
	if _, err := database.Exec(
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	pending, err := pendingMigrations(database)
	if err != nil {
		return err
	}
	for _, name := range pending {
		if err := applyMigration(database, name); err != nil {
			return err
		}
		slog.Info("applied migration", "migration", name)
	}
	return nil
}

func pendingMigrations(database *sql.DB) ([]string, error) {
	applied := make(map[int]bool)
	rows, err := database.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scanning migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}
	var pending []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		if !applied[migrationVersion(name)] {
			pending = append(pending, name)
		}
	}
	sort.Strings(pending)
	return pending, nil
}

func applyMigration(database *sql.DB, name string) error {
	content, err := migrationFiles.ReadFile("migrations/" + name)
	if err != nil {
		return fmt.Errorf("reading migration %s: %w", name, err)
	}

	transaction, err := database.Begin()
	if err != nil {
		return fmt.Errorf("beginning migration %s: %w", name, err)
	}
	defer transaction.Rollback()

	if _, err := transaction.Exec(string(content)); err != nil {
		return fmt.Errorf("applying migration %s: %w", name, err)
	}
	if _, err := transaction.Exec(
		"INSERT INTO schema_migrations (version) VALUES (?)", migrationVersion(name),
	); err != nil {
		return fmt.Errorf("recording migration %s: %w", name, err)
	}
	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("committing migration %s: %w", name, err)
	}
	return nil
}

func migrationVersion(name string) int {
	prefix, _, _ := strings.Cut(name, "_")
	version, _ := strconv.Atoi(prefix)
	return version
}
