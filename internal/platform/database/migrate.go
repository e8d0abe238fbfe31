package database

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

const migrationTable = "schema_migrations"

// Migrate applies every *.sql file under root in migrationFS, in name order,
// at most once per file. Each file runs in its own transaction.
func Migrate(ctx context.Context, db *DB, migrationFS fs.FS, root string) error {
	if db == nil || db.SQL == nil {
		return fmt.Errorf("database is required")
	}
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}

	entries, err := fs.ReadDir(migrationFS, root)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	createSQL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at BIGINT NOT NULL
)`, migrationTable)
	if _, err := db.SQL.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		applied, err := isApplied(ctx, db, file)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if applied {
			continue
		}

		content, err := fs.ReadFile(migrationFS, path.Join(root, file))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if err := apply(ctx, db, file, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}

func isApplied(ctx context.Context, db *DB, name string) (bool, error) {
	query := fmt.Sprintf(`SELECT COUNT(1) FROM %s WHERE name = %s`, migrationTable, db.Placeholder(1))
	var count int
	if err := db.SQL.QueryRowContext(ctx, query, name).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func apply(ctx context.Context, db *DB, name, content string) error {
	tx, err := db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range splitStatements(content) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	record := fmt.Sprintf(`INSERT INTO %s (name, applied_at) VALUES (%s, %s)`,
		migrationTable, db.Placeholder(1), db.Placeholder(2))
	if _, err := tx.ExecContext(ctx, record, name, time.Now().UnixMilli()); err != nil {
		return err
	}
	return tx.Commit()
}

// Placeholder returns the n-th (1-based) bind parameter for the dialect.
func (d *DB) Placeholder(n int) string {
	if d.Dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// splitStatements splits a migration on semicolons, dropping blanks and
// full-line "--" comments. Migrations must not embed ';' in literals.
func splitStatements(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}
	var stmts []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
