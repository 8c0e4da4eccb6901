// Command migrate applies the SQL files under migrations/ exactly once each.
// Applied filenames are recorded in schema_migrations, so re-running the
// command after a deploy only picks up new files.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"

	"github.com/brightlabs/portal-mailer/internal/pkg/logger"
)

func main() {
	dir := flag.String("dir", "migrations", "directory containing .sql migration files")
	list := flag.Bool("list", false, "print this service's tables and exit")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	if *list {
		if err := printTables(db, os.Stdout); err != nil {
			log.Fatalf("list tables: %v", err)
		}
		return
	}

	applied, err := runMigrations(db, *dir)
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
	logger.Info("migrations complete", "applied", applied)
}

// runMigrations applies every not-yet-applied .sql file in dir, in filename
// order, each inside its own transaction together with its version record.
// It returns how many files were applied.
func runMigrations(db *sql.DB, dir string) (int, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		filename   TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return 0, fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return 0, err
	}

	files, err := migrationFiles(dir)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, f := range files {
		if applied[f] {
			logger.Debug("migration already applied", "file", f)
			continue
		}
		if err := applyMigration(db, dir, f); err != nil {
			return count, fmt.Errorf("%s: %w", f, err)
		}
		logger.Info("migration applied", "file", f)
		count++
	}
	return count, nil
}

func appliedMigrations(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`SELECT filename FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		applied[f] = true
	}
	return applied, rows.Err()
}

func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// applyMigration runs one file. The statements and the version record commit
// together, so a failed migration leaves no trace in schema_migrations.
func applyMigration(db *sql.DB, dir, file string) error {
	data, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(data)) == "" {
		return fmt.Errorf("empty migration file")
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(data)); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (filename) VALUES ($1)`, file); err != nil {
		return err
	}
	return tx.Commit()
}

func printTables(db *sql.DB, w *os.File) error {
	rows, err := db.Query(`SELECT tablename FROM pg_tables
		WHERE schemaname = 'public'
		AND (tablename LIKE 'email_%' OR tablename LIKE 'automation_%' OR tablename = 'schema_migrations')
		ORDER BY tablename`)
	if err != nil {
		return err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return err
		}
		fmt.Fprintln(w, " ", t)
		n++
	}
	fmt.Fprintf(w, "Total: %d tables\n", n)
	return rows.Err()
}
