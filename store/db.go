// Package store persists fetched availability so repeated month scans
// can be compared and watched over time.
package store

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// localPragmas configure the single-file SQLite case. WAL keeps the
// watch loop's writes from blocking concurrent reads of the snapshot.
var localPragmas = []string{
	"PRAGMA foreign_keys=ON;",
	"PRAGMA journal_mode=wal;",
	"PRAGMA busy_timeout=1000;",
}

// Open opens the slot database: Turso when TURSO_DATABASE_URL is set in
// the environment, a local SQLite file at path otherwise.
func Open(path string) (*sql.DB, error) {
	if dbURL := os.Getenv("TURSO_DATABASE_URL"); dbURL != "" {
		return openTurso(dbURL, os.Getenv("TURSO_AUTH_TOKEN"))
	}
	return openLocal(path)
}

func openTurso(dbURL, token string) (*sql.DB, error) {
	dsn := dbURL
	if token != "" {
		sep := "?"
		if strings.Contains(dbURL, "?") {
			sep = "&"
		}
		dsn += sep + "authToken=" + token
	}

	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open turso: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping turso: %w", err)
	}

	slog.Info("slot db ready", "backend", "turso", "url", dbURL)
	return db, nil
}

func openLocal(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", path, err)
	}
	for _, pragma := range localPragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	slog.Info("slot db ready", "backend", "sqlite", "path", path)
	return db, nil
}

// RunMigrations executes the embedded migrations in numeric order
// (NNN-*.sql), recording applied numbers in the migrations table.
func RunMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS migrations (
		migration_number INTEGER PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	pat := regexp.MustCompile(`^(\d{3})-.*\.sql$`)
	var files []string
	for _, e := range entries {
		if !e.IsDir() && pat.MatchString(e.Name()) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	executed := make(map[int]bool)
	rows, err := db.Query("SELECT migration_number FROM migrations")
	if err != nil {
		return fmt.Errorf("query executed migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return fmt.Errorf("scan migration number: %w", err)
		}
		executed[n] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate migrations: %w", err)
	}

	for _, file := range files {
		n, err := strconv.Atoi(pat.FindStringSubmatch(file)[1])
		if err != nil {
			return fmt.Errorf("parse migration number %s: %w", file, err)
		}
		if executed[n] {
			continue
		}

		content, err := migrationFS.ReadFile("migrations/" + file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("exec %s: %w", file, err)
		}
		if _, err := db.Exec("INSERT INTO migrations (migration_number) VALUES (?)", n); err != nil {
			return fmt.Errorf("record %s: %w", file, err)
		}
		slog.Info("store: applied migration", "file", file, "number", n)
	}
	return nil
}
