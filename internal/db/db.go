package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"char-appraiser/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

func dbPath() string {
	// Prefer working directory so the DB is stable across go run / go build.
	// Fall back to executable directory for deployed builds.
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "appraiser.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "appraiser.db")
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open() (*DB, error) {
	return OpenAt(dbPath())
}

// OpenAt opens (or creates) a SQLite database at the given path and runs
// migrations.
func OpenAt(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// Try to read current version
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS config (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS sold_listings (
				id               INTEGER PRIMARY KEY AUTOINCREMENT,
				name             TEXT NOT NULL,
				world            TEXT NOT NULL DEFAULT '',
				vocation         TEXT NOT NULL DEFAULT '',
				level            INTEGER NOT NULL DEFAULT 0,
				sold_price       INTEGER NOT NULL,
				magic_level      INTEGER,
				fist             INTEGER,
				club             INTEGER,
				sword            INTEGER,
				axe              INTEGER,
				distance         INTEGER,
				shielding        INTEGER,
				charm_points     INTEGER,
				soulwar          INTEGER,
				primal           INTEGER,
				falcon           INTEGER,
				store_item_count INTEGER,
				display_items    TEXT NOT NULL DEFAULT '[]',
				sold_at          TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_sold_vocation ON sold_listings(vocation);
			CREATE INDEX IF NOT EXISTS idx_sold_level ON sold_listings(level);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	if version < 2 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS appraisal_runs (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp   TEXT NOT NULL,
				requested   INTEGER NOT NULL,
				valued      INTEGER NOT NULL,
				corpus_size INTEGER NOT NULL,
				duration_ms INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_appraisal_runs_ts ON appraisal_runs(timestamp);

			CREATE TABLE IF NOT EXISTS appraisal_results (
				id              INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id          INTEGER NOT NULL REFERENCES appraisal_runs(id),
				listing_id      INTEGER NOT NULL,
				estimated_value INTEGER NOT NULL,
				min_price       INTEGER NOT NULL,
				max_price       INTEGER NOT NULL,
				sample_size     INTEGER NOT NULL,
				item_bonus      INTEGER NOT NULL,
				confidence      TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_appraisal_results_run ON appraisal_results(run_id);

			INSERT OR IGNORE INTO schema_version (version) VALUES (2);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
		logger.Info("DB", "Applied migration v2 (appraisal history)")
	}

	return nil
}

// SqlDB returns the underlying *sql.DB for use by other packages.
func (d *DB) SqlDB() *sql.DB {
	return d.sql
}
