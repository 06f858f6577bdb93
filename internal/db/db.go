package db

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// DB wraps the database connection.
type DB struct {
	*sql.DB
	log *zap.SugaredLogger
}

// New opens a PostgreSQL connection from the provided connection string.
func New(connectionString string, log *zap.SugaredLogger) (*DB, error) {
	if connectionString == "" {
		return nil, fmt.Errorf("database connection string is required")
	}

	sqlDB, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		// Retry with SSL disabled when the connection string does not pin an
		// sslmode; common for local setups.
		if !strings.Contains(strings.ToLower(connectionString), "sslmode") {
			log.Debugw("retrying database connection with SSL disabled")
			sqlDB.Close()
			retry := connectionString
			if strings.Contains(retry, "?") {
				retry += "&sslmode=disable"
			} else {
				retry += "?sslmode=disable"
			}
			sqlDB, err = sql.Open("postgres", retry)
			if err != nil {
				return nil, fmt.Errorf("failed to open database: %w", err)
			}
		}
		if err := sqlDB.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return &DB{DB: sqlDB, log: log}, nil
}

func (db *DB) HealthCheck() error { return db.Ping() }

func (db *DB) Close() error { return db.DB.Close() }

// Migration is a single numbered migration file.
type Migration struct {
	Number int
	Name   string
	SQL    string
}

// RunMigrations executes all pending SQL migration files in the migrations
// directory, tracking applied versions in schema_migrations.
func (db *DB) RunMigrations(migrationsDir string) error {
	migrations, err := readMigrations(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	if len(migrations) == 0 {
		db.log.Infow("no migrations found", "dir", migrationsDir)
		return nil
	}

	if err := db.createMigrationTable(); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}

	for _, m := range migrations {
		applied, err := db.isMigrationApplied(m.Number)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if applied {
			continue
		}

		db.log.Infow("applying migration", "version", m.Number, "name", m.Name)
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d: %w", m.Number, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES ($1, $2)",
			m.Number, m.Name,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration: %w", err)
		}
	}
	return nil
}

// readMigrations loads files named NNN_description.sql, sorted by number.
func readMigrations(migrationsDir string) ([]Migration, error) {
	var migrations []Migration

	err := filepath.WalkDir(migrationsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}
		parts := strings.Split(d.Name(), "_")
		if len(parts) < 2 {
			return nil
		}
		number, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil
		}
		sqlBytes, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", d.Name(), err)
		}
		migrations = append(migrations, Migration{
			Number: number,
			Name:   strings.TrimSuffix(strings.Join(parts[1:], "_"), ".sql"),
			SQL:    string(sqlBytes),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Number < migrations[j].Number
	})
	return migrations, nil
}

func (db *DB) createMigrationTable() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT NOW()
		)
	`)
	return err
}

func (db *DB) isMigrationApplied(number int) (bool, error) {
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM schema_migrations WHERE version = $1", number,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
