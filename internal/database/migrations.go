package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// GetMigrations returns all database migrations
func GetMigrations(dbType string) []Migration {
	if dbType == "postgres" {
		return getPostgresMigrations()
	}
	return getSQLiteMigrations()
}

func getPostgresMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create persons table",
			SQL: `CREATE TABLE IF NOT EXISTS persons (
				key UUID PRIMARY KEY,
				email VARCHAR(255) UNIQUE NOT NULL,
				password BYTEA NOT NULL,
				username VARCHAR(255),
				is_paying BOOLEAN NOT NULL DEFAULT FALSE,
				using_tagging BOOLEAN NOT NULL DEFAULT TRUE,
				date_signed_up TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			)`,
		},
		{
			Version:     2,
			Description: "Create sessions table",
			SQL: `CREATE TABLE IF NOT EXISTS sessions (
				token VARCHAR(255) PRIMARY KEY,
				person_key UUID NOT NULL REFERENCES persons(key) ON DELETE CASCADE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				expires_at TIMESTAMP WITH TIME ZONE NOT NULL
			)`,
		},
		{
			Version:     3,
			Description: "Create day_goals table",
			SQL: `CREATE TABLE IF NOT EXISTS day_goals (
				key UUID PRIMARY KEY,
				person_key UUID NOT NULL REFERENCES persons(key) ON DELETE CASCADE,
				goal_date DATE NOT NULL,
				text TEXT NOT NULL,
				sort INTEGER NOT NULL DEFAULT 0,
				keywords TEXT[] NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				completed_at TIMESTAMP WITH TIME ZONE,
				archived_at TIMESTAMP WITH TIME ZONE
			)`,
		},
		{
			Version:     4,
			Description: "Create keyword_mappings table",
			SQL: `CREATE TABLE IF NOT EXISTS keyword_mappings (
				key UUID PRIMARY KEY,
				person_key UUID NOT NULL REFERENCES persons(key) ON DELETE CASCADE,
				bucket VARCHAR(255) NOT NULL,
				triggers TEXT[] NOT NULL DEFAULT '{}',
				UNIQUE (person_key, bucket)
			)`,
		},
		{
			Version:     5,
			Description: "Create indexes",
			SQL: `CREATE INDEX IF NOT EXISTS idx_sessions_person_key ON sessions(person_key);
				CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
				CREATE INDEX IF NOT EXISTS idx_day_goals_person_date ON day_goals(person_key, goal_date);
				CREATE INDEX IF NOT EXISTS idx_keyword_mappings_person_key ON keyword_mappings(person_key);`,
		},
	}
}

func getSQLiteMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create persons table",
			SQL: `CREATE TABLE IF NOT EXISTS persons (
				key TEXT PRIMARY KEY,
				email TEXT UNIQUE NOT NULL,
				password BLOB NOT NULL,
				username TEXT,
				is_paying BOOLEAN NOT NULL DEFAULT 0,
				using_tagging BOOLEAN NOT NULL DEFAULT 1,
				date_signed_up DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		},
		{
			Version:     2,
			Description: "Create sessions table",
			SQL: `CREATE TABLE IF NOT EXISTS sessions (
				token TEXT PRIMARY KEY,
				person_key TEXT NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				expires_at DATETIME NOT NULL,
				FOREIGN KEY (person_key) REFERENCES persons(key) ON DELETE CASCADE
			)`,
		},
		{
			Version:     3,
			Description: "Create day_goals table",
			SQL: `CREATE TABLE IF NOT EXISTS day_goals (
				key TEXT PRIMARY KEY,
				person_key TEXT NOT NULL,
				goal_date DATE NOT NULL,
				text TEXT NOT NULL,
				sort INTEGER NOT NULL DEFAULT 0,
				keywords TEXT NOT NULL DEFAULT '[]',
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				completed_at DATETIME,
				archived_at DATETIME,
				FOREIGN KEY (person_key) REFERENCES persons(key) ON DELETE CASCADE
			)`,
		},
		{
			Version:     4,
			Description: "Create keyword_mappings table",
			SQL: `CREATE TABLE IF NOT EXISTS keyword_mappings (
				key TEXT PRIMARY KEY,
				person_key TEXT NOT NULL,
				bucket TEXT NOT NULL,
				triggers TEXT NOT NULL DEFAULT '[]',
				UNIQUE (person_key, bucket),
				FOREIGN KEY (person_key) REFERENCES persons(key) ON DELETE CASCADE
			)`,
		},
		{
			Version:     5,
			Description: "Create indexes",
			SQL: `CREATE INDEX IF NOT EXISTS idx_sessions_person_key ON sessions(person_key);
				CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
				CREATE INDEX IF NOT EXISTS idx_day_goals_person_date ON day_goals(person_key, goal_date);
				CREATE INDEX IF NOT EXISTS idx_keyword_mappings_person_key ON keyword_mappings(person_key);`,
		},
	}
}

// createMigrationsTable creates the migrations tracking table
func createMigrationsTable(db *sql.DB, dbType string) error {
	var query string
	if dbType == "postgres" {
		query = `CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`
	} else {
		query = `CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
	}

	_, err := db.Exec(query)
	return err
}

// getAppliedMigrations returns the set of applied migration versions
func getAppliedMigrations(db *sql.DB) (map[int]bool, error) {
	applied := make(map[int]bool)

	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return applied, err
	}
	defer rows.Close()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return applied, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// recordMigration records that a migration has been applied
func recordMigration(db *sql.DB, dbType string, version int) error {
	var query string
	if dbType == "postgres" {
		query = "INSERT INTO schema_migrations (version) VALUES ($1)"
	} else {
		query = "INSERT INTO schema_migrations (version) VALUES (?)"
	}
	_, err := db.Exec(query, version)
	return err
}

// RunMigrations runs all pending migrations
func RunMigrations(db *sql.DB, dbType string) error {
	if err := createMigrationsTable(db, dbType); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := getAppliedMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range GetMigrations(dbType) {
		if applied[migration.Version] {
			continue
		}

		log.Printf("Applying migration %d: %s", migration.Version, migration.Description)

		// Split SQL by semicolon and execute each statement
		for _, stmt := range strings.Split(migration.SQL, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
			}
		}

		if err := recordMigration(db, dbType, migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
