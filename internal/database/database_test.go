package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/dayloop-io/dayloop/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// DatabaseTestSuite runs against SQLite by default; set DB_TYPE=postgres
// to exercise the PostgreSQL path against a local server.
type DatabaseTestSuite struct {
	suite.Suite
	db     *sql.DB
	dbType string
}

func (s *DatabaseTestSuite) SetupTest() {
	var cfg *config.Config

	s.dbType = os.Getenv("DB_TYPE")
	if s.dbType == "postgres" {
		cfg = &config.Config{}
		cfg.Database.Type = "postgres"
		cfg.Database.Host = "localhost"
		cfg.Database.Port = "5433"
		cfg.Database.Name = "dayloop_test"
		cfg.Database.User = "dayloop_test"
		cfg.Database.Password = "testpassword"
		cfg.Database.SSLMode = "disable"
	} else {
		s.dbType = "sqlite"
		cfg = &config.Config{}
		cfg.Database.Type = "sqlite"
		cfg.Database.Path = filepath.Join(s.T().TempDir(), "dayloop_test.db")
	}

	db, err := Open(cfg)
	s.Require().NoError(err, "database initialization should succeed")
	s.db = db
}

func (s *DatabaseTestSuite) TearDownTest() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *DatabaseTestSuite) TestMigrationsApplied() {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	s.Require().NoError(err)
	s.Equal(len(GetMigrations(s.dbType)), count, "every migration is recorded")
}

func (s *DatabaseTestSuite) TestMigrationsIdempotent() {
	s.Require().NoError(RunMigrations(s.db, s.dbType))

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	s.Require().NoError(err)
	s.Equal(len(GetMigrations(s.dbType)), count, "re-running applies nothing new")
}

func (s *DatabaseTestSuite) TestTablesExist() {
	for _, table := range []string{"persons", "sessions", "day_goals", "keyword_mappings"} {
		_, err := s.db.Exec("SELECT 1 FROM " + table + " LIMIT 1")
		s.NoError(err, "table %s should exist", table)
	}
}

func TestDatabaseSuite(t *testing.T) {
	suite.Run(t, new(DatabaseTestSuite))
}

func TestOpenRejectsUnknownType(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Type = "oracle"

	_, err := Open(cfg)
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestMigrationVersionsAreSequential(t *testing.T) {
	for _, dbType := range []string{"postgres", "sqlite"} {
		migrations := GetMigrations(dbType)
		assert.NotEmpty(t, migrations)
		for i, m := range migrations {
			assert.Equal(t, i+1, m.Version, "%s migration %q", dbType, m.Description)
			assert.NotEmpty(t, m.SQL)
		}
	}
}
