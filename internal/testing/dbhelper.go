package testing

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/tripload/internal/db"
	"github.com/vvka-141/tripload/internal/testinfra"
	"github.com/vvka-141/tripload/pkg/tripload"
)

// TestConnEnvVar points integration tests at an existing server.
const TestConnEnvVar = "TRIPLOAD_TEST_CONN"

// Connection strings for existing MySQL and SQL Server instances.
const (
	TestMySQLEnvVar     = "TRIPLOAD_TEST_MYSQL"
	TestSQLServerEnvVar = "TRIPLOAD_TEST_SQLSERVER"
)

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		ctx := context.Background()
		container, err := testinfra.StartSimplePostgres(ctx)
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: TRIPLOAD_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(TestConnEnvVar); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", TestConnEnvVar, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for convenience.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// CreateTestDB creates a test database with the given name.
// Returns a cleanup function that should be called with t.Cleanup().
func CreateTestDB(t *testing.T, connString, dbName string) func() {
	t.Helper()

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect for test DB creation: %v", err)
	}

	_, err = pool.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{dbName}.Sanitize())
	pool.Close()
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", dbName, err)
	}

	return func() {
		CleanupTestDB(t, connString, dbName)
	}
}

// CleanupTestDB drops the test database.
// Safe to call multiple times (uses DROP DATABASE IF EXISTS).
func CleanupTestDB(t *testing.T, connString, dbName string) {
	t.Helper()

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Logf("Warning: Failed to connect for cleanup: %v", err)
		return
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()
	`, dbName)
	if err != nil {
		t.Logf("Warning: Failed to terminate connections to %s: %v", dbName, err)
	}

	if _, err = pool.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		t.Logf("Warning: Failed to drop database %s: %v", dbName, err)
	}
}

// GetTestPool creates a connection pool to the specified database for testing.
// The pool is automatically closed when the test completes.
func GetTestPool(t *testing.T, connString, dbName string) *pgxpool.Pool {
	t.Helper()

	config, err := db.ParseConnectionString(connString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), db.BuildConnectionString(config.WithDatabase(dbName)))
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

type sharedServer struct {
	once sync.Once
	cfg  *tripload.ConnectionConfig
	err  error
}

var (
	mysqlServer     sharedServer
	sqlServerServer sharedServer
)

// RequireMySQL returns a config for a MySQL server with no database
// selected: TRIPLOAD_TEST_MYSQL if set, else a shared testcontainer.
func RequireMySQL(t *testing.T) *tripload.ConnectionConfig {
	t.Helper()
	return requireServer(t, TestMySQLEnvVar, &mysqlServer, testinfra.StartMySQL)
}

// RequireSQLServer is RequireMySQL for SQL Server.
func RequireSQLServer(t *testing.T) *tripload.ConnectionConfig {
	t.Helper()
	return requireServer(t, TestSQLServerEnvVar, &sqlServerServer, testinfra.StartSQLServer)
}

func requireServer(t *testing.T, envVar string, srv *sharedServer, start func(context.Context) (*testinfra.ServerContainer, error)) *tripload.ConnectionConfig {
	t.Helper()
	SkipIfShort(t)

	if connString := os.Getenv(envVar); connString != "" {
		cfg, err := db.ParseConnectionString(connString)
		if err != nil {
			t.Fatalf("Failed to parse %s: %v", envVar, err)
		}
		return cfg
	}

	srv.once.Do(func() {
		ctr, err := start(context.Background())
		if err != nil {
			srv.err = err
			return
		}
		srv.cfg = ctr.Config
	})
	if srv.err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", envVar, srv.err)
	}
	return srv.cfg.WithDatabase(srv.cfg.Database)
}
