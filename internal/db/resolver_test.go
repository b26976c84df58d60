package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/tripload/internal/config"
	"github.com/vvka-141/tripload/pkg/tripload"
)

func TestGranularConnFlags_IsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		flags GranularConnFlags
		want  bool
	}{
		{"empty flags", GranularConnFlags{}, true},
		{"only host set", GranularConnFlags{Host: "localhost"}, false},
		{"only port set", GranularConnFlags{Port: 5432}, false},
		{"only username set", GranularConnFlags{Username: "root"}, false},
		{"only database set", GranularConnFlags{Database: "ny_taxi"}, true},
		{"only sslmode set", GranularConnFlags{SSLMode: "require"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.flags.IsEmpty())
		})
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TRIPLOAD_CONNECTION_STRING", "mysql://root:root@db/ny_taxi")
	t.Setenv("DATABASE_URL", "postgresql://user@host/db")
	t.Setenv("PGHOST", "testhost")
	t.Setenv("PGPORT", "5433")
	t.Setenv("PGUSER", "testuser")
	t.Setenv("PGPASSWORD", "testpass")
	t.Setenv("PGDATABASE", "testdb")
	t.Setenv("PGSSLMODE", "require")

	env := LoadFromEnvironment()

	assert.Equal(t, "mysql://root:root@db/ny_taxi", env.TRIPLOAD_CONNECTION_STRING)
	assert.Equal(t, "postgresql://user@host/db", env.DATABASE_URL)
	assert.Equal(t, "testhost", env.PGHOST)
	assert.Equal(t, "5433", env.PGPORT)
	assert.Equal(t, "testuser", env.PGUSER)
	assert.Equal(t, "testpass", env.PGPASSWORD)
	assert.Equal(t, "testdb", env.PGDATABASE)
	assert.Equal(t, "require", env.PGSSLMODE)
}

func TestResolveConnectionParams_ConflictDetection(t *testing.T) {
	_, err := ResolveConnectionParams(
		"postgresql://localhost/ny_taxi",
		&GranularConnFlags{Host: "other"},
		nil, nil,
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, tripload.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "cannot specify both")

	// -d alone is allowed next to --connection
	cfg, err := ResolveConnectionParams(
		"postgresql://localhost/ny_taxi",
		&GranularConnFlags{Database: "other_db"},
		nil, nil,
	)
	require.NoError(t, err)
	assert.Equal(t, "other_db", cfg.Database)
}

func TestResolveConnectionParams_Defaults(t *testing.T) {
	cfg, err := ResolveConnectionParams("", nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, tripload.DialectPostgres, cfg.Dialect)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "postgres", cfg.Username)
	assert.Equal(t, "root", cfg.Password)
	assert.Equal(t, "ny_taxi", cfg.Database)
	assert.Equal(t, "prefer", cfg.SSLMode)
	assert.Equal(t, "tripload", cfg.AppName)
}

func TestResolveConnectionParams_FromConnectionString(t *testing.T) {
	env := &EnvVars{PGSSLMODE: "require", PGPASSWORD: "fromenv"}

	cfg, err := ResolveConnectionParams("postgresql://root@pg:5433/trips", nil, env, nil)
	require.NoError(t, err)
	assert.Equal(t, "pg", cfg.Host)
	assert.Equal(t, 5433, cfg.Port)
	assert.Equal(t, "trips", cfg.Database)
	assert.Equal(t, "require", cfg.SSLMode, "PGSSLMODE fills in missing sslmode")
	assert.Equal(t, "fromenv", cfg.Password, "PGPASSWORD fills in missing password")

	cfg, err = ResolveConnectionParams("postgresql://root:pw@pg/trips?sslmode=disable", nil, env, nil)
	require.NoError(t, err)
	assert.Equal(t, "disable", cfg.SSLMode, "explicit sslmode wins over PGSSLMODE")
	assert.Equal(t, "pw", cfg.Password)

	cfg, err = ResolveConnectionParams("postgresql://root:pw@pg", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ny_taxi", cfg.Database, "missing database defaults to ny_taxi")
}

func TestResolveConnectionParams_OtherDialects(t *testing.T) {
	cfg, err := ResolveConnectionParams("mysql://root:root@db/ny_taxi", nil, &EnvVars{PGPASSWORD: "ignored"}, nil)
	require.NoError(t, err)
	assert.Equal(t, tripload.DialectMySQL, cfg.Dialect)
	assert.Equal(t, 3306, cfg.Port)
	assert.Equal(t, "root", cfg.Password)
	assert.Empty(t, cfg.AppName)

	cfg, err = ResolveConnectionParams("sqlite:///tmp/ny_taxi.db", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, tripload.DialectSQLite, cfg.Dialect)
	assert.Equal(t, "/tmp/ny_taxi.db", cfg.Database)
}

func TestResolveConnectionParams_InvalidConnectionString(t *testing.T) {
	_, err := ResolveConnectionParams("oracle://x", nil, nil, nil)
	assert.ErrorIs(t, err, tripload.ErrInvalidConfig)
}

func TestResolveConnectionParams_EnvironmentConnectionStrings(t *testing.T) {
	env := &EnvVars{
		TRIPLOAD_CONNECTION_STRING: "postgresql://a@first/one",
		DATABASE_URL:               "postgresql://b@second/two",
	}
	cfg, err := ResolveConnectionParams("", nil, env, nil)
	require.NoError(t, err)
	assert.Equal(t, "first", cfg.Host)

	env.TRIPLOAD_CONNECTION_STRING = ""
	cfg, err = ResolveConnectionParams("", nil, env, nil)
	require.NoError(t, err)
	assert.Equal(t, "second", cfg.Host)

	// Granular flags switch off the environment connection strings.
	cfg, err = ResolveConnectionParams("", &GranularConnFlags{Host: "flaghost"}, env, nil)
	require.NoError(t, err)
	assert.Equal(t, "flaghost", cfg.Host)
}

func TestResolveConnectionParams_InvalidPGPORT(t *testing.T) {
	_, err := ResolveConnectionParams("", nil, &EnvVars{PGPORT: "abc"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, tripload.ErrInvalidConfig)
}

func TestResolveConnectionParams_Precedence(t *testing.T) {
	flags := &GranularConnFlags{Host: "flaghost"}
	env := &EnvVars{PGHOST: "envhost", PGPORT: "5433", PGUSER: "envuser"}
	project := &config.ProjectConfig{Connection: config.ConnectionConfig{
		Host:     "yamlhost",
		Port:     6000,
		Username: "yamluser",
		Database: "yamldb",
		SSLMode:  "verify-full",
	}}

	cfg, err := ResolveConnectionParams("", flags, env, project)
	require.NoError(t, err)

	assert.Equal(t, "flaghost", cfg.Host, "flag overrides env and yaml")
	assert.Equal(t, 5433, cfg.Port, "env overrides yaml")
	assert.Equal(t, "envuser", cfg.Username)
	assert.Equal(t, "yamldb", cfg.Database, "yaml used when nothing else set")
	assert.Equal(t, "verify-full", cfg.SSLMode)
}

func TestResolveConnectionParams_YAMLDialect(t *testing.T) {
	project := &config.ProjectConfig{Connection: config.ConnectionConfig{Dialect: "sqlserver"}}
	cfg, err := ResolveConnectionParams("", nil, nil, project)
	require.NoError(t, err)
	assert.Equal(t, tripload.DialectSQLServer, cfg.Dialect)
	assert.Equal(t, 1433, cfg.Port)
	assert.Empty(t, cfg.SSLMode)

	project.Connection.Dialect = "db2"
	_, err = ResolveConnectionParams("", nil, nil, project)
	assert.ErrorIs(t, err, tripload.ErrUnsupportedDialect)
}

func TestResolveMaintenanceDatabase(t *testing.T) {
	project := &config.ProjectConfig{Connection: config.ConnectionConfig{MaintenanceDatabase: "template1"}}

	assert.Equal(t, "flagdb", ResolveMaintenanceDatabase("flagdb", project))
	assert.Equal(t, "template1", ResolveMaintenanceDatabase("", project))
	assert.Equal(t, "", ResolveMaintenanceDatabase("", nil))
}
