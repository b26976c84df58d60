// Package testinfra starts throwaway database servers for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mssql"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vvka-141/tripload/pkg/tripload"
)

const (
	PostgresImage    = "postgres:17-alpine"
	PostgresUser     = "postgres"
	PostgresPassword = "root"
	PostgresDB       = "postgres"

	MySQLImage    = "mysql:8.4"
	MySQLUser     = "root"
	MySQLPassword = "root"

	SQLServerImage    = "mcr.microsoft.com/mssql/server:2022-CU14-ubuntu-22.04"
	SQLServerUser     = "sa"
	SQLServerPassword = "Tripload#Passw0rd"
)

type PostgresContainer struct {
	*postgres.PostgresContainer
	ConnString string
}

// StartSimplePostgres starts a plain PostgreSQL server without TLS.
func StartSimplePostgres(ctx context.Context) (*PostgresContainer, error) {
	ctr, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(PostgresDB),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &PostgresContainer{PostgresContainer: ctr, ConnString: connStr}, nil
}

// ServerContainer is a running server plus a config pointing at it with no
// database selected.
type ServerContainer struct {
	testcontainers.Container
	Config *tripload.ConnectionConfig
}

// StartMySQL starts a MySQL server reachable as root.
func StartMySQL(ctx context.Context) (*ServerContainer, error) {
	ctr, err := mysql.Run(ctx,
		MySQLImage,
		mysql.WithUsername(MySQLUser),
		mysql.WithPassword(MySQLPassword),
	)
	if err != nil {
		return nil, fmt.Errorf("start mysql: %w", err)
	}
	return serverConfig(ctx, ctr, tripload.DialectMySQL, "3306/tcp", MySQLUser, MySQLPassword)
}

// StartSQLServer starts a SQL Server Developer edition as sa.
func StartSQLServer(ctx context.Context) (*ServerContainer, error) {
	ctr, err := mssql.Run(ctx,
		SQLServerImage,
		mssql.WithAcceptEULA(),
		mssql.WithPassword(SQLServerPassword),
	)
	if err != nil {
		return nil, fmt.Errorf("start sqlserver: %w", err)
	}
	return serverConfig(ctx, ctr, tripload.DialectSQLServer, "1433/tcp", SQLServerUser, SQLServerPassword)
}

func serverConfig(ctx context.Context, ctr testcontainers.Container, dialect tripload.Dialect, port, user, password string) (*ServerContainer, error) {
	host, err := ctr.Host(ctx)
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get host: %w", err)
	}
	mapped, err := ctr.MappedPort(ctx, nat.Port(port))
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	return &ServerContainer{
		Container: ctr,
		Config: &tripload.ConnectionConfig{
			Dialect:  dialect,
			Host:     host,
			Port:     mapped.Int(),
			Username: user,
			Password: password,
			SSLMode:  "disable",
		},
	}, nil
}
