// Package sqlserver stores datasets in Microsoft SQL Server through
// go-mssqldb, loading rows with the bulk copy protocol.
package sqlserver

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/vvka-141/tripload/internal/storage"
	"github.com/vvka-141/tripload/pkg/tripload"
)

const driverName = "sqlserver"

// MasterDatabase is where CREATE DATABASE runs.
const MasterDatabase = "master"

// Msg 1801: database already exists.
const errDatabaseExists = 1801

// Dialect is the T-SQL SQL Server understands.
var Dialect = storage.SQLDialect{
	Name:       tripload.DialectSQLServer,
	QuoteIdent: storage.QuoteWith("[", "]"),
	Types: map[tripload.ColumnType]string{
		tripload.TypeString:    "NVARCHAR(MAX)",
		tripload.TypeInt64:     "BIGINT",
		tripload.TypeFloat64:   "FLOAT",
		tripload.TypeBool:      "BIT",
		tripload.TypeTimestamp: "DATETIME2",
	},
	Placeholder: func(i int) string { return "@p" + strconv.Itoa(i) },
}

func init() {
	storage.Register(storage.Backend{
		Dialect:       tripload.DialectSQLServer,
		MaintenanceDB: MasterDatabase,
		Open:          Open,
	})
}

// Open connects to cfg.Database.
func Open(ctx context.Context, cfg *tripload.ConnectionConfig) (tripload.Store, error) {
	return OpenStore(ctx, cfg)
}

// OpenStore is Open returning the concrete store.
func OpenStore(ctx context.Context, cfg *tripload.ConnectionConfig) (*storage.SQLStore, error) {
	return storage.OpenSQL(ctx, driverName, DSN(cfg), cfg, storage.SQLOptions{
		Dialect:          Dialect,
		TransactionalDDL: true,
		IsDatabaseExists: isDatabaseExists,
		BulkStatement:    bulkStatement,
		FlushBulk:        true,
	})
}

// bulkStatement prepares an INSERT BULK; the driver buffers each Exec and
// sends the batch on the final argument-less Exec.
func bulkStatement(table string, columns []string) string {
	return mssql.CopyIn(Dialect.QuoteTable(table), mssql.BulkOptions{}, columns...)
}

// DSN renders cfg as a sqlserver:// URL.
func DSN(cfg *tripload.ConnectionConfig) string {
	port := cfg.Port
	if port == 0 {
		port = tripload.DefaultPort(tripload.DialectSQLServer)
	}
	q := url.Values{}
	for k, v := range cfg.AdditionalParams {
		q.Set(k, v)
	}
	if cfg.Database != "" {
		q.Set("database", cfg.Database)
	}
	if cfg.AppName != "" {
		q.Set("app name", cfg.AppName)
	}
	if cfg.ConnectTimeout > 0 {
		q.Set("dial timeout", strconv.Itoa(int(cfg.ConnectTimeout.Seconds())))
	}
	switch strings.ToLower(cfg.SSLMode) {
	case "disable":
		q.Set("encrypt", "disable")
	case "require":
		q.Set("encrypt", "true")
		q.Set("TrustServerCertificate", "true")
	case "verify-ca", "verify-full":
		q.Set("encrypt", "true")
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		RawQuery: q.Encode(),
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	return u.String()
}

func isDatabaseExists(err error) bool {
	var msErr mssql.Error
	return errors.As(err, &msErr) && msErr.Number == errDatabaseExists
}
