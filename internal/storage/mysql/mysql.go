// Package mysql stores datasets in MySQL or MariaDB through
// go-sql-driver/mysql.
//
// MySQL commits implicitly around DDL, so ReplaceTable runs its two
// statements without a transaction. Rows are still inserted in one.
package mysql

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/vvka-141/tripload/internal/storage"
	"github.com/vvka-141/tripload/pkg/tripload"
)

const driverName = "mysql"

// ER_DB_CREATE_EXISTS.
const errDatabaseExists = 1007

// Dialect is the SQL MySQL understands.
var Dialect = storage.SQLDialect{
	Name:       tripload.DialectMySQL,
	QuoteIdent: storage.QuoteWith("`", "`"),
	Types: map[tripload.ColumnType]string{
		tripload.TypeString:    "TEXT",
		tripload.TypeInt64:     "BIGINT",
		tripload.TypeFloat64:   "DOUBLE",
		tripload.TypeBool:      "BOOLEAN",
		tripload.TypeTimestamp: "DATETIME(6)",
	},
	Placeholder: storage.QuestionPlaceholder,
}

func init() {
	// MySQL needs no database selected to run CREATE DATABASE.
	storage.Register(storage.Backend{
		Dialect:       tripload.DialectMySQL,
		MaintenanceDB: "",
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
		TransactionalDDL: false,
		IsDatabaseExists: isDatabaseExists,
	})
}

// DSN renders cfg in the driver's user:pass@tcp(host:port)/db form.
// Timestamps are read and written in UTC.
func DSN(cfg *tripload.ConnectionConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	port := cfg.Port
	if port == 0 {
		port = tripload.DefaultPort(tripload.DialectMySQL)
	}
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Loc = time.UTC
	if cfg.ConnectTimeout > 0 {
		mc.Timeout = cfg.ConnectTimeout
	}
	mc.TLSConfig = tlsMode(cfg.SSLMode)

	params := map[string]string{"charset": "utf8mb4"}
	for k, v := range cfg.AdditionalParams {
		params[k] = v
	}
	mc.Params = params
	return mc.FormatDSN()
}

// tlsMode maps libpq-style sslmode values onto the driver's tls parameter.
func tlsMode(sslmode string) string {
	switch strings.ToLower(sslmode) {
	case "allow", "prefer", "preferred":
		return "preferred"
	case "require":
		return "skip-verify"
	case "verify-ca", "verify-full", "true":
		return "true"
	default:
		return ""
	}
}

func isDatabaseExists(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errDatabaseExists
}
