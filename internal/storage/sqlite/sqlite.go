// Package sqlite stores datasets in a SQLite file through modernc.org/sqlite.
//
// The "database" of a connection is the file path. CREATE DATABASE creates
// the file and refuses to touch one that already exists.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"

	_ "modernc.org/sqlite"

	"github.com/vvka-141/tripload/internal/storage"
	"github.com/vvka-141/tripload/pkg/tripload"
)

const driverName = "sqlite"

// MemoryDatabase is the path of a private in-memory database.
const MemoryDatabase = ":memory:"

// Dialect is the SQL SQLite understands.
var Dialect = storage.SQLDialect{
	Name:       tripload.DialectSQLite,
	QuoteIdent: storage.QuoteWith(`"`, `"`),
	Types: map[tripload.ColumnType]string{
		tripload.TypeString:    "TEXT",
		tripload.TypeInt64:     "INTEGER",
		tripload.TypeFloat64:   "REAL",
		tripload.TypeBool:      "BOOLEAN",
		tripload.TypeTimestamp: "TIMESTAMP",
	},
	Placeholder: storage.QuestionPlaceholder,
}

func init() {
	storage.Register(storage.Backend{
		Dialect:       tripload.DialectSQLite,
		MaintenanceDB: MemoryDatabase,
		Open:          Open,
	})
}

// Open opens the database file named by cfg.Database.
func Open(ctx context.Context, cfg *tripload.ConnectionConfig) (tripload.Store, error) {
	return OpenStore(ctx, cfg)
}

// OpenStore is Open returning the concrete store.
func OpenStore(ctx context.Context, cfg *tripload.ConnectionConfig) (*storage.SQLStore, error) {
	return storage.OpenSQL(ctx, driverName, DSN(cfg), cfg, storage.SQLOptions{
		Dialect:          Dialect,
		TransactionalDDL: true,
		CreateDatabase:   createFile,
		IsDatabaseExists: func(err error) bool { return errors.Is(err, fs.ErrExist) },
	})
}

// DSN renders the path plus driver parameters such as _pragma.
func DSN(cfg *tripload.ConnectionConfig) string {
	path := cfg.Database
	if path == "" {
		path = MemoryDatabase
	}
	if len(cfg.AdditionalParams) == 0 {
		return path
	}
	q := url.Values{}
	for k, v := range cfg.AdditionalParams {
		q.Set(k, v)
	}
	return path + "?" + q.Encode()
}

func createFile(_ context.Context, name string) error {
	if name == MemoryDatabase {
		return fmt.Errorf("%w: cannot create %s as a database file", tripload.ErrInvalidConfig, MemoryDatabase)
	}
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
