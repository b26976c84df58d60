// Package postgres stores datasets in PostgreSQL through pgx.
//
// DDL runs inside a transaction and rows are loaded with COPY FROM STDIN,
// so a failed Append leaves the table empty.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/tripload/internal/db"
	"github.com/vvka-141/tripload/internal/storage"
	"github.com/vvka-141/tripload/pkg/tripload"
)

// SQLSTATE duplicate_database.
const duplicateDatabase = "42P04"

// Dialect is the SQL PostgreSQL understands.
var Dialect = storage.SQLDialect{
	Name:       tripload.DialectPostgres,
	QuoteIdent: func(s string) string { return pgx.Identifier{s}.Sanitize() },
	Types: map[tripload.ColumnType]string{
		tripload.TypeString:    "TEXT",
		tripload.TypeInt64:     "BIGINT",
		tripload.TypeFloat64:   "DOUBLE PRECISION",
		tripload.TypeBool:      "BOOLEAN",
		tripload.TypeTimestamp: "TIMESTAMP",
	},
	Placeholder: storage.DollarPlaceholder,
}

func init() {
	storage.Register(storage.Backend{
		Dialect:       tripload.DialectPostgres,
		MaintenanceDB: tripload.DefaultManagementDB,
		Open:          Open,
	})
}

var _ tripload.Store = (*Store)(nil)

// Store is a tripload.Store on one pgx connection.
type Store struct {
	conn *pgx.Conn
}

// Open connects to cfg.Database.
func Open(ctx context.Context, cfg *tripload.ConnectionConfig) (tripload.Store, error) {
	return OpenStore(ctx, cfg)
}

// OpenStore is Open returning the concrete store.
func OpenStore(ctx context.Context, cfg *tripload.ConnectionConfig) (*Store, error) {
	pgCfg, err := pgx.ParseConfig(db.BuildConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tripload.ErrInvalidConfig, err)
	}
	if cfg.ConnectTimeout > 0 {
		pgCfg.ConnectTimeout = cfg.ConnectTimeout
	}

	conn, err := pgx.ConnectConfig(ctx, pgCfg)
	if err != nil {
		return nil, db.WrapConnectionError(err, cfg)
	}
	return &Store{conn: conn}, nil
}

// Conn exposes the underlying connection, mainly for tests.
func (s *Store) Conn() *pgx.Conn {
	return s.conn
}

// CreateDatabase runs CREATE DATABASE. PostgreSQL refuses it inside a
// transaction block, so it is sent on its own in autocommit mode.
func (s *Store) CreateDatabase(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("%w: database name is empty", tripload.ErrInvalidConfig)
	}
	_, err := s.conn.Exec(ctx, Dialect.CreateDatabaseSQL(name))
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == duplicateDatabase {
		return fmt.Errorf("%w: %q: %w", tripload.ErrDatabaseExists, name, err)
	}
	return fmt.Errorf("create database %q: %w", name, err)
}

// ReplaceTable drops and recreates the table in one transaction.
func (s *Store) ReplaceTable(ctx context.Context, table string, schema tripload.Schema) error {
	if err := schema.Validate(); err != nil {
		return fmt.Errorf("%w: table %s: %w", tripload.ErrLoadFailed, table, err)
	}
	err := pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, Dialect.DropTableSQL(table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
		if _, err := tx.Exec(ctx, Dialect.CreateTableSQL(table, schema)); err != nil {
			return fmt.Errorf("create %s: %w", table, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", tripload.ErrLoadFailed, err)
	}
	return nil
}

// Append copies every row with COPY FROM STDIN inside a transaction.
func (s *Store) Append(ctx context.Context, table string, ds *tripload.Dataset) (int64, error) {
	if ds.Len() == 0 {
		return 0, nil
	}
	var copied int64
	err := pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
		n, err := tx.CopyFrom(ctx,
			pgx.Identifier(storage.SplitQualified(table)),
			ds.Schema.Names(),
			pgx.CopyFromRows(ds.Rows),
		)
		if err != nil {
			return err
		}
		if n != int64(ds.Len()) {
			return fmt.Errorf("copied %d of %d rows", n, ds.Len())
		}
		copied = n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: copy into %s: %w", tripload.ErrLoadFailed, table, err)
	}
	return copied, nil
}

// Close closes the connection.
func (s *Store) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}
