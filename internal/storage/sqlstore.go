package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vvka-141/tripload/internal/db"
	"github.com/vvka-141/tripload/pkg/tripload"
)

// SQLOptions adapts SQLStore to one database/sql driver.
type SQLOptions struct {
	Dialect SQLDialect

	// TransactionalDDL runs DROP and CREATE in one transaction.
	TransactionalDDL bool

	// IsDatabaseExists recognizes the driver's duplicate-database error.
	IsDatabaseExists func(error) bool

	// CreateDatabase replaces the CREATE DATABASE statement when set.
	CreateDatabase func(ctx context.Context, name string) error

	// BulkStatement, when set, returns the statement prepared for Append
	// instead of InsertSQL. With FlushBulk the statement is executed once
	// more without arguments after the last row.
	BulkStatement func(table string, columns []string) string
	FlushBulk     bool
}

var _ tripload.Store = (*SQLStore)(nil)

// SQLStore is a Store on a single database/sql connection.
type SQLStore struct {
	conn   *sql.DB
	config *tripload.ConnectionConfig
	opts   SQLOptions
}

// OpenSQL opens driverName with dsn, pins the pool to one connection and
// pings it. Connection errors wrap tripload.ErrConnectionFailed.
func OpenSQL(ctx context.Context, driverName, dsn string, config *tripload.ConnectionConfig, opts SQLOptions) (*SQLStore, error) {
	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, db.WrapConnectionError(err, config)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	pingCtx := ctx
	if config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, config.ConnectTimeout)
		defer cancel()
	}
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, db.WrapConnectionError(err, config)
	}

	return &SQLStore{conn: conn, config: config, opts: opts}, nil
}

// DB exposes the underlying handle, mainly for tests.
func (s *SQLStore) DB() *sql.DB {
	return s.conn
}

// CreateDatabase issues CREATE DATABASE in autocommit mode.
func (s *SQLStore) CreateDatabase(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: database name is empty", tripload.ErrInvalidConfig)
	}
	var err error
	if s.opts.CreateDatabase != nil {
		err = s.opts.CreateDatabase(ctx, name)
	} else {
		_, err = s.conn.ExecContext(ctx, s.opts.Dialect.CreateDatabaseSQL(name))
	}
	if err == nil {
		return nil
	}
	if s.opts.IsDatabaseExists != nil && s.opts.IsDatabaseExists(err) {
		return fmt.Errorf("%w: %q: %w", tripload.ErrDatabaseExists, name, err)
	}
	return fmt.Errorf("create database %q: %w", name, err)
}

// ReplaceTable drops and recreates table.
func (s *SQLStore) ReplaceTable(ctx context.Context, table string, schema tripload.Schema) error {
	if err := schema.Validate(); err != nil {
		return fmt.Errorf("%w: table %s: %w", tripload.ErrLoadFailed, table, err)
	}
	stmts := []string{
		s.opts.Dialect.DropTableSQL(table),
		s.opts.Dialect.CreateTableSQL(table, schema),
	}

	if !s.opts.TransactionalDDL {
		for _, stmt := range stmts {
			if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("%w: %s: %w", tripload.ErrLoadFailed, firstLine(stmt), err)
			}
		}
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %w", tripload.ErrLoadFailed, err)
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: %s: %w", tripload.ErrLoadFailed, firstLine(stmt), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", tripload.ErrLoadFailed, err)
	}
	return nil
}

// Append inserts all rows in one transaction with one prepared statement.
// Any failing row rolls the whole batch back.
func (s *SQLStore) Append(ctx context.Context, table string, ds *tripload.Dataset) (int64, error) {
	if ds.Len() == 0 {
		return 0, nil
	}
	columns := ds.Schema.Names()

	stmtSQL := s.opts.Dialect.InsertSQL(table, columns)
	if s.opts.BulkStatement != nil {
		stmtSQL = s.opts.BulkStatement(table, columns)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin tx: %w", tripload.ErrLoadFailed, err)
	}
	rollback := func() { _ = tx.Rollback() }

	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		rollback()
		return 0, fmt.Errorf("%w: prepare insert into %s: %w", tripload.ErrLoadFailed, table, err)
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	for i, row := range ds.Rows {
		if len(row) != len(columns) {
			rollback()
			return 0, fmt.Errorf("%w: %s row %d: %d values for %d columns", tripload.ErrLoadFailed, table, i, len(row), len(columns))
		}
		copy(args, row)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			rollback()
			return 0, fmt.Errorf("%w: %s row %d: %w", tripload.ErrLoadFailed, table, i, err)
		}
	}

	if s.opts.FlushBulk {
		if _, err := stmt.ExecContext(ctx); err != nil {
			rollback()
			return 0, fmt.Errorf("%w: %s: finalize bulk copy: %w", tripload.ErrLoadFailed, table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit: %w", tripload.ErrLoadFailed, err)
	}
	return int64(ds.Len()), nil
}

// Close releases the connection.
func (s *SQLStore) Close(ctx context.Context) error {
	return s.conn.Close()
}

func firstLine(stmt string) string {
	line, _, _ := strings.Cut(stmt, "\n")
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), "("))
}
