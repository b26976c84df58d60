package storagetest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vvka-141/tripload/internal/storage"
)

var _ Inspector = SQLInspector{}

// SQLInspector is an Inspector over a database/sql handle.
type SQLInspector struct {
	DB      *sql.DB
	Dialect storage.SQLDialect

	// ColumnsQuery returns the column names of the table bound to its only
	// parameter, in declaration order.
	ColumnsQuery string

	// TextType is the engine's type for CAST(... AS <TextType>).
	TextType string
}

func (i SQLInspector) Columns(ctx context.Context, table string) ([]string, error) {
	rows, err := i.DB.QueryContext(ctx, i.ColumnsQuery, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func (i SQLInspector) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	err := i.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+i.Dialect.QuoteTable(table)).Scan(&n)
	return n, err
}

// Strings returns the columns cast to text, NULL as "".
func (i SQLInspector) Strings(ctx context.Context, table, orderBy string, columns ...string) ([][]string, error) {
	casts := make([]string, len(columns))
	for j, c := range columns {
		casts[j] = fmt.Sprintf("CAST(%s AS %s)", i.Dialect.QuoteIdent(c), i.TextType)
	}
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(casts, ", "), i.Dialect.QuoteTable(table), i.Dialect.QuoteIdent(orderBy))

	rows, err := i.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for j := range vals {
			dest[j] = &vals[j]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make([]string, len(columns))
		for j, v := range vals {
			row[j] = v.String
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
