package storage

import (
	"fmt"
	"strings"

	"github.com/vvka-141/tripload/pkg/tripload"
)

// SQLDialect captures the per-engine differences in generated SQL.
type SQLDialect struct {
	Name tripload.Dialect

	// QuoteIdent quotes a single identifier part.
	QuoteIdent func(string) string

	// Types maps column types to engine type names.
	Types map[tripload.ColumnType]string

	// Placeholder returns the bind parameter for 1-based position i.
	Placeholder func(i int) string
}

// QuoteTable quotes a possibly schema-qualified name ("schema.table").
func (d SQLDialect) QuoteTable(name string) string {
	parts := SplitQualified(name)
	for i, p := range parts {
		parts[i] = d.QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}

// TypeName returns the engine type for t.
func (d SQLDialect) TypeName(t tripload.ColumnType) string {
	if name, ok := d.Types[t]; ok {
		return name
	}
	return d.Types[tripload.TypeString]
}

// CreateTableSQL renders CREATE TABLE for the schema. Non-nullable columns
// get NOT NULL.
func (d SQLDialect) CreateTableSQL(table string, schema tripload.Schema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", d.QuoteTable(table))
	for i, col := range schema.Columns {
		fmt.Fprintf(&b, "  %s %s", d.QuoteIdent(col.Name), d.TypeName(col.Type))
		if !col.Nullable {
			b.WriteString(" NOT NULL")
		}
		if i < len(schema.Columns)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String()
}

// DropTableSQL renders DROP TABLE IF EXISTS.
func (d SQLDialect) DropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + d.QuoteTable(table)
}

// InsertSQL renders a single-row parameterized INSERT.
func (d SQLDialect) InsertSQL(table string, columns []string) string {
	cols := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = d.QuoteIdent(c)
		params[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteTable(table), strings.Join(cols, ", "), strings.Join(params, ", "))
}

// CreateDatabaseSQL renders CREATE DATABASE.
func (d SQLDialect) CreateDatabaseSQL(name string) string {
	return "CREATE DATABASE " + d.QuoteIdent(name)
}

// SplitQualified splits "schema.table" into its parts, trimming blanks.
func SplitQualified(name string) []string {
	raw := strings.Split(name, ".")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// QuoteWith returns a QuoteIdent that wraps in open/close and doubles any
// embedded close character.
func QuoteWith(open, close string) func(string) string {
	return func(s string) string {
		return open + strings.ReplaceAll(s, close, close+close) + close
	}
}

// QuestionPlaceholder renders "?" for every position.
func QuestionPlaceholder(int) string { return "?" }

// DollarPlaceholder renders "$1", "$2", ...
func DollarPlaceholder(i int) string { return fmt.Sprintf("$%d", i) }
