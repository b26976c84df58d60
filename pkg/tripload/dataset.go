package tripload

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ColumnType is the logical type of a dataset column.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInt64
	TypeFloat64
	TypeBool
	TypeTimestamp
)

// String returns a human-readable string representation of the ColumnType.
func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	case TypeBool:
		return "bool"
	case TypeTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// IsValid returns true if the ColumnType is a valid, defined value.
func (t ColumnType) IsValid() bool {
	return t >= TypeString && t <= TypeTimestamp
}

// ParseColumnType accepts the names produced by String plus a few aliases
// used in tripload.yaml.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "text":
		return TypeString, nil
	case "int", "int64", "integer", "bigint":
		return TypeInt64, nil
	case "float", "float64", "double", "real":
		return TypeFloat64, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "timestamp", "datetime", "time":
		return TypeTimestamp, nil
	default:
		return 0, fmt.Errorf("unknown column type %q", s)
	}
}

// Column is a named, typed column.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Schema is the ordered column list shared by a dataset and its table.
type Schema struct {
	Columns []Column
}

// NewSchema builds a schema from columns.
func NewSchema(cols ...Column) Schema {
	return Schema{Columns: cols}
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column or -1.
func (s Schema) Index(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Validate requires at least one column, unique non-empty names and known types.
// Names are compared case-insensitively since most engines fold identifiers.
func (s Schema) Validate() error {
	if len(s.Columns) == 0 {
		return errors.New("schema has no columns")
	}
	var errs []error
	seen := make(map[string]bool, len(s.Columns))
	for i, c := range s.Columns {
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, fmt.Errorf("column %d has an empty name", i))
			continue
		}
		key := strings.ToLower(c.Name)
		if seen[key] {
			errs = append(errs, fmt.Errorf("duplicate column %q", c.Name))
		}
		seen[key] = true
		if !c.Type.IsValid() {
			errs = append(errs, fmt.Errorf("column %q has invalid type %s", c.Name, c.Type))
		}
	}
	return errors.Join(errs...)
}

// Dataset is an in-memory table: a schema plus rows aligned to it.
//
// Row values are string, int64, float64, bool, time.Time or nil.
type Dataset struct {
	Name   string
	Schema Schema
	Rows   [][]any

	// Checksum identifies the source file ("sha256:<hex>"); empty for
	// datasets built in memory.
	Checksum string
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Head returns a dataset sharing the schema and the first n rows.
// Head(0) is the schema-only view used to create tables.
func (d *Dataset) Head(n int) *Dataset {
	if n < 0 {
		n = 0
	}
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	return &Dataset{Name: d.Name, Schema: d.Schema, Rows: d.Rows[:n:n], Checksum: d.Checksum}
}

// Record returns row i keyed by column name.
func (d *Dataset) Record(i int) map[string]any {
	row := d.Rows[i]
	rec := make(map[string]any, len(d.Schema.Columns))
	for j, c := range d.Schema.Columns {
		rec[c.Name] = row[j]
	}
	return rec
}

// Validate checks the schema and that every row matches its width and types.
func (d *Dataset) Validate() error {
	if err := d.Schema.Validate(); err != nil {
		return err
	}
	width := len(d.Schema.Columns)
	for i, row := range d.Rows {
		if len(row) != width {
			return fmt.Errorf("row %d has %d values, schema has %d columns", i, len(row), width)
		}
		for j, v := range row {
			col := d.Schema.Columns[j]
			if err := checkValue(col.Type, v); err != nil {
				return fmt.Errorf("row %d column %q: %w", i, col.Name, err)
			}
		}
	}
	return nil
}

func checkValue(t ColumnType, v any) error {
	if v == nil {
		return nil
	}
	ok := false
	switch t {
	case TypeString:
		_, ok = v.(string)
	case TypeInt64:
		_, ok = v.(int64)
	case TypeFloat64:
		_, ok = v.(float64)
	case TypeBool:
		_, ok = v.(bool)
	case TypeTimestamp:
		_, ok = v.(time.Time)
	}
	if !ok {
		return fmt.Errorf("value %v (%T) is not %s", v, v, t)
	}
	return nil
}
