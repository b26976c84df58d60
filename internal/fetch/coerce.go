package fetch

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vvka-141/tripload/pkg/tripload"
)

// Project reorders ds onto the declared schema and converts every value to
// the declared column type. Columns are matched by exact name first, then
// case-insensitively. Extra source columns are dropped; a missing one is
// an error.
func Project(ds *tripload.Dataset, schema tripload.Schema) (*tripload.Dataset, error) {
	src := make([]int, len(schema.Columns))
	for i, col := range schema.Columns {
		idx := ds.Schema.Index(col.Name)
		if idx < 0 {
			for j, have := range ds.Schema.Columns {
				if strings.EqualFold(have.Name, col.Name) {
					idx = j
					break
				}
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s: column %q not found (have %s)",
				tripload.ErrDecodeFailed, ds.Name, col.Name, strings.Join(ds.Schema.Names(), ", "))
		}
		src[i] = idx
	}

	out := &tripload.Dataset{
		Name:   ds.Name,
		Schema: schema,
		Rows:   make([][]any, len(ds.Rows)),
	}
	for r, row := range ds.Rows {
		projected := make([]any, len(schema.Columns))
		for i, col := range schema.Columns {
			v, err := coerce(row[src[i]], col.Type)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: row %d column %q: %w", tripload.ErrDecodeFailed, ds.Name, r, col.Name, err)
			}
			projected[i] = v
		}
		out.Rows[r] = projected
	}
	return out, nil
}

// coerce converts v to the Go representation of t.
func coerce(v any, t tripload.ColumnType) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t {
	case tripload.TypeString:
		return toString(v), nil
	case tripload.TypeInt64:
		return toInt64(v)
	case tripload.TypeFloat64:
		return toFloat64(v)
	case tripload.TypeBool:
		return toBool(v)
	case tripload.TypeTimestamp:
		return toTimestamp(v)
	default:
		return nil, fmt.Errorf("unknown column type %s", t)
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}

func toInt64(v any) (any, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case float64:
		if x != math.Trunc(x) || x > math.MaxInt64 || x < math.MinInt64 {
			return nil, fmt.Errorf("%v is not a whole number", x)
		}
		return int64(x), nil
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			// Accept "1.0" style integers written by float-typed exporters.
			f, ferr := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if ferr == nil && f == math.Trunc(f) {
				return int64(f), nil
			}
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to int64", v)
	}
}

func toFloat64(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	default:
		return nil, fmt.Errorf("cannot convert %T to float64", v)
	}
}

func toBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(x))
	default:
		return nil, fmt.Errorf("cannot convert %T to bool", v)
	}
}

func toTimestamp(v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case string:
		return parseTimestamp(x)
	default:
		return nil, fmt.Errorf("cannot convert %T to timestamp", v)
	}
}
