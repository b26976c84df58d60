package fetch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/deprecated"
	"github.com/parquet-go/parquet-go/format"

	"github.com/vvka-141/tripload/pkg/tripload"
)

// julianUnixEpoch is the Julian day number of 1970-01-01, used by INT96 timestamps.
const julianUnixEpoch = 2440588

const rowBatchSize = 1024

// valueFunc converts a non-null parquet value into a dataset value.
type valueFunc func(parquet.Value) any

// DecodeParquet reads every row group of a Parquet file into a Dataset.
// Only flat schemas are supported; nested or repeated columns are rejected.
func DecodeParquet(name string, data []byte) (*tripload.Dataset, error) {
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: open parquet: %w", tripload.ErrDecodeFailed, name, err)
	}

	schema := f.Schema()
	paths := schema.Columns()
	cols := make([]tripload.Column, len(paths))
	convert := make([]valueFunc, len(paths))

	for _, path := range paths {
		if len(path) != 1 {
			return nil, fmt.Errorf("%w: %s: nested column %v is not supported", tripload.ErrDecodeFailed, name, path)
		}
		leaf, ok := schema.Lookup(path...)
		if !ok {
			return nil, fmt.Errorf("%w: %s: column %q missing from schema", tripload.ErrDecodeFailed, name, path[0])
		}
		if leaf.MaxRepetitionLevel > 0 {
			return nil, fmt.Errorf("%w: %s: repeated column %q is not supported", tripload.ErrDecodeFailed, name, path[0])
		}
		typ, fn, err := columnMapping(leaf.Node.Type())
		if err != nil {
			return nil, fmt.Errorf("%w: %s: column %q: %w", tripload.ErrDecodeFailed, name, path[0], err)
		}
		cols[leaf.ColumnIndex] = tripload.Column{Name: path[0], Type: typ, Nullable: leaf.Node.Optional()}
		convert[leaf.ColumnIndex] = fn
	}

	ds := &tripload.Dataset{
		Name:   name,
		Schema: tripload.NewSchema(cols...),
		Rows:   make([][]any, 0, f.NumRows()),
	}

	buf := make([]parquet.Row, rowBatchSize)
	for _, rg := range f.RowGroups() {
		if err := readRowGroup(rg, buf, convert, ds); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", tripload.ErrDecodeFailed, name, err)
		}
	}
	return ds, nil
}

func readRowGroup(rg parquet.RowGroup, buf []parquet.Row, convert []valueFunc, ds *tripload.Dataset) error {
	rows := rg.Rows()
	defer rows.Close()

	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			out := make([]any, len(convert))
			for _, v := range row {
				col := v.Column()
				if col < 0 || col >= len(out) || v.IsNull() {
					continue
				}
				out[col] = convert[col](v)
			}
			ds.Rows = append(ds.Rows, out)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// columnMapping maps a parquet physical/logical type to a column type and
// a converter.
func columnMapping(t parquet.Type) (tripload.ColumnType, valueFunc, error) {
	lt := t.LogicalType()
	ct := t.ConvertedType()

	switch t.Kind() {
	case parquet.Boolean:
		return tripload.TypeBool, func(v parquet.Value) any { return v.Boolean() }, nil

	case parquet.Int32:
		switch {
		case lt != nil && lt.Date != nil, ct != nil && *ct == deprecated.Date:
			return tripload.TypeTimestamp, func(v parquet.Value) any {
				return time.Unix(int64(v.Int32())*86400, 0).UTC()
			}, nil
		case lt != nil && lt.Decimal != nil:
			scale := lt.Decimal.Scale
			return tripload.TypeFloat64, func(v parquet.Value) any {
				return float64(v.Int32()) / math.Pow10(int(scale))
			}, nil
		}
		return tripload.TypeInt64, func(v parquet.Value) any { return int64(v.Int32()) }, nil

	case parquet.Int64:
		if unit, ok := timestampUnit(lt, ct); ok {
			return tripload.TypeTimestamp, func(v parquet.Value) any {
				return fromUnit(v.Int64(), unit)
			}, nil
		}
		if lt != nil && lt.Decimal != nil {
			scale := lt.Decimal.Scale
			return tripload.TypeFloat64, func(v parquet.Value) any {
				return float64(v.Int64()) / math.Pow10(int(scale))
			}, nil
		}
		return tripload.TypeInt64, func(v parquet.Value) any { return v.Int64() }, nil

	case parquet.Int96:
		return tripload.TypeTimestamp, func(v parquet.Value) any { return int96ToTime(v.Int96()) }, nil

	case parquet.Float:
		return tripload.TypeFloat64, func(v parquet.Value) any { return float64(v.Float()) }, nil

	case parquet.Double:
		return tripload.TypeFloat64, func(v parquet.Value) any { return v.Double() }, nil

	case parquet.ByteArray, parquet.FixedLenByteArray:
		if lt != nil && lt.Decimal != nil {
			scale := lt.Decimal.Scale
			return tripload.TypeFloat64, func(v parquet.Value) any {
				return decimalBytesToFloat(v.ByteArray(), scale)
			}, nil
		}
		return tripload.TypeString, func(v parquet.Value) any { return string(v.ByteArray()) }, nil
	}

	return 0, nil, fmt.Errorf("unsupported parquet type %s", t)
}

type timeUnit int

const (
	unitMillis timeUnit = iota
	unitMicros
	unitNanos
)

func timestampUnit(lt *format.LogicalType, ct *deprecated.ConvertedType) (timeUnit, bool) {
	if lt != nil && lt.Timestamp != nil {
		switch {
		case lt.Timestamp.Unit.Millis != nil:
			return unitMillis, true
		case lt.Timestamp.Unit.Nanos != nil:
			return unitNanos, true
		default:
			return unitMicros, true
		}
	}
	if ct != nil {
		switch *ct {
		case deprecated.TimestampMillis:
			return unitMillis, true
		case deprecated.TimestampMicros:
			return unitMicros, true
		}
	}
	return 0, false
}

func fromUnit(n int64, unit timeUnit) time.Time {
	switch unit {
	case unitMillis:
		return time.UnixMilli(n).UTC()
	case unitNanos:
		return time.Unix(0, n).UTC()
	default:
		return time.UnixMicro(n).UTC()
	}
}

// int96ToTime decodes the legacy Impala timestamp: nanoseconds within the
// day in the first 8 bytes, Julian day number in the last 4.
func int96ToTime(i deprecated.Int96) time.Time {
	nanos := int64(uint64(i[1])<<32 | uint64(i[0]))
	days := int64(i[2]) - julianUnixEpoch
	return time.Unix(days*86400, nanos).UTC()
}

// decimalBytesToFloat decodes a big-endian two's complement unscaled value.
func decimalBytesToFloat(b []byte, scale int32) float64 {
	unscaled := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		unscaled.Sub(unscaled, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
	}
	f, _ := new(big.Float).Quo(
		new(big.Float).SetInt(unscaled),
		new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale)), nil)),
	).Float64()
	return f
}
