package fetch

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vvka-141/tripload/pkg/tripload"
)

const utf8BOM = "\uFEFF"

// DecodeCSV reads a header row and data rows. With infer set, each column
// gets the narrowest type its values allow; otherwise all columns are
// strings and the caller projects them onto a declared schema. Empty
// cells and the usual NA markers (NA, N/A, NULL, NaN, ...) are NULL.
// A blank header cell is named "Unnamed: <index>".
func DecodeCSV(name string, data []byte, infer bool) (*tripload.Dataset, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte(utf8BOM))))

	headers, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: missing header row", tripload.ErrDecodeFailed, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read header: %w", tripload.ErrDecodeFailed, name, err)
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", tripload.ErrDecodeFailed, name, err)
		}
		records = append(records, rec)
	}

	cols := make([]tripload.Column, len(headers))
	for i, h := range headers {
		cols[i] = tripload.Column{Name: headerName(h, i), Type: tripload.TypeString, Nullable: true}
		if infer {
			values := make([]string, len(records))
			for j, rec := range records {
				values[j] = rec[i]
			}
			cols[i].Type = inferColumnType(values)
		}
	}

	ds := &tripload.Dataset{
		Name:   name,
		Schema: tripload.NewSchema(cols...),
		Rows:   make([][]any, 0, len(records)),
	}
	for j, rec := range records {
		row := make([]any, len(cols))
		for i, col := range cols {
			v, err := parseCell(rec[i], col.Type)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: line %d column %q: %w", tripload.ErrDecodeFailed, name, j+2, col.Name, err)
			}
			row[i] = v
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

func headerName(h string, i int) string {
	if h = strings.TrimSpace(h); h != "" {
		return h
	}
	return fmt.Sprintf("Unnamed: %d", i)
}

func parseCell(s string, t tripload.ColumnType) (any, error) {
	if isNullCell(s) {
		return nil, nil
	}
	if t == tripload.TypeString {
		return s, nil
	}
	return coerce(s, t)
}
