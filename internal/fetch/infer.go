package fetch

import (
	"strconv"
	"strings"
	"time"

	"github.com/vvka-141/tripload/pkg/tripload"
)

// timestampLayouts are tried in order when parsing text timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 03:04:05 PM",
	"01/02/2006",
}

// nullMarkers are the cell values read as NULL besides the empty string.
var nullMarkers = map[string]bool{
	"#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true, "-1.#QNAN": true,
	"-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true, "<NA>": true,
	"N/A": true, "NA": true, "NULL": true, "NaN": true, "None": true,
	"n/a": true, "nan": true, "null": true,
}

func isNullCell(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || nullMarkers[s]
}

// inferColumnType picks the narrowest type every non-null value satisfies:
// int64, float64, bool, timestamp, then string. A column with no values is string.
func inferColumnType(values []string) tripload.ColumnType {
	nonEmpty := make([]string, 0, len(values))
	for _, v := range values {
		if !isNullCell(v) {
			nonEmpty = append(nonEmpty, strings.TrimSpace(v))
		}
	}
	if len(nonEmpty) == 0 {
		return tripload.TypeString
	}
	switch {
	case allMatch(nonEmpty, isInt):
		return tripload.TypeInt64
	case allMatch(nonEmpty, isFloat):
		return tripload.TypeFloat64
	case allMatch(nonEmpty, isBool):
		return tripload.TypeBool
	case allMatch(nonEmpty, isTimestamp):
		return tripload.TypeTimestamp
	default:
		return tripload.TypeString
	}
}

func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	default:
		return false
	}
}

func isTimestamp(s string) bool {
	_, err := parseTimestamp(s)
	return err == nil
}

// parseTimestamp parses s with the first matching layout. Values without a
// zone are taken as UTC.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
