package tripload_test

import (
	"testing"
	"time"

	"github.com/vvka-141/tripload/pkg/tripload"
)

func sampleDataset() *tripload.Dataset {
	return &tripload.Dataset{
		Name: "people",
		Schema: tripload.NewSchema(
			tripload.Column{Name: "id", Type: tripload.TypeInt64},
			tripload.Column{Name: "name", Type: tripload.TypeString, Nullable: true},
		),
		Rows: [][]any{
			{int64(1), "a"},
			{int64(2), nil},
			{int64(3), "c"},
		},
	}
}

func TestDataset_Head(t *testing.T) {
	ds := sampleDataset()
	ds.Checksum = "sha256:abc"

	head := ds.Head(0)
	if head.Len() != 0 {
		t.Errorf("Head(0).Len() = %d", head.Len())
	}
	if head.Checksum != ds.Checksum {
		t.Errorf("Head(0).Checksum = %q", head.Checksum)
	}
	if got := head.Schema.Names(); len(got) != 2 || got[0] != "id" || got[1] != "name" {
		t.Errorf("Head(0) schema = %v", got)
	}

	if ds.Head(2).Len() != 2 {
		t.Errorf("Head(2).Len() = %d", ds.Head(2).Len())
	}
	if ds.Head(10).Len() != 3 {
		t.Errorf("Head(10).Len() = %d", ds.Head(10).Len())
	}
	if ds.Head(-1).Len() != 0 {
		t.Errorf("Head(-1).Len() = %d", ds.Head(-1).Len())
	}
}

func TestDataset_HeadDoesNotAliasAppends(t *testing.T) {
	ds := sampleDataset()
	head := ds.Head(1)
	head.Rows = append(head.Rows, []any{int64(99), "x"})
	if ds.Rows[1][0] != int64(2) {
		t.Errorf("append through Head overwrote parent row: %v", ds.Rows[1])
	}
}

func TestDataset_Record(t *testing.T) {
	rec := sampleDataset().Record(1)
	if rec["id"] != int64(2) {
		t.Errorf("id = %v", rec["id"])
	}
	if v, ok := rec["name"]; !ok || v != nil {
		t.Errorf("name = %v, present=%v", v, ok)
	}
}

func TestDataset_Validate(t *testing.T) {
	if err := sampleDataset().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	short := sampleDataset()
	short.Rows[0] = []any{int64(1)}
	if err := short.Validate(); err == nil {
		t.Error("expected width error")
	}

	wrongType := sampleDataset()
	wrongType.Rows[2][0] = "three"
	if err := wrongType.Validate(); err == nil {
		t.Error("expected type error")
	}

	ts := &tripload.Dataset{
		Schema: tripload.NewSchema(tripload.Column{Name: "at", Type: tripload.TypeTimestamp}),
		Rows:   [][]any{{time.Now()}, {nil}},
	}
	if err := ts.Validate(); err != nil {
		t.Errorf("timestamp dataset: %v", err)
	}
}

func TestSchema_Validate(t *testing.T) {
	tests := []struct {
		name    string
		schema  tripload.Schema
		wantErr bool
	}{
		{"valid", tripload.NewSchema(tripload.Column{Name: "a"}, tripload.Column{Name: "b", Type: tripload.TypeBool}), false},
		{"empty", tripload.Schema{}, true},
		{"blank name", tripload.NewSchema(tripload.Column{Name: " "}), true},
		{"duplicate", tripload.NewSchema(tripload.Column{Name: "a"}, tripload.Column{Name: "A"}), true},
		{"bad type", tripload.NewSchema(tripload.Column{Name: "a", Type: tripload.ColumnType(42)}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSchema_Index(t *testing.T) {
	s := sampleDataset().Schema
	if s.Index("name") != 1 {
		t.Errorf("Index(name) = %d", s.Index("name"))
	}
	if s.Index("missing") != -1 {
		t.Errorf("Index(missing) = %d", s.Index("missing"))
	}
}

func TestParseColumnType(t *testing.T) {
	tests := map[string]tripload.ColumnType{
		"string":    tripload.TypeString,
		"INT":       tripload.TypeInt64,
		"double":    tripload.TypeFloat64,
		"boolean":   tripload.TypeBool,
		"timestamp": tripload.TypeTimestamp,
	}
	for in, want := range tests {
		got, err := tripload.ParseColumnType(in)
		if err != nil || got != want {
			t.Errorf("ParseColumnType(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := tripload.ParseColumnType("blob"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestColumnType_String(t *testing.T) {
	if tripload.TypeTimestamp.String() != "timestamp" {
		t.Errorf("got %q", tripload.TypeTimestamp.String())
	}
	if tripload.ColumnType(99).String() != "Unknown(99)" {
		t.Errorf("got %q", tripload.ColumnType(99).String())
	}
}
