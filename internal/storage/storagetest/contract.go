// Package storagetest holds the behavior every tripload.Store must show,
// written once and run against each backend's tests.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/tripload/pkg/tripload"
)

// Inspector reads back what a Store wrote.
type Inspector interface {
	Columns(ctx context.Context, table string) ([]string, error)
	Count(ctx context.Context, table string) (int64, error)
	Strings(ctx context.Context, table, orderBy string, columns ...string) ([][]string, error)
}

// Harness gives the contract a fresh store and a way to look inside it.
type Harness struct {
	Store     tripload.Store
	Inspector Inspector
}

// People is a three-row id/name dataset.
func People() *tripload.Dataset {
	return &tripload.Dataset{
		Name: "people",
		Schema: tripload.NewSchema(
			tripload.Column{Name: "id", Type: tripload.TypeInt64},
			tripload.Column{Name: "name", Type: tripload.TypeString, Nullable: true},
		),
		Rows: [][]any{
			{int64(1), "alice"},
			{int64(2), "bob"},
			{int64(3), "carol"},
		},
	}
}

// Run executes the contract. newHarness is called once per subtest.
func Run(t *testing.T, newHarness func(t *testing.T) Harness) {
	t.Run("SchemaRoundTrip", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()
		ds := People()

		require.NoError(t, h.Store.ReplaceTable(ctx, "people", ds.Head(0).Schema))
		n, err := h.Store.Append(ctx, "people", ds)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		cols, err := h.Inspector.Columns(ctx, "people")
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "name"}, cols)

		count, err := h.Inspector.Count(ctx, "people")
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		got, err := h.Inspector.Strings(ctx, "people", "id", "id", "name")
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"1", "alice"}, {"2", "bob"}, {"3", "carol"}}, got)
	})

	t.Run("ZeroRows", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()
		empty := People().Head(0)

		require.NoError(t, h.Store.ReplaceTable(ctx, "people", empty.Schema))
		n, err := h.Store.Append(ctx, "people", empty)
		require.NoError(t, err)
		assert.Zero(t, n)

		cols, err := h.Inspector.Columns(ctx, "people")
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "name"}, cols)

		count, err := h.Inspector.Count(ctx, "people")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("ReplaceDropsOldSchema", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()

		require.NoError(t, h.Store.ReplaceTable(ctx, "people", People().Schema))
		_, err := h.Store.Append(ctx, "people", People())
		require.NoError(t, err)

		other := tripload.NewSchema(tripload.Column{Name: "zone", Type: tripload.TypeString, Nullable: true})
		require.NoError(t, h.Store.ReplaceTable(ctx, "people", other))

		cols, err := h.Inspector.Columns(ctx, "people")
		require.NoError(t, err)
		assert.Equal(t, []string{"zone"}, cols)

		count, err := h.Inspector.Count(ctx, "people")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("AppendTwiceDoubles", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()
		ds := People()

		require.NoError(t, h.Store.ReplaceTable(ctx, "people", ds.Schema))
		_, err := h.Store.Append(ctx, "people", ds)
		require.NoError(t, err)
		_, err = h.Store.Append(ctx, "people", ds)
		require.NoError(t, err)

		count, err := h.Inspector.Count(ctx, "people")
		require.NoError(t, err)
		assert.Equal(t, int64(6), count)
	})

	t.Run("FailingRowRollsBackBatch", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()
		ds := People()
		ds.Rows[2] = []any{nil, "no id"}

		require.NoError(t, h.Store.ReplaceTable(ctx, "people", ds.Schema))
		_, err := h.Store.Append(ctx, "people", ds)
		require.Error(t, err)
		assert.True(t, errors.Is(err, tripload.ErrLoadFailed), "got %v", err)

		count, err := h.Inspector.Count(ctx, "people")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("AllColumnTypes", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()
		pickup := time.Date(2021, 1, 1, 0, 30, 10, 0, time.UTC)
		ds := &tripload.Dataset{
			Name: "trips",
			Schema: tripload.NewSchema(
				tripload.Column{Name: "VendorID", Type: tripload.TypeInt64, Nullable: true},
				tripload.Column{Name: "tpep_pickup_datetime", Type: tripload.TypeTimestamp, Nullable: true},
				tripload.Column{Name: "trip_distance", Type: tripload.TypeFloat64, Nullable: true},
				tripload.Column{Name: "store_and_fwd_flag", Type: tripload.TypeString, Nullable: true},
				tripload.Column{Name: "disputed", Type: tripload.TypeBool, Nullable: true},
			),
			Rows: [][]any{
				{int64(1), pickup, 2.1, "N", false},
				{nil, nil, nil, nil, nil},
			},
		}

		require.NoError(t, h.Store.ReplaceTable(ctx, "yellow_taxi_data", ds.Schema))
		n, err := h.Store.Append(ctx, "yellow_taxi_data", ds)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		cols, err := h.Inspector.Columns(ctx, "yellow_taxi_data")
		require.NoError(t, err)
		assert.Equal(t, ds.Schema.Names(), cols, "mixed-case column names are preserved")

		count, err := h.Inspector.Count(ctx, "yellow_taxi_data")
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
