package services_test

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/tripload/internal/catalog"
	"github.com/vvka-141/tripload/internal/fetch"
	"github.com/vvka-141/tripload/internal/logging"
	"github.com/vvka-141/tripload/internal/services"
	"github.com/vvka-141/tripload/internal/storage"
	_ "github.com/vvka-141/tripload/internal/storage/all"
	"github.com/vvka-141/tripload/pkg/tripload"
)

const zonesCSV = `"LocationID","Borough","Zone","service_zone"
1,"EWR","Newark Airport","EWR"
2,"Queens","Jamaica Bay","Boro Zone"
3,"Bronx","Allerton/Pelham Gardens","Boro Zone"
`

func serve(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func connectorFactory(cfg *tripload.ConnectionConfig) (tripload.Connector, error) {
	return storage.NewConnector(cfg.Dialect)
}

func newService() *services.IngestService {
	logger := logging.NewNullLogger()
	return services.NewIngestService(connectorFactory, fetch.NewFetcher(fetch.NewClient(fetch.Config{}), logger), logger)
}

func openSQLite(t *testing.T, path string) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func columns(t *testing.T, conn *sql.DB, table string) []string {
	t.Helper()
	rows, err := conn.Query("SELECT name FROM pragma_table_info(?) ORDER BY cid", table)
	require.NoError(t, err)
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		out = append(out, name)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestIngest_SQLite_PeopleDataset(t *testing.T) {
	srv := serve(t, map[string]string{"/people.csv": "id,name\n1,alice\n2,bob\n3,carol\n"})
	path := filepath.Join(t.TempDir(), "ny_taxi.db")

	report, err := newService().Run(context.Background(), tripload.IngestConfig{
		ConnectionString: "sqlite://" + path,
		DatabaseName:     path,
		CreateDatabase:   true,
		Datasets:         []tripload.DatasetSpec{{Name: "people", URL: srv.URL + "/people.csv", Table: "people"}},
	})
	require.NoError(t, err)
	assert.True(t, report.CreatedDatabase)
	assert.Equal(t, int64(3), report.TotalRows())
	assert.Contains(t, report.Tables[0].Checksum, "sha256:")

	conn := openSQLite(t, path)
	assert.Equal(t, []string{"id", "name"}, columns(t, conn, "people"))

	rows, err := conn.Query(`SELECT id, name FROM people ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()
	type person struct {
		id   int64
		name string
	}
	var got []person
	for rows.Next() {
		var p person
		require.NoError(t, rows.Scan(&p.id, &p.name))
		got = append(got, p)
	}
	assert.Equal(t, []person{{1, "alice"}, {2, "bob"}, {3, "carol"}}, got)
}

func TestIngest_SQLite_EmptyDataset(t *testing.T) {
	srv := serve(t, map[string]string{"/empty.csv": "id,name\n"})
	path := filepath.Join(t.TempDir(), "ny_taxi.db")

	report, err := newService().Run(context.Background(), tripload.IngestConfig{
		ConnectionString: "sqlite://" + path,
		DatabaseName:     path,
		Datasets: []tripload.DatasetSpec{{
			Name:  "people",
			URL:   srv.URL + "/empty.csv",
			Table: "people",
			Schema: &tripload.Schema{Columns: []tripload.Column{
				{Name: "id", Type: tripload.TypeInt64},
				{Name: "name", Type: tripload.TypeString, Nullable: true},
			}},
		}},
	})
	require.NoError(t, err)
	assert.Zero(t, report.TotalRows())

	conn := openSQLite(t, path)
	assert.Equal(t, []string{"id", "name"}, columns(t, conn, "people"))
	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM people`).Scan(&n))
	assert.Zero(t, n)
}

func TestIngest_SQLite_ZonesWithCatalogSchema(t *testing.T) {
	srv := serve(t, map[string]string{"/taxi+_zone_lookup.csv": zonesCSV})
	path := filepath.Join(t.TempDir(), "ny_taxi.db")
	zones := catalog.DefaultDatasets("unused.parquet", srv.URL+"/taxi+_zone_lookup.csv")[1]

	cfg := tripload.IngestConfig{
		ConnectionString: "sqlite://" + path,
		DatabaseName:     path,
		Datasets:         []tripload.DatasetSpec{zones},
		Timeout:          time.Minute,
	}
	_, err := newService().Run(context.Background(), cfg)
	require.NoError(t, err)

	// A second run replaces the table rather than appending to it.
	_, err = newService().Run(context.Background(), cfg)
	require.NoError(t, err)

	conn := openSQLite(t, path)
	assert.Equal(t, []string{"LocationID", "Borough", "Zone", "service_zone"}, columns(t, conn, tripload.DefaultZonesTable))
	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM taxi_zone_lookup`).Scan(&n))
	assert.Equal(t, 3, n)
}

func TestIngest_SQLite_ExistingDatabaseIsKept(t *testing.T) {
	srv := serve(t, map[string]string{"/people.csv": "id,name\n1,alice\n"})
	path := filepath.Join(t.TempDir(), "ny_taxi.db")
	cfg := tripload.IngestConfig{
		ConnectionString: "sqlite://" + path,
		DatabaseName:     path,
		Datasets:         []tripload.DatasetSpec{{Name: "people", URL: srv.URL + "/people.csv", Table: "people"}},
	}
	_, err := newService().Run(context.Background(), cfg)
	require.NoError(t, err)

	cfg.CreateDatabase = true
	_, err = newService().Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tripload.ErrDatabaseExists), "got %v", err)
	assert.Equal(t, tripload.ExitDatabaseExists, tripload.ExitCodeForError(err))

	conn := openSQLite(t, path)
	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM people`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestIngest_FetchFailureAborts(t *testing.T) {
	srv := serve(t, map[string]string{})
	path := filepath.Join(t.TempDir(), "ny_taxi.db")

	_, err := newService().Run(context.Background(), tripload.IngestConfig{
		ConnectionString: "sqlite://" + path,
		DatabaseName:     path,
		CreateDatabase:   true,
		Datasets:         []tripload.DatasetSpec{{Name: "people", URL: srv.URL + "/missing.csv", Table: "people"}},
	})
	require.Error(t, err)
	assert.Equal(t, tripload.ExitFetchFailed, tripload.ExitCodeForError(err))
	assert.NoFileExists(t, path)
}
