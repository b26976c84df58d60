package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/vvka-141/tripload/pkg/tripload"
)

// recorder collects the calls made against fakes, in order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

type mockStore struct {
	rec        *recorder
	db         string
	createErr  error
	replaceErr error
	appendErr  error
	closeErr   error
}

func (m *mockStore) CreateDatabase(_ context.Context, name string) error {
	m.rec.add("create-database %s on %s", name, m.db)
	return m.createErr
}

func (m *mockStore) ReplaceTable(_ context.Context, table string, schema tripload.Schema) error {
	m.rec.add("replace %s %v", table, schema.Names())
	return m.replaceErr
}

func (m *mockStore) Append(_ context.Context, table string, ds *tripload.Dataset) (int64, error) {
	m.rec.add("append %s %d", table, ds.Len())
	if m.appendErr != nil {
		return 0, m.appendErr
	}
	return int64(ds.Len()), nil
}

func (m *mockStore) Close(_ context.Context) error {
	m.rec.add("close %s", m.db)
	return m.closeErr
}

type mockConnector struct {
	rec         *recorder
	maintenance string
	connectErr  map[string]error
	stores      map[string]*mockStore
}

func newMockConnector(rec *recorder) *mockConnector {
	return &mockConnector{
		rec:         rec,
		maintenance: "postgres",
		connectErr:  map[string]error{},
		stores:      map[string]*mockStore{},
	}
}

func (m *mockConnector) store(db string) *mockStore {
	if s, ok := m.stores[db]; ok {
		return s
	}
	s := &mockStore{rec: m.rec, db: db}
	m.stores[db] = s
	return s
}

func (m *mockConnector) Connect(_ context.Context, cfg *tripload.ConnectionConfig) (tripload.Store, error) {
	m.rec.add("connect %s", cfg.Database)
	if err := m.connectErr[cfg.Database]; err != nil {
		return nil, err
	}
	return m.store(cfg.Database), nil
}

func (m *mockConnector) MaintenanceDatabase() string {
	return m.maintenance
}

func (m *mockConnector) factory() ConnectorFactory {
	return func(*tripload.ConnectionConfig) (tripload.Connector, error) { return m, nil }
}

type mockFetcher struct {
	rec      *recorder
	datasets map[string]*tripload.Dataset
	err      map[string]error
}

func (m *mockFetcher) Fetch(_ context.Context, spec tripload.DatasetSpec) (*tripload.Dataset, error) {
	m.rec.add("fetch %s", spec.Name)
	if err := m.err[spec.Name]; err != nil {
		return nil, err
	}
	ds, ok := m.datasets[spec.Name]
	if !ok {
		return nil, fmt.Errorf("%w: no fixture for %s", tripload.ErrFetchFailed, spec.Name)
	}
	return ds, nil
}

// captureLogger keeps Info lines for assertions.
type captureLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (l *captureLogger) Verbose(string, ...interface{}) {}

func (l *captureLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}

func (l *captureLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}
