// Package storage holds the registry of database backends and the SQL
// helpers they share.
//
// Backends register themselves from init(); blank-import
// internal/storage/all to make every built-in backend available.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vvka-141/tripload/pkg/tripload"
)

// OpenFunc opens a Store on the database named in cfg.
type OpenFunc func(ctx context.Context, cfg *tripload.ConnectionConfig) (tripload.Store, error)

// Backend describes one registered dialect.
type Backend struct {
	Dialect tripload.Dialect

	// MaintenanceDB is the database CREATE DATABASE connects to by default.
	MaintenanceDB string

	Open OpenFunc
}

var (
	mu       sync.RWMutex
	backends = map[tripload.Dialect]Backend{}
)

// Register registers (or replaces) the backend for b.Dialect.
func Register(b Backend) {
	if b.Open == nil {
		panic(fmt.Sprintf("storage: backend %q registered without Open", b.Dialect))
	}
	mu.Lock()
	defer mu.Unlock()
	backends[b.Dialect] = b
}

// Lookup returns the backend for d or an error wrapping ErrUnsupportedDialect.
func Lookup(d tripload.Dialect) (Backend, error) {
	mu.RLock()
	b, ok := backends[d]
	mu.RUnlock()
	if !ok {
		return Backend{}, fmt.Errorf("%w: no backend registered for %q", tripload.ErrUnsupportedDialect, d)
	}
	return b, nil
}

// Dialects lists the registered dialects in name order.
func Dialects() []tripload.Dialect {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]tripload.Dialect, 0, len(backends))
	for d := range backends {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var _ tripload.Connector = (*Connector)(nil)

// Connector opens Stores through a registered backend.
type Connector struct {
	backend Backend
}

// NewConnector returns a Connector for the dialect.
func NewConnector(d tripload.Dialect) (*Connector, error) {
	b, err := Lookup(d)
	if err != nil {
		return nil, err
	}
	return &Connector{backend: b}, nil
}

// Connect opens a Store on config.Database.
func (c *Connector) Connect(ctx context.Context, config *tripload.ConnectionConfig) (tripload.Store, error) {
	if config.Dialect != c.backend.Dialect {
		return nil, fmt.Errorf("%w: connector for %q cannot open %q", tripload.ErrInvalidConfig, c.backend.Dialect, config.Dialect)
	}
	return c.backend.Open(ctx, config)
}

// MaintenanceDatabase returns the backend's default maintenance database.
func (c *Connector) MaintenanceDatabase() string {
	return c.backend.MaintenanceDB
}
