package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/tripload/internal/db"
	"github.com/vvka-141/tripload/pkg/tripload"
)

// ConnectorFactory returns the Connector for a parsed connection.
type ConnectorFactory func(*tripload.ConnectionConfig) (tripload.Connector, error)

// IngestService runs the fetch, create-tables, populate sequence.
// Thread-Safety: NOT safe for concurrent Run() calls on the same instance.
type IngestService struct {
	connectorFactory ConnectorFactory
	fetcher          tripload.Fetcher
	logger           tripload.Logger
	now              func() time.Time
}

// NewIngestService creates a new IngestService with all dependencies injected.
// Nil dependencies are programmer errors and panic.
func NewIngestService(connectorFactory ConnectorFactory, fetcher tripload.Fetcher, logger tripload.Logger) *IngestService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if fetcher == nil {
		panic("fetcher cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &IngestService{
		connectorFactory: connectorFactory,
		fetcher:          fetcher,
		logger:           logger,
		now:              time.Now,
	}
}

type fetched struct {
	spec tripload.DatasetSpec
	ds   *tripload.Dataset
}

// Run fetches every dataset into memory, optionally creates the target
// database, then replaces and populates one table per dataset.
//
// Every dataset is downloaded before the database is touched, so a bad URL
// leaves existing tables alone. Once loading starts there is no rollback
// across tables.
func (s *IngestService) Run(ctx context.Context, config tripload.IngestConfig) (*tripload.Report, error) {
	connConfig, err := s.validateAndParseConfig(config)
	if err != nil {
		return nil, err
	}

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	connector, err := s.connectorFactory(connConfig)
	if err != nil {
		return nil, err
	}

	report := &tripload.Report{
		RunID:     uuid.New(),
		StartedAt: s.now(),
		Database:  config.DatabaseName,
	}
	s.logger.Verbose("Run %s: %d dataset(s) into %s", report.RunID, len(config.Datasets), db.RedactConnectionString(connConfig))

	loaded := make([]fetched, 0, len(config.Datasets))
	for _, spec := range config.Datasets {
		s.logger.Info("fetching %s on %s", spec.Name, s.stamp())
		ds, err := s.fetcher.Fetch(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", spec.Name, err)
		}
		loaded = append(loaded, fetched{spec: spec, ds: ds})
	}

	if config.CreateDatabase {
		if err := s.createDatabase(ctx, connector, connConfig, config); err != nil {
			return nil, err
		}
		report.CreatedDatabase = true
	}

	s.logger.Verbose("Connecting to database '%s'", config.DatabaseName)
	store, err := connector.Connect(ctx, connConfig)
	if err != nil {
		return nil, err
	}
	defer s.closeStore(ctx, store, config.DatabaseName)

	for _, f := range loaded {
		s.logger.Info("creating %s table on %s", f.spec.Table, s.stamp())
		if err := store.ReplaceTable(ctx, f.spec.Table, f.ds.Head(0).Schema); err != nil {
			return nil, err
		}
	}

	for _, f := range loaded {
		s.logger.Info("populating %s on %s", f.spec.Table, s.stamp())
		n, err := store.Append(ctx, f.spec.Table, f.ds)
		if err != nil {
			return nil, err
		}
		s.logger.Verbose("%s: %d rows appended", f.spec.Table, n)
		report.Tables = append(report.Tables, tripload.TableReport{
			Dataset:  f.spec.Name,
			URL:      f.spec.URL,
			Table:    f.spec.Table,
			Columns:  f.ds.Schema.Names(),
			Rows:     n,
			Checksum: f.ds.Checksum,
		})
	}

	report.FinishedAt = s.now()
	s.logger.Info("✓ Loaded %d rows into %d table(s) in %s", report.TotalRows(), len(report.Tables), report.Duration().Round(time.Millisecond))
	return report, nil
}

// validateAndParseConfig validates the configuration and parses the connection string.
func (s *IngestService) validateAndParseConfig(config tripload.IngestConfig) (*tripload.ConnectionConfig, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	connConfig, err := db.ParseConnectionString(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w: %w", tripload.ErrInvalidConfig, err)
	}
	connConfig.Database = config.DatabaseName
	if connConfig.AppName == "" && connConfig.Dialect != tripload.DialectSQLite {
		connConfig.AppName = tripload.DefaultAppName
	}
	return connConfig, nil
}

// createDatabase connects to the maintenance database, issues CREATE
// DATABASE and disconnects before the target is opened.
func (s *IngestService) createDatabase(ctx context.Context, connector tripload.Connector, connConfig *tripload.ConnectionConfig, config tripload.IngestConfig) error {
	maintenance := config.MaintenanceDatabase
	if maintenance == "" {
		maintenance = connector.MaintenanceDatabase()
	}
	if maintenance != "" && strings.EqualFold(maintenance, config.DatabaseName) {
		return fmt.Errorf(
			"cannot create database %q: it is the maintenance database used to run CREATE DATABASE: %w",
			config.DatabaseName, tripload.ErrInvalidConfig,
		)
	}

	s.logger.Info("creating database %s on %s", config.DatabaseName, s.stamp())
	s.logger.Verbose("Connecting to maintenance database '%s'", maintenance)

	mgmt, err := connector.Connect(ctx, connConfig.WithDatabase(maintenance))
	if err != nil {
		return fmt.Errorf("failed to connect to maintenance database: %w", err)
	}
	createErr := mgmt.CreateDatabase(ctx, config.DatabaseName)
	s.closeStore(ctx, mgmt, maintenance)
	return createErr
}

// closeStore ignores cancellation of ctx and only logs a failed close.
func (s *IngestService) closeStore(ctx context.Context, store tripload.Store, name string) {
	if err := store.Close(context.WithoutCancel(ctx)); err != nil {
		s.logger.Error("closing connection to %s: %v", name, err)
	}
}

func (s *IngestService) stamp() string {
	return s.now().Format(tripload.TimestampLayout)
}
