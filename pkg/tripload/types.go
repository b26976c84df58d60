package tripload

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Dialect identifies the relational engine behind a connection string.
type Dialect string

const (
	DialectPostgres  Dialect = "postgres"
	DialectMySQL     Dialect = "mysql"
	DialectSQLServer Dialect = "sqlserver"
	DialectSQLite    Dialect = "sqlite"
)

// ParseDialect maps a URI scheme or user-supplied name to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pg":
		return DialectPostgres, nil
	case "mysql", "mariadb":
		return DialectMySQL, nil
	case "sqlserver", "mssql":
		return DialectSQLServer, nil
	case "sqlite", "sqlite3", "file":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDialect, s)
	}
}

// String returns the canonical dialect name.
func (d Dialect) String() string {
	return string(d)
}

// Format names the encoding of a remote dataset file.
type Format string

const (
	FormatAuto    Format = ""
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
)

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Dialect  Dialect
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string
}

// WithDatabase returns a copy of the config pointing at another database.
func (c ConnectionConfig) WithDatabase(name string) *ConnectionConfig {
	c.Database = name
	if c.AdditionalParams != nil {
		params := make(map[string]string, len(c.AdditionalParams))
		for k, v := range c.AdditionalParams {
			params[k] = v
		}
		c.AdditionalParams = params
	}
	return &c
}

// DatasetSpec describes one file to fetch and the table it is loaded into.
type DatasetSpec struct {
	// Name is a short label used in progress output ("trips", "zones")
	Name string

	// URL is an http(s) URL, a file:// URL or a local path
	URL string

	// Format overrides detection from the URL extension
	Format Format

	// Table is the destination table, optionally schema-qualified
	Table string

	// Schema, when set, projects and coerces the decoded columns.
	// Nil means the column types are inferred from the file.
	Schema *Schema
}

// IngestConfig contains all parameters needed for one ingestion run.
type IngestConfig struct {
	// ConnectionString is the connection string of the TARGET database
	ConnectionString string

	// DatabaseName is the target database name
	DatabaseName string

	// MaintenanceDatabase is the database to connect to for CREATE DATABASE.
	// Empty means the backend default.
	MaintenanceDatabase string

	// CreateDatabase issues CREATE DATABASE before loading
	CreateDatabase bool

	// Datasets are fetched, created and populated in order
	Datasets []DatasetSpec

	// Timeout is the global timeout for the entire run
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the IngestConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *IngestConfig) Validate() error {
	var errs []error

	if c.DatabaseName == "" {
		errs = append(errs, fmt.Errorf("DatabaseName is required: %w", ErrInvalidConfig))
	}

	if c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required: %w", ErrInvalidConfig))
	}

	if len(c.Datasets) == 0 {
		errs = append(errs, fmt.Errorf("at least one dataset is required: %w", ErrInvalidConfig))
	}

	tables := make(map[string]string, len(c.Datasets))
	for i, ds := range c.Datasets {
		if ds.URL == "" {
			errs = append(errs, fmt.Errorf("dataset %d (%s): URL is required: %w", i, ds.Name, ErrInvalidConfig))
		}
		if ds.Table == "" {
			errs = append(errs, fmt.Errorf("dataset %d (%s): Table is required: %w", i, ds.Name, ErrInvalidConfig))
			continue
		}
		key := strings.ToLower(ds.Table)
		if prev, ok := tables[key]; ok {
			errs = append(errs, fmt.Errorf("datasets %q and %q both load table %q: %w", prev, ds.Name, ds.Table, ErrInvalidConfig))
		}
		tables[key] = ds.Name
		if ds.Schema != nil {
			if err := ds.Schema.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("dataset %q schema: %v: %w", ds.Name, err, ErrInvalidConfig))
			}
		}
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// TableReport summarizes one loaded table.
type TableReport struct {
	Dataset  string
	URL      string
	Table    string
	Columns  []string
	Rows     int64
	Checksum string
}

// Report summarizes a completed ingestion run.
type Report struct {
	RunID           uuid.UUID
	StartedAt       time.Time
	FinishedAt      time.Time
	Database        string
	CreatedDatabase bool
	Tables          []TableReport
}

// Duration returns the wall-clock time the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// TotalRows returns the number of rows appended across all tables.
func (r *Report) TotalRows() int64 {
	var n int64
	for _, t := range r.Tables {
		n += t.Rows
	}
	return n
}
