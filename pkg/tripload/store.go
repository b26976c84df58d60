package tripload

import "context"

// Store is a single open connection to a relational database.
//
// A Store is not safe for concurrent use. Callers open one, run their
// statements in sequence and Close it.
type Store interface {
	// CreateDatabase issues CREATE DATABASE outside any transaction.
	// An existing database is reported as ErrDatabaseExists and left untouched.
	CreateDatabase(ctx context.Context, name string) error

	// ReplaceTable drops the table if present and creates it with the schema's columns.
	ReplaceTable(ctx context.Context, table string, schema Schema) error

	// Append inserts every row of the dataset in one bulk operation and
	// returns the number of rows written. A failing row fails the whole batch.
	Append(ctx context.Context, table string, ds *Dataset) (int64, error)

	// Close releases the connection.
	Close(ctx context.Context) error
}

// Connector opens Stores for a dialect.
type Connector interface {
	// Connect opens a Store on the database named in the config.
	Connect(ctx context.Context, config *ConnectionConfig) (Store, error)

	// MaintenanceDatabase is the database to connect to for CREATE DATABASE.
	MaintenanceDatabase() string
}

// Fetcher retrieves a remote dataset into memory.
type Fetcher interface {
	Fetch(ctx context.Context, spec DatasetSpec) (*Dataset, error)
}
