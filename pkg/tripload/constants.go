package tripload

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Ingestion completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect to database
	ExitDatabaseExists  = 12 // CREATE DATABASE hit an existing database
	ExitLoadFailed      = 13 // Table creation or row load failed
	ExitFetchFailed     = 14 // Remote file could not be fetched or decoded
)

const (
	// DefaultHost is the database host used when nothing else is configured.
	DefaultHost = "localhost"

	// DefaultUsername and DefaultPassword match the credentials of the
	// docker-compose Postgres the datasets are usually loaded into.
	DefaultUsername = "postgres"
	DefaultPassword = "root"

	// DefaultDatabase is the target database for the trip and zone tables.
	DefaultDatabase = "ny_taxi"

	// DefaultManagementDB is the default database to connect to for CREATE DATABASE.
	DefaultManagementDB = "postgres"

	// DefaultAppName is reported to the server as application_name.
	DefaultAppName = "tripload"

	// TimestampLayout formats the wall-clock time printed with progress lines.
	TimestampLayout = "January 02, 2006 15:04:05"
)

// Default dataset sources and targets.
const (
	DefaultTripsURL   = "https://s3.amazonaws.com/nyc-tlc/trip+data/yellow_tripdata_2021-01.parquet"
	DefaultZonesURL   = "https://s3.amazonaws.com/nyc-tlc/misc/taxi+_zone_lookup.csv"
	DefaultTripsTable = "yellow_taxi_data"
	DefaultZonesTable = "taxi_zone_lookup"
)

// DefaultPort returns the conventional server port for a dialect.
// SQLite has no port and returns 0.
func DefaultPort(d Dialect) int {
	switch d {
	case DialectPostgres:
		return 5432
	case DialectMySQL:
		return 3306
	case DialectSQLServer:
		return 1433
	default:
		return 0
	}
}
