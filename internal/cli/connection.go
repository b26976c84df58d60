package cli

import (
	"fmt"
	"io"

	"github.com/vvka-141/tripload/internal/config"
	"github.com/vvka-141/tripload/internal/db"
	"github.com/vvka-141/tripload/internal/storage"
	"github.com/vvka-141/tripload/pkg/tripload"

	// Register every storage backend.
	_ "github.com/vvka-141/tripload/internal/storage/all"
)

// resolveConnection resolves the target connection and the maintenance
// database from flags, environment and tripload.yaml.
func resolveConnection(
	connStringFlag string,
	granularFlags *db.GranularConnFlags,
	maintenanceFlag string,
	projectConfig *config.ProjectConfig,
) (*tripload.ConnectionConfig, string, error) {
	connConfig, err := db.ResolveConnectionParams(
		connStringFlag,
		granularFlags,
		db.LoadFromEnvironment(),
		projectConfig,
	)
	if err != nil {
		return nil, "", err
	}
	return connConfig, db.ResolveMaintenanceDatabase(maintenanceFlag, projectConfig), nil
}

// connectorFor opens stores through the backend registered for the dialect.
func connectorFor(cfg *tripload.ConnectionConfig) (tripload.Connector, error) {
	return storage.NewConnector(cfg.Dialect)
}

func logConnectionVerbose(w io.Writer, connConfig *tripload.ConnectionConfig, maintenanceDB string) {
	fmt.Fprintf(w, "[VERBOSE] Connection resolved:\n")
	fmt.Fprintf(w, "  Dialect: %s\n", connConfig.Dialect)
	if connConfig.Dialect != tripload.DialectSQLite {
		fmt.Fprintf(w, "  Host: %s\n", connConfig.Host)
		fmt.Fprintf(w, "  Port: %d\n", connConfig.Port)
		fmt.Fprintf(w, "  User: %s\n", connConfig.Username)
		fmt.Fprintf(w, "  SSL Mode: %s\n", connConfig.SSLMode)
	}
	fmt.Fprintf(w, "  Target Database: %s\n", connConfig.Database)
	if maintenanceDB != "" {
		fmt.Fprintf(w, "  Maintenance Database: %s\n", maintenanceDB)
	}
	fmt.Fprintf(w, "  URI: %s\n", db.RedactConnectionString(connConfig))
}
