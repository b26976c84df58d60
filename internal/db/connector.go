package db

import (
	"fmt"
	"strings"

	"github.com/vvka-141/tripload/pkg/tripload"
)

// WrapConnectionError turns a driver connect error into one with actionable
// hints. The result wraps both tripload.ErrConnectionFailed and err.
func WrapConnectionError(err error, config *tripload.ConnectionConfig) error {
	errStr := strings.ToLower(err.Error())
	host, port, database := config.Host, config.Port, config.Database
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`%w: connection refused to %s

Possible causes:
  - The %s server is not running
  - Wrong host or port
  - Firewall blocking the connection

Original error: %w`, tripload.ErrConnectionFailed, addr, config.Dialect, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`%w: cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable
  - Network connection issue

Original error: %w`, tripload.ErrConnectionFailed, host, err)

	case strings.Contains(errStr, "password authentication failed") ||
		strings.Contains(errStr, "access denied for user") ||
		strings.Contains(errStr, "login failed for user"):
		return fmt.Errorf(`%w: authentication failed for database "%s"

Possible causes:
  - Wrong password (check $PGPASSWORD or the connection string)
  - Wrong username
  - User does not have access to the database

Original error: %w`, tripload.ErrConnectionFailed, database, err)

	case strings.Contains(errStr, "does not exist") ||
		strings.Contains(errStr, "unknown database") ||
		strings.Contains(errStr, "cannot open database"):
		return fmt.Errorf(`%w: database "%s" does not exist

Rerun with --create-database to create it first.

Original error: %w`, tripload.ErrConnectionFailed, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`%w: connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)

Original error: %w`, tripload.ErrConnectionFailed, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`%w: SSL/TLS connection error

Possible causes:
  - Server requires SSL but --sslmode is wrong
  - Certificate verification failed (try --sslmode=require)

Original error: %w`, tripload.ErrConnectionFailed, err)

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf(`%w: too many connections to database "%s"

Original error: %w`, tripload.ErrConnectionFailed, database, err)

	default:
		return fmt.Errorf("%w: failed to connect to database: %w", tripload.ErrConnectionFailed, err)
	}
}
