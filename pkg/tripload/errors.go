package tripload

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	_, err := ingester.Run(ctx, config)
//	if errors.Is(err, tripload.ErrDatabaseExists) {
//	    // rerun without --create-database
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrFetchFailed indicates the remote file could not be retrieved.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrDecodeFailed indicates the retrieved bytes could not be turned into a dataset.
	ErrDecodeFailed = errors.New("decode failed")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrDatabaseExists indicates CREATE DATABASE found a database with the same name.
	ErrDatabaseExists = errors.New("database already exists")

	// ErrLoadFailed indicates table creation or the bulk append failed.
	ErrLoadFailed = errors.New("load failed")

	// ErrUnsupportedDialect indicates no storage backend is registered for the dialect.
	ErrUnsupportedDialect = errors.New("unsupported database dialect")
)

// usageErrorPatterns are substrings of cobra/pflag errors caused by bad invocations.
var usageErrorPatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"arg(s), received",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedDialect):
		return ExitConfigError
	case errors.Is(err, ErrDatabaseExists):
		return ExitDatabaseExists
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrFetchFailed), errors.Is(err, ErrDecodeFailed):
		return ExitFetchFailed
	case errors.Is(err, ErrLoadFailed):
		return ExitLoadFailed
	}

	errStr := err.Error()
	for _, p := range usageErrorPatterns {
		if strings.Contains(errStr, p) {
			return ExitUsageError
		}
	}

	// Check for common connection error patterns
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
