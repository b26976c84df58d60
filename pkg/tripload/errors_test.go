package tripload_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vvka-141/tripload/pkg/tripload"
)

func TestExitCodeForError_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown flag", errors.New("unknown flag --foo"), tripload.ExitUsageError},
		{"unknown shorthand flag", errors.New("unknown shorthand flag: 'x'"), tripload.ExitUsageError},
		{"accepts args", errors.New("accepts at most 1 arg(s), received 2"), tripload.ExitUsageError},
		{"required flag", errors.New("required flag \"database\" not set"), tripload.ExitUsageError},
		{"invalid argument", errors.New("invalid argument \"abc\" for \"--port\""), tripload.ExitUsageError},
		{"general error", errors.New("something went wrong"), tripload.ExitGeneralError},
		{"nil error", nil, tripload.ExitSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tripload.ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeForError_Sentinels(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{tripload.ErrInvalidConfig, tripload.ExitConfigError},
		{tripload.ErrUnsupportedDialect, tripload.ExitConfigError},
		{tripload.ErrConnectionFailed, tripload.ExitConnectionError},
		{tripload.ErrDatabaseExists, tripload.ExitDatabaseExists},
		{tripload.ErrLoadFailed, tripload.ExitLoadFailed},
		{tripload.ErrFetchFailed, tripload.ExitFetchFailed},
		{tripload.ErrDecodeFailed, tripload.ExitFetchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("step: %w", tt.err)
			if got := tripload.ExitCodeForError(wrapped); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", wrapped, got, tt.want)
			}
		})
	}
}

func TestExitCodeForError_ConnectionPatterns(t *testing.T) {
	err := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	if got := tripload.ExitCodeForError(err); got != tripload.ExitConnectionError {
		t.Errorf("got %d, want %d", got, tripload.ExitConnectionError)
	}
}

func TestExitCodeForError_JoinedValidation(t *testing.T) {
	cfg := tripload.IngestConfig{}
	err := cfg.Validate()
	if got := tripload.ExitCodeForError(err); got != tripload.ExitConfigError {
		t.Errorf("got %d, want %d", got, tripload.ExitConfigError)
	}
}
