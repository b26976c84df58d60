package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// OptionalProjectPath accepts zero or one project_dir argument.
// The directory is where tripload.yaml and .env are looked up.
func OptionalProjectPath(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf(`accepts at most 1 arg(s), received %d

Usage: %s

Example:
  %s ./ny_taxi -d ny_taxi`, len(args), cmd.UseLine(), cmd.CommandPath())
	}
	return nil
}

// projectPath returns the project directory, defaulting to the working directory.
func projectPath(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
