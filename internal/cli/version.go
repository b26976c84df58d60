package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		printVersionInfo(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

type versionInfo struct {
	Version, Commit, Date string
}

// resolveVersionInfo prefers ldflags values and falls back to the module
// and VCS data embedded by "go install" / "go build".
func resolveVersionInfo() versionInfo {
	info := versionInfo{Version: version, Commit: commit, Date: date}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" && s.Value != "" {
				info.Commit = s.Value
				if len(info.Commit) > 12 {
					info.Commit = info.Commit[:12]
				}
			}
		case "vcs.time":
			if info.Date == "unknown" && s.Value != "" {
				info.Date = s.Value
			}
		}
	}
	return info
}

// printVersionInfo prints version information.
// Version string goes to w for pipeline consumption.
// Decorative content goes to stderr.
func printVersionInfo(w io.Writer) {
	info := resolveVersionInfo()
	fmt.Fprintf(w, "tripload %s (%s, %s) %s/%s\n", info.Version, info.Commit, info.Date, runtime.GOOS, runtime.GOARCH)
	fmt.Fprintln(os.Stderr, "NYC taxi data loader")
}
