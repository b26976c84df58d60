package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/vvka-141/tripload/pkg/tripload"
)

// isTerminal reports whether w is an interactive terminal.
// CI=... and NO_COLOR=... force plain output.
func isTerminal(w io.Writer) bool {
	if os.Getenv("CI") != "" || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// printReport writes one line per loaded table. Pipes get "table<TAB>rows";
// terminals get an aligned table with the source checksum.
func printReport(w io.Writer, report *tripload.Report) {
	if !isTerminal(w) {
		for _, t := range report.Tables {
			fmt.Fprintf(w, "%s\t%d\n", t.Table, t.Rows)
		}
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tROWS\tCHECKSUM")
	for _, t := range report.Tables {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", t.Table, t.Rows, t.Checksum)
	}
	_ = tw.Flush()
}
