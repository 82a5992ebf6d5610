package cmd

import (
	"fmt"
	"io"

	"github.com/ioburst/iobench/internal/schema"
)

const usageText = `usage: iobench [flags] [jobfile ...]

harness flags:
  --output=PATH        redirect summary output to PATH
  --timeout=SEC         default per-job runtime in seconds
  --latency-log         enable latency logging by default
  --bandwidth-log       enable bandwidth logging by default
  --minimal             terse summary output
  --version             print version and exit
  --help                print this message and exit
  --cmdhelp=NAME         print help for one job option, or "all"

job options (also settable per-section in a jobfile): --cmdhelp=all`

// printCmdHelp prints the schema entry named name, or every entry when name
// is "all" (spec.md §6 "--cmdhelp=NAME print help for one option (all prints
// all)").
func printCmdHelp(w io.Writer, name string) {
	if name == "all" {
		for i := range schema.Table {
			printEntryHelp(w, &schema.Table[i])
		}
		return
	}
	entry, ok := schema.ByName[name]
	if !ok {
		fmt.Fprintf(w, "fio: no such option %q\n", name)
		return
	}
	printEntryHelp(w, entry)
}

func printEntryHelp(w io.Writer, e *schema.Entry) {
	fmt.Fprintf(w, "%-20s %s", e.Name, e.Kind)
	if e.Default != "" {
		fmt.Fprintf(w, " (default %s)", e.Default)
	}
	if len(e.Enum) > 0 {
		fmt.Fprintf(w, " one of %v", e.Enum)
	}
	fmt.Fprintln(w)
}
