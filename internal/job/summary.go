package job

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	summaryName = lipgloss.NewStyle().Bold(true)
	summaryDim  = lipgloss.NewStyle().Faint(true)
)

// printSummary writes one line per committed worker, unless h is in terse
// mode: the first replica of a multi-job prints full detail, subsequent
// replicas print a condensed marker (spec.md §4.5 step 9).
func printSummary(h Harness, j *Job, full bool) {
	if h == nil || h.IsTerse() {
		return
	}
	w := h.Out()
	if w == nil {
		return
	}
	if !full {
		fmt.Fprintln(w, summaryDim.Render("  ..."))
		return
	}
	fmt.Fprintf(w, "%s: (g=%d) %s bs=%d-%d/%d-%d iodepth=%d\n",
		summaryName.Render(j.Name), j.Group, directionString(j.Direction),
		j.MinBS[Read], j.MaxBS[Read], j.MinBS[Write], j.MaxBS[Write], j.IODepth)
}

func directionString(d Direction) string {
	switch d {
	case DirRead:
		return "read"
	case DirWrite:
		return "write"
	default:
		return "readwrite"
	}
}
