package job

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

type summaryHarness struct {
	terse bool
	out   bytes.Buffer
}

func (h *summaryHarness) Group() int64        { return 0 }
func (h *summaryHarness) AdvanceGroup() int64 { return 0 }
func (h *summaryHarness) IsTerse() bool       { return h.terse }
func (h *summaryHarness) Out() io.Writer      { return &h.out }

func TestPrintSummarySuppressedWhenTerse(t *testing.T) {
	h := &summaryHarness{terse: true}
	printSummary(h, NewDefaults().Clone(), true)
	if h.out.Len() != 0 {
		t.Error("printSummary should write nothing in terse mode")
	}
}

func TestPrintSummaryFullReplicaIncludesName(t *testing.T) {
	h := &summaryHarness{}
	j := NewDefaults().Clone()
	j.Name = "myjob"
	printSummary(h, j, true)
	if !strings.Contains(h.out.String(), "myjob") {
		t.Errorf("full summary %q should mention the job name", h.out.String())
	}
}

func TestPrintSummaryCondensedForNonFirstReplica(t *testing.T) {
	h := &summaryHarness{}
	j := NewDefaults().Clone()
	j.Name = "myjob"
	printSummary(h, j, false)
	if strings.Contains(h.out.String(), "myjob") {
		t.Error("condensed summary should not repeat the job name")
	}
	if h.out.Len() == 0 {
		t.Error("condensed summary should still print a marker line")
	}
}

func TestPrintSummaryNilHarnessIsSafe(t *testing.T) {
	printSummary(nil, NewDefaults().Clone(), true)
}

func TestDirectionString(t *testing.T) {
	cases := map[Direction]string{
		DirRead:      "read",
		DirWrite:     "write",
		DirReadWrite: "readwrite",
	}
	for d, want := range cases {
		if got := directionString(d); got != want {
			t.Errorf("directionString(%v) = %q, want %q", d, got, want)
		}
	}
}
