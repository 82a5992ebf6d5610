// Package harness replaces the source's module-level globals (spec.md §9
// Design Notes) with a single context value threaded through the readers
// and the builder: the defaults descriptor, worker table, group counter,
// pinned region, output streams, and terse/exitall flags all live here
// instead of package-level state.
package harness

import (
	"io"
	"sync/atomic"

	"github.com/ioburst/iobench/internal/jobtable"
	"github.com/ioburst/iobench/internal/job"
	"github.com/ioburst/iobench/internal/membuf"
)

// Context is process-wide state for one harness invocation.
type Context struct {
	Defaults *job.Defaults
	Table    *jobtable.Table
	Pinned   *membuf.PinnedRegion

	RunID string

	group atomic.Int64

	ExitAllOnTerminate bool
	Terse              bool
	LockMemMiB         uint64

	Stdout io.Writer
	Stderr io.Writer
}

// New builds a Context with a fresh Defaults descriptor and the given
// worker table and pinned region (both already provisioned by main.go). The
// Defaults descriptor carries runID, so every job cloned from it shares it.
func New(table *jobtable.Table, pinned *membuf.PinnedRegion, runID string, stdout, stderr io.Writer) *Context {
	defaults := job.NewDefaults()
	defaults.Job().RunID = runID
	return &Context{
		Defaults: defaults,
		Table:    table,
		Pinned:   pinned,
		RunID:    runID,
		Stdout:   stdout,
		Stderr:   stderr,
	}
}

// Group returns the current group identifier without advancing it.
func (c *Context) Group() int64 { return c.group.Load() }

// IsTerse reports whether summary output is suppressed.
func (c *Context) IsTerse() bool { return c.Terse }

// Out returns the stream worker summaries are written to.
func (c *Context) Out() io.Writer { return c.Stdout }

// AdvanceGroup advances the group counter by one and returns the new value,
// used when a stonewall job is committed at or after the second worker
// (spec.md invariant 11).
func (c *Context) AdvanceGroup() int64 { return c.group.Add(1) }

// Close tears down process-wide resources: the worker table and the pinned
// region.
func (c *Context) Close() error {
	var err error
	if c.Pinned != nil {
		if e := c.Pinned.Release(); e != nil {
			err = e
		}
	}
	if c.Table != nil {
		if e := c.Table.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
