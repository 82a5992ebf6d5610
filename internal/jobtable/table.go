// Package jobtable implements the process-wide worker table: a shared
// memory segment sized for kernel-limit negotiation (spec.md §4.6), backing
// an in-process slice of committed *job.Job descriptors.
//
// A raw SysV segment cannot safely hold Go's Job type directly — Job carries
// pointers, slices, and interfaces that only make sense to this process's
// garbage collector. Real fio shares a flat C struct across forked workers;
// this port's workers are expected to be goroutines or re-exec'd
// subprocesses that receive their Job via the normal Go ownership rules, so
// the shared segment here plays its namesake role — a raw region whose size
// is negotiated against the kernel exactly as spec.md describes, reserving
// the memory the worker subsystem will actually use — while the table's
// bookkeeping (slots, high-water index) lives in ordinary process memory.
package jobtable

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/ioburst/iobench/internal/job"
)

// recordSize is the reserved shared-memory footprint per worker slot. Real
// worker state lives in Go-managed memory; this sizes only the raw region
// negotiated against the kernel, as a conservative fixed allotment for
// whatever out-of-scope subprocess handshake data the worker subsystem
// needs per slot.
const recordSize = 4096

// ErrTableFull is returned by GetNewJob when no slot remains.
var ErrTableFull = errors.New("jobtable: table full")

// Table is the process-wide, shared-memory-backed array of worker
// descriptors with a high-water allocation index.
type Table struct {
	shmID   int
	shmData []byte
	maxJobs int
	slots   []*job.Job
	high    int
}

// shmGetFunc is unix.SysvShmGet by default; tests substitute a fake so the
// EINVAL-halving negotiation (spec.md §4.6, scenario 6) can be exercised
// without depending on the test host's actual SHMMAX.
var shmGetFunc = unix.SysvShmGet

// New negotiates and attaches a shared segment sized maxJobs slots. On
// EINVAL the kernel is telling us the segment is too large; maxJobs is
// halved and the request retried until it succeeds or is exhausted. Any
// other errno is fatal.
func New(maxJobs int) (*Table, error) {
	size, id, err := negotiateSize(maxJobs, func(n int) (int, error) {
		return shmGetFunc(unix.IPC_PRIVATE, n*recordSize, unix.IPC_CREAT|0o600)
	})
	if err != nil {
		return nil, err
	}
	data, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		unix.SysvShmCtl(id, unix.IPC_RMID, nil)
		return nil, fmt.Errorf("jobtable: shmat: %w", err)
	}
	return &Table{
		shmID:   id,
		shmData: data,
		maxJobs: size,
		slots:   make([]*job.Job, size),
	}, nil
}

// negotiateSize halves maxJobs on EINVAL until get succeeds, returning the
// winning size and the segment id get produced for it. Any other errno is
// fatal.
func negotiateSize(maxJobs int, get func(int) (int, error)) (size, id int, err error) {
	for maxJobs > 0 {
		gotID, err := get(maxJobs)
		if err == nil {
			return maxJobs, gotID, nil
		}
		if err == unix.EINVAL {
			maxJobs /= 2
			continue
		}
		return 0, 0, fmt.Errorf("jobtable: shmget: %w", err)
	}
	return 0, 0, errors.New("jobtable: could not negotiate a shared segment of any size")
}

// MaxJobs returns the table's negotiated capacity.
func (t *Table) MaxJobs() int { return t.maxJobs }

// HighWater returns the current allocation high-water index.
func (t *Table) HighWater() int { return t.high }

// GetNewJob returns the next free slot and bumps the high-water index, or
// ErrTableFull when the table is exhausted.
func (t *Table) GetNewJob() (int, *job.Job, error) {
	if t.high >= t.maxJobs {
		return 0, nil, ErrTableFull
	}
	idx := t.high
	t.high++
	return idx, nil, nil
}

// Commit stores j at idx, completing the slot allocated by GetNewJob. The
// caller must have obtained idx from GetNewJob without an intervening
// Release.
func (t *Table) Commit(idx int, j *job.Job) error {
	if idx < 0 || idx >= t.high {
		return fmt.Errorf("jobtable: commit index %d out of range [0,%d)", idx, t.high)
	}
	t.slots[idx] = j
	return nil
}

// Release zeroes the slot at idx and decrements the high-water index. Per
// spec.md invariant 1, committed workers form a prefix of the table, so
// Release is only valid on the most recently allocated slot (rollback of a
// failed build, or teardown in reverse order).
func (t *Table) Release(idx int) error {
	if idx != t.high-1 {
		return fmt.Errorf("jobtable: release index %d is not the top of the table (high-water %d)", idx, t.high)
	}
	t.slots[idx] = nil
	t.high--
	return nil
}

// Jobs returns the committed prefix of the table.
func (t *Table) Jobs() []*job.Job {
	return t.slots[:t.high]
}

// Close detaches and removes the shared segment. Safe to call once at
// process exit.
func (t *Table) Close() error {
	var err error
	if t.shmData != nil {
		if e := unix.SysvShmDetach(t.shmData); e != nil {
			err = fmt.Errorf("jobtable: shmdt: %w", e)
		}
		t.shmData = nil
	}
	if _, e := unix.SysvShmCtl(t.shmID, unix.IPC_RMID, nil); e != nil && err == nil {
		err = fmt.Errorf("jobtable: shmctl IPC_RMID: %w", e)
	}
	return err
}
