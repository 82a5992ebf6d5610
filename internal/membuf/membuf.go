// Package membuf provisions each worker's I/O buffer under one of four
// ownership regimes (spec.md §4.7), plus the process-wide page-locked
// region. Each regime is a Region implementation owning its native handle,
// with Release as a method on every exit path — the sum-type redesign named
// in spec.md §9 in place of manual acquire/release verb pairs.
package membuf

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Kind selects a worker's buffer ownership regime.
type Kind int

const (
	KindHeap Kind = iota
	KindSharedSegment
	KindSharedSegmentHuge
	KindMapping
	KindMappingHuge
)

// shmHugetlb is Linux's SHM_HUGETLB flag (asm-generic/shmbuf.h), requesting
// the segment be backed by hugepages.
const shmHugetlb = 0x800

// Region is a provisioned buffer: callers get the backing bytes and must
// call Release exactly once when the worker tears down.
type Region interface {
	Bytes() []byte
	Release() error
}

// Acquire provisions size bytes under the given Kind. mmapFile is the
// optional backing file path for the mapping regimes; empty means an
// anonymous mapping.
func Acquire(kind Kind, size uint64, mmapFile string) (Region, error) {
	switch kind {
	case KindHeap:
		return &heapRegion{buf: make([]byte, size)}, nil
	case KindSharedSegment, KindSharedSegmentHuge:
		return acquireShm(size, kind == KindSharedSegmentHuge)
	case KindMapping, KindMappingHuge:
		return acquireMmap(size, mmapFile, kind == KindMappingHuge)
	default:
		return nil, fmt.Errorf("membuf: unknown kind %d", kind)
	}
}

type heapRegion struct{ buf []byte }

func (r *heapRegion) Bytes() []byte { return r.buf }
func (r *heapRegion) Release() error {
	r.buf = nil
	return nil
}

type shmRegion struct {
	id   int
	data []byte
}

func (r *shmRegion) Bytes() []byte { return r.data }

func (r *shmRegion) Release() error {
	if r.data != nil {
		if err := unix.SysvShmDetach(r.data); err != nil {
			return fmt.Errorf("shmdt: %w", err)
		}
		r.data = nil
	}
	if _, err := unix.SysvShmCtl(r.id, unix.IPC_RMID, nil); err != nil {
		return fmt.Errorf("shmctl IPC_RMID: %w", err)
	}
	return nil
}

// acquireShm gets a private (IPC_PRIVATE) SysV shared memory segment,
// attaches it, and returns its bytes. On ENOMEM the returned error carries
// the hugepage or root-privilege hint named in spec.md §4.7; nothing is
// logged here.
func acquireShm(size uint64, huge bool) (Region, error) {
	flags := unix.IPC_CREAT | 0o600
	if huge {
		flags |= shmHugetlb
	}
	id, err := unix.SysvShmGet(unix.IPC_PRIVATE, int(size), flags)
	if err != nil {
		if err == unix.ENOMEM {
			if huge {
				return nil, fmt.Errorf("shmget: out of memory — check /proc/sys/vm/nr_hugepages and the requested size: %w", err)
			}
			if os.Geteuid() != 0 {
				return nil, fmt.Errorf("shmget: out of memory — try running as root: %w", err)
			}
		}
		return nil, fmt.Errorf("shmget: %w", err)
	}
	data, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		unix.SysvShmCtl(id, unix.IPC_RMID, nil)
		return nil, fmt.Errorf("shmat: %w", err)
	}
	return &shmRegion{id: id, data: data}, nil
}

type mmapRegion struct {
	data []byte
	file *os.File
	path string
}

func (r *mmapRegion) Bytes() []byte { return r.data }

func (r *mmapRegion) Release() error {
	var err error
	if r.data != nil {
		if e := unix.Munmap(r.data); e != nil {
			err = fmt.Errorf("munmap: %w", e)
		}
		r.data = nil
	}
	if r.file != nil {
		r.file.Close()
		if r.path != "" {
			os.Remove(r.path)
		}
	}
	return err
}

// acquireMmap maps size bytes, either backed by a truncated file (when path
// is non-empty) or anonymously.
func acquireMmap(size uint64, path string, huge bool) (Region, error) {
	var (
		f   *os.File
		fd  = -1
		flg = unix.MAP_SHARED
	)
	if path != "" {
		var err error
		f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open mmap backing file: %w", err)
		}
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			return nil, fmt.Errorf("truncate mmap backing file: %w", err)
		}
		fd = int(f.Fd())
	} else {
		flg |= unix.MAP_ANONYMOUS
	}

	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, flg)
	if err != nil {
		if f != nil {
			f.Close()
		}
		return nil, fmt.Errorf("mmap: %w", err)
	}
	if huge {
		unix.Madvise(data, unix.MADV_HUGEPAGE)
	}

	return &mmapRegion{data: data, file: f, path: path}, nil
}
