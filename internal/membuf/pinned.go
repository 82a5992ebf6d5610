package membuf

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// bytesPerMiB is 1 MiB in bytes, used to size the physical-memory cap.
const bytesPerMiB = 1 << 20

// PinnedRegion is the process-wide page-locked region (spec.md §4.7):
// allocated once at startup if a non-zero lock-memory size is configured,
// unlocked and unmapped at exit.
type PinnedRegion struct {
	data []byte
}

// AcquirePinned maps and mlocks requestMiB mebibytes, capped at
// (physical memory - 128 MiB). When the cap applies, the caller-provided log
// function is invoked with the effective size actually requested.
func AcquirePinned(requestMiB uint64, log func(format string, args ...any)) (*PinnedRegion, error) {
	if requestMiB == 0 {
		return &PinnedRegion{}, nil
	}

	physMiB, err := physicalMemoryMiB()
	if err != nil {
		return nil, fmt.Errorf("reading physical memory: %w", err)
	}

	const headroomMiB = 128
	var capMiB uint64
	if physMiB > headroomMiB {
		capMiB = physMiB - headroomMiB
	}
	if requestMiB > capMiB {
		if log != nil {
			log("lock_mem capped from %dMiB to %dMiB (physical memory %dMiB)", requestMiB, capMiB, physMiB)
		}
		requestMiB = capMiB
	}
	if requestMiB == 0 {
		return &PinnedRegion{}, nil
	}

	size := int(requestMiB * bytesPerMiB)
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("mmap pinned region: %w", err)
	}
	if err := unix.Mlock(data); err != nil {
		unix.Munmap(data)
		return nil, fmt.Errorf("mlock pinned region: %w", err)
	}
	return &PinnedRegion{data: data}, nil
}

// Release unlocks and unmaps the pinned region. Safe to call on a
// zero-sized region.
func (p *PinnedRegion) Release() error {
	if p == nil || p.data == nil {
		return nil
	}
	unix.Munlock(p.data)
	err := unix.Munmap(p.data)
	p.data = nil
	return err
}

func physicalMemoryMiB() (uint64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, err
	}
	return (uint64(info.Totalram) * uint64(info.Unit)) / bytesPerMiB, nil
}
