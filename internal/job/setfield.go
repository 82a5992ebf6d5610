package job

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ioburst/iobench/internal/engine"
	"github.com/ioburst/iobench/internal/membuf"
	"github.com/ioburst/iobench/internal/schema"
)

// SetField implements schema.JobSetter: the write-through dispatch that
// replaces the source's raw-offset writes (spec.md §9). Apply has already
// parsed raw for int/size/duration/enum/range kinds (and bounds-checked the
// int kinds); SetField only needs to convert the already-validated textual
// form into the Job's typed field.
func (j *Job) SetField(id schema.FieldID, raw string) error {
	switch id {
	case schema.FieldName:
		j.Name = raw
	case schema.FieldDirectory:
		j.Directory = raw
	case schema.FieldFilename:
		j.Filename = raw
	case schema.FieldNrFiles:
		return setInt(&j.NrFiles, raw)
	case schema.FieldSize:
		return setUint64(&j.FileSize, raw)
	case schema.FieldOffset:
		return setUint64(&j.Offset, raw)
	case schema.FieldRW:
		return j.setRW(raw)
	case schema.FieldRWMixRead:
		return setInt(&j.RWMixRead, raw)
	case schema.FieldRWMixWrite:
		return setInt(&j.RWMixWrite, raw)
	case schema.FieldRWMixCycle:
		return setDuration(&j.RWMixCycle, raw)
	case schema.FieldZoneSize:
		return setUint64(&j.ZoneSize, raw)
	case schema.FieldZoneSkip:
		return setUint64(&j.ZoneSkip, raw)
	case schema.FieldBSRange:
		return j.setBSRange(raw)
	case schema.FieldUnaligned:
		j.Unaligned = true
	case schema.FieldRateBW:
		return setUint64(&j.RateBW, raw)
	case schema.FieldRateMinBW:
		return setUint64(&j.RateMinBW, raw)
	case schema.FieldRateCycle:
		return setDuration(&j.RateCycle, raw)
	case schema.FieldStartDelay:
		return setDuration(&j.StartDelay, raw)
	case schema.FieldThinkTime:
		return setDuration(&j.ThinkTime, raw)
	case schema.FieldThinkBlocks:
		return setInt(&j.ThinkBlocks, raw)
	case schema.FieldLoops:
		return setInt(&j.Loops, raw)
	case schema.FieldIOEngine:
		h, err := engine.Lookup(raw)
		if err != nil {
			return err
		}
		j.IOEngineName = raw
		j.Engine = h
	case schema.FieldIODepth:
		return setInt(&j.IODepth, raw)
	case schema.FieldSyncWrites:
		j.SyncWrites = true
	case schema.FieldDirect:
		j.Direct = true
	case schema.FieldOverwrite:
		j.Overwrite = true
	case schema.FieldInvalidateCache:
		j.InvalidateCache = true
	case schema.FieldFsyncEvery:
		return setInt(&j.FsyncEvery, raw)
	case schema.FieldFsyncOnCreate:
		j.FsyncOnCreate = true
	case schema.FieldEndFsync:
		j.EndFsync = true
	case schema.FieldCreateSerialize:
		j.CreateSerialize = true
	case schema.FieldUnlink:
		j.Unlink = true
	case schema.FieldMem:
		return j.setMemKind(raw)
	case schema.FieldMmapFile:
		j.MmapFile = raw
	case schema.FieldHugePageSize:
		return setUint64(&j.HugePageSize, raw)
	case schema.FieldNice:
		return setInt(&j.Nice, raw)
	case schema.FieldIOPrioClass:
		return setInt(&j.IOPrioClass, raw)
	case schema.FieldIOPrio:
		return setInt(&j.IOPrio, raw)
	case schema.FieldCPUBurnLoad:
		return setInt(&j.CPUBurnLoad, raw)
	case schema.FieldCPUBurnCycle:
		return setDuration(&j.CPUBurnCycle, raw)
	case schema.FieldVerify:
		return j.setVerify(raw)
	case schema.FieldNoRandomMap:
		j.NoRandomMap = true
	case schema.FieldStonewall:
		j.Stonewall = true
	case schema.FieldBWLog:
		j.BWLog = true
	case schema.FieldLatLog:
		j.LatLog = true
	case schema.FieldReadIOLog:
		j.ReadIOLog = raw
	case schema.FieldWriteIOLog:
		j.WriteIOLog = raw
	case schema.FieldPreRunHook:
		j.PreRunHook = raw
	case schema.FieldPostRunHook:
		j.PostRunHook = raw
	case schema.FieldNumJobs:
		return setInt(&j.NumJobs, raw)
	case schema.FieldUniqueFiles:
		return setInt(&j.UniqueFiles, raw)
	default:
		return fmt.Errorf("job: unknown field id %d", id)
	}
	return nil
}

func setInt(dst *int, raw string) error {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing int field: %w", err)
	}
	*dst = int(n)
	return nil
}

func setUint64(dst *uint64, raw string) error {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing size field: %w", err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, raw string) error {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing duration field: %w", err)
	}
	*dst = time.Duration(n)
	return nil
}

func (j *Job) setRW(raw string) error {
	switch raw {
	case "read":
		j.Direction, j.Sequential = DirRead, true
	case "write":
		j.Direction, j.Sequential = DirWrite, true
	case "rw", "readwrite":
		j.Direction, j.Sequential = DirReadWrite, true
	case "randread":
		j.Direction, j.Sequential = DirRead, false
	case "randwrite":
		j.Direction, j.Sequential = DirWrite, false
	case "randrw":
		j.Direction, j.Sequential = DirReadWrite, false
	default:
		return fmt.Errorf("job: unrecognized rw value %q", raw)
	}
	return nil
}

// setBSRange parses the "lo1:hi1,lo2:hi2" form Apply already validated and
// fans it into the read/write MinBS/MaxBS arrays. BS itself is not touched
// here; fixup (invariant 3) sets an unset BS to the low bound.
func (j *Job) setBSRange(raw string) error {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return fmt.Errorf("job: malformed bs range %q", raw)
	}
	loHi := func(s string) (uint64, uint64, error) {
		kv := strings.SplitN(s, ":", 2)
		if len(kv) != 2 {
			return 0, 0, fmt.Errorf("malformed range component %q", s)
		}
		lo, err := strconv.ParseUint(kv[0], 10, 64)
		if err != nil {
			return 0, 0, err
		}
		hi, err := strconv.ParseUint(kv[1], 10, 64)
		if err != nil {
			return 0, 0, err
		}
		return lo, hi, nil
	}
	rLo, rHi, err := loHi(parts[0])
	if err != nil {
		return err
	}
	wLo, wHi, err := loHi(parts[1])
	if err != nil {
		return err
	}
	j.MinBS[Read], j.MaxBS[Read] = rLo, rHi
	j.MinBS[Write], j.MaxBS[Write] = wLo, wHi
	return nil
}

func (j *Job) setMemKind(raw string) error {
	switch raw {
	case "malloc":
		j.MemKind = membuf.KindHeap
	case "shm":
		j.MemKind = membuf.KindSharedSegment
	case "shmhuge":
		j.MemKind = membuf.KindSharedSegmentHuge
	case "mmap":
		j.MemKind = membuf.KindMapping
	case "mmaphuge":
		j.MemKind = membuf.KindMappingHuge
	default:
		return fmt.Errorf("job: unrecognized mem value %q", raw)
	}
	return nil
}

func (j *Job) setVerify(raw string) error {
	switch raw {
	case "none":
		j.Verify = VerifyNone
	case "crc32":
		j.Verify = VerifyCRC32
	case "md5":
		j.Verify = VerifyMD5
	default:
		return fmt.Errorf("job: unrecognized verify value %q", raw)
	}
	return nil
}
