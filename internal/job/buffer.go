package job

import (
	"github.com/ioburst/iobench/internal/ferr"
	"github.com/ioburst/iobench/internal/membuf"
)

// ProvisionBuffer acquires j's I/O buffer under its configured memory kind,
// sized for the larger of its two directions' maximum block size. Called
// once per committed worker, after AddJob, just before workers begin
// (spec.md §3 Lifecycles: "Buffer region: allocated just before workers
// begin executing, released on teardown").
func (j *Job) ProvisionBuffer() error {
	size := j.bufferSize()
	if size == 0 {
		return nil
	}
	region, err := membuf.Acquire(j.MemKind, size, j.MmapFile)
	if err != nil {
		return ferr.New(ferr.Resource, "buffer provisioning", err)
	}
	j.Buffer = region
	return nil
}

// ReleaseBuffer tears down j's buffer region, if any. Safe to call on a
// worker whose buffer was never provisioned.
func (j *Job) ReleaseBuffer() error {
	if j.Buffer == nil {
		return nil
	}
	err := j.Buffer.Release()
	j.Buffer = nil
	return err
}

func (j *Job) bufferSize() uint64 {
	size := j.MaxBS[Read]
	if j.MaxBS[Write] > size {
		size = j.MaxBS[Write]
	}
	if size == 0 {
		size = defaultBlockSize
	}
	return size
}
