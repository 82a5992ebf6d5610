package job

import (
	"github.com/ioburst/iobench/internal/engine"
	"github.com/ioburst/iobench/internal/randseed"
)

// SeedWorker initializes j's pseudo-random streams and, for non-sequential
// workloads with block-coverage maps enabled, a per-file bit array sized to
// the file's block count (spec.md §4.8). It runs after AddJob has committed
// j, since it needs the finished file set. CPU-burn engines issue no real
// I/O and are skipped entirely.
func (j *Job) SeedWorker(repeatable bool) error {
	if j.Engine != nil && j.Engine.Features().Has(engine.CPUBurn) {
		return nil
	}

	streams, err := randseed.Seed(repeatable)
	if err != nil {
		return err
	}
	if j.Sequential {
		streams.Position = 0
	}
	j.Seeds = streams

	if j.Sequential || j.NoRandomMap {
		return nil
	}

	minBS := j.minBlockSize()
	for i := range j.Files {
		j.Files[i].BlockMap = randseed.NewBlockMap(j.Files[i].Size, minBS)
	}
	return nil
}
