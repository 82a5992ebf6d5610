package job

import (
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// statTarget classifies section as a regular file, block device, or
// character device (spec.md §4.5 step 2). A target that does not yet exist
// is treated as a regular file to be created, the common case for a fresh
// benchmark run.
func statTarget(section string) (FileType, error) {
	var st unix.Stat_t
	if err := unix.Stat(section, &st); err != nil {
		if errors.Is(err, unix.ENOENT) {
			return FileRegular, nil
		}
		return FileRegular, err
	}
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFBLK:
		return FileBlockDevice, nil
	case unix.S_IFCHR:
		return FileCharDevice, nil
	default:
		return FileRegular, nil
	}
}

// buildFileSet materializes j.Files per spec.md §4.5 steps 4-5: an explicit
// filename or a regular-file target allocates nrfiles records sized by equal
// division of FileSize; a block or character device target gets a single
// record pointing at the device itself.
func (j *Job) buildFileSet(section string) error {
	if j.Filename != "" || j.FileType == FileRegular {
		n := j.NrFiles
		if n < 1 {
			n = 1
		}
		var each uint64
		if j.FileSize > 0 {
			each = j.FileSize / uint64(n)
		}
		files := make([]FileRecord, n)
		for i := 0; i < n; i++ {
			files[i] = FileRecord{
				Path:   j.filePath(section, i),
				Size:   each,
				Offset: j.Offset + uint64(i)*each,
			}
		}
		j.Files = files
		return nil
	}

	j.Files = []FileRecord{{
		Path:   section,
		Size:   j.FileSize,
		Offset: j.Offset,
	}}
	return nil
}

// filePath names file index fileIndex of this job. An explicit filename is
// shared by every file record (matching the source's literal behavior);
// otherwise the path encodes the section name, this worker's replica index,
// and the file index so replicas and multi-file jobs never collide.
func (j *Job) filePath(section string, fileIndex int) string {
	if j.Filename != "" {
		return filepath.Join(j.Directory, j.Filename)
	}
	return filepath.Join(j.Directory, fmt.Sprintf("%s.%d.%d", section, j.Index, fileIndex))
}
