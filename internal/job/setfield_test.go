package job

import (
	"testing"

	"github.com/ioburst/iobench/internal/membuf"
	"github.com/ioburst/iobench/internal/schema"
)

func TestSetFieldDirectString(t *testing.T) {
	j := NewDefaults().Clone()
	if err := j.SetField(schema.FieldDirectory, "/data"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if j.Directory != "/data" {
		t.Errorf("Directory = %q, want /data", j.Directory)
	}
}

func TestSetFieldUnknownIDErrors(t *testing.T) {
	j := NewDefaults().Clone()
	if err := j.SetField(schema.FieldID(9999), "x"); err == nil {
		t.Error("expected error for an unrecognized field id")
	}
}

func TestSetRWVariants(t *testing.T) {
	cases := []struct {
		raw        string
		dir        Direction
		sequential bool
	}{
		{"read", DirRead, true},
		{"write", DirWrite, true},
		{"rw", DirReadWrite, true},
		{"readwrite", DirReadWrite, true},
		{"randread", DirRead, false},
		{"randwrite", DirWrite, false},
		{"randrw", DirReadWrite, false},
	}
	for _, c := range cases {
		j := NewDefaults().Clone()
		if err := j.setRW(c.raw); err != nil {
			t.Fatalf("setRW(%q): %v", c.raw, err)
		}
		if j.Direction != c.dir || j.Sequential != c.sequential {
			t.Errorf("setRW(%q) = (%v,%v), want (%v,%v)", c.raw, j.Direction, j.Sequential, c.dir, c.sequential)
		}
	}
}

func TestSetRWRejectsUnknownValue(t *testing.T) {
	j := NewDefaults().Clone()
	if err := j.setRW("bogus"); err == nil {
		t.Error("expected error for an unrecognized rw value")
	}
}

func TestSetBSRangeFansIntoBothDirections(t *testing.T) {
	j := NewDefaults().Clone()
	if err := j.setBSRange("512:4096,1024:8192"); err != nil {
		t.Fatalf("setBSRange: %v", err)
	}
	if j.MinBS[Read] != 512 || j.MaxBS[Read] != 4096 {
		t.Errorf("read range = %d:%d, want 512:4096", j.MinBS[Read], j.MaxBS[Read])
	}
	if j.MinBS[Write] != 1024 || j.MaxBS[Write] != 8192 {
		t.Errorf("write range = %d:%d, want 1024:8192", j.MinBS[Write], j.MaxBS[Write])
	}
}

func TestSetBSRangeRejectsMalformedInput(t *testing.T) {
	j := NewDefaults().Clone()
	if err := j.setBSRange("512:4096"); err == nil {
		t.Error("expected error for a range missing the write component")
	}
}

func TestSetMemKindVariants(t *testing.T) {
	cases := map[string]membuf.Kind{
		"malloc":   membuf.KindHeap,
		"shm":      membuf.KindSharedSegment,
		"shmhuge":  membuf.KindSharedSegmentHuge,
		"mmap":     membuf.KindMapping,
		"mmaphuge": membuf.KindMappingHuge,
	}
	for raw, want := range cases {
		j := NewDefaults().Clone()
		if err := j.setMemKind(raw); err != nil {
			t.Fatalf("setMemKind(%q): %v", raw, err)
		}
		if j.MemKind != want {
			t.Errorf("setMemKind(%q) = %v, want %v", raw, j.MemKind, want)
		}
	}
}

func TestSetVerifyVariants(t *testing.T) {
	cases := map[string]VerifyKind{
		"none":  VerifyNone,
		"crc32": VerifyCRC32,
		"md5":   VerifyMD5,
	}
	for raw, want := range cases {
		j := NewDefaults().Clone()
		if err := j.setVerify(raw); err != nil {
			t.Fatalf("setVerify(%q): %v", raw, err)
		}
		if j.Verify != want {
			t.Errorf("setVerify(%q) = %v, want %v", raw, j.Verify, want)
		}
	}
}

func TestSetFieldIOEngineResolvesThroughRegistry(t *testing.T) {
	j := NewDefaults().Clone()
	if err := j.SetField(schema.FieldIOEngine, "libaio"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if j.IOEngineName != "libaio" || j.Engine == nil || j.Engine.Name() != "libaio" {
		t.Errorf("IOEngineName/Engine = %q/%v, want libaio resolved", j.IOEngineName, j.Engine)
	}
}

func TestSetFieldIOEngineRejectsUnknown(t *testing.T) {
	j := NewDefaults().Clone()
	if err := j.SetField(schema.FieldIOEngine, "bogus-engine"); err == nil {
		t.Error("expected error for an unrecognized ioengine")
	}
}
