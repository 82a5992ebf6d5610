package schema

import (
	"testing"
	"time"
)

func TestParseSize(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"4096", 4096},
		{"4k", 4 << 10},
		{"4K", 4 << 10},
		{"1m", 1 << 20},
		{"1M", 1 << 20},
		{"2g", 2 << 30},
		{"1p", 1 << 40},
		{"0", 0},
	}
	for _, c := range cases {
		got, err := ParseSize(c.in)
		if err != nil {
			t.Fatalf("ParseSize(%q): unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseSize(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseSizeInvalid(t *testing.T) {
	for _, in := range []string{"", "k", "4x", "-4k"} {
		if _, err := ParseSize(in); err == nil {
			t.Errorf("ParseSize(%q): expected error, got nil", in)
		}
	}
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"30", 30 * time.Second},
		{"30s", 30 * time.Second},
		{"2m", 2 * time.Minute},
		{"1h", time.Hour},
		{"1d", 24 * time.Hour},
	}
	for _, c := range cases {
		got, err := ParseDuration(c.in)
		if err != nil {
			t.Fatalf("ParseDuration(%q): unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseRangeSingleReplicatesToBothDirections(t *testing.T) {
	lo1, hi1, lo2, hi2, err := ParseRange("4k:8k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lo1 != 4<<10 || hi1 != 8<<10 || lo2 != lo1 || hi2 != hi1 {
		t.Errorf("got (%d,%d,%d,%d), want (%d,%d,%d,%d)", lo1, hi1, lo2, hi2, 4<<10, 8<<10, 4<<10, 8<<10)
	}
}

func TestParseRangeTwoParts(t *testing.T) {
	lo1, hi1, lo2, hi2, err := ParseRange("4k:8k,16k:32k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lo1 != 4<<10 || hi1 != 8<<10 || lo2 != 16<<10 || hi2 != 32<<10 {
		t.Errorf("got (%d,%d,%d,%d)", lo1, hi1, lo2, hi2)
	}
}

func TestParseRangeTooManyParts(t *testing.T) {
	if _, _, _, _, err := ParseRange("1k:2k,3k:4k,5k:6k"); err == nil {
		t.Error("expected error for three comma-separated parts")
	}
}

func TestMatchEnumLongestPrefixWins(t *testing.T) {
	whitelist := []string{"randread", "randwrite", "randrw", "read", "write", "rw", "readwrite"}
	got, err := matchEnum(whitelist, "randread")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "randread" {
		t.Errorf("matchEnum(randread) = %q, want randread (not read)", got)
	}
}

func TestMatchEnumRejectsUnknown(t *testing.T) {
	if _, err := matchEnum([]string{"a", "b"}, "c"); err == nil {
		t.Error("expected error for value not in whitelist")
	}
}

func TestParseBoundedIntRange(t *testing.T) {
	if _, err := parseBoundedInt("150", 0, 100); err == nil {
		t.Error("expected out-of-range error")
	}
	n, err := parseBoundedInt("50", 0, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 50 {
		t.Errorf("got %d, want 50", n)
	}
}

// fakeSetter records the last FieldID/raw pair SetField received.
type fakeSetter struct {
	id  FieldID
	raw string
}

func (f *fakeSetter) SetField(id FieldID, raw string) error {
	f.id, f.raw = id, raw
	return nil
}

func TestApplyFlagKindIgnoresRawValue(t *testing.T) {
	entry := &Entry{Name: "unaligned", Kind: KindFlag, Field: FieldUnaligned}
	var s fakeSetter
	if err := Apply(entry, &s, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.raw != "1" {
		t.Errorf("flag kind wrote %q, want \"1\"", s.raw)
	}
}

func TestApplyCustomParserReplacesDefaultDispatch(t *testing.T) {
	called := false
	entry := &Entry{Name: "x", Kind: KindString, Custom: func(j JobSetter, raw string) error {
		called = true
		return nil
	}}
	var s fakeSetter
	if err := Apply(entry, &s, "whatever"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("custom parser was not invoked")
	}
}

func TestIOEngineCustomParserRejectsUnknownEngine(t *testing.T) {
	entry := ByName["ioengine"]
	var s fakeSetter
	if err := Apply(entry, &s, "nonexistent-engine"); err == nil {
		t.Error("expected error for unknown ioengine")
	}
	if err := Apply(entry, &s, "sync"); err != nil {
		t.Errorf("unexpected error for known ioengine: %v", err)
	}
}
