package appconfig

import (
	"testing"
)

func TestLoadWithNoFileReturnsZeroValueDefaults(t *testing.T) {
	SetConfigDir(t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultIOEngine != "" || cfg.Terse || cfg.LockMemMiB != 0 {
		t.Errorf("Load() with no file = %+v, want zero-value Config", cfg)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	SetConfigDir(t.TempDir())
	want := &Config{
		DefaultIOEngine:   "libaio",
		DefaultOutputPath: "/tmp/out",
		Terse:             true,
		LockMemMiB:        256,
	}
	if err := Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestConfigDirPrecedenceOverrideWins(t *testing.T) {
	dir := t.TempDir()
	SetConfigDir(dir)
	if got := ConfigDir(); got != dir {
		t.Errorf("ConfigDir() = %q, want override %q", got, dir)
	}
}

func TestSaveCreatesConfigDirIfMissing(t *testing.T) {
	base := t.TempDir()
	nested := base + "/nested/config/dir"
	SetConfigDir(nested)
	if err := Save(&Config{Terse: true}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Terse {
		t.Error("round-tripped config should preserve Terse=true")
	}
}
