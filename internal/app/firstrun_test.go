package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMarkFirstRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mendable")

	first, err := MarkFirstRun(dir)
	if err != nil {
		t.Fatalf("MarkFirstRun failed: %v", err)
	}
	if !first {
		t.Fatal("expected first call to report first run")
	}
	if _, err := os.Stat(filepath.Join(dir, markerFileName)); err != nil {
		t.Fatalf("expected marker file: %v", err)
	}

	first, err = MarkFirstRun(dir)
	if err != nil {
		t.Fatalf("MarkFirstRun failed: %v", err)
	}
	if first {
		t.Fatal("expected second call to report not first run")
	}
}

func TestMarkFirstRunUnwritableParent(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(parent, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := MarkFirstRun(filepath.Join(parent, "mendable")); err == nil {
		t.Fatal("expected error when config dir cannot be created")
	}
}

func TestGetAppConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir, err := GetAppConfigDir()
	if err != nil {
		t.Fatalf("GetAppConfigDir failed: %v", err)
	}
	if filepath.Base(dir) != appName {
		t.Fatalf("expected dir to end with %q, got %q", appName, dir)
	}
}
