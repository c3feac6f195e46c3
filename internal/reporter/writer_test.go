package reporter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileWriterWritesAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	w := NewFileWriter()

	path, err := w.Write(context.Background(), dir, "index", "html", []byte("first"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !filepath.IsAbs(path) {
		t.Fatalf("expected absolute path, got %q", path)
	}
	if path != filepath.Join(dir, "index.html") {
		t.Fatalf("unexpected output path %q", path)
	}

	if _, err := w.Write(context.Background(), dir, "index", ".html", []byte("second")); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("expected overwrite, got %q", data)
	}
}

func TestFileWriterErrors(t *testing.T) {
	w := NewFileWriter()

	if _, err := w.Write(context.Background(), filepath.Join(t.TempDir(), "missing"), "index", "json", nil); err == nil {
		t.Fatal("expected error for missing directory")
	}
	if _, err := w.Write(context.Background(), t.TempDir(), " ", "json", nil); err == nil {
		t.Fatal("expected error for empty name")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.Write(ctx, t.TempDir(), "index", "json", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
