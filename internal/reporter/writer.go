package reporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileWriter persists rendered reports to disk
type FileWriter struct{}

// NewFileWriter creates a FileWriter
func NewFileWriter() *FileWriter {
	return &FileWriter{}
}

// Write stores content as <dir>/<name>.<ext>, replacing any existing file, and
// returns the absolute path written. dir must already exist.
func (w *FileWriter) Write(ctx context.Context, dir, name, ext string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("output name is empty")
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output directory %q: %w", dir, err)
	}

	outputPath := filepath.Join(absDir, name+"."+strings.TrimPrefix(ext, "."))
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filepath.Base(outputPath), err)
	}

	slog.Debug("report written", slog.String("path", outputPath), slog.Int("bytes", len(content)))
	return outputPath, nil
}
