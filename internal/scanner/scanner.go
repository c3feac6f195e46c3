// Package scanner discovers Compose compiler composables reports on disk.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/mendable/internal/models"
	"github.com/ppiankov/mendable/pkg/config"
)

// ErrNotDirectory is returned when the scan root exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Scanner walks a directory tree for files ending in models.ReportFileSuffix.
type Scanner struct {
	exclude *config.ExcludeMatcher
}

// New creates a scanner. A nil matcher excludes nothing.
func New(exclude *config.ExcludeMatcher) *Scanner {
	return &Scanner{exclude: exclude}
}

// Scan returns the report files under root sorted by path. Without recursive
// only the top level of root is examined.
func (s *Scanner) Scan(ctx context.Context, root string, recursive bool) ([]models.ReportFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access scan root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %q: %w", root, ErrNotDirectory)
	}

	var files []models.ReportFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(d.Name(), models.ReportFileSuffix) {
			return nil
		}

		file := models.NewReportFile(path)
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = d.Name()
		}
		if s.exclude.Excluded(file.ModuleName, rel) {
			slog.Debug("report excluded", slog.String("path", path), slog.String("module", file.ModuleName))
			return nil
		}

		files = append(files, file)
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to scan %q: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	slog.Debug("scan finished", slog.String("root", root), slog.Bool("recursive", recursive), slog.Int("files", len(files)))
	return files, nil
}
