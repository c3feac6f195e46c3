package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/ppiankov/mendable/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAllIsolatesFailures(t *testing.T) {
	files := []models.ReportFile{
		models.NewReportFile(filepath.Join("testdata", "app_release-composables.txt")),
		models.NewReportFile(filepath.Join("testdata", "broken-composables.txt")),
		models.NewReportFile(filepath.Join("testdata", "empty-composables.txt")),
		models.NewReportFile(filepath.Join("testdata", "missing-composables.txt")),
	}

	outcome, err := ParseAll(context.Background(), files, Options{Concurrency: 2})
	require.NoError(t, err)

	require.Len(t, outcome.Reports, 2)
	assert.Equal(t, "app_release", outcome.Reports[0].File.ModuleName)
	assert.Equal(t, "empty", outcome.Reports[1].File.ModuleName)

	require.Len(t, outcome.Failures, 2)
	assert.Equal(t, "broken", outcome.Failures[0].File.ModuleName)
	assert.ErrorIs(t, outcome.Failures[0].Err, ErrMalformed)
	assert.Equal(t, "missing", outcome.Failures[1].File.ModuleName)
	assert.ErrorIs(t, outcome.Failures[1].Err, os.ErrNotExist)
}

func TestParseAllOneCorruptAmongMany(t *testing.T) {
	const valid = 25
	contents := map[string][]byte{}
	files := make([]models.ReportFile, 0, valid+1)
	for i := range valid {
		path := fmt.Sprintf("module%02d-composables.txt", i)
		contents[path] = []byte(fmt.Sprintf("restartable skippable fun Screen%d()\n", i))
		files = append(files, models.NewReportFile(path))
		if i == valid/2 {
			contents["corrupt-composables.txt"] = []byte("\x00\x01 garbage\n")
			files = append(files, models.NewReportFile("corrupt-composables.txt"))
		}
	}

	read := func(path string) ([]byte, error) {
		return contents[path], nil
	}

	outcome, err := ParseAll(context.Background(), files, Options{Concurrency: 8, ReadFile: read})
	require.NoError(t, err)
	require.Len(t, outcome.Reports, valid)
	require.Len(t, outcome.Failures, 1)
	assert.Equal(t, "corrupt", outcome.Failures[0].File.ModuleName)

	for i, report := range outcome.Reports {
		assert.Equal(t, fmt.Sprintf("module%02d", i), report.File.ModuleName, "reports must keep scan order")
	}
}

func TestParseAllRecoversPanickingReader(t *testing.T) {
	files := []models.ReportFile{models.NewReportFile("a-composables.txt"), models.NewReportFile("b-composables.txt")}
	read := func(path string) ([]byte, error) {
		if path == "a-composables.txt" {
			panic("boom")
		}
		return []byte("fun B()\n"), nil
	}

	outcome, err := ParseAll(context.Background(), files, Options{ReadFile: read})
	require.NoError(t, err)
	require.Len(t, outcome.Reports, 1)
	require.Len(t, outcome.Failures, 1)
	assert.Contains(t, outcome.Failures[0].Err.Error(), "parser panic")
}

func TestParseAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var reads atomic.Int32
	read := func(path string) ([]byte, error) {
		if reads.Add(1) == 1 {
			cancel()
		}
		return []byte("fun A()\n"), nil
	}

	files := make([]models.ReportFile, 50)
	for i := range files {
		files[i] = models.NewReportFile(fmt.Sprintf("m%d-composables.txt", i))
	}

	_, err := ParseAll(ctx, files, Options{Concurrency: 1, ReadFile: read})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Less(t, int(reads.Load()), len(files))
}

func TestParseAllReadRate(t *testing.T) {
	files := []models.ReportFile{models.NewReportFile("a-composables.txt"), models.NewReportFile("b-composables.txt")}
	read := func(string) ([]byte, error) { return []byte("fun A()\n"), nil }

	outcome, err := ParseAll(context.Background(), files, Options{ReadRate: 100, ReadFile: read})
	require.NoError(t, err)
	assert.Len(t, outcome.Reports, 2)
	assert.Empty(t, outcome.Failures)
}
