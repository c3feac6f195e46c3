package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/mendable/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRunAndFiles(t *testing.T) {
	m := New()
	m.ObserveRun(ResultCompleted, 150*time.Millisecond)
	m.ObserveRun(ResultCompleted, time.Second)
	m.ObserveRun(ResultNoFiles, 0)
	m.ObserveFiles(5, 4, 1)
	m.ObserveFiles(3, 3, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(ResultCompleted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(ResultNoFiles)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.FilesFound))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.FilesParsedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseFailuresTotal))
}

func TestObserveModel(t *testing.T) {
	m := New()
	m.ObserveModel(models.ExportModel{
		Overview: models.Overview{
			TotalComposables:       10,
			RestartableComposables: 8,
			SkippableComposables:   6,
			SkippablePercentage:    75,
		},
		TotalModulesScanned:  4,
		TotalModulesReported: 2,
	})

	assert.Equal(t, 10.0, testutil.ToFloat64(m.Composables))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.Restartable))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.Skippable))
	assert.Equal(t, 75.0, testutil.ToFloat64(m.SkippablePercentage))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.ModulesScanned))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ModulesReported))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveRun(ResultError, time.Second)

	path := filepath.Join(t.TempDir(), "mendable.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `mendable_runs_total{result="error"} 1`)
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.ObserveFiles(2, 2, 0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "mendable_report_files_found 2"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRun(ResultCompleted, time.Second)
	m.ObserveFiles(1, 1, 0)
	m.ObserveModel(models.ExportModel{})
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
	assert.Nil(t, m.Registry())
}
