// Package metrics exposes Prometheus collectors for report generation runs.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ppiankov/mendable/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcomes used as the "result" label of mendable_runs_total.
const (
	ResultCompleted        = "completed"
	ResultNoFiles          = "no_files"
	ResultError            = "error"
	ResultValidationFailed = "validation_failed"
	ResultCancelled        = "cancelled"
)

// Metrics holds the collectors of one process. Methods on a nil *Metrics are no-ops.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal           *prometheus.CounterVec
	RunDuration         prometheus.Histogram
	FilesFound          prometheus.Gauge
	FilesParsedTotal    prometheus.Counter
	ParseFailuresTotal  prometheus.Counter
	Composables         prometheus.Gauge
	Restartable         prometheus.Gauge
	Skippable           prometheus.Gauge
	SkippablePercentage prometheus.Gauge
	ModulesScanned      prometheus.Gauge
	ModulesReported     prometheus.Gauge
	WatchEventsTotal    prometheus.Counter
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mendable_runs_total",
			Help: "Total number of report generation runs by result.",
		}, []string{"result"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mendable_run_seconds",
			Help:    "Time spent on one report generation run.",
			Buckets: prometheus.DefBuckets,
		}),
		FilesFound: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mendable_report_files_found",
			Help: "Number of composables report files found by the last scan.",
		}),
		FilesParsedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "mendable_report_files_parsed_total",
			Help: "Total number of composables report files parsed successfully.",
		}),
		ParseFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "mendable_report_files_failed_total",
			Help: "Total number of composables report files that could not be read or parsed.",
		}),
		Composables: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mendable_composables",
			Help: "Number of composables in the last project overview.",
		}),
		Restartable: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mendable_restartable_composables",
			Help: "Number of restartable composables in the last project overview.",
		}),
		Skippable: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mendable_skippable_composables",
			Help: "Number of restartable composables that are also skippable.",
		}),
		SkippablePercentage: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mendable_skippable_percentage",
			Help: "Skippable share of restartable composables, 0-100.",
		}),
		ModulesScanned: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mendable_modules_scanned",
			Help: "Number of modules parsed in the last run.",
		}),
		ModulesReported: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mendable_modules_reported",
			Help: "Number of modules included in the last report.",
		}),
		WatchEventsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "mendable_watch_events_total",
			Help: "Total number of relevant file system events received in watch mode.",
		}),
	}
}

// Registry returns the registry the collectors are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRun records the outcome and duration of one run
func (m *Metrics) ObserveRun(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(result).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
}

// ObserveFiles records scan and parse counts
func (m *Metrics) ObserveFiles(found, parsed, failed int) {
	if m == nil {
		return
	}
	m.FilesFound.Set(float64(found))
	m.FilesParsedTotal.Add(float64(parsed))
	m.ParseFailuresTotal.Add(float64(failed))
}

// ObserveModel records the overview of an export model
func (m *Metrics) ObserveModel(model models.ExportModel) {
	if m == nil {
		return
	}
	m.Composables.Set(float64(model.Overview.TotalComposables))
	m.Restartable.Set(float64(model.Overview.RestartableComposables))
	m.Skippable.Set(float64(model.Overview.SkippableComposables))
	m.SkippablePercentage.Set(float64(model.Overview.SkippablePercentage))
	m.ModulesScanned.Set(float64(model.TotalModulesScanned))
	m.ModulesReported.Set(float64(model.TotalModulesReported))
}

// ObserveWatchEvent counts one relevant file system event
func (m *Metrics) ObserveWatchEvent() {
	if m == nil {
		return
	}
	m.WatchEventsTotal.Inc()
}

// WriteTextfile writes all collectors in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Handler serves the collectors over HTTP
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
