package config

import (
	"runtime"
	"time"

	"github.com/ppiankov/mendable/internal/models"
)

// Config holds all runtime configuration
type Config struct {
	// Scan settings
	ScanPath        string
	ScanRecursively bool
	Exclude         []string

	// Parse settings
	Concurrency int
	ReadRate    int

	// Output settings
	OutputPath     string
	OutputFileName string
	ExportType     models.ExportType
	IncludeModules models.IncludeModules

	// CI settings
	BaselinePath   string
	UpdateBaseline bool
	FailOnWarnings bool
	MetricsFile    string

	// Watch/serve settings
	WatchDebounce time.Duration
	ListenAddr    string
	ServerPort    int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ScanPath:        ".",
		ScanRecursively: true,
		Exclude:         []string{},
		Concurrency:     runtime.NumCPU(),
		ReadRate:        0,
		OutputPath:      ".",
		OutputFileName:  "index",
		ExportType:      models.ExportHTML,
		IncludeModules:  models.IncludeWithWarnings,
		WatchDebounce:   2 * time.Second,
		ServerPort:      8080,
	}
}
