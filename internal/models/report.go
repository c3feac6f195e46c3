package models

import (
	"fmt"
	"strings"
	"time"
)

// IncludeModules selects which modules appear in the module list of a report.
// It never affects the project-wide overview.
type IncludeModules string

const (
	IncludeAll          IncludeModules = "ALL"
	IncludeWithWarnings IncludeModules = "WITH_WARNINGS"
)

// ParseIncludeModules parses a policy name, case-insensitively
func ParseIncludeModules(s string) (IncludeModules, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(IncludeAll):
		return IncludeAll, nil
	case string(IncludeWithWarnings), "WITH-WARNINGS", "WARNINGS":
		return IncludeWithWarnings, nil
	default:
		return "", fmt.Errorf("invalid report type %q: expected ALL or WITH_WARNINGS", s)
	}
}

// ExportType selects the rendered output format
type ExportType string

const (
	ExportHTML  ExportType = "HTML"
	ExportJSON  ExportType = "JSON"
	ExportSARIF ExportType = "SARIF"
)

// ParseExportType parses an export type name, case-insensitively
func ParseExportType(s string) (ExportType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(ExportHTML):
		return ExportHTML, nil
	case string(ExportJSON):
		return ExportJSON, nil
	case string(ExportSARIF):
		return ExportSARIF, nil
	default:
		return "", fmt.Errorf("invalid export type %q: expected HTML, JSON or SARIF", s)
	}
}

// Extension returns the file extension used when persisting this export type
func (t ExportType) Extension() string {
	switch t {
	case ExportJSON:
		return "json"
	case ExportSARIF:
		return "sarif"
	default:
		return "html"
	}
}

// Overview holds the derived statistics for one module or for the whole project
type Overview struct {
	TotalComposables       int `json:"total_composables"`
	RestartableComposables int `json:"restartable_composables"`
	SkippableComposables   int `json:"skippable_composables"`
	SkippablePercentage    int `json:"skippable_percentage"`
}

// ModuleDetails is one module row of the report
type ModuleDetails struct {
	ModuleName string           `json:"module_name"`
	Overview   Overview         `json:"overview"`
	Report     ComposableReport `json:"report"`
}

// ExportModel is the complete aggregation handed to renderers
type ExportModel struct {
	Tool                 string          `json:"tool"`
	Version              string          `json:"version"`
	RunID                string          `json:"run_id,omitempty"`
	GeneratedAt          time.Time       `json:"generated_at"`
	IncludeModules       IncludeModules  `json:"include_modules"`
	Overview             Overview        `json:"overview"`
	TotalModulesScanned  int             `json:"total_modules_scanned"`
	TotalModulesReported int             `json:"total_modules_reported"`
	Modules              []ModuleDetails `json:"modules"`
}

// Rendered is an export model serialised for one export type
type Rendered struct {
	Content   []byte
	Extension string
}
