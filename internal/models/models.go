package models

import (
	"path/filepath"
	"strings"
)

// ReportFileSuffix is the file name suffix the Compose compiler uses for
// composable signature reports.
const ReportFileSuffix = "-composables.txt"

// ReportFile is a composables report discovered on disk
type ReportFile struct {
	Path       string `json:"path"`
	ModuleName string `json:"module_name"`
}

// NewReportFile builds a ReportFile, deriving the module name from the file name
func NewReportFile(path string) ReportFile {
	return ReportFile{
		Path:       path,
		ModuleName: ModuleNameFromPath(path),
	}
}

// ModuleNameFromPath strips the directory and the report suffix from path.
// "app/build/compose_metrics/app_release-composables.txt" -> "app_release"
func ModuleNameFromPath(path string) string {
	base := filepath.Base(path)
	if name, ok := strings.CutSuffix(base, ReportFileSuffix); ok && name != "" {
		return name
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParamCondition is the stability the compiler inferred for a parameter
type ParamCondition string

const (
	ConditionStable   ParamCondition = "stable"
	ConditionUnstable ParamCondition = "unstable"
	ConditionRuntime  ParamCondition = "runtime"
	ConditionUnknown  ParamCondition = "unknown"
)

// Parameter is one parameter of a composable signature
type Parameter struct {
	Name         string         `json:"name"`
	Type         string         `json:"type"`
	Condition    ParamCondition `json:"condition"`
	Unused       bool           `json:"unused,omitempty"`
	DefaultValue string         `json:"default_value,omitempty"`
}

// ComposableDetails is one declaration entry of a composables report
type ComposableDetails struct {
	FunctionName  string      `json:"function_name"`
	IsRestartable bool        `json:"is_restartable"`
	IsSkippable   bool        `json:"is_skippable"`
	IsInline      bool        `json:"is_inline"`
	IsReadonly    bool        `json:"is_readonly"`
	Scheme        string      `json:"scheme,omitempty"`
	ReturnType    string      `json:"return_type,omitempty"`
	Params        []Parameter `json:"params"`
	Line          int         `json:"line"`
}

// HasWarning reports whether the composable can restart but cannot be skipped.
func (c ComposableDetails) HasWarning() bool {
	return c.IsRestartable && !c.IsSkippable
}

// UnstableParams returns the parameters the compiler marked unstable
func (c ComposableDetails) UnstableParams() []Parameter {
	var unstable []Parameter
	for _, p := range c.Params {
		if p.Condition == ConditionUnstable {
			unstable = append(unstable, p)
		}
	}
	return unstable
}

// ComposableReport is a parsed report file
type ComposableReport struct {
	File        ReportFile          `json:"file"`
	Composables []ComposableDetails `json:"composables"`
}

// Warnings returns the composables that are restartable but not skippable, in file order
func (r ComposableReport) Warnings() []ComposableDetails {
	var warnings []ComposableDetails
	for _, c := range r.Composables {
		if c.HasWarning() {
			warnings = append(warnings, c)
		}
	}
	return warnings
}
