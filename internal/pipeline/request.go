package pipeline

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/mendable/internal/models"
)

// Request describes one report generation run
type Request struct {
	ScanPath        string
	ScanRecursively bool
	OutputPath      string
	OutputFileName  string
	ExportType      models.ExportType
	IncludeModules  models.IncludeModules
}

// ValidationError reports the first request field that is unusable
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks the request before any work starts. The scan and output
// paths must be existing directories.
func (r Request) Validate() *ValidationError {
	if err := validateDir("ScanPath", r.ScanPath); err != nil {
		return err
	}
	if err := validateDir("OutputPath", r.OutputPath); err != nil {
		return err
	}
	if strings.TrimSpace(r.OutputFileName) == "" {
		return &ValidationError{Field: "OutputFileName", Reason: "cannot be empty"}
	}
	if strings.ContainsAny(r.OutputFileName, `/\`) {
		return &ValidationError{Field: "OutputFileName", Reason: "must not contain path separators"}
	}
	if _, err := models.ParseExportType(string(r.ExportType)); err != nil {
		return &ValidationError{Field: "ExportType", Reason: "unsupported value", Err: err}
	}
	if _, err := models.ParseIncludeModules(string(r.IncludeModules)); err != nil {
		return &ValidationError{Field: "IncludeModules", Reason: "unsupported value", Err: err}
	}
	return nil
}

// canonical replaces case variants and aliases of the enum fields with their
// constants. It must only be called on a request that passed Validate.
func (r Request) canonical() Request {
	if exportType, err := models.ParseExportType(string(r.ExportType)); err == nil {
		r.ExportType = exportType
	}
	if includeModules, err := models.ParseIncludeModules(string(r.IncludeModules)); err == nil {
		r.IncludeModules = includeModules
	}
	return r
}

func validateDir(field, path string) *ValidationError {
	if strings.TrimSpace(path) == "" {
		return &ValidationError{Field: field, Reason: "cannot be empty"}
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("%s does not exist", path), Err: err}
		}
		return &ValidationError{Field: field, Reason: fmt.Sprintf("cannot access %s", path), Err: err}
	}
	if !info.IsDir() {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("%s is not a directory", path)}
	}
	return nil
}
