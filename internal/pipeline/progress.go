package pipeline

import (
	"fmt"

	"github.com/ppiankov/mendable/internal/models"
	"github.com/ppiankov/mendable/internal/parser"
)

// Progress is a step reported while a run is in flight. The set of
// implementations is closed; switch on the concrete type.
type Progress interface {
	progress()
}

// Result is a terminal Progress value returned by Run
type Result interface {
	Progress
	result()
}

// ProgressFunc receives every Progress value of a run, in order, on the calling goroutine.
type ProgressFunc func(Progress)

// Initiated is emitted once the request has been validated
type Initiated struct{}

// MetricsFilesFound lists the report files the scan produced
type MetricsFilesFound struct {
	Files []models.ReportFile
}

// MetricsFilesParsed partitions the found files into parsed and failed
type MetricsFilesParsed struct {
	ParsedSuccessfully int
	FailedToParse      int
	Failures           []parser.Failure
}

// NoMetricsFilesFound ends a run whose scan found nothing. No report is written.
type NoMetricsFilesFound struct{}

// SuccessfullyCompleted ends a run that wrote a report
type SuccessfullyCompleted struct {
	OutputPath string
	ExportType models.ExportType
	Model      models.ExportModel
}

// Error ends a run that failed after validation
type Error struct {
	Err error
}

// ValidationFailed ends a run whose request was rejected before any scanning
type ValidationFailed struct {
	Err *ValidationError
}

func (Initiated) progress()             {}
func (MetricsFilesFound) progress()     {}
func (MetricsFilesParsed) progress()    {}
func (NoMetricsFilesFound) progress()   {}
func (SuccessfullyCompleted) progress() {}
func (Error) progress()                 {}
func (ValidationFailed) progress()      {}

func (NoMetricsFilesFound) result()   {}
func (SuccessfullyCompleted) result() {}
func (Error) result()                 {}
func (ValidationFailed) result()      {}

func (e Error) Error() string {
	if e.Err == nil {
		return "report generation failed"
	}
	return e.Err.Error()
}

func (e Error) Unwrap() error {
	return e.Err
}

func (e ValidationFailed) Error() string {
	if e.Err == nil {
		return "invalid request"
	}
	return "invalid request: " + e.Err.Error()
}

func (e ValidationFailed) Unwrap() error {
	if e.Err == nil {
		return nil
	}
	return e.Err
}

func (Initiated) String() string { return "Progress.Initiated" }

func (p MetricsFilesFound) String() string {
	return fmt.Sprintf("Progress.MetricsFilesFound(files=%d)", len(p.Files))
}

func (p MetricsFilesParsed) String() string {
	return fmt.Sprintf("Progress.MetricsFilesParsed(parsedSuccessfully=%d, failedToParse=%d)", p.ParsedSuccessfully, p.FailedToParse)
}

func (NoMetricsFilesFound) String() string { return "Progress.NoMetricsFilesFound" }

func (p SuccessfullyCompleted) String() string {
	return fmt.Sprintf("Progress.SuccessfullyCompleted(outputPath=%s, exportType=%s)", p.OutputPath, p.ExportType)
}
