// Package pipeline turns a directory of Compose compiler composables reports
// into a single rendered report file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/mendable/internal/aggregator"
	"github.com/ppiankov/mendable/internal/metrics"
	"github.com/ppiankov/mendable/internal/models"
	"github.com/ppiankov/mendable/internal/parser"
)

// ToolName is stamped into every export model
const ToolName = "mendable"

// Scanner finds report files under a root directory
type Scanner interface {
	Scan(ctx context.Context, root string, recursive bool) ([]models.ReportFile, error)
}

// Renderer serialises an export model
type Renderer interface {
	Render(model models.ExportModel, exportType models.ExportType) (models.Rendered, error)
}

// Writer persists rendered content and returns the absolute path written
type Writer interface {
	Write(ctx context.Context, dir, name, ext string, content []byte) (string, error)
}

// Generator runs the scan, parse, aggregate, render and write steps
type Generator struct {
	Scanner  Scanner
	Renderer Renderer
	Writer   Writer

	ParseOptions parser.Options
	Metrics      *metrics.Metrics
	Version      string

	// Now and NewRunID are overridable for tests.
	Now      func() time.Time
	NewRunID func() string
}

// NewGenerator creates a generator with the given collaborators
func NewGenerator(scanner Scanner, renderer Renderer, writer Writer) *Generator {
	return &Generator{
		Scanner:  scanner,
		Renderer: renderer,
		Writer:   writer,
		Version:  "dev",
		Now:      time.Now,
		NewRunID: uuid.NewString,
	}
}

// Run executes one generation. Every outcome other than cancellation is
// reported as a Result, both through progress and as the return value, with a
// nil error. When ctx is cancelled Run returns the context error and no Result.
func (g *Generator) Run(ctx context.Context, req Request, progress ProgressFunc) (result Result, err error) {
	if progress == nil {
		progress = func(Progress) {}
	}

	started := time.Now()
	runID := g.runID()
	logger := slog.With(slog.String("run_id", runID))

	defer func() {
		g.Metrics.ObserveRun(outcome(result, err), time.Since(started))
	}()

	if verr := req.Validate(); verr != nil {
		logger.Debug("request rejected", slog.String("field", verr.Field), slog.String("reason", verr.Reason))
		failed := ValidationFailed{Err: verr}
		progress(failed)
		return failed, nil
	}
	req = req.canonical()

	result, err = g.runSafely(ctx, req, runID, logger, progress)
	if err != nil {
		logger.Debug("run cancelled", slog.String("error", err.Error()))
		return nil, err
	}
	return result, nil
}

func (g *Generator) runSafely(
	ctx context.Context,
	req Request,
	runID string,
	logger *slog.Logger,
	progress ProgressFunc,
) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("report generation panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			if ctxErr := ctx.Err(); ctxErr != nil {
				result, err = nil, ctxErr
				return
			}
			failed := Error{Err: fmt.Errorf("report generation panicked: %v", r)}
			emitSafely(logger, progress, failed)
			result, err = failed, nil
		}
	}()

	return g.generate(ctx, req, runID, logger, progress)
}

func (g *Generator) generate(
	ctx context.Context,
	req Request,
	runID string,
	logger *slog.Logger,
	progress ProgressFunc,
) (Result, error) {
	fail := func(err error) (Result, error) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Error("report generation failed", slog.String("error", err.Error()))
		failed := Error{Err: err}
		progress(failed)
		return failed, nil
	}

	progress(Initiated{})

	files, err := g.Scanner.Scan(ctx, req.ScanPath, req.ScanRecursively)
	if err != nil {
		return fail(fmt.Errorf("failed to scan %s: %w", req.ScanPath, err))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(files) == 0 {
		logger.Debug("no composables reports found", slog.String("path", req.ScanPath))
		g.Metrics.ObserveFiles(0, 0, 0)
		done := NoMetricsFilesFound{}
		progress(done)
		return done, nil
	}

	progress(MetricsFilesFound{Files: files})

	parsed, err := parser.ParseAll(ctx, files, g.ParseOptions)
	if err != nil {
		return fail(fmt.Errorf("failed to parse composables reports: %w", err))
	}
	g.Metrics.ObserveFiles(len(files), len(parsed.Reports), len(parsed.Failures))
	logger.Debug("composables reports parsed",
		slog.Int("parsed", len(parsed.Reports)),
		slog.Int("failed", len(parsed.Failures)),
	)
	progress(MetricsFilesParsed{
		ParsedSuccessfully: len(parsed.Reports),
		FailedToParse:      len(parsed.Failures),
		Failures:           parsed.Failures,
	})

	model := aggregator.Aggregate(parsed.Reports, req.IncludeModules)
	model.Tool = ToolName
	model.Version = g.Version
	model.RunID = runID
	model.GeneratedAt = g.now().UTC()
	g.Metrics.ObserveModel(model)

	rendered, err := g.Renderer.Render(model, req.ExportType)
	if err != nil {
		return fail(fmt.Errorf("failed to render %s report: %w", req.ExportType, err))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outputPath, err := g.Writer.Write(ctx, req.OutputPath, req.OutputFileName, rendered.Extension, rendered.Content)
	if err != nil {
		return fail(fmt.Errorf("failed to write report: %w", err))
	}

	logger.Debug("report generated",
		slog.String("output", outputPath),
		slog.String("export_type", string(req.ExportType)),
		slog.Int("modules_reported", model.TotalModulesReported),
	)
	done := SuccessfullyCompleted{
		OutputPath: outputPath,
		ExportType: req.ExportType,
		Model:      model,
	}
	progress(done)
	return done, nil
}

func (g *Generator) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

func (g *Generator) runID() string {
	if g.NewRunID == nil {
		return uuid.NewString()
	}
	return g.NewRunID()
}

// emitSafely calls progress and swallows a panic raised by the callback.
func emitSafely(logger *slog.Logger, progress ProgressFunc, p Progress) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("progress callback panicked", slog.Any("panic", r))
		}
	}()
	progress(p)
}

func outcome(result Result, err error) string {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return metrics.ResultCancelled
		}
		return metrics.ResultError
	}
	switch result.(type) {
	case SuccessfullyCompleted:
		return metrics.ResultCompleted
	case NoMetricsFilesFound:
		return metrics.ResultNoFiles
	case ValidationFailed:
		return metrics.ResultValidationFailed
	default:
		return metrics.ResultError
	}
}
