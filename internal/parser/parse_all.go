package parser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/ppiankov/mendable/internal/models"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ReadFunc loads the raw content of a report file
type ReadFunc func(path string) ([]byte, error)

// Options controls ParseAll
type Options struct {
	// Concurrency caps the number of files parsed at once. Zero means runtime.NumCPU().
	Concurrency int
	// ReadRate caps file reads per second. Zero means unlimited.
	ReadRate int
	// ReadFile defaults to os.ReadFile.
	ReadFile ReadFunc
}

// Failure records a file that could not be read or parsed
type Failure struct {
	File models.ReportFile
	Err  error
}

// Outcome is the partitioned result of ParseAll
type Outcome struct {
	// Reports holds the successfully parsed files in input order.
	Reports  []models.ComposableReport
	Failures []Failure
}

// ParseAll reads and parses every file independently. A file that fails is
// recorded in Failures and never aborts its siblings. The only error returned
// is the context error when ctx is cancelled.
func ParseAll(ctx context.Context, files []models.ReportFile, opts Options) (Outcome, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	if opts.ReadFile == nil {
		opts.ReadFile = os.ReadFile
	}

	var limiter *rate.Limiter
	if opts.ReadRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.ReadRate), opts.ReadRate)
	}

	type slot struct {
		report models.ComposableReport
		err    error
	}
	slots := make([]slot, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					// Wait fails early when the next token lands past the deadline.
					<-gctx.Done()
					return gctx.Err()
				}
			}
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i].report, slots[i].err = parseFile(file, opts.ReadFile)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Outcome{}, ctxErr
		}
		return Outcome{}, err
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{
		Reports:  make([]models.ComposableReport, 0, len(files)),
		Failures: []Failure{},
	}
	for i, s := range slots {
		if s.err != nil {
			slog.Debug("failed to parse composables report",
				slog.String("path", files[i].Path),
				slog.String("error", s.err.Error()),
			)
			outcome.Failures = append(outcome.Failures, Failure{File: files[i], Err: s.err})
			continue
		}
		outcome.Reports = append(outcome.Reports, s.report)
	}

	return outcome, nil
}

func parseFile(file models.ReportFile, read ReadFunc) (report models.ComposableReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ParseError{Path: file.Path, Reason: fmt.Sprintf("parser panic: %v", r)}
		}
	}()

	data, err := read(file.Path)
	if err != nil {
		return models.ComposableReport{}, &ParseError{Path: file.Path, Reason: "failed to read file", Err: err}
	}
	return ParseBytes(file, data)
}
