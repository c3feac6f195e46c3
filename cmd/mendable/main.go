package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ppiankov/mendable/internal/app"
	"github.com/ppiankov/mendable/internal/logging"
	"github.com/ppiankov/mendable/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	verbose    bool
	isFirstRun bool
)

// Exit codes for structured error reporting.
const (
	ExitSuccess    = 0
	ExitInternal   = 1
	ExitInvalidArg = 2
	ExitNotFound   = 3
	ExitFindings   = 6
)

// FindingsError indicates the report was generated but new warnings were found.
type FindingsError struct {
	Count int
}

func (e *FindingsError) Error() string {
	return fmt.Sprintf("%d new composable warnings", e.Count)
}

func main() {
	logging.Init(false)
	isFirstRun = app.IsFirstRun()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		exitCode := classifyError(err)
		var fe *FindingsError
		if errors.As(err, &fe) {
			slog.Info("new warnings detected", slog.Int("count", fe.Count))
		} else {
			slog.Error("command failed", slog.String("error", err.Error()))
		}
		os.Exit(exitCode)
	}
}

// NewRootCmd builds the mendable command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mendable",
		Short: "Compose compiler metrics report generator",
		Long: `Mendable reads the composables reports written by the Jetpack Compose
compiler and summarises how many restartable composables can be skipped.

It writes an HTML, JSON or SARIF report listing the composables that are
restartable but not skippable, together with their unstable parameters.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(verbose)
		},
	}

	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")
	root.SilenceUsage = true
	root.SilenceErrors = true

	root.AddCommand(NewGenerateCmd())
	root.AddCommand(NewWatchCmd())
	root.AddCommand(NewServeCmd())
	root.AddCommand(NewVersionCmd())

	return root
}

func classifyError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var fe *FindingsError
	if errors.As(err, &fe) {
		return ExitFindings
	}

	var ve *pipeline.ValidationError
	if errors.As(err, &ve) {
		if errors.Is(err, os.ErrNotExist) || strings.Contains(ve.Reason, "is not a directory") {
			return ExitNotFound
		}
		return ExitInvalidArg
	}

	if errors.Is(err, os.ErrNotExist) {
		return ExitNotFound
	}

	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "not a directory") ||
		strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "no such file") {
		return ExitNotFound
	}

	if strings.Contains(msg, "required") ||
		strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "must be") ||
		strings.Contains(msg, "expected") {
		return ExitInvalidArg
	}

	return ExitInternal
}
