package logging

import (
	"io"
	"log/slog"
	"os"
)

// Init installs the process-wide slog logger. Warnings and errors only,
// unless verbose is set.
func Init(verbose bool) {
	InitWithWriter(os.Stderr, verbose)
}

// InitWithWriter is Init with an explicit destination.
func InitWithWriter(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler).With("tool", "mendable"))
}
