package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/ppiankov/mendable/internal/metrics"
	"github.com/ppiankov/mendable/pkg/config"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	var dir string
	var port int

	cmd := &cobra.Command{
		Use:   "serve [directory]",
		Short: "Serve the report output directory",
		Long: `Start a local HTTP server to view generated reports.
The report will be available at http://localhost:PORT`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				dir = args[0]
			}

			return runServe(cmd.Context(), dir, port)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to serve")
	cmd.Flags().IntVar(&port, "port", config.DefaultConfig().ServerPort, "Port to serve on")

	return cmd
}

// runServe starts the HTTP server and stops it when ctx is done
func runServe(ctx context.Context, dir string, port int) error {
	if err := checkServeDir(dir); err != nil {
		return err
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("--port must be between 1 and 65535, got %d", port)
	}

	addr := ":" + strconv.Itoa(port)
	url := "http://localhost:" + strconv.Itoa(port)
	fmt.Fprintf(os.Stderr, "Serving %s at %s (Ctrl+C to stop)\n", dir, url)
	slog.Debug("report server started",
		slog.String("url", url),
		slog.String("dir", dir),
	)

	return listenAndServe(ctx, addr, newReportMux(dir, nil))
}

func checkServeDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("directory not found: %s", dir)
		}
		return fmt.Errorf("failed to access %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// newReportMux serves dir at "/" and, when m is set, Prometheus metrics at /metrics.
func newReportMux(dir string, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(dir)))
	if m != nil {
		mux.Handle("/metrics", m.Handler())
	}
	return mux
}

func listenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}
