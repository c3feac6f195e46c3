package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ppiankov/mendable/internal/metrics"
	"github.com/ppiankov/mendable/internal/watcher"
	"github.com/ppiankov/mendable/pkg/config"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	opts := newGenerateOptions()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the report whenever composables reports change",
		Long: `Generate the report once, then watch the scan directory and generate it
again each time a *-composables.txt file is written, created or removed.

Changes are batched for --debounce before a new report is generated.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.resolve(cmd); err != nil {
				return err
			}

			d, err := config.ParseDuration(opts.debounce)
			if err != nil {
				return fmt.Errorf("invalid --debounce duration: %w", err)
			}
			if d <= 0 {
				return fmt.Errorf("--debounce must be positive, got %s", opts.debounce)
			}
			opts.cfg.WatchDebounce = d
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), opts.cfg, cmd.OutOrStdout())
		},
	}

	bindGenerateFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.debounce, "debounce", opts.debounce, "Quiet period before regenerating (e.g., 500ms, 2s, 1m)")
	cmd.Flags().StringVar(&opts.cfg.ListenAddr, "listen", "", "Serve the output directory and /metrics on this address (e.g., :8080)")

	return cmd
}

// runWatch generates once and then on every debounced batch of changes until ctx is done
func runWatch(ctx context.Context, cfg *config.Config, out io.Writer) error {
	exclude, err := cfg.ExcludeMatcher()
	if err != nil {
		return err
	}
	m := metrics.New()

	if err := regenerate(ctx, cfg, exclude, m, out); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}

	w, err := watcher.New(cfg.ScanPath, cfg.ScanRecursively, cfg.WatchDebounce, exclude)
	if err != nil {
		return err
	}
	defer w.Close()
	w.Metrics = m

	if cfg.ListenAddr != "" {
		go func() {
			if err := listenAndServe(ctx, cfg.ListenAddr, newReportMux(cfg.OutputPath, m)); err != nil {
				slog.Error("report server failed", slog.String("addr", cfg.ListenAddr), slog.String("error", err.Error()))
			}
		}()
		fmt.Fprintf(out, "Serving %s and /metrics on %s\n", cfg.OutputPath, cfg.ListenAddr)
	}

	fmt.Fprintf(out, "Watching %s for changes (Ctrl+C to stop)\n", cfg.ScanPath)
	return w.Run(ctx, func(ctx context.Context, paths []string) {
		fmt.Fprintf(out, "\n%d composables reports changed, regenerating\n", len(paths))
		if err := regenerate(ctx, cfg, exclude, m, out); err != nil {
			slog.Warn("regeneration failed", slog.String("error", err.Error()))
		}
	})
}

// regenerate runs one generation. New warnings are reported but do not stop the watch.
func regenerate(ctx context.Context, cfg *config.Config, exclude *config.ExcludeMatcher, m *metrics.Metrics, out io.Writer) error {
	err := generateOnce(ctx, cfg, exclude, m, out)
	if err == nil || ctx.Err() != nil {
		return nil
	}

	var fe *FindingsError
	if errors.As(err, &fe) {
		fmt.Fprintf(out, "%s\n", fe.Error())
		return nil
	}
	return err
}
