package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ppiankov/mendable/internal/baseline"
	"github.com/ppiankov/mendable/internal/metrics"
	"github.com/ppiankov/mendable/internal/models"
	"github.com/ppiankov/mendable/internal/parser"
	"github.com/ppiankov/mendable/internal/pipeline"
	"github.com/ppiankov/mendable/internal/reporter"
	"github.com/ppiankov/mendable/internal/scanner"
	"github.com/ppiankov/mendable/pkg/config"
	"github.com/spf13/cobra"
)

// generateOptions holds flag values that need parsing before they reach Config
type generateOptions struct {
	cfg        *config.Config
	configPath string
	exportType string
	reportType string
	debounce   string
}

func newGenerateOptions() *generateOptions {
	cfg := config.DefaultConfig()
	return &generateOptions{
		cfg:        cfg,
		exportType: string(cfg.ExportType),
		reportType: string(cfg.IncludeModules),
		debounce:   cfg.WatchDebounce.String(),
	}
}

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	opts := newGenerateOptions()

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"analyze"},
		Short:   "Generate a report from Compose compiler composables reports",
		Long: `Scan a directory for *-composables.txt files produced by the Compose
compiler, aggregate them per module and write a single report.

Enable the reports in Gradle with the composeCompiler { reportsDestination }
option and build the project before running this command.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), opts.cfg, cmd.OutOrStdout())
		},
	}

	bindGenerateFlags(cmd, opts)
	return cmd
}

func bindGenerateFlags(cmd *cobra.Command, opts *generateOptions) {
	cfg := opts.cfg
	flags := cmd.Flags()

	// Input flags
	flags.StringVarP(&cfg.ScanPath, "composablesReportsPath", "i", cfg.ScanPath, "Directory to scan for *-composables.txt files")
	flags.BoolVarP(&cfg.ScanRecursively, "recursive", "r", cfg.ScanRecursively, "Scan subdirectories")
	flags.StringSliceVar(&cfg.Exclude, "exclude", cfg.Exclude, "Glob patterns over module names or relative paths to skip")

	// Parse flags
	flags.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Number of reports parsed at once")
	flags.IntVar(&cfg.ReadRate, "read-rate", cfg.ReadRate, "Max report files read per second (0 = unlimited)")

	// Output flags
	flags.StringVarP(&cfg.OutputPath, "outputPath", "o", cfg.OutputPath, "Directory the report is written to")
	flags.StringVar(&cfg.OutputFileName, "outputName", cfg.OutputFileName, "Report file name without extension")
	flags.StringVar(&opts.exportType, "exportType", opts.exportType, "Report format (HTML, JSON, SARIF)")
	flags.StringVar(&opts.reportType, "reportType", opts.reportType, "Modules to list (ALL, WITH_WARNINGS)")

	// CI flags
	flags.StringVar(&cfg.BaselinePath, "baseline", "", "Baseline file of known warnings")
	flags.BoolVar(&cfg.UpdateBaseline, "update-baseline", false, "Record current warnings into the baseline file")
	flags.BoolVar(&cfg.FailOnWarnings, "fail-on-warnings", false, "Exit with code 6 when warnings not in the baseline are found")
	flags.StringVar(&cfg.MetricsFile, "metrics-file", "", "Write Prometheus metrics in textfile format after each run")

	flags.StringVar(&opts.configPath, "config", "", "Config file (default: .mendable.yaml, .mendable.yml or .mendable.toml in cwd, then $HOME)")
}

// resolve merges the config file under explicitly set flags and parses the
// enum and duration values.
func (o *generateOptions) resolve(cmd *cobra.Command) error {
	fileCfg, err := o.loadFileConfig()
	if err != nil {
		return err
	}
	o.applyFileConfig(cmd, fileCfg)

	exportType, err := models.ParseExportType(o.exportType)
	if err != nil {
		return fmt.Errorf("invalid --exportType value: %w", err)
	}
	o.cfg.ExportType = exportType

	includeModules, err := models.ParseIncludeModules(o.reportType)
	if err != nil {
		return fmt.Errorf("invalid --reportType value: %w", err)
	}
	o.cfg.IncludeModules = includeModules

	if o.cfg.Concurrency < 0 {
		return fmt.Errorf("--concurrency must be zero or positive, got %d", o.cfg.Concurrency)
	}
	if o.cfg.ReadRate < 0 {
		return fmt.Errorf("--read-rate must be zero or positive, got %d", o.cfg.ReadRate)
	}

	o.cfg.Normalize()
	if _, err := o.cfg.ExcludeMatcher(); err != nil {
		return err
	}
	return nil
}

func (o *generateOptions) loadFileConfig() (*config.FileConfig, error) {
	if path := strings.TrimSpace(o.configPath); path != "" {
		fileCfg, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		slog.Debug("loaded config file", slog.String("path", path))
		return fileCfg, nil
	}

	fileCfg, path, err := config.AutoLoadFile()
	if err != nil {
		return nil, err
	}
	if fileCfg != nil {
		slog.Debug("auto-loaded config file", slog.String("path", path))
	}
	return fileCfg, nil
}

func (o *generateOptions) applyFileConfig(cmd *cobra.Command, fc *config.FileConfig) {
	if fc == nil {
		return
	}
	unset := func(name string) bool {
		flag := cmd.Flags().Lookup(name)
		return flag != nil && !flag.Changed
	}
	cfg := o.cfg

	if fc.ComposablesReportsPath != "" && unset("composablesReportsPath") {
		cfg.ScanPath = fc.ComposablesReportsPath
	}
	if fc.Recursive != nil && unset("recursive") {
		cfg.ScanRecursively = *fc.Recursive
	}
	if len(fc.Exclude) > 0 && unset("exclude") {
		cfg.Exclude = fc.Exclude
	}
	if fc.OutputPath != "" && unset("outputPath") {
		cfg.OutputPath = fc.OutputPath
	}
	if fc.OutputName != "" && unset("outputName") {
		cfg.OutputFileName = fc.OutputName
	}
	if fc.ExportType != "" && unset("exportType") {
		o.exportType = fc.ExportType
	}
	if fc.ReportType != "" && unset("reportType") {
		o.reportType = fc.ReportType
	}
	if fc.Concurrency != nil && unset("concurrency") {
		cfg.Concurrency = *fc.Concurrency
	}
	if fc.ReadRate != nil && unset("read-rate") {
		cfg.ReadRate = *fc.ReadRate
	}
	if fc.Baseline != "" && unset("baseline") {
		cfg.BaselinePath = fc.Baseline
	}
	if fc.FailOnWarnings != nil && unset("fail-on-warnings") {
		cfg.FailOnWarnings = *fc.FailOnWarnings
	}
	if fc.MetricsFile != "" && unset("metrics-file") {
		cfg.MetricsFile = fc.MetricsFile
	}
	if fc.Debounce != "" && unset("debounce") {
		o.debounce = fc.Debounce
	}
}

// runGenerate executes a single report generation
func runGenerate(ctx context.Context, cfg *config.Config, out io.Writer) error {
	exclude, err := cfg.ExcludeMatcher()
	if err != nil {
		return err
	}
	return generateOnce(ctx, cfg, exclude, metrics.New(), out)
}

func generateOnce(ctx context.Context, cfg *config.Config, exclude *config.ExcludeMatcher, m *metrics.Metrics, out io.Writer) error {
	gen := newGenerator(cfg, exclude, m)
	printer := newProgressPrinter(out)

	result, err := gen.Run(ctx, requestFromConfig(cfg), printer.Handle)
	if err != nil {
		return err
	}

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("failed to write metrics file: %w", err)
		}
	}

	switch r := result.(type) {
	case pipeline.ValidationFailed:
		return r.Err
	case pipeline.Error:
		return r.Err
	case pipeline.NoMetricsFilesFound:
		return nil
	case pipeline.SuccessfullyCompleted:
		if err := reporter.WriteSummary(out, r.Model); err != nil {
			return err
		}
		if err := applyBaseline(cfg, r.Model, printer); err != nil {
			return err
		}
		printer.Hint(viewHint(cfg, r))
		return nil
	default:
		return fmt.Errorf("unexpected result %v", result)
	}
}

func newGenerator(cfg *config.Config, exclude *config.ExcludeMatcher, m *metrics.Metrics) *pipeline.Generator {
	gen := pipeline.NewGenerator(scanner.New(exclude), reporter.New(), reporter.NewFileWriter())
	gen.ParseOptions = parser.Options{
		Concurrency: cfg.Concurrency,
		ReadRate:    cfg.ReadRate,
	}
	gen.Metrics = m
	gen.Version = version
	return gen
}

func requestFromConfig(cfg *config.Config) pipeline.Request {
	return pipeline.Request{
		ScanPath:        cfg.ScanPath,
		ScanRecursively: cfg.ScanRecursively,
		OutputPath:      cfg.OutputPath,
		OutputFileName:  cfg.OutputFileName,
		ExportType:      cfg.ExportType,
		IncludeModules:  cfg.IncludeModules,
	}
}

// applyBaseline updates the baseline file or gates on warnings missing from it.
func applyBaseline(cfg *config.Config, model models.ExportModel, printer *progressPrinter) error {
	path := strings.TrimSpace(cfg.BaselinePath)
	if path == "" && cfg.UpdateBaseline {
		path = baseline.DefaultPath
	}

	if cfg.UpdateBaseline {
		set := baseline.Set{}
		baseline.AddAll(set, baseline.CollectFingerprints(model))
		if err := baseline.Save(path, set); err != nil {
			return fmt.Errorf("failed to update baseline: %w", err)
		}
		printer.Success(fmt.Sprintf("Baseline updated: %d warnings recorded in %s", len(set), path))
		return nil
	}

	known := baseline.Set{}
	if path != "" {
		loaded, err := baseline.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load baseline: %w", err)
		}
		known = loaded
	}

	fresh := baseline.NewWarnings(model, known)
	if path != "" {
		suppressed, _ := baseline.SuppressKnown(model, known)
		printer.Info(fmt.Sprintf("Baseline: %d known warnings suppressed, %d new", suppressed, len(fresh)))
	}
	for _, w := range fresh {
		slog.Debug("new warning",
			slog.String("module", w.Module),
			slog.String("composable", w.Composable.FunctionName),
			slog.String("fingerprint", w.Fingerprint),
		)
	}

	if cfg.FailOnWarnings && len(fresh) > 0 {
		return &FindingsError{Count: len(fresh)}
	}
	return nil
}

func viewHint(cfg *config.Config, done pipeline.SuccessfullyCompleted) string {
	if done.ExportType != models.ExportHTML {
		return ""
	}
	hint := fmt.Sprintf("View report: mendable serve %s", cfg.OutputPath)
	if isFirstRun {
		hint += "\nTip: put default flags in .mendable.yaml to skip typing them next time"
	}
	return hint
}
