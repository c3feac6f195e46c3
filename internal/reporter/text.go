package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/ppiankov/mendable/internal/models"
)

const (
	textANSIReset = "\x1b[0m"
	textANSIBold  = "\x1b[1m"
	textANSIRed   = "\x1b[31m"

	maxTextWarningsPerModule = 20
)

// WriteSummary prints a human-readable summary of model to out. ANSI styling
// is only used when out is a terminal.
func WriteSummary(out io.Writer, model models.ExportModel) error {
	if out == nil {
		return fmt.Errorf("writer is nil")
	}

	if _, err := io.WriteString(out, renderTextSummary(model, supportsANSI(out))); err != nil {
		return fmt.Errorf("failed to write text summary: %w", err)
	}
	return nil
}

func renderTextSummary(model models.ExportModel, useANSI bool) string {
	var b strings.Builder

	generatedAt := "unknown"
	if !model.GeneratedAt.IsZero() {
		generatedAt = model.GeneratedAt.UTC().Format(time.RFC3339)
	}

	writeTextSectionHeader(&b, "Compose Compiler Metrics", useANSI)
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt)
	fmt.Fprintf(&b, "Modules scanned: %d\n", model.TotalModulesScanned)
	fmt.Fprintf(&b, "Modules reported: %d (%s)\n", model.TotalModulesReported, policyLabel(model.IncludeModules))
	b.WriteString("\n")

	writeTextSectionHeader(&b, "Overview", useANSI)
	fmt.Fprintf(&b, "Composables: %d\n", model.Overview.TotalComposables)
	fmt.Fprintf(&b, "Restartable: %d\n", model.Overview.RestartableComposables)
	fmt.Fprintf(&b, "Skippable: %d\n", model.Overview.SkippableComposables)
	fmt.Fprintf(&b, "Skippable of restartable: %d%%\n", model.Overview.SkippablePercentage)
	b.WriteString("\n")

	writeTextSectionHeader(&b, "Modules", useANSI)
	if len(model.Modules) == 0 {
		b.WriteString("No modules to report.\n")
		return b.String()
	}

	b.WriteString("MODULE                                   TOTAL   RESTART SKIP    SKIP%  WARNINGS\n")
	b.WriteString("--------------------------------------------------------------------------------\n")
	for _, module := range model.Modules {
		fmt.Fprintf(
			&b,
			"%-40s %-7d %-7d %-7d %-6s %d\n",
			truncateTextValue(module.ModuleName, 40),
			module.Overview.TotalComposables,
			module.Overview.RestartableComposables,
			module.Overview.SkippableComposables,
			fmt.Sprintf("%d%%", module.Overview.SkippablePercentage),
			len(module.Report.Warnings()),
		)
	}

	b.WriteString("\n")
	writeTextSectionHeader(&b, "Warnings", useANSI)
	total := 0
	for _, module := range model.Modules {
		warnings := module.Report.Warnings()
		if len(warnings) == 0 {
			continue
		}
		total += len(warnings)

		fmt.Fprintf(&b, "%s\n", module.ModuleName)
		for i, c := range warnings {
			if i == maxTextWarningsPerModule {
				fmt.Fprintf(&b, "  ... and %d more\n", len(warnings)-i)
				break
			}
			fmt.Fprintf(&b, "  - %s%s\n", styleWarning(c.FunctionName, useANSI), formatUnstable(c.UnstableParams()))
		}
	}
	if total == 0 {
		b.WriteString("No restartable composables that cannot be skipped.\n")
	}

	return b.String()
}

func formatUnstable(params []models.Parameter) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name+": "+p.Type)
	}
	return " (unstable: " + strings.Join(names, ", ") + ")"
}

func styleWarning(value string, useANSI bool) string {
	if !useANSI {
		return value
	}
	return textANSIRed + value + textANSIReset
}

func writeTextSectionHeader(b *strings.Builder, title string, useANSI bool) {
	header := title
	if useANSI {
		header = textANSIBold + title + textANSIReset
	}
	fmt.Fprintf(b, "%s\n", header)
	fmt.Fprintf(b, "%s\n", strings.Repeat("-", len(title)))
}

func supportsANSI(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func truncateTextValue(value string, width int) string {
	if width <= 0 || len(value) <= width {
		return value
	}
	if width <= 3 {
		return value[:width]
	}
	return value[:width-3] + "..."
}
