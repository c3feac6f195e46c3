package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/ppiankov/mendable/internal/pipeline"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// progressPrinter turns generator progress into user-facing lines
type progressPrinter struct {
	out    io.Writer
	styled bool
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{out: out, styled: isTerminal(out)}
}

// Handle is a pipeline.ProgressFunc
func (p *progressPrinter) Handle(progress pipeline.Progress) {
	switch v := progress.(type) {
	case pipeline.Initiated:
		p.Info("Scanning for composables reports...")
	case pipeline.MetricsFilesFound:
		p.Success(fmt.Sprintf("Found %d composables reports", len(v.Files)))
	case pipeline.MetricsFilesParsed:
		if v.FailedToParse == 0 {
			p.Success(fmt.Sprintf("Parsed %d reports", v.ParsedSuccessfully))
			return
		}
		p.Warn(fmt.Sprintf("Parsed %d reports, %d could not be parsed", v.ParsedSuccessfully, v.FailedToParse))
		for _, f := range v.Failures {
			p.Info(fmt.Sprintf("  skipped %s: %v", f.File.Path, f.Err))
		}
	case pipeline.NoMetricsFilesFound:
		p.Warn("No composables reports found. Enable Compose compiler reports and build the project first.")
	case pipeline.SuccessfullyCompleted:
		p.Success(fmt.Sprintf("%s report written to: %s", v.ExportType, v.OutputPath))
	case pipeline.Error:
		p.Error(fmt.Sprintf("Report generation failed: %v", v.Err))
	case pipeline.ValidationFailed:
		p.Error(fmt.Sprintf("Invalid arguments: %v", v.Err))
	}
}

func (p *progressPrinter) Info(msg string) {
	p.print(dimStyle, msg)
}

func (p *progressPrinter) Success(msg string) {
	p.print(successStyle, msg)
}

func (p *progressPrinter) Warn(msg string) {
	p.print(warnStyle, msg)
}

func (p *progressPrinter) Error(msg string) {
	p.print(errorStyle, msg)
}

// Hint prints msg after a blank line. Empty hints are ignored.
func (p *progressPrinter) Hint(msg string) {
	if msg == "" {
		return
	}
	_, _ = fmt.Fprintln(p.out)
	p.print(dimStyle, msg)
}

func (p *progressPrinter) print(style lipgloss.Style, msg string) {
	if p.styled {
		msg = style.Render(msg)
	}
	_, _ = fmt.Fprintln(p.out, msg)
}

func isTerminal(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
