package reporter

import (
	"embed"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/ppiankov/mendable/internal/models"
)

const reportTemplateName = "report.html.tmpl"

// assets holds the HTML report template and its inline styles.
//
//go:embed templates/report.html.tmpl
var assets embed.FS

var (
	templateOnce sync.Once
	reportTmpl   *template.Template
	templateErr  error
)

func loadTemplate() (*template.Template, error) {
	templateOnce.Do(func() {
		reportTmpl, templateErr = template.New(reportTemplateName).
			Funcs(templateFuncs()).
			ParseFS(assets, "templates/"+reportTemplateName)
		if templateErr != nil {
			templateErr = fmt.Errorf("failed to parse report template: %w", templateErr)
		}
	})
	return reportTmpl, templateErr
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return "unknown"
			}
			return t.UTC().Format(time.RFC3339)
		},
		"health":      healthClass,
		"policyLabel": policyLabel,
	}
}

// healthClass buckets a skippable percentage for styling.
func healthClass(percentage int) string {
	switch {
	case percentage >= 80:
		return "good"
	case percentage >= 50:
		return "fair"
	default:
		return "poor"
	}
}

func policyLabel(policy models.IncludeModules) string {
	if policy == models.IncludeAll {
		return "all modules"
	}
	return "modules with warnings"
}
