// Package aggregator rolls parsed composables reports up into an export model.
package aggregator

import (
	"math"

	"github.com/ppiankov/mendable/internal/models"
)

// Aggregate builds the export model for reports. The project overview always
// covers every report; policy only decides which reports become module rows.
// Inputs are not modified.
func Aggregate(reports []models.ComposableReport, policy models.IncludeModules) models.ExportModel {
	var all []models.ComposableDetails
	for _, report := range reports {
		all = append(all, report.Composables...)
	}

	modules := make([]models.ModuleDetails, 0, len(reports))
	for _, report := range reports {
		if !Include(report, policy) {
			continue
		}
		modules = append(modules, models.ModuleDetails{
			ModuleName: report.File.ModuleName,
			Overview:   NewOverview(report.Composables),
			Report:     report,
		})
	}

	return models.ExportModel{
		IncludeModules:       policy,
		Overview:             NewOverview(all),
		TotalModulesScanned:  len(reports),
		TotalModulesReported: len(modules),
		Modules:              modules,
	}
}

// Include reports whether report gets a module row under policy.
// Unknown policies behave like IncludeAll.
func Include(report models.ComposableReport, policy models.IncludeModules) bool {
	if policy == models.IncludeWithWarnings {
		return HasWarnings(report)
	}
	return true
}

// HasWarnings reports whether any composable in report is restartable but not skippable
func HasWarnings(report models.ComposableReport) bool {
	for _, c := range report.Composables {
		if c.HasWarning() {
			return true
		}
	}
	return false
}

// NewOverview computes the statistics for a set of composables.
// With nothing restartable the skippable percentage is 100.
func NewOverview(composables []models.ComposableDetails) models.Overview {
	overview := models.Overview{TotalComposables: len(composables)}
	for _, c := range composables {
		if !c.IsRestartable {
			continue
		}
		overview.RestartableComposables++
		if c.IsSkippable {
			overview.SkippableComposables++
		}
	}
	overview.SkippablePercentage = SkippablePercentage(overview.SkippableComposables, overview.RestartableComposables)
	return overview
}

// SkippablePercentage returns round(100*skippable/restartable), or 100 when restartable is zero
func SkippablePercentage(skippable, restartable int) int {
	if restartable <= 0 {
		return 100
	}
	return int(math.Round(float64(skippable) * 100 / float64(restartable)))
}
