package reporter

import (
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/mendable/internal/aggregator"
	"github.com/ppiankov/mendable/internal/models"
)

func sampleModel(t *testing.T, policy models.IncludeModules) models.ExportModel {
	t.Helper()

	reports := []models.ComposableReport{
		{
			File: models.NewReportFile("app/build/compose_metrics/app_release-composables.txt"),
			Composables: []models.ComposableDetails{
				{
					FunctionName:  "FeedList",
					IsRestartable: true,
					Line:          3,
					Params: []models.Parameter{
						{Name: "items", Type: "List<Item>", Condition: models.ConditionUnstable},
						{Name: "modifier", Type: "Modifier?", Condition: models.ConditionStable, Unused: true, DefaultValue: "@static Companion"},
					},
				},
				{FunctionName: "Greeting", IsRestartable: true, IsSkippable: true, Line: 1},
			},
		},
		{
			File: models.NewReportFile("core/build/compose_metrics/core_release-composables.txt"),
			Composables: []models.ComposableDetails{
				{FunctionName: "Divider", IsRestartable: true, IsSkippable: true, Line: 1},
				{FunctionName: "currentTheme", IsReadonly: true, ReturnType: "Theme", Line: 2},
			},
		},
	}

	model := aggregator.Aggregate(reports, policy)
	model.Tool = "mendable"
	model.Version = "v1.2.3"
	model.RunID = "0b4c5f5e-6c1f-4b8e-9c1e-2f1f4d9e7a10"
	model.GeneratedAt = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	return model
}

func TestRenderDispatchesByExportType(t *testing.T) {
	model := sampleModel(t, models.IncludeAll)
	rep := New()

	cases := []struct {
		exportType models.ExportType
		extension  string
		contains   string
	}{
		{exportType: models.ExportHTML, extension: "html", contains: "<!DOCTYPE html>"},
		{exportType: models.ExportJSON, extension: "json", contains: `"total_modules_scanned": 2`},
		{exportType: models.ExportSARIF, extension: "sarif", contains: `"version": "2.1.0"`},
	}

	for _, tc := range cases {
		t.Run(string(tc.exportType), func(t *testing.T) {
			rendered, err := rep.Render(model, tc.exportType)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if rendered.Extension != tc.extension {
				t.Fatalf("expected extension %q, got %q", tc.extension, rendered.Extension)
			}
			if !strings.Contains(string(rendered.Content), tc.contains) {
				t.Fatalf("expected content to contain %q", tc.contains)
			}
		})
	}
}

func TestRenderUnsupportedExportType(t *testing.T) {
	_, err := New().Render(sampleModel(t, models.IncludeAll), models.ExportType("XML"))
	if err == nil || !strings.Contains(err.Error(), "unsupported export type") {
		t.Fatalf("expected unsupported export type error, got %v", err)
	}
}
