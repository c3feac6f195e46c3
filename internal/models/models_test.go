package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestModuleNameFromPath(t *testing.T) {
	cases := []struct {
		name string
		path string
		want string
	}{
		{name: "release_report", path: "app/build/compose_metrics/app_release-composables.txt", want: "app_release"},
		{name: "bare_file", path: "feature_home_debug-composables.txt", want: "feature_home_debug"},
		{name: "only_suffix", path: "-composables.txt", want: "-composables"},
		{name: "other_extension", path: "dir/notes.txt", want: "notes"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ModuleNameFromPath(tc.path); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestComposableWarnings(t *testing.T) {
	report := ComposableReport{
		File: NewReportFile("m-composables.txt"),
		Composables: []ComposableDetails{
			{FunctionName: "A", IsRestartable: true, IsSkippable: false},
			{FunctionName: "B", IsRestartable: true, IsSkippable: true},
			{FunctionName: "C", IsRestartable: false, IsSkippable: false},
			{FunctionName: "D", IsRestartable: true, IsSkippable: false, Params: []Parameter{
				{Name: "items", Type: "List<String>", Condition: ConditionUnstable},
				{Name: "title", Type: "String", Condition: ConditionStable},
			}},
		},
	}

	warnings := report.Warnings()
	if len(warnings) != 2 || warnings[0].FunctionName != "A" || warnings[1].FunctionName != "D" {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}

	unstable := warnings[1].UnstableParams()
	if len(unstable) != 1 || unstable[0].Name != "items" {
		t.Fatalf("unexpected unstable params: %+v", unstable)
	}
}

func TestParseIncludeModules(t *testing.T) {
	cases := []struct {
		input   string
		want    IncludeModules
		wantErr bool
	}{
		{input: "ALL", want: IncludeAll},
		{input: "all", want: IncludeAll},
		{input: "with_warnings", want: IncludeWithWarnings},
		{input: " WITH_WARNINGS ", want: IncludeWithWarnings},
		{input: "some", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseIncludeModules(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestParseExportTypeAndExtension(t *testing.T) {
	cases := []struct {
		input string
		want  ExportType
		ext   string
	}{
		{input: "html", want: ExportHTML, ext: "html"},
		{input: "JSON", want: ExportJSON, ext: "json"},
		{input: "Sarif", want: ExportSARIF, ext: "sarif"},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseExportType(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
			if got.Extension() != tc.ext {
				t.Fatalf("expected extension %q, got %q", tc.ext, got.Extension())
			}
		})
	}

	if _, err := ParseExportType("yaml"); err == nil {
		t.Fatal("expected error for yaml export type")
	}
}

func TestExportModelJSONTags(t *testing.T) {
	model := ExportModel{
		Tool:    "mendable",
		Modules: []ModuleDetails{},
	}
	payload, err := json.Marshal(model)
	if err != nil {
		t.Fatalf("failed to marshal export model: %v", err)
	}

	encoded := string(payload)
	keys := []string{"\"overview\"", "\"total_modules_scanned\"", "\"total_modules_reported\"", "\"modules\"", "\"include_modules\""}
	for _, key := range keys {
		if !strings.Contains(encoded, key) {
			t.Fatalf("expected JSON to contain %s, got %s", key, encoded)
		}
	}
	if strings.Contains(encoded, "\"run_id\"") {
		t.Fatalf("expected empty run_id to be omitted, got %s", encoded)
	}
}
