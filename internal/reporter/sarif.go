package reporter

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ppiankov/mendable/internal/baseline"
	"github.com/ppiankov/mendable/internal/models"
)

const (
	ruleNonSkippable  = "mendable/NON_SKIPPABLE"
	ruleUnstableParam = "mendable/UNSTABLE_PARAM"

	ruleIndexNonSkippable  = 0
	ruleIndexUnstableParam = 1

	sarifFallbackLocationURI = "composables.txt"
	sarifSchemaURI           = "https://docs.oasis-open.org/sarif/sarif/v2.1.0/cs01/schemas/sarif-schema-2.1.0.json"
	sarifFingerprintKey      = "mendable/findingHash"
)

var semanticVersionPattern = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?$`)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool               `json:"tool"`
	Results           []sarifResult           `json:"results"`
	AutomationDetails *sarifAutomationDetails `json:"automationDetails,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifAutomationDetails struct {
	ID string `json:"id"`
}

type sarifDriver struct {
	Name            string       `json:"name"`
	Version         string       `json:"version,omitempty"`
	InformationURI  string       `json:"informationUri,omitempty"`
	ShortDesc       sarifMessage `json:"shortDescription"`
	FullDesc        sarifMessage `json:"fullDescription"`
	Rules           []sarifRule  `json:"rules"`
	SemanticVersion string       `json:"semanticVersion,omitempty"`
}

type sarifRule struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	ShortDesc     sarifMessage `json:"shortDescription"`
	FullDesc      sarifMessage `json:"fullDescription"`
	DefaultConfig sarifConfig  `json:"defaultConfiguration"`
	HelpURI       string       `json:"helpUri,omitempty"`
}

type sarifConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           *int              `json:"ruleIndex,omitempty"`
	Level               string            `json:"level,omitempty"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLocation   `json:"locations,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
	Properties          map[string]any    `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation  `json:"physicalLocation,omitempty"`
	LogicalLocations []sarifLogicalLocation `json:"logicalLocations,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine,omitempty"`
}

type sarifLogicalLocation struct {
	Name               string `json:"name,omitempty"`
	FullyQualifiedName string `json:"fullyQualifiedName,omitempty"`
	Kind               string `json:"kind,omitempty"`
}

// RenderSARIF renders the warnings of the reported modules as SARIF 2.1.0.
func RenderSARIF(model models.ExportModel) ([]byte, error) {
	output := sarifLog{
		Version: "2.1.0",
		Schema:  sarifSchemaURI,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:            "mendable",
						Version:         model.Version,
						SemanticVersion: normalizeSemanticVersion(model.Version),
						InformationURI:  "https://github.com/ppiankov/mendable",
						ShortDesc: sarifMessage{
							Text: "Compose compiler metrics analyzer",
						},
						FullDesc: sarifMessage{
							Text: "Reports composables that are restartable but not skippable, and the unstable parameters that prevent skipping.",
						},
						Rules: []sarifRule{
							{
								ID:        ruleNonSkippable,
								Name:      "NON_SKIPPABLE",
								ShortDesc: sarifMessage{Text: "Composable is restartable but not skippable"},
								FullDesc:  sarifMessage{Text: "The Compose runtime cannot skip this composable during recomposition, so it re-executes whenever its parent recomposes."},
								DefaultConfig: sarifConfig{
									Level: "warning",
								},
								HelpURI: "https://developer.android.com/develop/ui/compose/performance/stability",
							},
							{
								ID:        ruleUnstableParam,
								Name:      "UNSTABLE_PARAM",
								ShortDesc: sarifMessage{Text: "Parameter type is unstable"},
								FullDesc:  sarifMessage{Text: "The compiler inferred this parameter as unstable, which keeps the enclosing composable from being skippable."},
								DefaultConfig: sarifConfig{
									Level: "note",
								},
							},
						},
					},
				},
				Results: buildSARIFResults(model),
				AutomationDetails: &sarifAutomationDetails{
					ID: "mendable/generate",
				},
			},
		},
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal SARIF: %w", err)
	}
	return append(data, '\n'), nil
}

func buildSARIFResults(model models.ExportModel) []sarifResult {
	results := make([]sarifResult, 0)

	for _, module := range model.Modules {
		uri := artifactURI(module.Report.File.Path)
		for _, c := range module.Report.Warnings() {
			qualified := module.ModuleName + "." + c.FunctionName
			results = append(results, sarifResult{
				RuleID:    ruleNonSkippable,
				RuleIndex: ruleIndexPtr(ruleIndexNonSkippable),
				Level:     "warning",
				Message:   sarifMessage{Text: fmt.Sprintf("Composable %q in module %q is restartable but not skippable.", c.FunctionName, module.ModuleName)},
				Locations: composableLocation(uri, c.Line, c.FunctionName, qualified),
				PartialFingerprints: map[string]string{
					sarifFingerprintKey: baseline.Fingerprint(module.ModuleName, c),
				},
				Properties: map[string]any{
					"category":        "non_skippable",
					"module":          module.ModuleName,
					"function":        c.FunctionName,
					"unstable_params": len(c.UnstableParams()),
				},
			})

			for _, p := range c.UnstableParams() {
				results = append(results, sarifResult{
					RuleID:    ruleUnstableParam,
					RuleIndex: ruleIndexPtr(ruleIndexUnstableParam),
					Level:     "note",
					Message:   sarifMessage{Text: fmt.Sprintf("Parameter %q of %q has unstable type %s.", p.Name, c.FunctionName, p.Type)},
					Locations: composableLocation(uri, c.Line, c.FunctionName, qualified),
					PartialFingerprints: map[string]string{
						sarifFingerprintKey: hashFinding("unstable_param", module.ModuleName, c.FunctionName, p.Name),
					},
					Properties: map[string]any{
						"category":  "unstable_param",
						"module":    module.ModuleName,
						"function":  c.FunctionName,
						"parameter": p.Name,
						"type":      p.Type,
					},
				})
			}
		}
	}

	return results
}

func artifactURI(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return sarifFallbackLocationURI
	}
	return filepath.ToSlash(trimmed)
}

func composableLocation(uri string, line int, name, qualified string) []sarifLocation {
	if line <= 0 {
		line = 1
	}

	return []sarifLocation{
		{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: uri},
				Region: &sarifRegion{
					StartLine: line,
				},
			},
			LogicalLocations: []sarifLogicalLocation{
				{
					Name:               name,
					FullyQualifiedName: qualified,
					Kind:               "function",
				},
			},
		},
	}
}

func normalizeSemanticVersion(version string) string {
	normalized := strings.TrimSpace(strings.TrimPrefix(version, "v"))
	if semanticVersionPattern.MatchString(normalized) {
		return normalized
	}
	return ""
}

func hashFinding(parts ...string) string {
	canonical := strings.Join(parts, "\x1f")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

func ruleIndexPtr(index int) *int {
	value := index
	return &value
}
