package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFileYAML is the canonical config filename.
	DefaultConfigFileYAML = ".mendable.yaml"
	// DefaultConfigFileYML is a compatible alternate config filename.
	DefaultConfigFileYML = ".mendable.yml"
	// DefaultConfigFileTOML is read for projects that keep tool config in TOML.
	DefaultConfigFileTOML = ".mendable.toml"
)

// FileConfig represents values loaded from a .mendable.yaml or .mendable.toml file.
// Pointer fields distinguish "unset" from zero values.
type FileConfig struct {
	ComposablesReportsPath string   `yaml:"composables_reports_path" toml:"composables_reports_path"`
	Recursive              *bool    `yaml:"recursive" toml:"recursive"`
	Exclude                []string `yaml:"exclude" toml:"exclude"`
	OutputPath             string   `yaml:"output_path" toml:"output_path"`
	OutputName             string   `yaml:"output_name" toml:"output_name"`
	ExportType             string   `yaml:"export_type" toml:"export_type"`
	ReportType             string   `yaml:"report_type" toml:"report_type"`
	Concurrency            *int     `yaml:"concurrency" toml:"concurrency"`
	ReadRate               *int     `yaml:"read_rate" toml:"read_rate"`
	Baseline               string   `yaml:"baseline" toml:"baseline"`
	FailOnWarnings         *bool    `yaml:"fail_on_warnings" toml:"fail_on_warnings"`
	MetricsFile            string   `yaml:"metrics_file" toml:"metrics_file"`
	Debounce               string   `yaml:"debounce" toml:"debounce"`
}

// Normalize trims and removes empty items from list fields.
func (fc *FileConfig) Normalize() {
	if fc == nil {
		return
	}
	fc.Exclude = normalizeList(fc.Exclude)
	fc.ComposablesReportsPath = strings.TrimSpace(fc.ComposablesReportsPath)
	fc.OutputPath = strings.TrimSpace(fc.OutputPath)
	fc.OutputName = strings.TrimSpace(fc.OutputName)
	fc.ExportType = strings.TrimSpace(fc.ExportType)
	fc.ReportType = strings.TrimSpace(fc.ReportType)
	fc.Baseline = strings.TrimSpace(fc.Baseline)
	fc.MetricsFile = strings.TrimSpace(fc.MetricsFile)
	fc.Debounce = strings.TrimSpace(fc.Debounce)
}

// AutoLoadFile discovers and loads the first available config file.
func AutoLoadFile() (*FileConfig, string, error) {
	names := []string{
		DefaultConfigFileYAML,
		DefaultConfigFileYML,
		DefaultConfigFileTOML,
	}

	candidates := append([]string{}, names...)
	if homeDir, err := os.UserHomeDir(); err == nil && strings.TrimSpace(homeDir) != "" {
		for _, name := range names {
			candidates = append(candidates, filepath.Join(homeDir, name))
		}
	}

	return LoadFirstExistingFile(candidates)
}

// LoadFirstExistingFile loads the first config file that exists in paths.
func LoadFirstExistingFile(paths []string) (*FileConfig, string, error) {
	for _, path := range paths {
		candidate := strings.TrimSpace(path)
		if candidate == "" {
			continue
		}

		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", fmt.Errorf("failed to access config file %q: %w", candidate, err)
		}
		if info.IsDir() {
			return nil, "", fmt.Errorf("config path %q is a directory, expected a file", candidate)
		}

		cfg, err := LoadFile(candidate)
		if err != nil {
			return nil, "", err
		}
		return cfg, candidate, nil
	}

	return nil, "", nil
}

// LoadFile loads config values from a YAML or TOML file, chosen by extension.
func LoadFile(path string) (*FileConfig, error) {
	filename := strings.TrimSpace(path)
	if filename == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", filename, err)
	}

	cfg := &FileConfig{}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", filename, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", filename, err)
		}
	}

	cfg.Normalize()
	return cfg, nil
}

func normalizeList(values []string) []string {
	if len(values) == 0 {
		return []string{}
	}

	normalized := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		normalized = append(normalized, trimmed)
	}
	return normalized
}
