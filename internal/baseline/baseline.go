// Package baseline records known composable warnings so CI only fails on new ones.
package baseline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/mendable/internal/models"
)

const (
	// DefaultPath is used when --update-baseline is enabled without an explicit --baseline path.
	DefaultPath = ".mendable-baseline.json"
	fileVersion = 1
)

// Set stores baseline fingerprints.
type Set map[string]struct{}

// File is the persisted baseline JSON payload.
type File struct {
	Version      int      `json:"version"`
	Fingerprints []string `json:"fingerprints"`
}

// Warning is a composable that is restartable but not skippable, with its module.
type Warning struct {
	Module      string
	Composable  models.ComposableDetails
	Fingerprint string
}

// Load reads a baseline file. Missing files return an empty set.
func Load(path string) (Set, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("baseline path is empty")
	}

	data, err := os.ReadFile(trimmed)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("read baseline file: %w", err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse baseline file: %w", err)
	}
	if file.Version != 0 && file.Version != fileVersion {
		return nil, fmt.Errorf("unsupported baseline version: %d", file.Version)
	}

	set := Set{}
	AddAll(set, file.Fingerprints)
	return set, nil
}

// Save writes a baseline file with sorted, unique fingerprints.
func Save(path string, set Set) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return errors.New("baseline path is empty")
	}

	dir := filepath.Dir(trimmed)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create baseline directory: %w", err)
		}
	}

	payload := File{
		Version:      fileVersion,
		Fingerprints: Sorted(set),
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal baseline file: %w", err)
	}

	if err := os.WriteFile(trimmed, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write baseline file: %w", err)
	}

	return nil
}

// AddAll inserts fingerprints into the target set.
func AddAll(target Set, fingerprints []string) {
	for _, fingerprint := range fingerprints {
		if fingerprint == "" {
			continue
		}
		target[fingerprint] = struct{}{}
	}
}

// Sorted returns sorted fingerprints from a set.
func Sorted(set Set) []string {
	fingerprints := make([]string, 0, len(set))
	for fingerprint := range set {
		fingerprints = append(fingerprints, fingerprint)
	}
	sort.Strings(fingerprints)
	return fingerprints
}

// Warnings lists every warning in the model's module rows, in module then file order.
func Warnings(model models.ExportModel) []Warning {
	var warnings []Warning
	for _, module := range model.Modules {
		for _, c := range module.Report.Warnings() {
			warnings = append(warnings, Warning{
				Module:      module.ModuleName,
				Composable:  c,
				Fingerprint: Fingerprint(module.ModuleName, c),
			})
		}
	}
	return warnings
}

// CollectFingerprints extracts sorted, unique fingerprints for all warnings in the model.
func CollectFingerprints(model models.ExportModel) []string {
	set := Set{}
	for _, w := range Warnings(model) {
		set[w.Fingerprint] = struct{}{}
	}
	return Sorted(set)
}

// NewWarnings returns the warnings whose fingerprint is not in known.
func NewWarnings(model models.ExportModel, known Set) []Warning {
	var fresh []Warning
	for _, w := range Warnings(model) {
		if _, exists := known[w.Fingerprint]; exists {
			continue
		}
		fresh = append(fresh, w)
	}
	return fresh
}

// SuppressKnown counts warnings covered by known and those left over. The model is not modified.
func SuppressKnown(model models.ExportModel, known Set) (suppressed int, remaining int) {
	all := Warnings(model)
	remaining = len(NewWarnings(model, known))
	return len(all) - remaining, remaining
}

// Fingerprint identifies a warning by module and function name. Line numbers
// and parameter details are left out so unrelated edits do not invalidate a baseline.
func Fingerprint(module string, c models.ComposableDetails) string {
	return hash("warning", module, c.FunctionName)
}

func hash(parts ...string) string {
	canonical := strings.Join(parts, "\x1f")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
