package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ppiankov/mendable/internal/models"
)

// RenderJSON marshals the export model with two-space indentation
func RenderJSON(model models.ExportModel) ([]byte, error) {
	if model.Modules == nil {
		model.Modules = []models.ModuleDetails{}
	}

	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeJSON reads a report produced by RenderJSON. Unknown fields are rejected.
func DecodeJSON(data []byte) (models.ExportModel, error) {
	var model models.ExportModel

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&model); err != nil {
		return models.ExportModel{}, fmt.Errorf("failed to decode JSON report: %w", err)
	}
	return model, nil
}
