package reporter

import (
	"bytes"
	"fmt"

	"github.com/ppiankov/mendable/internal/models"
)

// RenderHTML renders the export model as a standalone HTML page
func RenderHTML(model models.ExportModel) ([]byte, error) {
	tmpl, err := loadTemplate()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, model); err != nil {
		return nil, fmt.Errorf("failed to render HTML report: %w", err)
	}
	return buf.Bytes(), nil
}
