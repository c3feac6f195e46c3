package reporter

import (
	"fmt"

	"github.com/ppiankov/mendable/internal/models"
)

// Reporter renders export models into report file content
type Reporter struct{}

// New creates a new reporter instance
func New() *Reporter {
	return &Reporter{}
}

// Render serialises model for exportType
func (r *Reporter) Render(model models.ExportModel, exportType models.ExportType) (models.Rendered, error) {
	var (
		content []byte
		err     error
	)

	switch exportType {
	case models.ExportHTML:
		content, err = RenderHTML(model)
	case models.ExportJSON:
		content, err = RenderJSON(model)
	case models.ExportSARIF:
		content, err = RenderSARIF(model)
	default:
		return models.Rendered{}, fmt.Errorf("unsupported export type %q", exportType)
	}
	if err != nil {
		return models.Rendered{}, err
	}

	return models.Rendered{
		Content:   content,
		Extension: exportType.Extension(),
	}, nil
}
