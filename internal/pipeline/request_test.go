package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/mendable/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestValidate(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	cases := []struct {
		name   string
		mutate func(r *Request)
		field  string
		reason string
	}{
		{name: "valid", mutate: func(r *Request) {}},
		{name: "empty scan path", mutate: func(r *Request) { r.ScanPath = " " }, field: "ScanPath", reason: "cannot be empty"},
		{name: "missing scan path", mutate: func(r *Request) { r.ScanPath = filepath.Join(r.ScanPath, "nope") }, field: "ScanPath", reason: "does not exist"},
		{name: "scan path is file", mutate: func(r *Request) { r.ScanPath = file }, field: "ScanPath", reason: "is not a directory"},
		{name: "empty output path", mutate: func(r *Request) { r.OutputPath = "" }, field: "OutputPath", reason: "cannot be empty"},
		{name: "output path is file", mutate: func(r *Request) { r.OutputPath = file }, field: "OutputPath", reason: "is not a directory"},
		{name: "empty output name", mutate: func(r *Request) { r.OutputFileName = "  " }, field: "OutputFileName", reason: "cannot be empty"},
		{name: "output name with separator", mutate: func(r *Request) { r.OutputFileName = "a/b" }, field: "OutputFileName", reason: "path separators"},
		{name: "bad export type", mutate: func(r *Request) { r.ExportType = "PDF" }, field: "ExportType", reason: "unsupported"},
		{name: "bad include modules", mutate: func(r *Request) { r.IncludeModules = "SOME" }, field: "IncludeModules", reason: "unsupported"},
		{name: "lowercase enums accepted", mutate: func(r *Request) {
			r.ExportType = "html"
			r.IncludeModules = "all"
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest(t)
			tc.mutate(&req)

			verr := req.Validate()
			if tc.field == "" {
				assert.Nil(t, verr)
				return
			}
			require.NotNil(t, verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.True(t, strings.Contains(verr.Reason, tc.reason), verr.Reason)
		})
	}
}

func TestValidationErrorFormatting(t *testing.T) {
	cause := errors.New("boom")
	err := &ValidationError{Field: "ScanPath", Reason: "cannot access /x", Err: cause}

	assert.Equal(t, "ScanPath: cannot access /x: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "OutputFileName: cannot be empty", (&ValidationError{Field: "OutputFileName", Reason: "cannot be empty"}).Error())
}

func TestProgressStrings(t *testing.T) {
	assert.Equal(t, "Progress.Initiated", Initiated{}.String())
	assert.Equal(t, "Progress.MetricsFilesFound(files=2)", MetricsFilesFound{Files: make([]models.ReportFile, 2)}.String())
	assert.Equal(t, "Progress.MetricsFilesParsed(parsedSuccessfully=3, failedToParse=1)", MetricsFilesParsed{ParsedSuccessfully: 3, FailedToParse: 1}.String())
	assert.Equal(t, "Progress.NoMetricsFilesFound", NoMetricsFilesFound{}.String())
	assert.Equal(t, "Progress.SuccessfullyCompleted(outputPath=/tmp/index.html, exportType=HTML)",
		SuccessfullyCompleted{OutputPath: "/tmp/index.html", ExportType: models.ExportHTML}.String())
	assert.Equal(t, "report generation failed", Error{}.Error())
	assert.Equal(t, "invalid request", ValidationFailed{}.Error())
}
