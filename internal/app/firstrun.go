package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	markerFileName = "first_run_completed"
	appName        = "mendable"
)

// GetAppConfigDir returns the path to the application's configuration directory.
func GetAppConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName), nil
}

// IsFirstRun reports whether mendable has never run for this user, recording
// the run so later calls return false. Errors are logged and treated as "not first run".
func IsFirstRun() bool {
	appConfigDir, err := GetAppConfigDir()
	if err != nil {
		slog.Debug("failed to get app config directory", slog.String("error", err.Error()))
		return false
	}

	first, err := MarkFirstRun(appConfigDir)
	if err != nil {
		slog.Debug("failed to record first run", slog.String("error", err.Error()))
		return false
	}
	return first
}

// MarkFirstRun creates the first-run marker in dir. It returns true when the
// marker did not exist before.
func MarkFirstRun(dir string) (bool, error) {
	markerFilePath := filepath.Join(dir, markerFileName)

	_, err := os.Stat(markerFilePath)
	if err == nil {
		slog.Debug("marker file exists, not first run", slog.String("path", markerFilePath))
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to check first run marker %s: %w", markerFilePath, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("failed to create app config directory %s: %w", dir, err)
	}
	f, err := os.Create(markerFilePath)
	if err != nil {
		return false, fmt.Errorf("failed to create first run marker %s: %w", markerFilePath, err)
	}
	_ = f.Close()

	slog.Debug("first run detected and marker created", slog.String("path", markerFilePath))
	return true, nil
}
