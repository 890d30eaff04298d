package services

import (
	"fmt"
	"os"
	"path/filepath"

	"trends-viewer/internal/models"
)

// CSVExporter writes tables as CSV files into one directory.
type CSVExporter struct {
	dir string
}

func NewCSVExporter(dir string) *CSVExporter {
	return &CSVExporter{dir: dir}
}

// Export overwrites dir/name with the table and returns the full path.
func (e *CSVExporter) Export(name string, t *models.Table) (string, error) {
	path := filepath.Join(e.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// ExecutableDir is the default export directory: next to the program binary.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	return filepath.Dir(exe), nil
}
