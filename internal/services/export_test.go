package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trends-viewer/internal/models"
)

func TestCSVExporterOverwritesFile(t *testing.T) {
	dir := t.TempDir()
	exporter := NewCSVExporter(dir)

	first := mustTable(t, "date", []string{"2022-01-01"},
		models.NewNumericColumn("bitcoin", []float64{10}),
		models.NewTextColumn("isPartial", []string{"False"}))
	second := mustTable(t, "date", []string{"2022-01-02"},
		models.NewNumericColumn("bitcoin", []float64{20}),
		models.NewTextColumn("isPartial", []string{"True"}))

	_, err := exporter.Export(InterestOverTimeFile, first)
	require.NoError(t, err)
	path, err := exporter.Export(InterestOverTimeFile, second)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, InterestOverTimeFile), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "date,bitcoin,isPartial\n2022-01-02,20,True\n", string(data))
}

func TestCSVExporterMissingDir(t *testing.T) {
	exporter := NewCSVExporter(filepath.Join(t.TempDir(), "missing"))
	table := mustTable(t, "date", []string{"2022-01-01"},
		models.NewNumericColumn("bitcoin", []float64{1}))

	_, err := exporter.Export(InterestOverTimeFile, table)
	assert.Error(t, err)
}
