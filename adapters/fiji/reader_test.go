package fiji

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seq_table.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRead_StandardExport(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		",file,series,fracIn,intIn",
		",C1_s2_roi.tif,1,0.42,120.5",
		",C1_s2_roi.tif,2,0.38,98.0",
		",L3_s1_roi.tif,1,0.61,140.2",
	}, "\n"))

	ds, warnings, err := NewReader(path).Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, []string{"fracIn", "intIn"}, ds.ResponseVars)
	require.Len(t, ds.Rows, 3)

	first := ds.Rows[0]
	assert.Equal(t, "C1_s2_1", first.ImageID)
	assert.Equal(t, "C", first.Group)
	assert.InDelta(t, 0.42, first.Values["fracIn"], 1e-12)
	assert.InDelta(t, 120.5, first.Values["intIn"], 1e-12)

	// same file, different series: distinct image
	assert.Equal(t, "C1_s2_2", ds.Rows[1].ImageID)
	assert.Equal(t, "L3_s1_1", ds.Rows[2].ImageID)
	assert.Equal(t, "L", ds.Rows[2].Group)
}

func TestRead_FilenameFallbackWarns(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"file,series,fracIn",
		"Codd.tif,1,0.5",
		"C1_s1.tif,1,0.6",
	}, "\n"))

	ds, warnings, err := NewReader(path).Read(context.Background())
	require.NoError(t, err)

	require.Len(t, warnings, 1)
	assert.Equal(t, "Codd.tif", warnings[0].File)
	assert.Contains(t, warnings[0].Reason, "kept whole filename")
	assert.Equal(t, "Codd.tif_1", ds.Rows[0].ImageID)
}

func TestRead_NonNumericValueDropped(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"file,series,fracIn",
		"C1_s1.tif,1,NA",
		"C1_s1.tif,1,0.5",
	}, "\n"))

	ds, warnings, err := NewReader(path).Read(context.Background())
	require.NoError(t, err)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Reason, "non-numeric")
	assert.Equal(t, 2, warnings[0].Row)

	_, ok := ds.Rows[0].Response("fracIn")
	assert.False(t, ok, "dropped value must be absent, not zero")
	v, ok := ds.Rows[1].Response("fracIn")
	assert.True(t, ok)
	assert.InDelta(t, 0.5, v, 1e-12)
}

func TestRead_EmptyFilenameSkipsRow(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"file,series,fracIn",
		",1,0.5",
		"C1_s1.tif,1,0.6",
	}, "\n"))

	ds, warnings, err := NewReader(path).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Reason, "empty filename")
	assert.Len(t, ds.Rows, 1)
}

func TestRead_MissingRequiredColumns(t *testing.T) {
	path := writeCSV(t, "file,fracIn\nC1_s1.tif,0.5\n")
	_, _, err := NewReader(path).Read(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file/series")
}

func TestRead_MissingFile(t *testing.T) {
	_, _, err := NewReader(filepath.Join(t.TempDir(), "nope.csv")).Read(context.Background())
	require.Error(t, err)
}
