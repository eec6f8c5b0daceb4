package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeTemp(t, "sheet.csv", "NPI,First Name\n1234567890,Jane\n9876543210,John\n")

	header, rows, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"NPI", "First Name"}, header)
	assert.Equal(t, [][]string{{"1234567890", "Jane"}, {"9876543210", "John"}}, rows)
}

func TestReadCSV_RaggedRows(t *testing.T) {
	path := writeTemp(t, "sheet.csv", "A,B,C\n1,2\n1,2,3,4\n")

	header, rows, err := ReadCSV(path)
	require.NoError(t, err, "ragged rows are accepted, not an error")
	assert.Len(t, header, 3)
	assert.Equal(t, [][]string{{"1", "2"}, {"1", "2", "3", "4"}}, rows)
}

func TestReadCSV_Empty(t *testing.T) {
	path := writeTemp(t, "empty.csv", "")
	_, _, err := ReadCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, _, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestReadTSV(t *testing.T) {
	path := writeTemp(t, "sheet.tsv", "NPI\tCity\n123\tAustin\n")

	header, rows, err := ReadTSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"NPI", "City"}, header)
	assert.Equal(t, [][]string{{"123", "Austin"}}, rows)
}

func TestReadFile_Dispatch(t *testing.T) {
	csvPath := writeTemp(t, "a.CSV", "h\nv\n")
	header, _, err := ReadFile(csvPath)
	require.NoError(t, err, "extension match is case-insensitive")
	assert.Equal(t, []string{"h"}, header)

	txtPath := writeTemp(t, "b.txt", "h1\th2\nv1\tv2\n")
	header, _, err = ReadFile(txtPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"h1", "h2"}, header)

	_, _, err = ReadFile(writeTemp(t, "c.pdf", "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
