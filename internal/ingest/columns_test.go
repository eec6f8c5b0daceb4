package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluent-ops/flu3nt/internal/model"
)

func TestBuildColumns(t *testing.T) {
	header := []string{"NPI", "First Name"}
	rows := [][]string{
		{"1234567890", "Jane"},
		{"9876543210", "John"},
	}

	cols := BuildColumns(header, rows)
	require.Len(t, cols, 2)
	assert.Equal(t, "NPI", cols[0].Name)
	assert.Equal(t, []string{"1234567890", "9876543210"}, cols[0].Examples)
	assert.Equal(t, []string{"Jane", "John"}, cols[1].Examples)
}

func TestBuildColumns_CapsExamples(t *testing.T) {
	rows := [][]string{{"a"}, {"b"}, {"c"}, {"d"}, {"e"}}
	cols := BuildColumns([]string{"Col"}, rows)
	require.Len(t, cols, 1)
	assert.Equal(t, []string{"a", "b", "c"}, cols[0].Examples)
}

func TestBuildColumns_SkipsEmptyAndDuplicateCells(t *testing.T) {
	rows := [][]string{
		{"  "},
		{"Austin"},
		{"Austin "}, // trims to duplicate
		{"Dallas"},
	}
	cols := BuildColumns([]string{"City"}, rows)
	require.Len(t, cols, 1)
	assert.Equal(t, []string{"Austin", "Dallas"}, cols[0].Examples)
}

func TestBuildColumns_DuplicateAndEmptyHeaders(t *testing.T) {
	header := []string{"NPI", "", "NPI", " City "}
	rows := [][]string{{"111", "x", "222", "Austin"}}

	cols := BuildColumns(header, rows)
	require.Len(t, cols, 2)
	assert.Equal(t, "NPI", cols[0].Name)
	assert.Equal(t, []string{"111"}, cols[0].Examples, "repeat header column contributes nothing")
	assert.Equal(t, "City", cols[1].Name, "header names are trimmed")
	assert.Equal(t, []string{"Austin"}, cols[1].Examples)
}

func TestBuildColumns_RaggedRows(t *testing.T) {
	header := []string{"A", "B", "C"}
	rows := [][]string{
		{"1"},
		{"2", "x"},
		{"3", "y", "z"},
	}

	cols := BuildColumns(header, rows)
	require.Len(t, cols, 3)
	assert.Equal(t, []string{"1", "2", "3"}, cols[0].Examples)
	assert.Equal(t, []string{"x", "y"}, cols[1].Examples)
	assert.Equal(t, []string{"z"}, cols[2].Examples)
}

func TestBuildColumns_NoRows(t *testing.T) {
	cols := BuildColumns([]string{"A"}, nil)
	require.Len(t, cols, 1)
	assert.Empty(t, cols[0].Examples)
}

func TestBuildColumns_ExamplesNeverNil(t *testing.T) {
	cols := BuildColumns([]string{"A"}, nil)
	require.Len(t, cols, 1)
	assert.NotNil(t, cols[0].Examples)
	assert.IsType(t, model.Column{}, cols[0])
}
