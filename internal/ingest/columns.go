// Package ingest adapts parsed scope-sheet files into the column shape the
// classifiers consume. The readers here are deliberately mechanical; all
// detection logic lives in internal/classify.
package ingest

import (
	"strings"

	"github.com/fluent-ops/flu3nt/internal/model"
)

// BuildColumns turns a header row plus data rows into Columns, sampling up
// to model.MaxExamples trimmed, deduplicated, non-empty values per column in
// first-seen order. Duplicate or empty header names keep the first
// occurrence; rows shorter than the header contribute no value for the
// missing cells.
func BuildColumns(header []string, rows [][]string) []model.Column {
	columns := make([]model.Column, 0, len(header))
	// cell index -> columns index; -1 for skipped headers.
	slots := make([]int, len(header))
	seen := make(map[string]bool, len(header))

	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			slots[i] = -1
			continue
		}
		seen[name] = true
		columns = append(columns, model.Column{Name: name, Examples: []string{}})
		slots[i] = len(columns) - 1
	}

	for _, row := range rows {
		full := true
		for i, ci := range slots {
			if ci < 0 {
				continue
			}
			if i < len(row) {
				columns[ci].AddExample(strings.TrimSpace(row[i]))
			}
			if len(columns[ci].Examples) < model.MaxExamples {
				full = false
			}
		}
		if full {
			break
		}
	}

	return columns
}
