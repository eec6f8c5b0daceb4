package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadCSV reads a comma-separated file and returns the header row and data
// rows.
func ReadCSV(path string) ([]string, [][]string, error) {
	return readDelimited(path, ',')
}

// ReadTSV reads a tab-separated file and returns the header row and data
// rows.
func ReadTSV(path string) ([]string, [][]string, error) {
	return readDelimited(path, '\t')
}

// ReadFile dispatches on the file extension (.csv, .tsv, .txt as TSV,
// .xlsx).
func ReadFile(path string) ([]string, [][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(path)
	case ".tsv", ".txt":
		return ReadTSV(path)
	case ".xlsx":
		return ReadXLSX(path, XLSXOptions{})
	default:
		return nil, nil, eris.Errorf("ingest: unsupported file type %q", filepath.Ext(path))
	}
}

func readDelimited(path string, comma rune) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "ingest: open file")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1 // scope sheets are frequently ragged

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, eris.New("ingest: file is empty")
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "ingest: read header")
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "ingest: read row")
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}
