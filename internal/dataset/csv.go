// Package dataset reads the read-only CSV banks the screens draw
// questions and answer keys from.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Table is a CSV file with a header row.
type Table struct {
	Name   string
	header []string
	index  map[string]int
	Rows   [][]string
}

// ReadCSV loads path. Header names are trimmed and matched
// case-sensitively, as pandas does.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), errors.New("empty file"))
	}
	t := &Table{Name: filepath.Base(path), index: make(map[string]int)}
	for i, cell := range rows[0] {
		name := cleanCell(cell)
		t.header = append(t.header, name)
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		for i := range row {
			row[i] = cleanCell(row[i])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Columns resolves names to indices, failing on the first missing one.
func (t *Table) Columns(names ...string) ([]int, error) {
	out := make([]int, len(names))
	for i, n := range names {
		idx, ok := t.index[n]
		if !ok {
			return nil, fmt.Errorf("%s: column %q not found (have %s)", t.Name, n, strings.Join(t.header, ", "))
		}
		out[i] = idx
	}
	return out, nil
}

// Cell returns row[i], or "" for short rows.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	return strings.TrimPrefix(v, "\ufeff")
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
