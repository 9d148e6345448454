// Package csv wraps encoding/csv with the small conveniences the
// pipeline needs: header-keyed rows, cell cleanup, and whole-file
// read/write since every stage is a full-snapshot handoff.
package csv

import (
	stdcsv "encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CleanHeader normalizes a header cell: trims whitespace, strips a UTF-8
// BOM and Excel formula prefixes, and lowercases.
func CleanHeader(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.TrimPrefix(s, "=")
	return strings.ToLower(strings.TrimSpace(s))
}

// CleanCell trims whitespace and strips a stray BOM from a data cell.
func CleanCell(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\uFEFF"))
}

// Read returns all records of a CSV file, including the header row.
// Rows may have varying lengths; the caller decides how strict to be.
func Read(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := stdcsv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, nil
}

// ReadRows reads a CSV file with a header row and returns the cleaned
// header plus one map per data row keyed by header name. Cells beyond
// the header width are dropped; missing trailing cells read as "".
func ReadRows(path string) ([]string, []map[string]string, error) {
	records, err := Read(path)
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s: empty file, expected a header row", path)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = CleanHeader(h)
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isEmptyRecord(rec) {
			continue
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = CleanCell(rec[i])
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// Write writes a header plus rows to path, creating parent directories
// as needed. Row values are looked up by header name; absent keys write
// as empty cells.
func Write(path string, header []string, rows []map[string]string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := stdcsv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("writing header to %s: %w", path, err)
	}
	rec := make([]string, len(header))
	for _, row := range rows {
		for i, name := range header {
			rec[i] = row[name]
		}
		if err := w.Write(rec); err != nil {
			f.Close()
			return fmt.Errorf("writing row to %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

func isEmptyRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
