// Package dataio reads and writes sample matrices as CSV, one sample per row.
package dataio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Read parses CSV rows of numbers. Lines starting with '#' are comments and
// every row must have the same number of fields.
func Read(r io.Reader) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	var rows [][]float64
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		row := make([]float64, len(record))
		for i, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d, field %d: %w", line, i+1, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
}

// ReadFile reads a CSV file with Read.
func ReadFile(path string) ([][]float64, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for data loading
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data: %w", err)
	}
	defer func() {
		_ = f.Close() // Read-only, nothing to flush
	}()

	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Write emits rows as CSV with the shortest representation that parses
// back to the same float64.
func Write(w io.Writer, rows [][]float64) error {
	cw := csv.NewWriter(w)
	record := make([]string, 0)
	for _, row := range rows {
		record = record[:0]
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes rows to path with Write.
func WriteFile(path string, rows [][]float64) (err error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for data export
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return Write(f, rows)
}
