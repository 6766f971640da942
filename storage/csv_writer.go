package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"spotify-records/models"
)

// CSVWriter writes the raw (uncleaned) extracted table to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	return &CSVWriter{file: f, writer: csv.NewWriter(f)}, nil
}

// WriteTable writes the header row followed by every row's cell text.
// Missing cells are written as empty fields.
func (c *CSVWriter) WriteTable(table *models.Table) error {
	if err := c.writer.Write(table.Columns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, row := range table.Rows {
		fields := make([]string, len(row))
		for i, v := range row {
			fields[i] = models.CellText(v)
		}
		if err := c.writer.Write(fields); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
