package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"disciplinedash/internal/files"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	files  *files.Manager
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer. Relative paths passed to Save
// resolve against the manager's base directory.
func NewCSVWriter(manager *files.Manager, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{files: manager, logger: logger.With("component", "csv_exporter")}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes the header and records to out
func (w *CSVWriter) WriteCSV(out io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Write streams a table as CSV with a BOM prefix
func (w *CSVWriter) Write(out io.Writer, table Table) error {
	return w.WriteCSV(out, WriteOptions{
		Headers:   table.Headers,
		Records:   table.Records,
		BOMPrefix: true,
	})
}

// Save writes a table to filePath and returns the absolute location
func (w *CSVWriter) Save(filePath string, table Table) (string, error) {
	if w.files == nil {
		return "", fmt.Errorf("csv writer has no output directory")
	}

	var buf bytes.Buffer
	if err := w.Write(&buf, table); err != nil {
		return "", err
	}

	fullPath, err := w.files.WriteFile(filePath, buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("failed to save %s: %w", table.Name, err)
	}

	w.logger.Info("Exported view as CSV",
		slog.String("view", table.Name),
		slog.String("path", fullPath),
		slog.Int("record_count", len(table.Records)))

	return fullPath, nil
}
