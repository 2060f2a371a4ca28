package exporter

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"disciplinedash/internal/files"
)

const (
	defaultSheet = "Sheet1"
	percentFmt   = "0.00"
)

// WorkbookWriter writes tables into a single .xlsx workbook, one sheet each
type WorkbookWriter struct {
	files  *files.Manager
	logger *slog.Logger
}

// NewWorkbookWriter creates a new workbook writer
func NewWorkbookWriter(manager *files.Manager, logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{files: manager, logger: logger.With("component", "workbook_exporter")}
}

// Build assembles the workbook in memory. The caller must Close it.
func (w *WorkbookWriter) Build(tables ...Table) (*excelize.File, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("workbook needs at least one table")
	}

	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDE5F0"}},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	numberStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: stringPtr(percentFmt)})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create number style: %w", err)
	}

	for i, table := range tables {
		sheet := sheetName(table.Name, i)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to add sheet %s: %w", sheet, err)
		}

		if err := writeSheet(f, sheet, table, headerStyle, numberStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write streams the workbook to out
func (w *WorkbookWriter) Write(out io.Writer, tables ...Table) error {
	f, err := w.Build(tables...)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Save writes the workbook to filePath and returns the absolute location
func (w *WorkbookWriter) Save(filePath string, tables ...Table) (string, error) {
	if w.files == nil {
		return "", fmt.Errorf("workbook writer has no output directory")
	}

	var buf bytes.Buffer
	if err := w.Write(&buf, tables...); err != nil {
		return "", err
	}

	fullPath, err := w.files.WriteFile(filePath, buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("Exported workbook",
		slog.String("path", fullPath),
		slog.Int("sheets", len(tables)))

	return fullPath, nil
}

func writeSheet(f *excelize.File, sheet string, table Table, headerStyle, numberStyle int) error {
	headers := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}

	lastCol, err := excelize.ColumnNumberToName(max(len(table.Headers), 1))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", sheet, err)
	}

	for i, values := range table.Values() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
		for j, v := range values {
			if _, ok := v.(float64); !ok {
				continue
			}
			numCell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, numCell, numCell, numberStyle); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(sheet, "A", lastCol, 22)
}

// sheetName keeps names within Excel's 31 character limit
func sheetName(name string, index int) string {
	if name == "" {
		return fmt.Sprintf("Sheet%d", index+1)
	}
	if len(name) > 31 {
		return name[:31]
	}
	return name
}

func stringPtr(s string) *string {
	return &s
}
