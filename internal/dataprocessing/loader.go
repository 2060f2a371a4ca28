package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"disciplinedash/pkg/contracts/domain"
)

// Default header text of the discipline statistics export. The percent
// column carries a leading space in the source file and must match verbatim.
const (
	DefaultYearColumn    = "Year"
	DefaultGroupColumn   = "Student Group"
	DefaultPercentColumn = " Percent of Students Disciplined"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoaderOptions configures how the source text is bound to rows
type LoaderOptions struct {
	YearColumn    string
	GroupColumn   string
	PercentColumn string

	// Strict rejects records whose field count differs from the header.
	Strict bool

	// RejectDuplicates fails the load when a (year, group) pair repeats.
	RejectDuplicates bool

	Logger *slog.Logger
}

// DefaultLoaderOptions returns the options matching the published export format
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{
		YearColumn:    DefaultYearColumn,
		GroupColumn:   DefaultGroupColumn,
		PercentColumn: DefaultPercentColumn,
		Strict:        true,
	}
}

func (o LoaderOptions) withDefaults() LoaderOptions {
	if o.YearColumn == "" {
		o.YearColumn = DefaultYearColumn
	}
	if o.GroupColumn == "" {
		o.GroupColumn = DefaultGroupColumn
	}
	if o.PercentColumn == "" {
		o.PercentColumn = DefaultPercentColumn
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Parse converts raw delimited text into rows
func Parse(rawText string, opts LoaderOptions) ([]domain.Row, error) {
	return Load(context.Background(), strings.NewReader(rawText), opts)
}

// LoadFile opens path and loads its rows. File system failures are returned
// wrapped; malformed content is reported as *ParseError.
func LoadFile(ctx context.Context, path string, opts LoaderOptions) ([]domain.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer file.Close()

	return Load(ctx, file, opts)
}

// Load reads the whole input and parses it into rows. The read is the only
// blocking step and stops as soon as ctx is done.
func Load(ctx context.Context, r io.Reader, opts LoaderOptions) ([]domain.Row, error) {
	opts = opts.withDefaults()
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load cancelled: %w", err)
	}

	content, err := io.ReadAll(&contextReader{ctx: ctx, r: r})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("load cancelled: %w", ctxErr)
		}
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	rows, err := parseRecords(content, opts)
	if err != nil {
		opts.Logger.WarnContext(ctx, "Failed to parse discipline data",
			slog.String("error", err.Error()),
			slog.Int("bytes", len(content)))
		return nil, err
	}

	opts.Logger.InfoContext(ctx, "Loaded discipline data",
		slog.Int("rows", len(rows)),
		slog.Int("bytes", len(content)),
		slog.Duration("duration", time.Since(start)))

	return rows, nil
}

// columnIndices holds the positions of the bound header columns
type columnIndices struct {
	year    int
	group   int
	percent int
}

func parseRecords(content []byte, opts LoaderOptions) ([]domain.Row, error) {
	// Field counts are checked after empty rows are skipped, so a
	// separator-only line never fails strict mode.
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, newParseError(0, "", "", ErrMissingHeader)
	}
	if err != nil {
		return nil, csvParseError(err)
	}

	columns, err := findColumnIndices(header, opts)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.Row, 0)
	seen := make(map[rowKey]int)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvParseError(err)
		}
		line, _ := reader.FieldPos(0)

		if isEmptyRecord(record) {
			continue
		}
		if opts.Strict && len(record) != len(header) {
			return nil, newParseError(line, "", "",
				fmt.Errorf("%w: %v: got %d, want %d", ErrMalformedInput, csv.ErrFieldCount, len(record), len(header)))
		}
		for len(record) < len(header) {
			record = append(record, "")
		}

		row, err := buildRow(record, columns, opts, line)
		if err != nil {
			return nil, err
		}

		key := rowKey{year: row.Year, group: row.StudentGroup}
		if firstLine, dup := seen[key]; dup {
			if opts.RejectDuplicates {
				return nil, newParseError(line, opts.GroupColumn, row.StudentGroup,
					fmt.Errorf("%w (first seen on line %d)", ErrDuplicateKey, firstLine))
			}
			opts.Logger.Debug("Duplicate year and group, first row wins",
				slog.String("year", row.Year),
				slog.String("group", row.StudentGroup),
				slog.Int("line", line),
				slog.Int("first_line", firstLine))
		} else {
			seen[key] = line
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// findColumnIndices binds the configured header names by exact match
func findColumnIndices(header []string, opts LoaderOptions) (columnIndices, error) {
	indices := columnIndices{year: -1, group: -1, percent: -1}

	for i, name := range header {
		switch name {
		case opts.YearColumn:
			if indices.year == -1 {
				indices.year = i
			}
		case opts.GroupColumn:
			if indices.group == -1 {
				indices.group = i
			}
		case opts.PercentColumn:
			if indices.percent == -1 {
				indices.percent = i
			}
		}
	}

	required := []struct {
		name  string
		index int
	}{
		{opts.YearColumn, indices.year},
		{opts.GroupColumn, indices.group},
		{opts.PercentColumn, indices.percent},
	}
	for _, col := range required {
		if col.index == -1 {
			return indices, newParseError(1, col.name, "", ErrMissingColumn)
		}
	}

	return indices, nil
}

func buildRow(record []string, columns columnIndices, opts LoaderOptions, line int) (domain.Row, error) {
	percent, err := parsePercent(record[columns.percent])
	if err != nil {
		return domain.Row{}, newParseError(line, opts.PercentColumn, record[columns.percent], err)
	}

	return domain.Row{
		Year:               record[columns.year],
		StudentGroup:       record[columns.group],
		PercentDisciplined: percent,
	}, nil
}

// parsePercent coerces a percent cell. Whitespace around the number is
// ignored; anything else that is not a finite value in [0, 100] is rejected.
func parsePercent(cell string) (float64, error) {
	text := strings.TrimSpace(cell)
	if text == "" {
		return 0, ErrNotNumeric
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, ErrNotNumeric
	}
	if value < 0 || value > 100 {
		return 0, ErrOutOfRange
	}

	return value, nil
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if field != "" {
			return false
		}
	}
	return true
}

func csvParseError(err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		column := ""
		if csvErr.Column > 0 {
			column = strconv.Itoa(csvErr.Column)
		}
		return newParseError(csvErr.Line, column, "", fmt.Errorf("%w: %v", ErrMalformedInput, csvErr.Err))
	}
	return newParseError(0, "", "", fmt.Errorf("%w: %v", ErrMalformedInput, err))
}

// rowKey identifies a row by its opaque matching keys
type rowKey struct {
	year  string
	group string
}

// contextReader stops reading once the context is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
