package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"disciplinedash/internal/config"
	"disciplinedash/internal/exporter"
	"disciplinedash/internal/files"
	"disciplinedash/internal/infrastructure"
	"disciplinedash/internal/presenter"
	"disciplinedash/internal/services"
	"disciplinedash/internal/validation"
	"disciplinedash/pkg/contracts"
)

const (
	viewRanking     = "ranking"
	viewTrends      = "trends"
	viewDisparities = "disparities"
	viewSummary     = "summary"
	viewAll         = "all"
)

var allViews = []string{viewRanking, viewTrends, viewDisparities, viewSummary}

// options are the parsed command line flags
type options struct {
	configFile string
	input      string
	year       string
	view       string
	format     string
	out        string
	logLevel   string
	version    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetVersionString())
		return 0
	}

	logger := infrastructure.NewLogger(stderr, opts.logLevel)

	cfg, err := config.LoadFrom(opts.configFile)
	if err != nil {
		logger.Error("Failed to load configuration", slog.String("error", err.Error()))
		return 1
	}
	if opts.input != "" {
		cfg.Data.Source = opts.input
	}

	ctx := infrastructure.WithNewTraceID(context.Background())
	service := services.NewDashboardService(cfg, nil, nil, logger)

	if _, err := service.Load(ctx, services.ReasonStartup); err != nil {
		logger.ErrorContext(ctx, "Failed to load dataset",
			slog.String("source", cfg.Data.Source),
			slog.String("error", err.Error()))
		return 1
	}

	r := &reporter{
		service:  service,
		renderer: presenter.NewRenderer(presenter.ConfigFrom(cfg.Presenter, cfg.Analysis), logger),
		opts:     opts,
		stdout:   stdout,
		logger:   logger,
	}
	if err := r.report(ctx); err != nil {
		logger.ErrorContext(ctx, "Report failed", slog.String("error", err.Error()))
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("discipline-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "", "optional YAML config file")
	fs.StringVar(&opts.input, "in", "", "CSV file or directory (defaults to the configured source)")
	fs.StringVar(&opts.year, "year", "", "school year such as 2023-24 (defaults to the target or latest year)")
	fs.StringVar(&opts.view, "view", viewAll, "ranking, trends, disparities, summary or all")
	fs.StringVar(&opts.format, "format", "table", "table, json, csv, xlsx, png or svg")
	fs.StringVar(&opts.out, "out", "", "output file or directory (stdout when empty for table, json and csv)")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.view != viewAll && !slices.Contains(allViews, opts.view) {
		return opts, fmt.Errorf("unknown view %q", opts.view)
	}

	switch opts.format {
	case "table", "json", "csv":
	case "xlsx", "png", "svg":
		if opts.out == "" {
			return opts, fmt.Errorf("-format %s needs -out", opts.format)
		}
	default:
		return opts, fmt.Errorf("unknown format %q", opts.format)
	}

	if opts.format != "table" && opts.format != "json" && opts.view == viewSummary {
		return opts, fmt.Errorf("the summary view is only available as table or json")
	}
	return opts, nil
}

// reporter derives the requested views and writes them in one format
type reporter struct {
	service  *services.DashboardService
	renderer *presenter.Renderer
	opts     options
	stdout   io.Writer
	logger   *slog.Logger
}

func (r *reporter) views() []string {
	if r.opts.view == viewAll {
		return allViews
	}
	return []string{r.opts.view}
}

func (r *reporter) report(ctx context.Context) error {
	if dir := r.outputDir(); dir != "" {
		if err := validation.NewFileValidator(r.logger).ValidateOutputDirectory(dir); err != nil {
			return err
		}
	}

	switch r.opts.format {
	case "table":
		return r.withOutput(func(w io.Writer) error { return r.writeText(ctx, w) })
	case "json":
		return r.withOutput(func(w io.Writer) error { return r.writeJSON(ctx, w) })
	case "csv":
		return r.writeCSV(ctx)
	case "xlsx":
		return r.writeWorkbook(ctx)
	default:
		return r.writeCharts(ctx)
	}
}

// outputDir is the directory -out writes into, empty for stdout
func (r *reporter) outputDir() string {
	switch {
	case r.opts.out == "":
		return ""
	case r.opts.format == "table", r.opts.format == "json", r.workbookFile():
		return filepath.Dir(r.opts.out)
	default:
		return r.opts.out
	}
}

func (r *reporter) workbookFile() bool {
	return r.opts.format == "xlsx" && strings.EqualFold(filepath.Ext(r.opts.out), ".xlsx")
}

// withOutput runs write against -out when set, stdout otherwise
func (r *reporter) withOutput(write func(io.Writer) error) error {
	if r.opts.out == "" {
		return write(r.stdout)
	}

	f, err := os.Create(r.opts.out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", r.opts.out, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// tables derives the exportable views. The summary has no tabular form.
func (r *reporter) tables(ctx context.Context) ([]exporter.Table, error) {
	var tables []exporter.Table
	for _, view := range r.views() {
		switch view {
		case viewRanking:
			ranking, err := r.service.Ranking(ctx, r.opts.year)
			if err != nil {
				return nil, err
			}
			tables = append(tables, exporter.RankingTable(ranking))
		case viewTrends:
			trends, err := r.service.Trends(ctx, nil, nil)
			if err != nil {
				return nil, err
			}
			tables = append(tables, exporter.TrendTable(trends))
		case viewDisparities:
			disparities, err := r.service.Disparities(ctx, r.opts.year)
			if err != nil {
				return nil, err
			}
			tables = append(tables, exporter.DisparityTable(disparities))
		}
	}
	return tables, nil
}

func (r *reporter) writeText(ctx context.Context, w io.Writer) error {
	tables, err := r.tables(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, table := range tables {
		fmt.Fprintf(tw, "== %s ==\n", table.Name)
		fmt.Fprintln(tw, strings.Join(table.Headers, "\t"))
		for _, record := range table.Records {
			fmt.Fprintln(tw, strings.Join(record, "\t"))
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if slices.Contains(r.views(), viewSummary) {
		summary, err := r.service.Summary(ctx, r.opts.year)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "== Summary ==")
		for _, statement := range summary.Statements {
			fmt.Fprintf(w, "- %s\n", statement)
		}
	}
	return nil
}

func (r *reporter) writeJSON(ctx context.Context, w io.Writer) error {
	result := make(map[string]interface{}, len(r.views()))
	for _, view := range r.views() {
		var (
			data interface{}
			err  error
		)
		switch view {
		case viewRanking:
			data, err = r.service.Ranking(ctx, r.opts.year)
		case viewTrends:
			data, err = r.service.Trends(ctx, nil, nil)
		case viewDisparities:
			data, err = r.service.Disparities(ctx, r.opts.year)
		case viewSummary:
			data, err = r.service.Summary(ctx, r.opts.year)
		}
		if err != nil {
			return err
		}
		result[view] = data
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func (r *reporter) writeCSV(ctx context.Context) error {
	tables, err := r.tables(ctx)
	if err != nil {
		return err
	}

	if r.opts.out == "" {
		writer := exporter.NewCSVWriter(nil, r.logger)
		for _, table := range tables {
			if err := writer.Write(r.stdout, table); err != nil {
				return err
			}
		}
		return nil
	}

	writer := exporter.NewCSVWriter(files.NewManager(r.opts.out, r.logger), r.logger)
	for _, table := range tables {
		path, err := writer.Save(strings.ToLower(table.Name)+".csv", table)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.stdout, path)
	}
	return nil
}

// writeWorkbook accepts either a .xlsx file name or a directory for -out
func (r *reporter) writeWorkbook(ctx context.Context) error {
	tables, err := r.tables(ctx)
	if err != nil {
		return err
	}

	dir, name := r.opts.out, "discipline-report.xlsx"
	if r.workbookFile() {
		dir, name = filepath.Dir(r.opts.out), filepath.Base(r.opts.out)
	}

	path, err := exporter.NewWorkbookWriter(files.NewManager(dir, r.logger), r.logger).Save(name, tables...)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.stdout, path)
	return nil
}

func (r *reporter) writeCharts(ctx context.Context) error {
	format, err := presenter.ParseFormat(r.opts.format)
	if err != nil {
		return err
	}
	manager := files.NewManager(r.opts.out, r.logger)

	for _, view := range r.views() {
		if view == viewSummary {
			continue
		}

		data, err := r.chart(ctx, view, format)
		if errors.Is(err, presenter.ErrNoData) {
			r.logger.WarnContext(ctx, "Skipping empty chart", slog.String("view", view))
			continue
		}
		if err != nil {
			return err
		}

		path, err := manager.WriteFile(view+"."+r.opts.format, data)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.stdout, path)
	}
	return nil
}

func (r *reporter) chart(ctx context.Context, view string, format presenter.Format) ([]byte, error) {
	switch view {
	case viewRanking:
		ranking, err := r.service.Ranking(ctx, r.opts.year)
		if err != nil {
			return nil, err
		}
		return r.renderer.RankingChart(ranking, format)
	case viewTrends:
		trends, err := r.service.Trends(ctx, nil, nil)
		if err != nil {
			return nil, err
		}
		return r.renderer.TrendChart(trends, format)
	default:
		disparities, err := r.service.Disparities(ctx, r.opts.year)
		if err != nil {
			return nil, err
		}
		return r.renderer.DisparityChart(disparities, format)
	}
}
