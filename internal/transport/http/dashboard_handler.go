package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "disciplinedash/internal/errors"
	"disciplinedash/internal/exporter"
	"disciplinedash/internal/infrastructure"
	"disciplinedash/internal/middleware"
	"disciplinedash/internal/presenter"
	"disciplinedash/internal/services"
)

// Views served by the chart and export routes
const (
	ViewRanking     = "ranking"
	ViewTrends      = "trends"
	ViewDisparities = "disparities"
	ViewDataset     = "dataset"
)

var (
	chartViews  = []string{ViewRanking, ViewTrends, ViewDisparities}
	exportViews = []string{ViewRanking, ViewTrends, ViewDisparities, ViewDataset}
)

// DashboardHandler serves the dataset, the derived views and their chart
// and file renditions
type DashboardHandler struct {
	service      DashboardServiceInterface
	charts       *presenter.Renderer
	csv          *exporter.CSVWriter
	workbook     *exporter.WorkbookWriter
	params       *middleware.QueryParamValidator
	metrics      *infrastructure.BusinessMetrics
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a dashboard handler. metrics may be nil.
func NewDashboardHandler(
	service DashboardServiceInterface,
	charts *presenter.Renderer,
	metrics *infrastructure.BusinessMetrics,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		charts:       charts,
		csv:          exporter.NewCSVWriter(nil, logger),
		workbook:     exporter.NewWorkbookWriter(nil, logger),
		params:       middleware.NewQueryParamValidator(logger, errorHandler),
		metrics:      metrics,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes, mounted under /api
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/dataset", h.GetDataset)
		r.Post("/dataset/reload", h.ReloadDataset)

		r.Route("/views", func(r chi.Router) {
			r.Get("/ranking", h.GetRanking)
			r.Get("/trends", h.GetTrends)
			r.Get("/disparities", h.GetDisparities)
		})
		r.Get("/summary", h.GetSummary)
	})

	r.Get("/charts/{view}.{format}", h.GetChart)
	r.Get("/export/workbook.xlsx", h.ExportWorkbook)
	r.Get("/export/{view}.csv", h.ExportCSV)

	return r
}

// GetDataset handles GET /api/dataset
func (h *DashboardHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Status(),
	})
}

// ReloadDataset handles POST /api/dataset/reload. The load outlives a
// disconnecting client so the dataset never ends up half replaced.
func (h *DashboardHandler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "reload requested",
		slog.String("remote_addr", middleware.GetRealIP(r)))

	status, err := h.service.Reload(context.WithoutCancel(ctx), services.ReasonReload)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   status,
	})
}

// GetRanking handles GET /api/views/ranking?year=
func (h *DashboardHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	year, ok := h.params.ValidateYear(w, r, "year")
	if !ok {
		return
	}

	view, err := h.service.Ranking(r.Context(), year)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
		"count":  len(view.Entries),
	})
}

// GetTrends handles GET /api/views/trends?years=&groups=
func (h *DashboardHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	years, groups, ok := h.trendParams(w, r)
	if !ok {
		return
	}

	view, err := h.service.Trends(r.Context(), years, groups)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
		"count":  len(view.Points),
	})
}

// GetDisparities handles GET /api/views/disparities?year=
func (h *DashboardHandler) GetDisparities(w http.ResponseWriter, r *http.Request) {
	year, ok := h.params.ValidateYear(w, r, "year")
	if !ok {
		return
	}

	view, err := h.service.Disparities(r.Context(), year)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
		"count":  len(view.Entries),
	})
}

// GetSummary handles GET /api/summary?year=
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	year, ok := h.params.ValidateYear(w, r, "year")
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), year)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// GetChart handles GET /api/charts/{view}.{format}
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := chi.URLParam(r, "view")
	if !slices.Contains(chartViews, view) {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError(fmt.Sprintf("chart %q", view)))
		return
	}

	rawFormat := chi.URLParam(r, "format")
	format, err := presenter.ParseFormat(rawFormat)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidParameterError("format", rawFormat, err.Error()))
		return
	}

	var data []byte
	switch view {
	case ViewRanking:
		year, ok := h.params.ValidateYear(w, r, "year")
		if !ok {
			return
		}
		ranking, err := h.service.Ranking(ctx, year)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		data, err = h.charts.RankingChart(ranking, format)
		if err != nil {
			h.chartError(w, r, view, err)
			return
		}
	case ViewTrends:
		years, groups, ok := h.trendParams(w, r)
		if !ok {
			return
		}
		trends, err := h.service.Trends(ctx, years, groups)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		data, err = h.charts.TrendChart(trends, format)
		if err != nil {
			h.chartError(w, r, view, err)
			return
		}
	case ViewDisparities:
		year, ok := h.params.ValidateYear(w, r, "year")
		if !ok {
			return
		}
		disparities, err := h.service.Disparities(ctx, year)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		data, err = h.charts.DisparityChart(disparities, format)
		if err != nil {
			h.chartError(w, r, view, err)
			return
		}
	}

	infrastructure.RecordChartRender(ctx, h.metrics, view, string(format))

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(ctx, "failed to write chart",
			slog.String("view", view),
			slog.String("error", err.Error()))
	}
}

func (h *DashboardHandler) chartError(w http.ResponseWriter, r *http.Request, view string, err error) {
	if errors.Is(err, presenter.ErrNoData) {
		h.errorHandler.HandleError(w, r, apierrors.NewNotFoundError(fmt.Sprintf("data for the %s chart", view)))
		return
	}
	infrastructure.RecordSystemError(r.Context(), h.metrics, "chart_render", "dashboard_handler")
	h.errorHandler.HandleError(w, r, apierrors.NewRenderError("failed to render chart", err).
		WithContext("view", view))
}

// ExportCSV handles GET /api/export/{view}.csv
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")
	if !slices.Contains(exportViews, view) {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError(fmt.Sprintf("export %q", view)))
		return
	}

	table, ok := h.exportTable(w, r, view)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.csv.Write(&buf, table); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewRenderError("failed to write csv", err))
		return
	}

	infrastructure.RecordExport(r.Context(), h.metrics, view, "csv")
	h.attachment(w, r, "text/csv; charset=utf-8", view+".csv", buf.Bytes())
}

// ExportWorkbook handles GET /api/export/workbook.xlsx. Every view goes into
// its own sheet, computed for the same year.
func (h *DashboardHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	tables := make([]exporter.Table, 0, len(exportViews))
	for _, view := range exportViews {
		table, ok := h.exportTable(w, r, view)
		if !ok {
			return
		}
		tables = append(tables, table)
	}

	var buf bytes.Buffer
	if err := h.workbook.Write(&buf, tables...); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewRenderError("failed to write workbook", err))
		return
	}

	infrastructure.RecordExport(r.Context(), h.metrics, "workbook", "xlsx")
	h.attachment(w, r, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"discipline-dashboard.xlsx", buf.Bytes())
}

// exportTable derives view and flattens it. On failure the response has
// already been written.
func (h *DashboardHandler) exportTable(w http.ResponseWriter, r *http.Request, view string) (exporter.Table, bool) {
	ctx := r.Context()

	switch view {
	case ViewDataset:
		return exporter.StatusTable(h.service.Status()), true
	case ViewTrends:
		years, groups, ok := h.trendParams(w, r)
		if !ok {
			return exporter.Table{}, false
		}
		trends, err := h.service.Trends(ctx, years, groups)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return exporter.Table{}, false
		}
		return exporter.TrendTable(trends), true
	}

	year, ok := h.params.ValidateYear(w, r, "year")
	if !ok {
		return exporter.Table{}, false
	}
	if view == ViewRanking {
		ranking, err := h.service.Ranking(ctx, year)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return exporter.Table{}, false
		}
		return exporter.RankingTable(ranking), true
	}

	disparities, err := h.service.Disparities(ctx, year)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return exporter.Table{}, false
	}
	return exporter.DisparityTable(disparities), true
}

func (h *DashboardHandler) trendParams(w http.ResponseWriter, r *http.Request) ([]string, []string, bool) {
	years, ok := h.params.ValidateList(w, r, "years")
	if !ok {
		return nil, nil, false
	}
	groups, ok := h.params.ValidateList(w, r, "groups")
	if !ok {
		return nil, nil, false
	}
	return years, groups, true
}

func (h *DashboardHandler) attachment(w http.ResponseWriter, r *http.Request, contentType, name string, data []byte) {
	filename := fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102"), name)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write export",
			slog.String("file", filename),
			slog.String("error", err.Error()))
	}
}
