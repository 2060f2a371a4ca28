package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"disciplinedash/internal/config"
	"disciplinedash/internal/dataprocessing"
	apierrors "disciplinedash/internal/errors"
	"disciplinedash/internal/files"
	"disciplinedash/internal/infrastructure"
	"disciplinedash/internal/presenter"
	"disciplinedash/internal/validation"
	"disciplinedash/pkg/contracts/domain"
)

// Reasons attached to dataset events
const (
	ReasonStartup    = "startup"
	ReasonReload     = "reload"
	ReasonFileChange = "file_change"
)

// Notifier receives dataset lifecycle transitions
type Notifier interface {
	BroadcastDataset(status domain.DatasetStatus, reason, traceID string)
}

// DashboardService owns the loaded rows and derives the dashboard views
type DashboardService struct {
	source    string
	loader    dataprocessing.LoaderOptions
	timeout   time.Duration
	analysis  config.AnalysisConfig
	presenter presenter.Config
	validator *validation.FileValidator
	notifier  Notifier
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger

	// loadMu serializes loads; mu guards the snapshot below
	loadMu  sync.Mutex
	mu      sync.RWMutex
	rows    []domain.Row
	status  domain.DatasetStatus
	lastErr error
}

// NewDashboardService creates the service in the empty state. notifier and
// metrics may be nil.
func NewDashboardService(cfg *config.Config, notifier Notifier, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DashboardService {
	logger = infrastructure.WithComponent(logger, "dashboard_service")

	loader := cfg.LoaderOptions()
	loader.Logger = logger

	return &DashboardService{
		source:    cfg.Data.Source,
		loader:    loader,
		timeout:   cfg.Data.LoadTimeout,
		analysis:  cfg.Analysis,
		presenter: presenter.ConfigFrom(cfg.Presenter, cfg.Analysis),
		validator: validation.NewFileValidator(logger).WithMaxSize(cfg.Data.MaxFileSize),
		notifier:  notifier,
		metrics:   metrics,
		logger:    logger,
		status: domain.DatasetStatus{
			State:  domain.DatasetStateEmpty,
			Source: cfg.Data.Source,
		},
	}
}

// Load reads the configured source and replaces the dataset. On failure the
// previous rows are dropped and the returned error wraps the cause.
func (s *DashboardService) Load(ctx context.Context, reason string) (domain.DatasetStatus, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	ctx = infrastructure.EnsureTraceID(ctx)
	traceID := infrastructure.GetTraceID(ctx)
	start := time.Now()

	s.logger.InfoContext(ctx, "Loading dataset",
		slog.String("source", s.source),
		slog.String("reason", reason))
	s.publish(s.setLoading(), reason, traceID)

	path, rows, err := s.read(ctx)
	duration := time.Since(start)
	if err != nil {
		status := s.setFailed(path, err)
		s.logger.ErrorContext(ctx, "Dataset load failed",
			slog.String("source", path),
			slog.String("reason", reason),
			slog.String("error", err.Error()),
			slog.Duration("duration", duration))
		infrastructure.RecordDatasetLoad(ctx, s.metrics, path, "failure", duration, 0)
		infrastructure.RecordSystemError(ctx, s.metrics, "dataset_load", "dashboard_service")
		s.publish(status, reason, traceID)
		return status, fmt.Errorf("failed to load dataset: %w", err)
	}

	status := s.setLoaded(path, rows, start, duration)
	s.logger.InfoContext(ctx, "Dataset loaded",
		slog.String("source", path),
		slog.String("reason", reason),
		slog.Int("rows", len(rows)),
		slog.Int("years", len(status.Years)),
		slog.Duration("duration", duration))
	infrastructure.RecordDatasetLoad(ctx, s.metrics, path, "success", duration, len(rows))
	s.publish(status, reason, traceID)
	return status, nil
}

// Reload is Load triggered after startup
func (s *DashboardService) Reload(ctx context.Context, reason string) (domain.DatasetStatus, error) {
	if reason == "" {
		reason = ReasonReload
	}
	return s.Load(ctx, reason)
}

func (s *DashboardService) read(ctx context.Context) (string, []domain.Row, error) {
	path, err := files.ResolveSource(s.source)
	if err != nil {
		return s.source, nil, apierrors.NewStorageError("failed to resolve data source", err)
	}
	if err := s.validator.ValidateSourceFile(path); err != nil {
		return path, nil, apierrors.NewStorageError("invalid data source", err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rows, err := dataprocessing.LoadFile(ctx, path, s.loader)
	if err != nil {
		return path, nil, err
	}
	return path, rows, nil
}

func (s *DashboardService) setLoading() domain.DatasetStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.State = domain.DatasetStateLoading
	return s.status
}

func (s *DashboardService) setFailed(path string, err error) domain.DatasetStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = nil
	s.lastErr = err
	s.status = domain.DatasetStatus{
		State:     domain.DatasetStateFailed,
		Source:    path,
		LastError: err.Error(),
	}
	return s.status
}

func (s *DashboardService) setLoaded(path string, rows []domain.Row, start time.Time, duration time.Duration) domain.DatasetStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	loadedAt := start.UTC()
	s.rows = rows
	s.lastErr = nil
	s.status = domain.DatasetStatus{
		State:       domain.DatasetStateLoaded,
		Source:      path,
		LoadedAt:    &loadedAt,
		Duration:    duration.String(),
		DatasetInfo: dataprocessing.Describe(rows),
	}
	return s.status
}

func (s *DashboardService) publish(status domain.DatasetStatus, reason, traceID string) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastDataset(status, reason, traceID)
}

// Status returns the current dataset state
func (s *DashboardService) Status() domain.DatasetStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Ready reports whether views can be served
func (s *DashboardService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows != nil
}

// snapshot returns the current rows, or an UNAVAILABLE error when no
// dataset is loaded
func (s *DashboardService) snapshot() ([]domain.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rows != nil {
		return s.rows, nil
	}
	if s.status.State == domain.DatasetStateFailed {
		return nil, apierrors.NewUnavailableError("dataset failed to load", s.lastErr).
			WithContext("source", s.status.Source)
	}
	return nil, apierrors.NewUnavailableError("dataset is not loaded yet", nil).
		WithContext("state", string(s.status.State))
}

// Rows returns the loaded rows. Callers must not modify the slice.
func (s *DashboardService) Rows(ctx context.Context) ([]domain.Row, error) {
	return s.snapshot()
}

// Ranking returns the ranking for year. An empty year uses the configured
// target year, then the latest year in the data.
func (s *DashboardService) Ranking(ctx context.Context, year string) (domain.RankingView, error) {
	rows, err := s.snapshot()
	if err != nil {
		return domain.RankingView{}, err
	}

	year = s.resolveYear(rows, year)
	infrastructure.RecordViewDerivation(ctx, s.metrics, "ranking")
	return domain.RankingView{
		Year:    year,
		Entries: dataprocessing.LatestYearRanking(rows, year),
	}, nil
}

// Trends returns the trend table. Empty years or groups fall back to the
// configured lists, then to every year or group in the data.
func (s *DashboardService) Trends(ctx context.Context, years, groups []string) (domain.TrendView, error) {
	rows, err := s.snapshot()
	if err != nil {
		return domain.TrendView{}, err
	}

	if len(years) == 0 {
		years = s.analysis.TrendYears
	}
	if len(years) == 0 {
		years = dataprocessing.Years(rows)
	}
	if len(groups) == 0 {
		groups = s.analysis.TrendGroups
	}
	if len(groups) == 0 {
		groups = dataprocessing.Groups(rows)
	}

	infrastructure.RecordViewDerivation(ctx, s.metrics, "trends")
	return domain.TrendView{
		Years:  years,
		Groups: groups,
		Points: dataprocessing.TrendTable(rows, years, groups),
	}, nil
}

// Disparities returns the disparity table for year
func (s *DashboardService) Disparities(ctx context.Context, year string) (domain.DisparityView, error) {
	rows, err := s.snapshot()
	if err != nil {
		return domain.DisparityView{}, err
	}

	year = s.resolveYear(rows, year)
	infrastructure.RecordViewDerivation(ctx, s.metrics, "disparities")
	return dataprocessing.Disparities(rows, year), nil
}

// Summary returns the narrative summary for year
func (s *DashboardService) Summary(ctx context.Context, year string) (presenter.Summary, error) {
	rows, err := s.snapshot()
	if err != nil {
		return presenter.Summary{}, err
	}

	infrastructure.RecordViewDerivation(ctx, s.metrics, "summary")
	return presenter.BuildSummary(rows, s.presenter, presenter.SummaryOptions{
		Year:        s.resolveYear(rows, year),
		TrendYears:  s.analysis.TrendYears,
		TrendGroups: s.analysis.TrendGroups,
	}), nil
}

func (s *DashboardService) resolveYear(rows []domain.Row, year string) string {
	if year != "" {
		return year
	}
	if s.analysis.TargetYear != "" {
		return s.analysis.TargetYear
	}
	return dataprocessing.LatestYear(rows)
}
