package http

import (
	"context"

	"disciplinedash/internal/presenter"
	"disciplinedash/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dataset and view operations the
// dashboard routes depend on
type DashboardServiceInterface interface {
	Status() domain.DatasetStatus
	Reload(ctx context.Context, reason string) (domain.DatasetStatus, error)

	Ranking(ctx context.Context, year string) (domain.RankingView, error)
	Trends(ctx context.Context, years, groups []string) (domain.TrendView, error)
	Disparities(ctx context.Context, year string) (domain.DisparityView, error)
	Summary(ctx context.Context, year string) (presenter.Summary, error)
}
