package grpc

import (
	"context"

	"github.com/artci/feedback-api/internal/analytics"
	"github.com/artci/feedback-api/internal/repository/models"
)

type AnalyticsService interface {
	Summary(ctx context.Context, f analytics.Filter) (analytics.Summary, error)
	Criteria(ctx context.Context, f analytics.Filter) ([]analytics.CriterionStat, error)
	TimeSeries(ctx context.Context, f analytics.Filter, days int) ([]analytics.TimeSeriesPoint, error)
	Heatmap(ctx context.Context, f analytics.Filter) ([]analytics.HeatmapCell, error)
	CriteriaOverTime(ctx context.Context, f analytics.Filter, days int) ([]analytics.CriterionDayPoint, error)
	Dashboard(ctx context.Context, f analytics.Filter, days int) (analytics.Dashboard, error)
}

type FeedbackService interface {
	Get(ctx context.Context, id int64) (models.FeedbackRecord, error)
}
