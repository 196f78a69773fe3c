package rest

import (
	"context"
	"io"

	"github.com/artci/feedback-api/internal/analytics"
	"github.com/artci/feedback-api/internal/repository/models"
	"github.com/artci/feedback-api/internal/service"
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
	Create(ctx context.Context, in service.FeedbackInput) (models.FeedbackRecord, error)
	List(ctx context.Context, limit int) ([]models.FeedbackRecord, error)
	Get(ctx context.Context, id int64) (models.FeedbackRecord, error)
	CreateNPerfResult(ctx context.Context, in service.NPerfInput) (models.NPerfResult, error)
}

type Uploader interface {
	Save(ctx context.Context, name string, body io.Reader, contentType string) (string, error)
	Backend() string
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
