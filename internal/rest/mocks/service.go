package mocks

import (
	"context"
	"errors"
	"io"

	"github.com/artci/feedback-api/internal/analytics"
	"github.com/artci/feedback-api/internal/repository/models"
	"github.com/artci/feedback-api/internal/service"
)

// MockAnalyticsService is a function-field mock of the analytics service
// used by the HTTP handlers.
type MockAnalyticsService struct {
	SummaryFunc          func(ctx context.Context, f analytics.Filter) (analytics.Summary, error)
	CriteriaFunc         func(ctx context.Context, f analytics.Filter) ([]analytics.CriterionStat, error)
	TimeSeriesFunc       func(ctx context.Context, f analytics.Filter, days int) ([]analytics.TimeSeriesPoint, error)
	HeatmapFunc          func(ctx context.Context, f analytics.Filter) ([]analytics.HeatmapCell, error)
	CriteriaOverTimeFunc func(ctx context.Context, f analytics.Filter, days int) ([]analytics.CriterionDayPoint, error)
	DashboardFunc        func(ctx context.Context, f analytics.Filter, days int) (analytics.Dashboard, error)
}

func (m *MockAnalyticsService) Summary(ctx context.Context, f analytics.Filter) (analytics.Summary, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, f)
	}
	return analytics.Summary{}, errors.New("SummaryFunc not implemented")
}

func (m *MockAnalyticsService) Criteria(ctx context.Context, f analytics.Filter) ([]analytics.CriterionStat, error) {
	if m.CriteriaFunc != nil {
		return m.CriteriaFunc(ctx, f)
	}
	return nil, errors.New("CriteriaFunc not implemented")
}

func (m *MockAnalyticsService) TimeSeries(ctx context.Context, f analytics.Filter, days int) ([]analytics.TimeSeriesPoint, error) {
	if m.TimeSeriesFunc != nil {
		return m.TimeSeriesFunc(ctx, f, days)
	}
	return nil, errors.New("TimeSeriesFunc not implemented")
}

func (m *MockAnalyticsService) Heatmap(ctx context.Context, f analytics.Filter) ([]analytics.HeatmapCell, error) {
	if m.HeatmapFunc != nil {
		return m.HeatmapFunc(ctx, f)
	}
	return nil, errors.New("HeatmapFunc not implemented")
}

func (m *MockAnalyticsService) CriteriaOverTime(ctx context.Context, f analytics.Filter, days int) ([]analytics.CriterionDayPoint, error) {
	if m.CriteriaOverTimeFunc != nil {
		return m.CriteriaOverTimeFunc(ctx, f, days)
	}
	return nil, errors.New("CriteriaOverTimeFunc not implemented")
}

func (m *MockAnalyticsService) Dashboard(ctx context.Context, f analytics.Filter, days int) (analytics.Dashboard, error) {
	if m.DashboardFunc != nil {
		return m.DashboardFunc(ctx, f, days)
	}
	return analytics.Dashboard{}, errors.New("DashboardFunc not implemented")
}

type MockFeedbackService struct {
	CreateFunc            func(ctx context.Context, in service.FeedbackInput) (models.FeedbackRecord, error)
	ListFunc              func(ctx context.Context, limit int) ([]models.FeedbackRecord, error)
	GetFunc               func(ctx context.Context, id int64) (models.FeedbackRecord, error)
	CreateNPerfResultFunc func(ctx context.Context, in service.NPerfInput) (models.NPerfResult, error)
}

func (m *MockFeedbackService) Create(ctx context.Context, in service.FeedbackInput) (models.FeedbackRecord, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return models.FeedbackRecord{}, errors.New("CreateFunc not implemented")
}

func (m *MockFeedbackService) List(ctx context.Context, limit int) ([]models.FeedbackRecord, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit)
	}
	return nil, errors.New("ListFunc not implemented")
}

func (m *MockFeedbackService) Get(ctx context.Context, id int64) (models.FeedbackRecord, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return models.FeedbackRecord{}, errors.New("GetFunc not implemented")
}

func (m *MockFeedbackService) CreateNPerfResult(ctx context.Context, in service.NPerfInput) (models.NPerfResult, error) {
	if m.CreateNPerfResultFunc != nil {
		return m.CreateNPerfResultFunc(ctx, in)
	}
	return models.NPerfResult{}, errors.New("CreateNPerfResultFunc not implemented")
}

type MockUploader struct {
	SaveFunc func(ctx context.Context, name string, body io.Reader, contentType string) (string, error)
	Name     string
}

func (m *MockUploader) Save(ctx context.Context, name string, body io.Reader, contentType string) (string, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, name, body, contentType)
	}
	return "", errors.New("SaveFunc not implemented")
}

func (m *MockUploader) Backend() string {
	if m.Name == "" {
		return "mock"
	}
	return m.Name
}

type MockRateLimiter struct {
	AllowFunc func(ctx context.Context, key string) (bool, error)
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, key)
	}
	return true, nil
}
