package mocks

import (
	"context"
	"errors"

	"github.com/artci/feedback-api/internal/analytics"
	"github.com/artci/feedback-api/internal/repository/models"
)

// MockAnalyticsService is a mock implementation of the AnalyticsService
// interface for testing the transport layers. It uses function-based mocking
// for flexibility.
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

// MockFeedbackService is a mock implementation of the FeedbackService
// interface.
type MockFeedbackService struct {
	GetFunc func(ctx context.Context, id int64) (models.FeedbackRecord, error)
}

func (m *MockFeedbackService) Get(ctx context.Context, id int64) (models.FeedbackRecord, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return models.FeedbackRecord{}, errors.New("GetFunc not implemented")
}
