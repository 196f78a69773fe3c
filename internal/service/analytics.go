package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/artci/feedback-api/internal/analytics"
	"github.com/artci/feedback-api/internal/metrics"
	"github.com/artci/feedback-api/internal/repository/models"
)

const (
	defaultStoreTimeout = 5 * time.Second
	allRecordsKey       = "feedback:all"
)

var (
	ErrFeedbackNotFound = errors.New("feedback not found")
	ErrStorageFailure   = errors.New("storage failure")
	ErrInvalidFeedback  = errors.New("invalid feedback")
)

// AnalyticsService reads every stored record once per request and derives
// the requested views from it. Nothing is cached between requests.
type AnalyticsService struct {
	storage      FeedbackReader
	logger       *zap.Logger
	now          func() time.Time
	storeTimeout time.Duration
	sfGroup      singleflight.Group
}

type AnalyticsOption func(*AnalyticsService)

// WithClock overrides the source of "now" used to anchor windows.
func WithClock(now func() time.Time) AnalyticsOption {
	return func(s *AnalyticsService) { s.now = now }
}

func WithStoreTimeout(d time.Duration) AnalyticsOption {
	return func(s *AnalyticsService) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// NewAnalyticsService creates a new AnalyticsService instance.
func NewAnalyticsService(storage FeedbackReader, logger *zap.Logger, opts ...AnalyticsOption) *AnalyticsService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	s := &AnalyticsService{
		storage:      storage,
		logger:       logger.Named("analytics"),
		now:          time.Now,
		storeTimeout: defaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// records fetches the full record set. Concurrent callers share one store
// read; the result is not kept after the read returns.
func (s *AnalyticsService) records(ctx context.Context) ([]models.FeedbackRecord, error) {
	ch := s.sfGroup.DoChan(allRecordsKey, func() (any, error) {
		dbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.storeTimeout)
		defer cancel()
		return s.storage.AllFeedback(dbCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.logger.Error("failed to load feedback", zap.Error(res.Err))
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, res.Err)
		}
		records := res.Val.([]models.FeedbackRecord)
		metrics.AnalyticsRecords.Observe(float64(len(records)))
		return records, nil
	}
}

// run loads records and times build under the view's name.
func run[T any](ctx context.Context, s *AnalyticsService, view string, build func([]models.FeedbackRecord) T) (T, error) {
	var zero T
	start := time.Now()

	records, err := s.records(ctx)
	if err != nil {
		return zero, err
	}
	out := build(records)

	elapsed := time.Since(start)
	metrics.AnalyticsDuration.WithLabelValues(view).Observe(elapsed.Seconds())
	s.logger.Debug("built analytics view",
		zap.String("view", view),
		zap.Int("records", len(records)),
		zap.Duration("elapsed", elapsed))

	return out, nil
}

func (s *AnalyticsService) Summary(ctx context.Context, f analytics.Filter) (analytics.Summary, error) {
	return run(ctx, s, "summary", func(recs []models.FeedbackRecord) analytics.Summary {
		return analytics.BuildSummary(recs, f)
	})
}

func (s *AnalyticsService) Criteria(ctx context.Context, f analytics.Filter) ([]analytics.CriterionStat, error) {
	return run(ctx, s, "criteria", func(recs []models.FeedbackRecord) []analytics.CriterionStat {
		return analytics.BuildCriteria(recs, f)
	})
}

func (s *AnalyticsService) TimeSeries(ctx context.Context, f analytics.Filter, days int) ([]analytics.TimeSeriesPoint, error) {
	now := s.now()
	return run(ctx, s, "time_series", func(recs []models.FeedbackRecord) []analytics.TimeSeriesPoint {
		return analytics.BuildTimeSeries(recs, f, now, days)
	})
}

func (s *AnalyticsService) Heatmap(ctx context.Context, f analytics.Filter) ([]analytics.HeatmapCell, error) {
	return run(ctx, s, "heatmap", func(recs []models.FeedbackRecord) []analytics.HeatmapCell {
		return analytics.BuildHeatmap(recs, f)
	})
}

func (s *AnalyticsService) CriteriaOverTime(ctx context.Context, f analytics.Filter, days int) ([]analytics.CriterionDayPoint, error) {
	now := s.now()
	return run(ctx, s, "criteria_over_time", func(recs []models.FeedbackRecord) []analytics.CriterionDayPoint {
		return analytics.BuildCriteriaOverTime(recs, f, now, days)
	})
}

// Dashboard computes every view from one store read and one scan.
func (s *AnalyticsService) Dashboard(ctx context.Context, f analytics.Filter, days int) (analytics.Dashboard, error) {
	now := s.now()
	return run(ctx, s, "dashboard", func(recs []models.FeedbackRecord) analytics.Dashboard {
		return analytics.BuildDashboard(recs, f, now, days)
	})
}
