package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/artci/feedback-api/internal/analytics"
	"github.com/artci/feedback-api/internal/repository/models"
	"github.com/artci/feedback-api/internal/service/mocks"
)

var fixedNow = time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC)

func sampleRecords() []models.FeedbackRecord {
	return []models.FeedbackRecord{
		{ID: 1, Type: "mobile", Provider: "Orange", Ratings: json.RawMessage(`[{"c1":{"label":"Speed","rating":"3"}}]`), CreatedAt: time.Date(2025, 1, 9, 9, 0, 0, 0, time.UTC)},
		{ID: 2, Type: "fixe", Provider: "MTN", Ratings: json.RawMessage(`[{"c1":{"label":"Speed","rating":"1"}}]`), CreatedAt: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)},
	}
}

func TestNewAnalyticsService(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		repo := &mocks.MockFeedbackRepository{}

		svc := NewAnalyticsService(repo, zap.NewNop(), WithStoreTimeout(time.Minute))

		assert.NotNil(t, svc)
		assert.Equal(t, repo, svc.storage)
		assert.Equal(t, time.Minute, svc.storeTimeout)
	})

	t.Run("nil storage panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewAnalyticsService(nil, zap.NewNop())
		})
	})

	t.Run("nil logger gets default", func(t *testing.T) {
		svc := NewAnalyticsService(&mocks.MockFeedbackRepository{}, nil)
		assert.NotNil(t, svc.logger)
	})

	t.Run("non positive timeout keeps default", func(t *testing.T) {
		svc := NewAnalyticsService(&mocks.MockFeedbackRepository{}, zap.NewNop(), WithStoreTimeout(0))
		assert.Equal(t, defaultStoreTimeout, svc.storeTimeout)
	})
}

func TestAnalyticsService_Views(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.MockFeedbackRepository{
		AllFeedbackFunc: func(ctx context.Context) ([]models.FeedbackRecord, error) {
			_, ok := ctx.Deadline()
			assert.True(t, ok, "store call should carry a deadline")
			return sampleRecords(), nil
		},
	}
	svc := NewAnalyticsService(repo, zap.NewNop(), WithClock(func() time.Time { return fixedNow }))

	t.Run("summary", func(t *testing.T) {
		s, err := svc.Summary(ctx, analytics.Filter{})
		require.NoError(t, err)
		assert.Equal(t, 2, s.TotalFeedback)
		assert.Equal(t, analytics.Distribution{"1": 1, "2": 0, "3": 1, "4": 0}, s.RatingDistribution)
	})

	t.Run("criteria with filter", func(t *testing.T) {
		stats, err := svc.Criteria(ctx, analytics.Filter{Provider: "Orange"})
		require.NoError(t, err)
		require.Len(t, stats, 1)
		assert.Equal(t, 3.0, stats[0].Avg)
	})

	t.Run("time series anchored on the clock", func(t *testing.T) {
		points, err := svc.TimeSeries(ctx, analytics.Filter{}, 2)
		require.NoError(t, err)
		assert.Equal(t, []analytics.TimeSeriesPoint{
			{Date: "2025-01-09", Count: 1},
			{Date: "2025-01-10", Count: 1},
		}, points)
	})

	t.Run("heatmap", func(t *testing.T) {
		cells, err := svc.Heatmap(ctx, analytics.Filter{})
		require.NoError(t, err)
		assert.Len(t, cells, 168)
	})

	t.Run("criteria over time", func(t *testing.T) {
		points, err := svc.CriteriaOverTime(ctx, analytics.Filter{}, 2)
		require.NoError(t, err)
		assert.Equal(t, []analytics.CriterionDayPoint{
			{Date: "2025-01-09", Label: "Speed", Avg: 3},
			{Date: "2025-01-10", Label: "Speed", Avg: 1},
		}, points)
	})

	t.Run("dashboard", func(t *testing.T) {
		d, err := svc.Dashboard(ctx, analytics.Filter{Type: "fixe"}, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, d.Summary.TotalFeedback)
		assert.Len(t, d.TimeSeries, 2)
		assert.Len(t, d.Heatmap, 168)
	})
}

func TestAnalyticsService_StorageFailure(t *testing.T) {
	repo := &mocks.MockFeedbackRepository{
		AllFeedbackFunc: func(ctx context.Context) ([]models.FeedbackRecord, error) {
			return nil, errors.New("database connection failed")
		},
	}
	svc := NewAnalyticsService(repo, zap.NewNop())

	_, err := svc.Summary(context.Background(), analytics.Filter{})

	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.Contains(t, err.Error(), "database connection failed")
}

func TestAnalyticsService_CanceledContext(t *testing.T) {
	release := make(chan struct{})
	repo := &mocks.MockFeedbackRepository{
		AllFeedbackFunc: func(ctx context.Context) ([]models.FeedbackRecord, error) {
			<-release
			return nil, nil
		},
	}
	svc := NewAnalyticsService(repo, zap.NewNop())
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Heatmap(ctx, analytics.Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyticsService_CoalescesConcurrentReads(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	repo := &mocks.MockFeedbackRepository{
		AllFeedbackFunc: func(ctx context.Context) ([]models.FeedbackRecord, error) {
			calls.Add(1)
			<-release
			return sampleRecords(), nil
		},
	}
	svc := NewAnalyticsService(repo, zap.NewNop())

	const callers = 8
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	results := make([]int, callers)
	for i := range callers {
		go func() {
			defer done.Done()
			started.Done()
			s, err := svc.Summary(context.Background(), analytics.Filter{})
			assert.NoError(t, err)
			results[i] = s.TotalFeedback
		}()
	}
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(callers))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	for _, n := range results {
		assert.Equal(t, 2, n)
	}

	// nothing survives the call: a later request reads the store again
	before := calls.Load()
	_, err := svc.Summary(context.Background(), analytics.Filter{})
	require.NoError(t, err)
	assert.Equal(t, before+1, calls.Load())
}
