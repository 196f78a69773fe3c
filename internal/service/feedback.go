package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/artci/feedback-api/internal/metrics"
	"github.com/artci/feedback-api/internal/repository"
	"github.com/artci/feedback-api/internal/repository/models"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 1000
)

// FeedbackService records and retrieves individual submissions.
type FeedbackService struct {
	storage      FeedbackRepository
	logger       *zap.Logger
	now          func() time.Time
	storeTimeout time.Duration
}

type FeedbackOption func(*FeedbackService)

func WithFeedbackClock(now func() time.Time) FeedbackOption {
	return func(s *FeedbackService) { s.now = now }
}

func WithFeedbackStoreTimeout(d time.Duration) FeedbackOption {
	return func(s *FeedbackService) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

func NewFeedbackService(storage FeedbackRepository, logger *zap.Logger, opts ...FeedbackOption) *FeedbackService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	s := &FeedbackService{
		storage:      storage,
		logger:       logger.Named("feedback"),
		now:          time.Now,
		storeTimeout: defaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates in and stores it with the current UTC time.
func (s *FeedbackService) Create(ctx context.Context, in FeedbackInput) (models.FeedbackRecord, error) {
	if err := in.validate(); err != nil {
		return models.FeedbackRecord{}, err
	}
	ratings, err := in.ratingsPayload()
	if err != nil {
		return models.FeedbackRecord{}, fmt.Errorf("%w: %v", ErrInvalidFeedback, err)
	}

	dbCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	rec, err := s.storage.CreateFeedback(dbCtx, models.FeedbackRecord{
		Type:        strings.TrimSpace(in.Type),
		Provider:    in.Provider,
		Ratings:     ratings,
		NPerfTestID: in.NPerfTestID,
		Sector:      in.Sector,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to store feedback", zap.Error(err))
		return models.FeedbackRecord{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	metrics.FeedbackCreated.WithLabelValues(rec.Type).Inc()
	s.logger.Info("feedback stored",
		zap.Int64("id", rec.ID),
		zap.String("type", rec.Type),
		zap.String("provider", rec.Provider))

	return rec, nil
}

// List returns the newest records. limit <= 0 means DefaultListLimit.
func (s *FeedbackService) List(ctx context.Context, limit int) ([]models.FeedbackRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	dbCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	recs, err := s.storage.ListFeedback(dbCtx, limit)
	if err != nil {
		s.logger.Error("failed to list feedback", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return recs, nil
}

func (s *FeedbackService) Get(ctx context.Context, id int64) (models.FeedbackRecord, error) {
	dbCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	rec, err := s.storage.GetFeedback(dbCtx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.FeedbackRecord{}, fmt.Errorf("%w: id %d", ErrFeedbackNotFound, id)
		}
		s.logger.Error("failed to get feedback", zap.Int64("id", id), zap.Error(err))
		return models.FeedbackRecord{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return rec, nil
}

func (s *FeedbackService) CreateNPerfResult(ctx context.Context, in NPerfInput) (models.NPerfResult, error) {
	if err := in.validate(); err != nil {
		return models.NPerfResult{}, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	res, err := s.storage.CreateNPerfResult(dbCtx, models.NPerfResult{
		NPerfTestID:  strings.TrimSpace(in.NPerfTestID),
		ExternalUUID: in.ExternalUUID,
		Sector:       in.Sector,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to store nperf result", zap.Error(err))
		return models.NPerfResult{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("nperf result stored", zap.Int64("id", res.ID), zap.String("nperf_test_id", res.NPerfTestID))
	return res, nil
}
