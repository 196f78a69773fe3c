package mocks

import (
	"context"
	"errors"

	"github.com/artci/feedback-api/internal/repository/models"
)

// MockFeedbackRepository is a mock implementation of the FeedbackRepository
// interface for testing the service layer.
type MockFeedbackRepository struct {
	AllFeedbackFunc       func(ctx context.Context) ([]models.FeedbackRecord, error)
	CreateFeedbackFunc    func(ctx context.Context, rec models.FeedbackRecord) (models.FeedbackRecord, error)
	ListFeedbackFunc      func(ctx context.Context, limit int) ([]models.FeedbackRecord, error)
	GetFeedbackFunc       func(ctx context.Context, id int64) (models.FeedbackRecord, error)
	CreateNPerfResultFunc func(ctx context.Context, res models.NPerfResult) (models.NPerfResult, error)
}

func (m *MockFeedbackRepository) AllFeedback(ctx context.Context) ([]models.FeedbackRecord, error) {
	if m.AllFeedbackFunc != nil {
		return m.AllFeedbackFunc(ctx)
	}
	return nil, errors.New("AllFeedbackFunc not implemented")
}

func (m *MockFeedbackRepository) CreateFeedback(ctx context.Context, rec models.FeedbackRecord) (models.FeedbackRecord, error) {
	if m.CreateFeedbackFunc != nil {
		return m.CreateFeedbackFunc(ctx, rec)
	}
	return models.FeedbackRecord{}, errors.New("CreateFeedbackFunc not implemented")
}

func (m *MockFeedbackRepository) ListFeedback(ctx context.Context, limit int) ([]models.FeedbackRecord, error) {
	if m.ListFeedbackFunc != nil {
		return m.ListFeedbackFunc(ctx, limit)
	}
	return nil, errors.New("ListFeedbackFunc not implemented")
}

func (m *MockFeedbackRepository) GetFeedback(ctx context.Context, id int64) (models.FeedbackRecord, error) {
	if m.GetFeedbackFunc != nil {
		return m.GetFeedbackFunc(ctx, id)
	}
	return models.FeedbackRecord{}, errors.New("GetFeedbackFunc not implemented")
}

func (m *MockFeedbackRepository) CreateNPerfResult(ctx context.Context, res models.NPerfResult) (models.NPerfResult, error) {
	if m.CreateNPerfResultFunc != nil {
		return m.CreateNPerfResultFunc(ctx, res)
	}
	return models.NPerfResult{}, errors.New("CreateNPerfResultFunc not implemented")
}
