package service

import (
	"context"

	"github.com/artci/feedback-api/internal/repository/models"
)

// FeedbackReader is the read side the analytics service needs.
type FeedbackReader interface {
	AllFeedback(ctx context.Context) ([]models.FeedbackRecord, error)
}

// FeedbackRepository defines the storage operations used by the services.
type FeedbackRepository interface {
	FeedbackReader
	CreateFeedback(ctx context.Context, rec models.FeedbackRecord) (models.FeedbackRecord, error)
	ListFeedback(ctx context.Context, limit int) ([]models.FeedbackRecord, error)
	GetFeedback(ctx context.Context, id int64) (models.FeedbackRecord, error)
	CreateNPerfResult(ctx context.Context, res models.NPerfResult) (models.NPerfResult, error)
}
