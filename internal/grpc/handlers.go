package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/artci/feedback-api/internal/analytics"
	"github.com/artci/feedback-api/internal/repository/models"
	"github.com/artci/feedback-api/internal/service"
)

const defaultGRPCTimeout = 10 * time.Second

type GRPCHandlers struct {
	analytics AnalyticsService
	feedback  FeedbackService
	logger    *zap.Logger
	timeout   time.Duration
}

var _ FeedbackAnalyticsServer = (*GRPCHandlers)(nil)

// NewGRPCHandlers initializes the gRPC handlers.
func NewGRPCHandlers(analyticsSvc AnalyticsService, feedback FeedbackService, logger *zap.Logger) *GRPCHandlers {
	if analyticsSvc == nil {
		panic("nil AnalyticsService provided to NewGRPCHandlers")
	}
	if feedback == nil {
		panic("nil FeedbackService provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandlers{
		analytics: analyticsSvc,
		feedback:  feedback,
		logger:    logger.Named("grpc-handler"),
		timeout:   defaultGRPCTimeout,
	}
}

func stringField(req *structpb.Struct, key string) string {
	v, ok := req.GetFields()[key]
	if !ok {
		return ""
	}
	if s, ok := v.GetKind().(*structpb.Value_StringValue); ok {
		return s.StringValue
	}
	return ""
}

// intField reads a whole number given as a JSON number or a numeric string.
func intField(req *structpb.Struct, key string) (int64, bool) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, false
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int64(n), true
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(k.StringValue, 10, 64)
		return n, err == nil
	}
	return 0, false
}

func parseFilter(req *structpb.Struct) analytics.Filter {
	return analytics.Filter{
		StartDate: stringField(req, "start_date"),
		EndDate:   stringField(req, "end_date"),
		Type:      stringField(req, "type"),
		Provider:  stringField(req, "provider"),
	}
}

// parseDays falls back to the default window when days is absent or
// malformed.
func parseDays(req *structpb.Struct) int {
	if n, ok := intField(req, "days"); ok {
		return int(n)
	}
	return analytics.DefaultWindowDays
}

// toValue converts a result to a protobuf Value through its JSON form so both
// transports share field names.
func toValue(v any) (*structpb.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Value)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrFeedbackNotFound):
		s.logger.Info("feedback not found", zap.String("op", op))
		return status.Error(codes.NotFound, "Feedback not found")
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

// respond runs fetch under the handler timeout and converts its result.
func respond[T any](ctx context.Context, s *GRPCHandlers, op string, fetch func(ctx context.Context) (T, error)) (*structpb.Value, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := fetch(ctx)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}

	out, err := toValue(result)
	if err != nil {
		s.logger.Error("failed to encode response", zap.String("op", op), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "%s failed: encode response", op)
	}
	return out, nil
}

func (s *GRPCHandlers) Summary(ctx context.Context, req *structpb.Struct) (*structpb.Value, error) {
	f := parseFilter(req)
	return respond(ctx, s, "Summary", func(ctx context.Context) (analytics.Summary, error) {
		return s.analytics.Summary(ctx, f)
	})
}

func (s *GRPCHandlers) Criteria(ctx context.Context, req *structpb.Struct) (*structpb.Value, error) {
	f := parseFilter(req)
	return respond(ctx, s, "Criteria", func(ctx context.Context) ([]analytics.CriterionStat, error) {
		return s.analytics.Criteria(ctx, f)
	})
}

func (s *GRPCHandlers) TimeSeries(ctx context.Context, req *structpb.Struct) (*structpb.Value, error) {
	f, days := parseFilter(req), parseDays(req)
	return respond(ctx, s, "TimeSeries", func(ctx context.Context) ([]analytics.TimeSeriesPoint, error) {
		return s.analytics.TimeSeries(ctx, f, days)
	})
}

func (s *GRPCHandlers) Heatmap(ctx context.Context, req *structpb.Struct) (*structpb.Value, error) {
	f := parseFilter(req)
	return respond(ctx, s, "Heatmap", func(ctx context.Context) ([]analytics.HeatmapCell, error) {
		return s.analytics.Heatmap(ctx, f)
	})
}

func (s *GRPCHandlers) CriteriaOverTime(ctx context.Context, req *structpb.Struct) (*structpb.Value, error) {
	f, days := parseFilter(req), parseDays(req)
	return respond(ctx, s, "CriteriaOverTime", func(ctx context.Context) ([]analytics.CriterionDayPoint, error) {
		return s.analytics.CriteriaOverTime(ctx, f, days)
	})
}

func (s *GRPCHandlers) Dashboard(ctx context.Context, req *structpb.Struct) (*structpb.Value, error) {
	f, days := parseFilter(req), parseDays(req)
	return respond(ctx, s, "Dashboard", func(ctx context.Context) (analytics.Dashboard, error) {
		return s.analytics.Dashboard(ctx, f, days)
	})
}

func (s *GRPCHandlers) GetFeedback(ctx context.Context, req *structpb.Struct) (*structpb.Value, error) {
	id, ok := intField(req, "id")
	if !ok || id < 1 {
		return nil, status.Error(codes.InvalidArgument, "id must be a positive integer")
	}
	return respond(ctx, s, "GetFeedback", func(ctx context.Context) (models.FeedbackRecord, error) {
		return s.feedback.Get(ctx, id)
	})
}
