package rest

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/artci/feedback-api/internal/analytics"
	"github.com/artci/feedback-api/internal/metrics"
	"github.com/artci/feedback-api/internal/repository/models"
	"github.com/artci/feedback-api/internal/service"
	"github.com/artci/feedback-api/internal/uploads"
)

const defaultDays = 30

type Handlers struct {
	analytics AnalyticsService
	feedback  FeedbackService
	uploader  Uploader
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandlers wires the JSON API. uploader may be nil, in which case
// /api/upload answers 503.
func NewHandlers(analyticsSvc AnalyticsService, feedback FeedbackService, uploader Uploader, logger *zap.Logger) *Handlers {
	if analyticsSvc == nil {
		panic("nil AnalyticsService provided to NewHandlers")
	}
	if feedback == nil {
		panic("nil FeedbackService provided to NewHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		analytics: analyticsSvc,
		feedback:  feedback,
		uploader:  uploader,
		logger:    logger.Named("http-handler"),
		now:       time.Now,
	}
}

func detail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"detail": msg})
}

// handleError maps service errors to HTTP responses.
func (h *Handlers) handleError(c *fiber.Ctx, op string, err error) error {
	switch {
	case errors.Is(err, service.ErrFeedbackNotFound):
		return detail(c, fiber.StatusNotFound, "Feedback not found")
	case errors.Is(err, service.ErrInvalidFeedback):
		return detail(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("request timed out", zap.String("op", op))
		return detail(c, fiber.StatusGatewayTimeout, "request timed out")
	case errors.Is(err, service.ErrStorageFailure):
		h.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return detail(c, fiber.StatusInternalServerError, "database error")
	default:
		h.logger.Error("request failed", zap.String("op", op), zap.Error(err))
		return detail(c, fiber.StatusInternalServerError, "internal error")
	}
}

func respond[T any](c *fiber.Ctx, h *Handlers, op string, call func(ctx context.Context) (T, error)) error {
	out, err := call(c.UserContext())
	if err != nil {
		return h.handleError(c, op, err)
	}
	return c.JSON(out)
}

func parseFilter(c *fiber.Ctx) analytics.Filter {
	return analytics.Filter{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Type:      c.Query("type"),
		Provider:  c.Query("provider"),
	}
}

// parseDays falls back to the default when days is absent or not an integer.
func parseDays(c *fiber.Ctx) int {
	return c.QueryInt("days", defaultDays)
}

func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handlers) CreateFeedback(c *fiber.Ctx) error {
	var in service.FeedbackInput
	if err := c.BodyParser(&in); err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}
	return respond(c, h, "CreateFeedback", func(ctx context.Context) (models.FeedbackRecord, error) {
		return h.feedback.Create(ctx, in)
	})
}

func (h *Handlers) ListFeedback(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", service.DefaultListLimit)
	return respond(c, h, "ListFeedback", func(ctx context.Context) ([]models.FeedbackRecord, error) {
		return h.feedback.List(ctx, limit)
	})
}

func (h *Handlers) GetFeedback(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return detail(c, fiber.StatusUnprocessableEntity, "id must be a positive integer")
	}
	return respond(c, h, "GetFeedback", func(ctx context.Context) (models.FeedbackRecord, error) {
		return h.feedback.Get(ctx, int64(id))
	})
}

func (h *Handlers) CreateNPerfResult(c *fiber.Ctx) error {
	var in service.NPerfInput
	if err := c.BodyParser(&in); err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}
	return respond(c, h, "CreateNPerfResult", func(ctx context.Context) (models.NPerfResult, error) {
		return h.feedback.CreateNPerfResult(ctx, in)
	})
}

func (h *Handlers) Summary(c *fiber.Ctx) error {
	f := parseFilter(c)
	return respond(c, h, "Summary", func(ctx context.Context) (analytics.Summary, error) {
		return h.analytics.Summary(ctx, f)
	})
}

func (h *Handlers) Criteria(c *fiber.Ctx) error {
	f := parseFilter(c)
	return respond(c, h, "Criteria", func(ctx context.Context) ([]analytics.CriterionStat, error) {
		return h.analytics.Criteria(ctx, f)
	})
}

func (h *Handlers) TimeSeries(c *fiber.Ctx) error {
	f, days := parseFilter(c), parseDays(c)
	return respond(c, h, "TimeSeries", func(ctx context.Context) ([]analytics.TimeSeriesPoint, error) {
		return h.analytics.TimeSeries(ctx, f, days)
	})
}

func (h *Handlers) Heatmap(c *fiber.Ctx) error {
	f := parseFilter(c)
	return respond(c, h, "Heatmap", func(ctx context.Context) ([]analytics.HeatmapCell, error) {
		return h.analytics.Heatmap(ctx, f)
	})
}

func (h *Handlers) CriteriaOverTime(c *fiber.Ctx) error {
	f, days := parseFilter(c), parseDays(c)
	return respond(c, h, "CriteriaOverTime", func(ctx context.Context) ([]analytics.CriterionDayPoint, error) {
		return h.analytics.CriteriaOverTime(ctx, f, days)
	})
}

func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	f, days := parseFilter(c), parseDays(c)
	return respond(c, h, "Dashboard", func(ctx context.Context) (analytics.Dashboard, error) {
		return h.analytics.Dashboard(ctx, f, days)
	})
}

// Upload stores the multipart "file" field under a timestamped safe name.
func (h *Handlers) Upload(c *fiber.Ctx) error {
	if h.uploader == nil {
		return detail(c, fiber.StatusServiceUnavailable, "uploads are disabled")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, "file is required")
	}

	f, err := fh.Open()
	if err != nil {
		return h.handleError(c, "Upload", err)
	}
	defer f.Close()

	backend := h.uploader.Backend()
	name := uploads.ObjectName(h.now(), fh.Filename)
	url, err := h.uploader.Save(c.UserContext(), name, f, fh.Header.Get(fiber.HeaderContentType))
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(backend, "error").Inc()
		return h.handleError(c, "Upload", err)
	}
	metrics.UploadsTotal.WithLabelValues(backend, "ok").Inc()

	h.logger.Info("upload stored",
		zap.String("filename", name),
		zap.String("backend", backend),
		zap.Int64("size", fh.Size))
	return c.JSON(fiber.Map{"filename": name, "url": url})
}
