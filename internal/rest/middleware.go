package rest

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artci/feedback-api/internal/metrics"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger logs every request and echoes an X-Request-ID, generating
// one when the client sent none.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		fields := []zap.Field{
			zap.String("request_id", id),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error("http request", append(fields, zap.Error(err))...)
		} else {
			logger.Info("http request", fields...)
		}
		return err
	}
}

// RateLimit rejects requests over the limiter's budget for the client IP.
// Limiter errors let the request through.
func RateLimit(limiter RateLimiter, route string, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := limiter.Allow(c.UserContext(), c.IP())
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.String("route", route), zap.Error(err))
			return c.Next()
		}
		if !ok {
			metrics.RateLimited.WithLabelValues(route).Inc()
			logger.Warn("rate limit exceeded", zap.String("route", route), zap.String("ip", c.IP()))
			return detail(c, fiber.StatusTooManyRequests, "rate limit exceeded, try again later")
		}
		return c.Next()
	}
}

// errorHandler renders errors that escape handlers, such as unknown routes.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	}
	return detail(c, code, msg)
}
