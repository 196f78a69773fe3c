package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FeedbackCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_created_total",
			Help: "Total feedback records created",
		},
		[]string{"type"},
	)

	AnalyticsDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedback_analytics_duration_seconds",
			Help:    "Time to build an analytics view, store read included",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"view"},
	)

	AnalyticsRecords = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedback_analytics_records",
			Help:    "Number of stored records scanned per analytics request",
			Buckets: prometheus.ExponentialBuckets(10, 10, 6),
		},
	)

	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_uploads_total",
			Help: "Total attachment uploads",
		},
		[]string{"backend", "status"},
	)

	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)

	GRPCRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_grpc_requests_total",
			Help: "Total gRPC requests by method and code",
		},
		[]string{"method", "code"},
	)
)

var once sync.Once

// Init registers every collector with the default registry. Safe to call
// more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(FeedbackCreated)
		prometheus.MustRegister(AnalyticsDuration)
		prometheus.MustRegister(AnalyticsRecords)
		prometheus.MustRegister(UploadsTotal)
		prometheus.MustRegister(RateLimited)
		prometheus.MustRegister(GRPCRequests)
	})
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
