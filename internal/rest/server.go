package rest

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/artci/feedback-api/internal/metrics"
)

const defaultBodyLimit = 10 << 20

// pages maps fixed routes to files under the static directory.
var pages = map[string]string{
	"/index.html":                "index.html",
	"/dashboard":                 "dashboard.html",
	"/a-propos-android":          "a-propos-android.html",
	"/a-propos-huawei":           "a-propos-huawei.html",
	"/a-propos-ios":              "a-propos-ios.html",
	"/cgu-eula":                  "cgu-eula.html",
	"/politique-confidentialite": "politique-confidentialite.html",
	"/politique-cookies":         "politique-cookies.html",
}

type Option func(*Options)

type Options struct {
	logger       *zap.Logger
	staticDir    string
	uploadDir    string
	limiter      RateLimiter
	bodyLimit    int
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

// WithStaticDir serves the UI pages and assets from dir.
func WithStaticDir(dir string) Option {
	return func(o *Options) {
		o.staticDir = dir
	}
}

// WithUploadDir serves locally stored uploads under /uploads.
func WithUploadDir(dir string) Option {
	return func(o *Options) {
		o.uploadDir = dir
	}
}

// WithUploadLimiter rate limits /api/upload per client IP.
func WithUploadLimiter(l RateLimiter) Option {
	return func(o *Options) {
		o.limiter = l
	}
}

func WithBodyLimit(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.bodyLimit = n
		}
	}
}

func WithTimeouts(read, write time.Duration) Option {
	return func(o *Options) {
		o.readTimeout = read
		o.writeTimeout = write
	}
}

type Server struct {
	app    *fiber.App
	logger *zap.Logger
}

// New builds the fiber app with the JSON API, metrics and static hosting.
func New(h *Handlers, opts ...Option) *Server {
	options := &Options{
		logger:       zap.NewNop(),
		bodyLimit:    defaultBodyLimit,
		readTimeout:  30 * time.Second,
		writeTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http-server")

	app := fiber.New(fiber.Config{
		AppName:               "feedback-api",
		Immutable:             true,
		BodyLimit:             options.bodyLimit,
		ReadTimeout:           options.readTimeout,
		WriteTimeout:          options.writeTimeout,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(RequestLogger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, " + RequestIDHeader,
		AllowMethods: "GET, POST, OPTIONS",
	}))

	api := app.Group("/api")
	api.Get("/health", h.Health)

	api.Post("/feedback", h.CreateFeedback)
	api.Get("/feedback", h.ListFeedback)
	api.Get("/feedback/:id", h.GetFeedback)
	api.Post("/nperf/results", h.CreateNPerfResult)

	stats := api.Group("/analytics")
	stats.Get("/summary", h.Summary)
	stats.Get("/criteria", h.Criteria)
	stats.Get("/time_series", h.TimeSeries)
	stats.Get("/heatmap", h.Heatmap)
	stats.Get("/criteria_over_time", h.CriteriaOverTime)
	stats.Get("/dashboard", h.Dashboard)

	if options.limiter != nil {
		api.Post("/upload", RateLimit(options.limiter, "upload", logger), h.Upload)
	} else {
		api.Post("/upload", h.Upload)
	}

	app.Get("/metrics", metrics.MetricsHandler())

	if options.uploadDir != "" {
		app.Static("/uploads", options.uploadDir)
	}
	if options.staticDir != "" {
		registerPages(app, options.staticDir, logger)
	}

	return &Server{app: app, logger: logger}
}

func registerPages(app *fiber.App, dir string, logger *zap.Logger) {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	} else {
		logger.Warn("cannot resolve static dir", zap.String("dir", dir), zap.Error(err))
	}

	for route, file := range pages {
		path := filepath.Join(dir, file)
		app.Get(route, func(c *fiber.Ctx) error {
			return c.SendFile(path)
		})
	}

	ciPerf := filepath.Join(dir, "ci-perf.html")
	app.Get("/ci-perf", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderXFrameOptions, "ALLOWALL")
		return c.SendFile(ciPerf)
	})

	favicon := filepath.Join(dir, "images", "favicon.ico")
	app.Get("/favicon.ico", func(c *fiber.Ctx) error {
		if _, err := os.Stat(favicon); err != nil {
			return detail(c, fiber.StatusNotFound, "favicon not found")
		}
		return c.SendFile(favicon)
	})

	app.Static("/", dir, fiber.Static{Index: "index.html"})
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on addr in a goroutine and returns immediately.
func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.Serve(lis)
	return nil
}

// Serve accepts connections on lis in a goroutine.
func (s *Server) Serve(lis net.Listener) {
	s.logger.Info("HTTP server starting", zap.String("addr", lis.Addr().String()))

	go func() {
		if err := s.app.Listener(lis); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		s.logger.Warn("forced shutdown due to timeout", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
