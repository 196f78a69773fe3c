package server

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	health "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const defaultPort = 50051

type Option func(*options)

type options struct {
	port         int
	listener     net.Listener
	logger       *zap.Logger
	reflection   bool
	interceptors []grpc.UnaryServerInterceptor
}

func WithPort(port int) Option {
	return func(o *options) { o.port = port }
}

// WithListener serves on lis instead of opening a TCP port.
func WithListener(lis net.Listener) Option {
	return func(o *options) { o.listener = lis }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithReflection(enabled bool) Option {
	return func(o *options) { o.reflection = enabled }
}

// WithUnaryInterceptors chains interceptors after the request logger.
func WithUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) Option {
	return func(o *options) { o.interceptors = append(o.interceptors, interceptors...) }
}

// Server is a gRPC server with the standard health service attached.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	lis        net.Listener
	logger     *zap.Logger
}

func New(opts ...Option) (*Server, error) {
	o := &options{port: defaultPort}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	lis := o.listener
	if lis == nil {
		// port 0 picks a free port
		if o.port < 0 || o.port > 65535 {
			return nil, fmt.Errorf("invalid port %d: must be between 0 and 65535", o.port)
		}
		var err error
		lis, err = net.Listen("tcp", fmt.Sprintf(":%d", o.port))
		if err != nil {
			return nil, fmt.Errorf("failed to listen on port %d: %w", o.port, err)
		}
	}

	chain := append([]grpc.UnaryServerInterceptor{LoggingInterceptor(o.logger)}, o.interceptors...)
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))
	if o.reflection {
		reflection.Register(grpcServer)
	}

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return &Server{
		grpcServer: grpcServer,
		health:     hs,
		lis:        lis,
		logger:     o.logger.Named("grpc-server"),
	}, nil
}

// Register installs a service and reports it SERVING on the health service.
func (s *Server) Register(serviceName string, register func(*grpc.Server)) {
	register(s.grpcServer)
	if serviceName != "" {
		s.health.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
		s.logger.Info("registered service", zap.String("service", serviceName))
	}
}

// Start serves in the background and returns immediately.
func (s *Server) Start() {
	s.logger.Info("gRPC server starting", zap.String("addr", s.lis.Addr().String()))
	go func() {
		if err := s.grpcServer.Serve(s.lis); err != nil {
			s.logger.Error("gRPC server failed", zap.Error(err))
		}
	}()
}

// Shutdown marks every service NOT_SERVING, then drains in-flight calls
// until ctx expires and stops hard after that.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("gRPC server stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("forced shutdown due to timeout")
		s.grpcServer.Stop()
		return ctx.Err()
	}
}

func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
