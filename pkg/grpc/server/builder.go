package server

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	health "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type Option func(*Options)

type Options struct {
	port              int
	logger            *zap.Logger
	reflection        bool
	unaryInterceptors []grpc.UnaryServerInterceptor
	enableLogging     bool
	enableRecovery    bool
	limit             rate.Limit
	burst             int
	onLimited         func(method string)
}

// WithPort sets the TCP port. Port 0 picks a free port.
func WithPort(port int) Option {
	return func(o *Options) {
		o.port = port
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

func WithReflection(enabled bool) Option {
	return func(o *Options) {
		o.reflection = enabled
	}
}

func WithUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) Option {
	return func(o *Options) {
		o.unaryInterceptors = append(o.unaryInterceptors, interceptors...)
	}
}

func WithLogging(enabled bool) Option {
	return func(o *Options) {
		o.enableLogging = enabled
	}
}

// WithRecovery turns handler panics into codes.Internal errors.
func WithRecovery(enabled bool) Option {
	return func(o *Options) {
		o.enableRecovery = enabled
	}
}

// WithRateLimit admits rps requests per second with the given burst across
// all methods. onLimited, when set, is called with the rejected method.
func WithRateLimit(rps float64, burst int, onLimited func(method string)) Option {
	return func(o *Options) {
		if rps <= 0 {
			return
		}
		o.limit = rate.Limit(rps)
		o.burst = max(burst, 1)
		o.onLimited = onLimited
	}
}

type Server struct {
	grpcServer   *grpc.Server
	lis          net.Listener
	logger       *zap.Logger
	healthServer *health.Server
}

// New creates a new gRPC server using the builder options.
func New(opts ...Option) (*Server, error) {
	options := &Options{
		port:       50051,
		logger:     zap.NewNop(),
		reflection: false,
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.port < 0 || options.port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be between 0 and 65535", options.port)
	}

	logger := options.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", options.port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", options.port, err)
	}

	// Recovery wraps everything so a panic in any later interceptor is caught too.
	var interceptors []grpc.UnaryServerInterceptor
	if options.enableRecovery {
		interceptors = append(interceptors, RecoveryInterceptor(logger))
	}
	if options.enableLogging {
		interceptors = append(interceptors, LoggingInterceptor(logger))
	}
	if options.limit > 0 {
		limiter := rate.NewLimiter(options.limit, options.burst)
		interceptors = append(interceptors, RateLimitInterceptor(limiter, options.onLimited))
	}
	interceptors = append(interceptors, options.unaryInterceptors...)

	serverOpts := []grpc.ServerOption{}
	if len(interceptors) > 0 {
		serverOpts = append(serverOpts, grpc.ChainUnaryInterceptor(interceptors...))
	}

	grpcServer := grpc.NewServer(serverOpts...)

	if options.reflection {
		reflection.Register(grpcServer)
	}

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return &Server{
		grpcServer:   grpcServer,
		lis:          lis,
		logger:       logger.Named("grpc-server"),
		healthServer: healthServer,
	}, nil
}

// RegisterServiceWithHealth registers a service and sets its health status.
func (s *Server) RegisterServiceWithHealth(serviceName string, registerFunc func(s grpc.ServiceRegistrar)) {
	registerFunc(s.grpcServer)

	if serviceName != "" {
		s.healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
		s.logger.Info("registered service with health check", zap.String("service", serviceName))
	}
}

// SetServiceHealth updates the health status of a specific service.
func (s *Server) SetServiceHealth(serviceName string, status healthpb.HealthCheckResponse_ServingStatus) {
	s.healthServer.SetServingStatus(serviceName, status)
	s.logger.Info("updated service health",
		zap.String("service", serviceName),
		zap.String("status", status.String()))
}

// Start runs the server in a goroutine and returns immediately.
func (s *Server) Start() {
	s.logger.Info("gRPC server starting", zap.String("addr", s.lis.Addr().String()))

	go func() {
		if err := s.grpcServer.Serve(s.lis); err != nil {
			s.logger.Error("gRPC server failed", zap.Error(err))
		}
	}()
}

// Shutdown marks every service NOT_SERVING and drains in-flight calls. When
// ctx expires first the remaining calls are cut off.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("gRPC server shutting down")
	s.healthServer.Shutdown()

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

// Addr returns the server's listening address.
func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
