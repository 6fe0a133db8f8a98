package server

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// clientErrors are logged at warn level; they are the caller's fault.
var clientErrors = map[codes.Code]bool{
	codes.Canceled:           true,
	codes.InvalidArgument:    true,
	codes.NotFound:           true,
	codes.ResourceExhausted:  true,
	codes.FailedPrecondition: true,
}

// LoggingInterceptor creates a gRPC unary interceptor for request/response logging.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		client := "unknown"
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			client = p.Addr.String()
		}

		resp, err := handler(ctx, req)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("client_addr", client),
			zap.Duration("duration", time.Since(start)),
		}

		if err == nil {
			logger.Info("gRPC request completed", append(fields, zap.String("status_code", codes.OK.String()))...)
			return resp, nil
		}

		st, _ := status.FromError(err)
		fields = append(fields,
			zap.String("status_code", st.Code().String()),
			zap.String("status_message", st.Message()))
		if clientErrors[st.Code()] {
			logger.Warn("gRPC request rejected", fields...)
		} else {
			logger.Error("gRPC request failed", fields...)
		}
		return resp, err
	}
}

// RecoveryInterceptor converts a handler panic into codes.Internal.
func RecoveryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC handler panicked",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// RateLimitInterceptor rejects calls with codes.ResourceExhausted once the
// limiter has no tokens left.
func RateLimitInterceptor(limiter *rate.Limiter, onLimited func(method string)) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !limiter.Allow() {
			if onLimited != nil {
				onLimited(info.FullMethod)
			}
			return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded for %s", info.FullMethod)
		}
		return handler(ctx, req)
	}
}
