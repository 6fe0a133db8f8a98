package grpc

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/godilite/feedback-server/api/v1"
	"github.com/godilite/feedback-server/internal/draft"
	"github.com/godilite/feedback-server/internal/repository"
	"github.com/godilite/feedback-server/internal/scoring"
	"github.com/godilite/feedback-server/internal/service"
	"github.com/godilite/feedback-server/internal/submission"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
)

type CacheKeyType string

const (
	cacheKeyOverview    CacheKeyType = "grpc:overview"
	cacheKeyEpisodes    CacheKeyType = "grpc:episodes"
	cacheKeyComments    CacheKeyType = "grpc:comments"
	cacheKeySuggestions CacheKeyType = "grpc:suggestions"
	cacheKeyOther       CacheKeyType = "grpc:other"
)

var dashboardKeys = []CacheKeyType{cacheKeyOverview, cacheKeyEpisodes, cacheKeyComments, cacheKeySuggestions, cacheKeyOther}

type GRPCHandlers struct {
	pb.UnimplementedFeedbackServer
	sessions  SessionManager
	submitter Submitter
	catalog   CatalogService
	dashboard DashboardService
	cache     Cacher
	recorder  Recorder
	logger    *zap.Logger
	sfGroup   singleflight.Group
	gens      generations
	cacheTTL  time.Duration
	fallback  []string
}

type Option func(*GRPCHandlers)

func WithCacheTTL(ttl time.Duration) Option {
	return func(h *GRPCHandlers) {
		if ttl > 0 {
			h.cacheTTL = ttl
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(h *GRPCHandlers) {
		if r != nil {
			h.recorder = r
		}
	}
}

// WithFallbackCriteria sets the criteria offered by service points with an empty catalog.
func WithFallbackCriteria(names []string) Option {
	return func(h *GRPCHandlers) {
		if len(names) > 0 {
			h.fallback = slices.Clone(names)
		}
	}
}

// NewGRPCHandlers initializes the gRPC handlers.
func NewGRPCHandlers(
	sessions SessionManager,
	submitter Submitter,
	catalog CatalogService,
	dashboard DashboardService,
	cache Cacher,
	logger *zap.Logger,
	opts ...Option,
) *GRPCHandlers {
	if sessions == nil || submitter == nil || catalog == nil || dashboard == nil {
		panic("nil service provided to NewGRPCHandlers")
	}
	if cache == nil {
		panic("nil Cacher provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &GRPCHandlers{
		sessions:  sessions,
		submitter: submitter,
		catalog:   catalog,
		dashboard: dashboard,
		cache:     cache,
		recorder:  noopRecorder{},
		logger:    logger.Named("grpc-handler"),
		cacheTTL:  defaultCacheDuration,
		fallback:  scoring.DefaultFallbackCriteria,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (s *GRPCHandlers) readThrough() readThrough {
	return readThrough{
		cache:    s.cache,
		sf:       &s.sfGroup,
		gens:     &s.gens,
		ttl:      s.cacheTTL,
		logger:   s.logger,
		recorder: s.recorder,
	}
}

func normalizeKey(prefix CacheKeyType, companyID, branchID string) string {
	return fmt.Sprintf("%s:%s:%s", prefix, companyID, branchID)
}

func invalidArgument(err error) bool {
	for _, target := range []error{
		draft.ErrSessionRequired,
		scoring.ErrInvalidScore,
		scoring.ErrUnknownCriterion,
		scoring.ErrIncompleteOther,
		scoring.ErrNoServicePoint,
		scoring.ErrUnscoredCriteria,
		scoring.ErrOtherSubflow,
		submission.ErrValidation,
		service.ErrInvalidCatalog,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
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
	case invalidArgument(err):
		s.logger.Info("rejected request", zap.String("op", op), zap.Error(err))
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrNoRatings):
		s.logger.Info("no ratings found", zap.String("op", op))
		return status.Error(codes.NotFound, "no ratings found")
	case errors.Is(err, repository.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, submission.ErrIdentityWrite):
		s.logger.Error("identity write failed", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Unavailable, "submission failed, please try again")
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

type noopRecorder struct{}

func (noopRecorder) ObserveDashboardFetch(string, time.Duration, error) {}
func (noopRecorder) CacheHit()                                          {}
func (noopRecorder) CacheMiss()                                         {}
