package grpc

import (
	"context"
	"time"

	"github.com/godilite/feedback-server/internal/draft"
	"github.com/godilite/feedback-server/internal/repository/models"
	"github.com/godilite/feedback-server/internal/service"
	"github.com/godilite/feedback-server/internal/submission"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

type SessionManager interface {
	Start(ctx context.Context, hints draft.Hints) (*draft.Store, error)
	Open(ctx context.Context, sessionID string) (*draft.Store, error)
}

type Submitter interface {
	Submit(ctx context.Context, store submission.DraftStore) (submission.Result, error)
}

type CatalogService interface {
	ServicePoints(ctx context.Context, companyID string) ([]models.ServicePoint, error)
	ServicePoint(ctx context.Context, companyID string, id int64) (models.ServicePoint, error)
	UpsertCriteria(ctx context.Context, companyID string, servicePointID int64, input []service.CriterionInput) ([]int64, error)
}

type DashboardService interface {
	Overview(ctx context.Context, companyID, branchID string) (service.Overview, error)
	Episodes(ctx context.Context, companyID, branchID string) ([]service.Episode, error)
	Comments(ctx context.Context, companyID, branchID string) ([]service.CommentGroup, error)
	Suggestions(ctx context.Context, companyID, branchID string) ([]service.Suggestion, error)
	Other(ctx context.Context, companyID, branchID string) ([]models.OtherRating, error)
}

// Recorder observes dashboard reads.
type Recorder interface {
	ObserveDashboardFetch(op string, elapsed time.Duration, err error)
	CacheHit()
	CacheMiss()
}
