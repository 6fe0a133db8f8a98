package service

import (
	"context"

	"github.com/godilite/feedback-server/internal/repository/models"
)

// FeedbackRepository is the read side the dashboard aggregates over.
type FeedbackRepository interface {
	ListRatingRows(ctx context.Context, companyID, branchID string) ([]models.RatingRow, error)
	ListFeedback(ctx context.Context, companyID, branchID string) ([]models.Feedback, error)
	ListOther(ctx context.Context, companyID, branchID string) ([]models.OtherRating, error)
	ListRaters(ctx context.Context, companyID, branchID string) ([]models.Rater, error)
}

type CatalogRepository interface {
	ListServicePoints(ctx context.Context, companyID string) ([]models.ServicePoint, error)
	GetServicePoint(ctx context.Context, companyID string, id int64) (models.ServicePoint, error)
	UpsertCriteriaBulk(ctx context.Context, criteria []models.Criterion) ([]int64, error)
	LinkServicePointCriteria(ctx context.Context, servicePointID int64, criteriaIDs []int64) error
}
