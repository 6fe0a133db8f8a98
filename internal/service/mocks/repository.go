package mocks

import (
	"context"
	"errors"

	"github.com/godilite/feedback-server/internal/repository/models"
)

// MockFeedbackRepository is a mock implementation of the FeedbackRepository interface
// for testing the service layer.
type MockFeedbackRepository struct {
	ListRatingRowsFunc func(ctx context.Context, companyID, branchID string) ([]models.RatingRow, error)
	ListFeedbackFunc   func(ctx context.Context, companyID, branchID string) ([]models.Feedback, error)
	ListOtherFunc      func(ctx context.Context, companyID, branchID string) ([]models.OtherRating, error)
	ListRatersFunc     func(ctx context.Context, companyID, branchID string) ([]models.Rater, error)
}

// ListRatingRows implements the FeedbackRepository interface
func (m *MockFeedbackRepository) ListRatingRows(ctx context.Context, companyID, branchID string) ([]models.RatingRow, error) {
	if m.ListRatingRowsFunc != nil {
		return m.ListRatingRowsFunc(ctx, companyID, branchID)
	}
	return nil, errors.New("ListRatingRowsFunc not implemented")
}

// ListFeedback implements the FeedbackRepository interface
func (m *MockFeedbackRepository) ListFeedback(ctx context.Context, companyID, branchID string) ([]models.Feedback, error) {
	if m.ListFeedbackFunc != nil {
		return m.ListFeedbackFunc(ctx, companyID, branchID)
	}
	return nil, errors.New("ListFeedbackFunc not implemented")
}

// ListOther implements the FeedbackRepository interface
func (m *MockFeedbackRepository) ListOther(ctx context.Context, companyID, branchID string) ([]models.OtherRating, error) {
	if m.ListOtherFunc != nil {
		return m.ListOtherFunc(ctx, companyID, branchID)
	}
	return nil, errors.New("ListOtherFunc not implemented")
}

// ListRaters implements the FeedbackRepository interface
func (m *MockFeedbackRepository) ListRaters(ctx context.Context, companyID, branchID string) ([]models.Rater, error) {
	if m.ListRatersFunc != nil {
		return m.ListRatersFunc(ctx, companyID, branchID)
	}
	return nil, errors.New("ListRatersFunc not implemented")
}

// MockCatalogRepository is a mock implementation of the CatalogRepository interface.
type MockCatalogRepository struct {
	ListServicePointsFunc        func(ctx context.Context, companyID string) ([]models.ServicePoint, error)
	GetServicePointFunc          func(ctx context.Context, companyID string, id int64) (models.ServicePoint, error)
	UpsertCriteriaBulkFunc       func(ctx context.Context, criteria []models.Criterion) ([]int64, error)
	LinkServicePointCriteriaFunc func(ctx context.Context, servicePointID int64, criteriaIDs []int64) error
}

func (m *MockCatalogRepository) ListServicePoints(ctx context.Context, companyID string) ([]models.ServicePoint, error) {
	if m.ListServicePointsFunc != nil {
		return m.ListServicePointsFunc(ctx, companyID)
	}
	return nil, errors.New("ListServicePointsFunc not implemented")
}

func (m *MockCatalogRepository) GetServicePoint(ctx context.Context, companyID string, id int64) (models.ServicePoint, error) {
	if m.GetServicePointFunc != nil {
		return m.GetServicePointFunc(ctx, companyID, id)
	}
	return models.ServicePoint{}, errors.New("GetServicePointFunc not implemented")
}

func (m *MockCatalogRepository) UpsertCriteriaBulk(ctx context.Context, criteria []models.Criterion) ([]int64, error) {
	if m.UpsertCriteriaBulkFunc != nil {
		return m.UpsertCriteriaBulkFunc(ctx, criteria)
	}
	return nil, errors.New("UpsertCriteriaBulkFunc not implemented")
}

func (m *MockCatalogRepository) LinkServicePointCriteria(ctx context.Context, servicePointID int64, criteriaIDs []int64) error {
	if m.LinkServicePointCriteriaFunc != nil {
		return m.LinkServicePointCriteriaFunc(ctx, servicePointID, criteriaIDs)
	}
	return errors.New("LinkServicePointCriteriaFunc not implemented")
}
