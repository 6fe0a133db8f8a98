package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/godilite/feedback-server/internal/repository/models"
	"github.com/godilite/feedback-server/internal/service"
	"github.com/godilite/feedback-server/internal/submission"
)

// MockDashboardService is a mock implementation of the DashboardService interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockDashboardService struct {
	OverviewFunc    func(ctx context.Context, companyID, branchID string) (service.Overview, error)
	EpisodesFunc    func(ctx context.Context, companyID, branchID string) ([]service.Episode, error)
	CommentsFunc    func(ctx context.Context, companyID, branchID string) ([]service.CommentGroup, error)
	SuggestionsFunc func(ctx context.Context, companyID, branchID string) ([]service.Suggestion, error)
	OtherFunc       func(ctx context.Context, companyID, branchID string) ([]models.OtherRating, error)
}

func (m *MockDashboardService) Overview(ctx context.Context, companyID, branchID string) (service.Overview, error) {
	if m.OverviewFunc != nil {
		return m.OverviewFunc(ctx, companyID, branchID)
	}
	return service.Overview{}, errors.New("OverviewFunc not implemented")
}

func (m *MockDashboardService) Episodes(ctx context.Context, companyID, branchID string) ([]service.Episode, error) {
	if m.EpisodesFunc != nil {
		return m.EpisodesFunc(ctx, companyID, branchID)
	}
	return nil, errors.New("EpisodesFunc not implemented")
}

func (m *MockDashboardService) Comments(ctx context.Context, companyID, branchID string) ([]service.CommentGroup, error) {
	if m.CommentsFunc != nil {
		return m.CommentsFunc(ctx, companyID, branchID)
	}
	return nil, errors.New("CommentsFunc not implemented")
}

func (m *MockDashboardService) Suggestions(ctx context.Context, companyID, branchID string) ([]service.Suggestion, error) {
	if m.SuggestionsFunc != nil {
		return m.SuggestionsFunc(ctx, companyID, branchID)
	}
	return nil, errors.New("SuggestionsFunc not implemented")
}

func (m *MockDashboardService) Other(ctx context.Context, companyID, branchID string) ([]models.OtherRating, error) {
	if m.OtherFunc != nil {
		return m.OtherFunc(ctx, companyID, branchID)
	}
	return nil, errors.New("OtherFunc not implemented")
}

type MockCatalogService struct {
	ServicePointsFunc  func(ctx context.Context, companyID string) ([]models.ServicePoint, error)
	ServicePointFunc   func(ctx context.Context, companyID string, id int64) (models.ServicePoint, error)
	UpsertCriteriaFunc func(ctx context.Context, companyID string, servicePointID int64, input []service.CriterionInput) ([]int64, error)
}

func (m *MockCatalogService) ServicePoints(ctx context.Context, companyID string) ([]models.ServicePoint, error) {
	if m.ServicePointsFunc != nil {
		return m.ServicePointsFunc(ctx, companyID)
	}
	return nil, errors.New("ServicePointsFunc not implemented")
}

func (m *MockCatalogService) ServicePoint(ctx context.Context, companyID string, id int64) (models.ServicePoint, error) {
	if m.ServicePointFunc != nil {
		return m.ServicePointFunc(ctx, companyID, id)
	}
	return models.ServicePoint{}, errors.New("ServicePointFunc not implemented")
}

func (m *MockCatalogService) UpsertCriteria(ctx context.Context, companyID string, servicePointID int64, input []service.CriterionInput) ([]int64, error) {
	if m.UpsertCriteriaFunc != nil {
		return m.UpsertCriteriaFunc(ctx, companyID, servicePointID, input)
	}
	return nil, errors.New("UpsertCriteriaFunc not implemented")
}

type MockSubmitter struct {
	SubmitFunc func(ctx context.Context, store submission.DraftStore) (submission.Result, error)
}

func (m *MockSubmitter) Submit(ctx context.Context, store submission.DraftStore) (submission.Result, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, store)
	}
	return submission.Result{}, errors.New("SubmitFunc not implemented")
}

// MockRecorder counts dashboard observations.
type MockRecorder struct {
	mu      sync.Mutex
	Fetches map[string]int
	Errors  map[string]int
	Hits    int
	Misses  int
}

func NewMockRecorder() *MockRecorder {
	return &MockRecorder{Fetches: map[string]int{}, Errors: map[string]int{}}
}

func (m *MockRecorder) ObserveDashboardFetch(op string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fetches[op]++
	if err != nil {
		m.Errors[op]++
	}
}

func (m *MockRecorder) CacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Hits++
}

func (m *MockRecorder) CacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Misses++
}
