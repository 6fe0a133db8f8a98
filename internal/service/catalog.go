package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/godilite/feedback-server/internal/repository"
	"github.com/godilite/feedback-server/internal/repository/models"
)

var ErrInvalidCatalog = errors.New("invalid catalog input")

// CatalogService manages service points and the criteria attached to them.
type CatalogService struct {
	storage  CatalogRepository
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCatalogService(storage CatalogRepository, logger *zap.Logger) *CatalogService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{storage: storage, validate: validator.New(), logger: logger.Named("catalog")}
}

func (s *CatalogService) ServicePoints(ctx context.Context, companyID string) ([]models.ServicePoint, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	points, err := s.storage.ListServicePoints(dbCtx, companyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return points, nil
}

// ServicePoint returns one service point of the company; an unknown id wraps
// repository.ErrNotFound.
func (s *CatalogService) ServicePoint(ctx context.Context, companyID string, id int64) (models.ServicePoint, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	sp, err := s.storage.GetServicePoint(dbCtx, companyID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.ServicePoint{}, err
	}
	if err != nil {
		return models.ServicePoint{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return sp, nil
}

// UpsertCriteria creates or updates criteria by title and links them to the
// service point. It returns the criterion ids in input order.
func (s *CatalogService) UpsertCriteria(ctx context.Context, companyID string, servicePointID int64, input []CriterionInput) ([]int64, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("%w: no criteria", ErrInvalidCatalog)
	}
	criteria := make([]models.Criterion, 0, len(input))
	for _, in := range input {
		in.Title = strings.TrimSpace(in.Title)
		if err := s.validate.Struct(in); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
		criteria = append(criteria, models.Criterion{Title: in.Title, IsRequired: in.IsRequired, DisplayOrder: in.DisplayOrder})
	}

	if _, err := s.ServicePoint(ctx, companyID, servicePointID); err != nil {
		return nil, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	ids, err := s.storage.UpsertCriteriaBulk(dbCtx, criteria)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if err := s.storage.LinkServicePointCriteria(dbCtx, servicePointID, ids); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("upserted criteria", zap.String("company", companyID), zap.Int64("service_point", servicePointID), zap.Int("count", len(ids)))
	return ids, nil
}
