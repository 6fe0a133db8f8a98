package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/feedback-server/internal/repository/models"
)

const (
	dbTimeout = 1 * time.Second
)

var (
	ErrNoRatings      = errors.New("no ratings found")
	ErrStorageFailure = errors.New("storage failure")
)

// DashboardService aggregates a company branch's raw feedback for display.
type DashboardService struct {
	storage FeedbackRepository
	catalog CatalogRepository
	logger  *zap.Logger
}

// NewDashboardService creates a new DashboardService instance.
func NewDashboardService(storage FeedbackRepository, catalog CatalogRepository, logger *zap.Logger) *DashboardService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if catalog == nil {
		panic("catalog must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &DashboardService{
		storage: storage,
		catalog: catalog,
		logger:  logger.Named("dashboard"),
	}
}

func (s *DashboardService) ratingRows(ctx context.Context, companyID, branchID string) ([]models.RatingRow, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.ListRatingRows(dbCtx, companyID, branchID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return rows, nil
}

func (s *DashboardService) feedback(ctx context.Context, companyID, branchID string) ([]models.Feedback, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.ListFeedback(dbCtx, companyID, branchID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return rows, nil
}

// Episodes returns rating episodes, newest first.
func (s *DashboardService) Episodes(ctx context.Context, companyID, branchID string) ([]Episode, error) {
	rows, err := s.ratingRows(ctx, companyID, branchID)
	if err != nil {
		return nil, err
	}
	episodes := GroupEpisodes(rows)

	s.logger.Debug("grouped episodes",
		zap.String("company", companyID),
		zap.String("branch", branchID),
		zap.Int("rows", len(rows)),
		zap.Int("episodes", len(episodes)))
	return episodes, nil
}

// Comments returns grouped comments tagged with their rating's service point.
func (s *DashboardService) Comments(ctx context.Context, companyID, branchID string) ([]CommentGroup, error) {
	feedback, err := s.feedback(ctx, companyID, branchID)
	if err != nil {
		return nil, err
	}
	rows, err := s.ratingRows(ctx, companyID, branchID)
	if err != nil {
		s.logger.Warn("comments without service points", zap.Error(err))
		rows = nil
	}
	return GroupComments(feedback, rows), nil
}

func (s *DashboardService) Suggestions(ctx context.Context, companyID, branchID string) ([]Suggestion, error) {
	feedback, err := s.feedback(ctx, companyID, branchID)
	if err != nil {
		return nil, err
	}
	return Suggestions(feedback), nil
}

func (s *DashboardService) Other(ctx context.Context, companyID, branchID string) ([]models.OtherRating, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.ListOther(dbCtx, companyID, branchID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return MeaningfulOther(rows), nil
}

// ServicePointAverage returns the one-decimal mean score of a service point.
// It fails with ErrNoRatings when the service point has no numeric score.
func (s *DashboardService) ServicePointAverage(ctx context.Context, companyID, branchID, servicePoint string) (float64, error) {
	rows, err := s.ratingRows(ctx, companyID, branchID)
	if err != nil {
		return 0, err
	}
	for _, r := range rowsForServicePoint(rows, servicePoint) {
		if r.Score != nil {
			return ServicePointAverage(rows, servicePoint), nil
		}
	}
	return 0, ErrNoRatings
}

// Overview reads every dashboard source independently. A failing source is
// reported in Overview.Errors while the others still contribute; only when
// every source fails is ErrStorageFailure returned.
func (s *DashboardService) Overview(ctx context.Context, companyID, branchID string) (Overview, error) {
	out := Overview{Distribution: Distribution(nil)}
	failures := 0
	fail := func(source string, err error) {
		failures++
		out.Errors = append(out.Errors, SourceError{Source: source, Message: err.Error()})
		s.logger.Error("dashboard source failed",
			zap.String("source", source),
			zap.String("company", companyID),
			zap.String("branch", branchID),
			zap.Error(err))
	}

	rows, err := s.ratingRows(ctx, companyID, branchID)
	if err != nil {
		fail("ratings", err)
	}
	feedback, err := s.feedback(ctx, companyID, branchID)
	if err != nil {
		fail("feedback", err)
	}

	raterCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	raters, err := s.storage.ListRaters(raterCtx, companyID, branchID)
	cancel()
	if err != nil {
		fail("raters", err)
	}

	catalogCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	points, err := s.catalog.ListServicePoints(catalogCtx, companyID)
	cancel()
	if err != nil {
		fail("service_points", err)
	}

	if failures == 4 {
		return out, fmt.Errorf("%w: every dashboard source failed", ErrStorageFailure)
	}

	comments := GroupComments(feedback, rows)
	out.GlobalAverage = GlobalAverage(rows)
	out.Distribution = Distribution(rows)
	out.TotalRatings = len(rows)
	out.TotalEpisodes = len(GroupEpisodes(rows))
	out.TotalComments = len(comments)
	out.TotalSuggestions = len(Suggestions(feedback))
	out.ServicePoints = ServicePointBreakdown(points, rows, comments)
	out.Engagement = EngagementOf(raters)
	for _, sp := range points {
		if sp.IsActive {
			out.ActiveServicePoints++
		}
	}

	s.logger.Info("built dashboard overview",
		zap.String("company", companyID),
		zap.String("branch", branchID),
		zap.Float64("global_average", out.GlobalAverage),
		zap.Int("ratings", out.TotalRatings),
		zap.Int("failed_sources", failures))
	return out, nil
}
