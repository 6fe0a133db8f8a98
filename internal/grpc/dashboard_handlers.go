package grpc

import (
	"context"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/godilite/feedback-server/api/v1"
	"github.com/godilite/feedback-server/internal/service"
)

// dashboardRead serves one dashboard source through the read-through cache.
// Filters are applied by the caller on the cached, unfiltered value.
func dashboardRead[T any](
	ctx context.Context,
	s *GRPCHandlers,
	op string,
	prefix CacheKeyType,
	req *pb.DashboardRequest,
	fn func(ctx context.Context, companyID, branchID string) (T, error),
) (T, error) {
	var zero T
	companyID := strings.TrimSpace(req.GetCompanyId())
	if companyID == "" {
		return zero, status.Error(codes.InvalidArgument, "company id is required")
	}
	branchID := strings.TrimSpace(req.GetBranchId())

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	started := time.Now()
	value, err := FindAndCache(ctx, s.readThrough(), normalizeKey(prefix, companyID, branchID), func(fetchCtx context.Context) (T, error) {
		return fn(fetchCtx, companyID, branchID)
	})
	s.recorder.ObserveDashboardFetch(op, time.Since(started), err)
	if err != nil {
		return zero, s.handleError(ctx, op, err)
	}
	return value, nil
}

func (s *GRPCHandlers) GetOverview(ctx context.Context, req *pb.DashboardRequest) (*pb.OverviewResponse, error) {
	overview, err := dashboardRead(ctx, s, "GetOverview", cacheKeyOverview, req, s.dashboard.Overview)
	if err != nil {
		return nil, err
	}
	return toProtoOverview(overview), nil
}

func (s *GRPCHandlers) ListEpisodes(ctx context.Context, req *pb.DashboardRequest) (*pb.EpisodesResponse, error) {
	episodes, err := dashboardRead(ctx, s, "ListEpisodes", cacheKeyEpisodes, req, s.dashboard.Episodes)
	if err != nil {
		return nil, err
	}
	episodes = service.FilterByCriterion(episodes, req.Criterion)
	episodes = service.FilterByServicePoint(episodes, req.ServicePoint)
	episodes = service.FilterBySearch(episodes, req.Search)
	return &pb.EpisodesResponse{Episodes: toProtoEpisodes(episodes)}, nil
}

func (s *GRPCHandlers) ListComments(ctx context.Context, req *pb.DashboardRequest) (*pb.CommentsResponse, error) {
	comments, err := dashboardRead(ctx, s, "ListComments", cacheKeyComments, req, s.dashboard.Comments)
	if err != nil {
		return nil, err
	}
	comments = service.FilterCommentsByServicePoint(comments, req.ServicePoint)
	comments = service.FilterBySearch(comments, req.Search)
	return &pb.CommentsResponse{Comments: toProtoComments(comments)}, nil
}

func (s *GRPCHandlers) ListSuggestions(ctx context.Context, req *pb.DashboardRequest) (*pb.SuggestionsResponse, error) {
	suggestions, err := dashboardRead(ctx, s, "ListSuggestions", cacheKeySuggestions, req, s.dashboard.Suggestions)
	if err != nil {
		return nil, err
	}
	suggestions = service.FilterBySearch(suggestions, req.Search)
	return &pb.SuggestionsResponse{Suggestions: toProtoSuggestions(suggestions)}, nil
}

func (s *GRPCHandlers) ListOther(ctx context.Context, req *pb.DashboardRequest) (*pb.OtherResponse, error) {
	other, err := dashboardRead(ctx, s, "ListOther", cacheKeyOther, req, s.dashboard.Other)
	if err != nil {
		return nil, err
	}
	other = service.FilterBySearch(other, req.Search)
	return &pb.OtherResponse{Other: toProtoOther(other)}, nil
}

func (s *GRPCHandlers) ListServicePoints(ctx context.Context, req *pb.ListServicePointsRequest) (*pb.ListServicePointsResponse, error) {
	companyID := strings.TrimSpace(req.GetCompanyId())
	if companyID == "" {
		return nil, status.Error(codes.InvalidArgument, "company id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	points, err := s.catalog.ServicePoints(ctx, companyID)
	if err != nil {
		return nil, s.handleError(ctx, "ListServicePoints", err)
	}
	out := make([]*pb.ServicePoint, len(points))
	for i, sp := range points {
		out[i] = toProtoServicePoint(sp)
	}
	return &pb.ListServicePointsResponse{ServicePoints: out}, nil
}

// UpsertCriteria creates or updates catalog criteria of a service point.
// Criteria without an explicit IsRequired are required.
func (s *GRPCHandlers) UpsertCriteria(ctx context.Context, req *pb.UpsertCriteriaRequest) (*pb.UpsertCriteriaResponse, error) {
	companyID := strings.TrimSpace(req.GetCompanyId())
	if companyID == "" {
		return nil, status.Error(codes.InvalidArgument, "company id is required")
	}

	input := make([]service.CriterionInput, 0, len(req.Criteria))
	for _, c := range req.Criteria {
		if c == nil {
			continue
		}
		required := true
		if c.IsRequired != nil {
			required = *c.IsRequired
		}
		input = append(input, service.CriterionInput{
			Title:        c.Title,
			IsRequired:   required,
			DisplayOrder: int(c.DisplayOrder),
		})
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	ids, err := s.catalog.UpsertCriteria(ctx, companyID, req.ServicePointId, input)
	if err != nil {
		return nil, s.handleError(ctx, "UpsertCriteria", err)
	}
	return &pb.UpsertCriteriaResponse{Ids: ids}, nil
}

