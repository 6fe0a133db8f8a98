package grpc_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/godilite/feedback-server/api/v1"
	"github.com/godilite/feedback-server/internal/draft"
	"github.com/godilite/feedback-server/internal/grpc"
	"github.com/godilite/feedback-server/internal/metrics"
	"github.com/godilite/feedback-server/internal/repository"
	"github.com/godilite/feedback-server/internal/repository/models"
	"github.com/godilite/feedback-server/internal/service"
	"github.com/godilite/feedback-server/internal/submission"
	"github.com/godilite/feedback-server/pkg/cache/cachetest"
	"github.com/godilite/feedback-server/pkg/database"
)

type stack struct {
	handler *grpc.GRPCHandlers
	catalog *repository.CatalogRepository
	metrics *metrics.Manager
	cache   *cachetest.Memory
	db      *sql.DB
}

func setupStack(t *testing.T) *stack {
	t.Helper()

	db, err := database.New(
		database.WithDataSource(":memory:"),
		database.WithMaxOpenConns(1),
		database.WithBootstrap(repository.Schema...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := &stack{catalog: repository.NewCatalogRepository(db), cache: cachetest.NewMemory(), db: db}
	s.restart()
	return s
}

// restart replaces every in-process component while keeping the database and
// the shared cache, as a redeployed instance would.
func (s *stack) restart() {
	logger := zap.NewNop()
	ratings := repository.NewRatingRepository(s.db)
	catalogRepo := repository.NewCatalogRepository(s.db)
	m := metrics.NewManager()
	cache := s.cache

	s.handler = grpc.NewGRPCHandlers(
		draft.NewManager(cache, logger),
		submission.NewDispatcher(ratings, logger, submission.WithRecorder(m), submission.WithResetDelay(time.Minute)),
		service.NewCatalogService(catalogRepo, logger),
		service.NewDashboardService(ratings, catalogRepo, logger),
		cache,
		logger,
		grpc.WithRecorder(m),
		grpc.WithCacheTTL(time.Minute),
	)
	s.metrics = m
}

func TestFlow_SubmitAndDashboard(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	spID, err := s.catalog.CreateServicePoint(ctx, models.ServicePoint{CompanyID: "acme", Name: "Front Desk", Department: "Reception", IsActive: true})
	require.NoError(t, err)

	optional := false
	_, err = s.handler.UpsertCriteria(ctx, &pb.UpsertCriteriaRequest{
		CompanyId:      "acme",
		ServicePointId: spID,
		Criteria: []*pb.CriterionInput{
			{Title: "Speed", DisplayOrder: 1},
			{Title: "Courtesy", DisplayOrder: 2},
			{Title: "Music", IsRequired: &optional, DisplayOrder: 3},
		},
	})
	require.NoError(t, err)

	started, err := s.handler.StartSession(ctx, &pb.StartSessionRequest{CompanyId: "acme", BranchId: "north"})
	require.NoError(t, err)
	id := started.Draft.SessionId

	_, err = s.handler.SetIdentity(ctx, &pb.SetIdentityRequest{SessionId: id, Name: "Ada", Phone: "0800123"})
	require.NoError(t, err)
	resp, err := s.handler.SelectServicePoint(ctx, &pb.SelectServicePointRequest{SessionId: id, ServicePointId: spID})
	require.NoError(t, err)
	require.Len(t, resp.Criteria, 4)

	for name, score := range map[string]int32{"Speed": 4, "Courtesy": 2} {
		_, err = s.handler.ToggleCriterion(ctx, &pb.ToggleCriterionRequest{SessionId: id, Criterion: name})
		require.NoError(t, err)
		_, err = s.handler.RateCriterion(ctx, &pb.RateCriterionRequest{SessionId: id, Criterion: name, Score: score})
		require.NoError(t, err)
	}
	_, err = s.handler.AttachComment(ctx, &pb.AttachCommentRequest{SessionId: id, Criterion: "Courtesy", Text: "rude at the desk"})
	require.NoError(t, err)
	_, err = s.handler.CaptureOther(ctx, &pb.CaptureOtherRequest{SessionId: id, Label: "Parking", Score: 1, Reason: "no spaces"})
	require.NoError(t, err)
	_, err = s.handler.SetSuggestion(ctx, &pb.SetSuggestionRequest{SessionId: id, Suggestion: "more chairs"})
	require.NoError(t, err)

	submitted, err := s.handler.Submit(ctx, &pb.SessionRequest{SessionId: id})
	require.NoError(t, err)
	assert.Equal(t, "both", submitted.Path)
	assert.NotZero(t, submitted.RatingId)
	assert.Empty(t, submitted.Notices)
	for _, step := range submitted.Steps {
		assert.Equal(t, "ok", step.Status, step.Step)
	}

	again, err := s.handler.Submit(ctx, &pb.SessionRequest{SessionId: id})
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, submitted.SubmissionKey, again.SubmissionKey)

	req := &pb.DashboardRequest{CompanyId: "acme", BranchId: "north"}

	overview, err := s.handler.GetOverview(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, overview.Errors)
	assert.Equal(t, int64(1), overview.TotalEpisodes)
	assert.Equal(t, int64(2), overview.TotalRatings)
	assert.Equal(t, 3.0, overview.GlobalAverage)
	assert.Equal(t, int64(1), overview.Distribution[4])
	assert.Equal(t, int64(1), overview.Engagement.Both)

	episodes, err := s.handler.ListEpisodes(ctx, req)
	require.NoError(t, err)
	require.Len(t, episodes.Episodes, 1)
	assert.Equal(t, "Front Desk", episodes.Episodes[0].ServicePoint)
	assert.Equal(t, "Ada", episodes.Episodes[0].UserName)

	comments, err := s.handler.ListComments(ctx, req)
	require.NoError(t, err)
	require.Len(t, comments.Comments, 1)
	assert.Equal(t, "Front Desk", comments.Comments[0].ServicePoint)
	assert.Equal(t, submitted.RatingId, comments.Comments[0].RatingId)

	suggestions, err := s.handler.ListSuggestions(ctx, req)
	require.NoError(t, err)
	require.Len(t, suggestions.Suggestions, 1)
	assert.Equal(t, "more chairs", suggestions.Suggestions[0].Text)

	other, err := s.handler.ListOther(ctx, req)
	require.NoError(t, err)
	require.Len(t, other.Other, 1)
	assert.Equal(t, "Parking", other.Other[0].Criteria)
	assert.Equal(t, "Front Desk", other.Other[0].Department)

	series, err := testutil.GatherAndCount(s.metrics.Registry(), "feedback_submission_dispatched_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series, "one path label for one dispatched submission")
}

func TestFlow_OtherBranchIsolated(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	_, err := s.handler.GetOverview(ctx, &pb.DashboardRequest{CompanyId: "acme", BranchId: "south"})
	require.NoError(t, err)

	episodes, err := s.handler.ListEpisodes(ctx, &pb.DashboardRequest{CompanyId: "acme", BranchId: "south"})
	require.NoError(t, err)
	assert.Empty(t, episodes.Episodes)
}

func TestFlow_EmptyDraftIsRejected(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	started, err := s.handler.StartSession(ctx, &pb.StartSessionRequest{CompanyId: "acme"})
	require.NoError(t, err)
	_, err = s.handler.SetIdentity(ctx, &pb.SetIdentityRequest{SessionId: started.Draft.SessionId, Name: "Ada"})
	require.NoError(t, err)

	_, err = s.handler.Submit(ctx, &pb.SessionRequest{SessionId: started.Draft.SessionId})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestFlow_ResubmitAfterRestartWritesOnce(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	spID, err := s.catalog.CreateServicePoint(ctx, models.ServicePoint{CompanyID: "acme", Name: "Front Desk", IsActive: true})
	require.NoError(t, err)
	_, err = s.handler.UpsertCriteria(ctx, &pb.UpsertCriteriaRequest{
		CompanyId: "acme", ServicePointId: spID,
		Criteria: []*pb.CriterionInput{{Title: "Speed", DisplayOrder: 1}},
	})
	require.NoError(t, err)

	started, err := s.handler.StartSession(ctx, &pb.StartSessionRequest{CompanyId: "acme"})
	require.NoError(t, err)
	id := started.Draft.SessionId

	_, err = s.handler.SetIdentity(ctx, &pb.SetIdentityRequest{SessionId: id, Name: "Ada"})
	require.NoError(t, err)
	_, err = s.handler.SelectServicePoint(ctx, &pb.SelectServicePointRequest{SessionId: id, ServicePointId: spID})
	require.NoError(t, err)
	_, err = s.handler.ToggleCriterion(ctx, &pb.ToggleCriterionRequest{SessionId: id, Criterion: "Speed"})
	require.NoError(t, err)
	_, err = s.handler.RateCriterion(ctx, &pb.RateCriterionRequest{SessionId: id, Criterion: "Speed", Score: 5})
	require.NoError(t, err)
	_, err = s.handler.SetSuggestion(ctx, &pb.SetSuggestionRequest{SessionId: id, Suggestion: "more chairs"})
	require.NoError(t, err)

	first, err := s.handler.Submit(ctx, &pb.SessionRequest{SessionId: id})
	require.NoError(t, err)

	// the draft, with its submission key, is still cached when the new instance takes over
	s.restart()

	second, err := s.handler.Submit(ctx, &pb.SessionRequest{SessionId: id})
	require.NoError(t, err)
	assert.False(t, second.Replayed, "the new instance has no memory of the first submit")
	assert.Equal(t, first.SubmissionKey, second.SubmissionKey)
	assert.Equal(t, first.RatingId, second.RatingId)

	for table, want := range map[string]int{"users": 1, "ratings": 1, "feedback": 1} {
		var count int
		require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&count))
		assert.Equal(t, want, count, table)
	}
}
