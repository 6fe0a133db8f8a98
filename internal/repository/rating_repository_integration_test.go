package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/feedback-server/internal/repository"
	"github.com/godilite/feedback-server/internal/repository/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// each :memory: connection is a separate database
	db.SetMaxOpenConns(1)

	require.NoError(t, repository.Migrate(context.Background(), db))
	t.Cleanup(func() { db.Close() })
	return db
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestRatingRepository_UpsertUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRatingRepository(setupTestDB(t))

	in := models.User{SubmissionKey: "k-1", Name: "Ada", CompanyID: "c1", BranchID: "b1", UserPath: "rating_only"}
	first, err := repo.UpsertUser(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Equal(t, "Ada", first.Name)

	in.Name = "Changed"
	second, err := repo.UpsertUser(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Ada", second.Name, "first write wins")

	other, err := repo.UpsertUser(ctx, models.User{SubmissionKey: "k-2", Phone: "555", CompanyID: "c1", UserPath: "suggestion_only"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	_, err = repo.UpsertUser(ctx, models.User{CompanyID: "c1"})
	assert.Error(t, err)
}

func TestRatingRepository_EpisodeRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	ts := time.Date(2025, 10, 18, 10, 0, 0, 0, time.UTC)
	repo := repository.NewRatingRepository(db, repository.WithClock(fixedClock(ts)))

	user, err := repo.UpsertUser(ctx, models.User{SubmissionKey: "k", Name: "Ada", Phone: "555", CompanyID: "c1", BranchID: "b1", UserPath: "both"})
	require.NoError(t, err)

	ratingID, err := repo.InsertRatingEpisode(ctx, models.EpisodeInput{
		CompanyID:    "c1",
		BranchID:     "b1",
		UserID:       user.ID,
		ServicePoint: "Teller",
		Ratings: []models.CriterionScore{
			{Title: "Speed", Score: 5},
			{Title: "Courtesy", Score: 4},
		},
	})
	require.NoError(t, err)
	assert.NotZero(t, ratingID)

	rows, err := repo.ListRatingRows(ctx, "c1", "b1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ratingID, rows[0].ID)
	assert.Equal(t, "Speed", rows[0].CriterionName)
	require.NotNil(t, rows[0].Score)
	assert.Equal(t, 5.0, *rows[0].Score)
	assert.Equal(t, "Courtesy", rows[1].CriterionName)
	assert.Equal(t, "Ada", rows[1].UserName)
	assert.Equal(t, "555", rows[1].UserPhone)
	assert.True(t, rows[0].CreatedAt.Equal(ts))
	assert.True(t, rows[0].CreatedAt.Equal(rows[1].CreatedAt))

	empty, err := repo.ListRatingRows(ctx, "c1", "other-branch")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRatingRepository_EpisodeIsAtomic(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewRatingRepository(db)

	user, err := repo.UpsertUser(ctx, models.User{SubmissionKey: "k", Name: "Ada", CompanyID: "c1", UserPath: "rating_only"})
	require.NoError(t, err)

	_, err = repo.InsertRatingEpisode(ctx, models.EpisodeInput{
		CompanyID:    "c1",
		UserID:       user.ID,
		ServicePoint: "Teller",
		Ratings: []models.CriterionScore{
			{Title: "Speed", Score: 5},
			{Title: "   ", Score: 4},
		},
	})
	require.Error(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM ratings`).Scan(&count))
	assert.Zero(t, count, "no partial episode may be visible")

	_, err = repo.InsertRatingEpisode(ctx, models.EpisodeInput{CompanyID: "c1", UserID: user.ID})
	assert.Error(t, err)
}

func TestRatingRepository_FeedbackAndOther(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRatingRepository(setupTestDB(t))

	user, err := repo.UpsertUser(ctx, models.User{SubmissionKey: "k", Phone: "555-1111", CompanyID: "c1", BranchID: "b1", UserPath: "suggestion_only"})
	require.NoError(t, err)

	_, err = repo.InsertFeedback(ctx, models.Feedback{
		CompanyID:  "c1",
		BranchID:   "b1",
		UserID:     user.ID,
		Suggestion: "Please add more parking.",
	})
	require.NoError(t, err)

	rater, err := repo.UpsertUser(ctx, models.User{SubmissionKey: "k-2", Name: "Bo", CompanyID: "c1", BranchID: "b1", UserPath: "both"})
	require.NoError(t, err)
	ratingID, err := repo.InsertRatingEpisode(ctx, models.EpisodeInput{
		CompanyID: "c1", BranchID: "b1", UserID: rater.ID, ServicePoint: "Teller",
		Ratings: []models.CriterionScore{{Title: "Speed", Score: 3}},
	})
	require.NoError(t, err)
	_, err = repo.InsertFeedback(ctx, models.Feedback{
		CompanyID: "c1", BranchID: "b1", UserID: rater.ID, RatingID: &ratingID,
		Comments: map[string]string{"Speed": "slow queue"},
	})
	require.NoError(t, err)

	feedback, err := repo.ListFeedback(ctx, "c1", "b1")
	require.NoError(t, err)
	require.Len(t, feedback, 2)

	var withRating, withoutRating models.Feedback
	for _, f := range feedback {
		if f.RatingID == nil {
			withoutRating = f
		} else {
			withRating = f
		}
	}
	assert.Equal(t, "Please add more parking.", withoutRating.Suggestion)
	assert.Nil(t, withoutRating.Comments)
	assert.Equal(t, "555-1111", withoutRating.UserPhone)
	require.NotNil(t, withRating.RatingID)
	assert.Equal(t, ratingID, *withRating.RatingID)
	assert.Equal(t, "slow queue", withRating.Comments["Speed"])
	assert.Empty(t, withRating.Suggestion)

	_, err = repo.InsertOther(ctx, models.OtherRating{
		CompanyID: "c1", BranchID: "b1", UserID: user.ID,
		Criteria: "Parking", Score: 2, Comments: "too small", Department: "Lobby",
	})
	require.NoError(t, err)

	other, err := repo.ListOther(ctx, "c1", "b1")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "Parking", other[0].Criteria)
	assert.Equal(t, 2, other[0].Score)
	assert.Equal(t, "Lobby", other[0].Department)

	raters, err := repo.ListRaters(ctx, "c1", "b1")
	require.NoError(t, err)
	require.Len(t, raters, 2)
	paths := []string{raters[0].UserPath, raters[1].UserPath}
	assert.ElementsMatch(t, []string{"suggestion_only", "both"}, paths)
}

func TestRatingRepository_ListsNewestFirstWithinOneSecond(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	whole := time.Date(2025, 10, 18, 10, 0, 0, 0, time.UTC)
	half := whole.Add(500 * time.Millisecond)
	later := whole.Add(500*time.Millisecond + time.Microsecond)

	for i, ts := range []time.Time{whole, later, half} {
		repo := repository.NewRatingRepository(db, repository.WithClock(fixedClock(ts)))
		user, err := repo.UpsertUser(ctx, models.User{SubmissionKey: fmt.Sprintf("k-%d", i), Name: ts.Format(time.StampMicro), CompanyID: "c1", UserPath: "both"})
		require.NoError(t, err)
		_, err = repo.InsertRatingEpisode(ctx, models.EpisodeInput{
			CompanyID: "c1", UserID: user.ID, ServicePoint: "Teller",
			Ratings: []models.CriterionScore{{Title: "Speed", Score: 4}},
		})
		require.NoError(t, err)
		_, err = repo.InsertFeedback(ctx, models.Feedback{CompanyID: "c1", UserID: user.ID, Suggestion: "s"})
		require.NoError(t, err)
	}

	repo := repository.NewRatingRepository(db)
	rows, err := repo.ListRatingRows(ctx, "c1", "")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].CreatedAt.Equal(later))
	assert.True(t, rows[1].CreatedAt.Equal(half))
	assert.True(t, rows[2].CreatedAt.Equal(whole))

	feedback, err := repo.ListFeedback(ctx, "c1", "")
	require.NoError(t, err)
	require.Len(t, feedback, 3)
	assert.True(t, feedback[0].CreatedAt.Equal(later))
	assert.True(t, feedback[2].CreatedAt.Equal(whole))

	raters, err := repo.ListRaters(ctx, "c1", "")
	require.NoError(t, err)
	require.Len(t, raters, 3)
	assert.True(t, raters[0].CreatedAt.Equal(later))
	assert.True(t, raters[2].CreatedAt.Equal(whole))
}

func TestRatingRepository_WritesAreOncePerSubmission(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewRatingRepository(db)

	submit := func() (int64, int64, int64) {
		user, err := repo.UpsertUser(ctx, models.User{SubmissionKey: "k-retry", Name: "Ada", CompanyID: "c1", UserPath: "both"})
		require.NoError(t, err)
		ratingID, err := repo.InsertRatingEpisode(ctx, models.EpisodeInput{
			CompanyID: "c1", UserID: user.ID, ServicePoint: "Teller",
			Ratings: []models.CriterionScore{{Title: "Speed", Score: 5}, {Title: "Courtesy", Score: 4}},
		})
		require.NoError(t, err)
		feedbackID, err := repo.InsertFeedback(ctx, models.Feedback{CompanyID: "c1", UserID: user.ID, RatingID: &ratingID, Suggestion: "more chairs"})
		require.NoError(t, err)
		otherID, err := repo.InsertOther(ctx, models.OtherRating{CompanyID: "c1", UserID: user.ID, Criteria: "Parking", Score: 2, Comments: "small"})
		require.NoError(t, err)
		return ratingID, feedbackID, otherID
	}

	r1, f1, o1 := submit()
	r2, f2, o2 := submit()
	assert.Equal(t, r1, r2)
	assert.Equal(t, f1, f2)
	assert.Equal(t, o1, o2)

	for table, want := range map[string]int{"ratings": 2, "feedback": 1, "other_ratings": 1, "users": 1} {
		var count int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&count))
		assert.Equal(t, want, count, table)
	}
}
