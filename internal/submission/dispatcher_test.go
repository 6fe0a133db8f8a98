package submission_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/godilite/feedback-server/internal/draft"
	"github.com/godilite/feedback-server/internal/repository/models"
	"github.com/godilite/feedback-server/internal/submission"
	"github.com/godilite/feedback-server/internal/submission/mocks"
	"github.com/godilite/feedback-server/pkg/cache/cachetest"
)

type calls struct {
	mu       sync.Mutex
	users    []models.User
	episodes []models.EpisodeInput
	feedback []models.Feedback
	other    []models.OtherRating
}

// recordingRepo succeeds on every write and keeps what it was given.
func recordingRepo(c *calls) *mocks.MockRepository {
	return &mocks.MockRepository{
		UpsertUserFunc: func(_ context.Context, u models.User) (models.User, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.users = append(c.users, u)
			u.ID = 7
			return u, nil
		},
		InsertRatingEpisodeFunc: func(_ context.Context, in models.EpisodeInput) (int64, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.episodes = append(c.episodes, in)
			return 100, nil
		},
		InsertFeedbackFunc: func(_ context.Context, f models.Feedback) (int64, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.feedback = append(c.feedback, f)
			return 200, nil
		},
		InsertOtherFunc: func(_ context.Context, o models.OtherRating) (int64, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.other = append(c.other, o)
			return 300, nil
		},
	}
}

func newStore(t *testing.T, p draft.Patch) *draft.Store {
	t.Helper()
	ctx := context.Background()
	s, err := draft.NewManager(cachetest.NewMemory(), zap.NewNop()).Start(ctx, draft.Hints{CompanyID: "c1", BranchID: "b1"})
	require.NoError(t, err)
	require.NoError(t, s.Patch(ctx, p))
	return s
}

func ratingDraft() draft.Patch {
	return draft.Patch{
		Identity:         &draft.Identity{Name: "Ada"},
		ServicePoint:     &draft.ServicePoint{ID: 1, Name: "Teller", Criteria: []string{"Speed", "Courtesy"}},
		SelectedCriteria: []string{"Speed", "Courtesy"},
		Scores:           map[string]int{"Speed": 5, "Courtesy": 4},
	}
}

func ptr[T any](v T) *T { return &v }

func TestNewDispatcher(t *testing.T) {
	assert.Panics(t, func() { submission.NewDispatcher(nil, zap.NewNop()) })
	assert.NotNil(t, submission.NewDispatcher(&mocks.MockRepository{}, nil))
}

func TestSubmit_FullRating(t *testing.T) {
	c := &calls{}
	rec := mocks.NewMockRecorder()
	d := submission.NewDispatcher(recordingRepo(c), zap.NewNop(), submission.WithRecorder(rec), submission.WithResetDelay(time.Hour))
	store := newStore(t, ratingDraft())

	res, err := d.Submit(context.Background(), store)
	require.NoError(t, err)

	assert.Equal(t, submission.PathRatingOnly, res.Path)
	assert.Equal(t, int64(7), res.UserID)
	require.NotNil(t, res.RatingID)
	assert.Equal(t, int64(100), *res.RatingID)
	assert.False(t, res.Partial())

	require.Len(t, c.users, 1)
	assert.Equal(t, "Ada", c.users[0].Name)
	assert.Equal(t, "rating_only", c.users[0].UserPath)
	assert.Equal(t, "c1", c.users[0].CompanyID)
	assert.NotEmpty(t, c.users[0].SubmissionKey)

	require.Len(t, c.episodes, 1)
	assert.Equal(t, []models.CriterionScore{{Title: "Speed", Score: 5}, {Title: "Courtesy", Score: 4}}, c.episodes[0].Ratings)
	assert.Equal(t, "Teller", c.episodes[0].ServicePoint)
	assert.Equal(t, int64(7), c.episodes[0].UserID)

	assert.Empty(t, c.feedback)
	assert.Empty(t, c.other)

	fb, ok := res.Step(submission.StepFeedback)
	require.True(t, ok)
	assert.Equal(t, submission.StatusSkipped, fb.Status)
	assert.Equal(t, 1, rec.Steps["identity:ok"])
	assert.Equal(t, 1, rec.Paths["rating_only"])
}

func TestSubmit_SuggestionOnly(t *testing.T) {
	c := &calls{}
	d := submission.NewDispatcher(recordingRepo(c), zap.NewNop(), submission.WithResetDelay(time.Hour))
	store := newStore(t, draft.Patch{
		Identity:   &draft.Identity{Phone: "555-1111"},
		Suggestion: ptr("Please add more parking."),
	})

	res, err := d.Submit(context.Background(), store)
	require.NoError(t, err)

	assert.Equal(t, submission.PathSuggestionOnly, res.Path)
	require.Len(t, c.users, 1)
	assert.Equal(t, "suggestion_only", c.users[0].UserPath)
	assert.Empty(t, c.episodes)
	require.Len(t, c.feedback, 1)
	assert.Equal(t, "Please add more parking.", c.feedback[0].Suggestion)
	assert.Nil(t, c.feedback[0].RatingID)
	assert.Nil(t, res.RatingID)
}

func TestSubmit_OtherOnly(t *testing.T) {
	c := &calls{}
	d := submission.NewDispatcher(recordingRepo(c), zap.NewNop(), submission.WithResetDelay(time.Hour))
	store := newStore(t, draft.Patch{
		Identity: &draft.Identity{Name: "Ada"},
		Other:    &draft.OtherCriterion{Label: "Parking", Score: 2, Reason: "too small", Department: "Lobby"},
	})

	res, err := d.Submit(context.Background(), store)
	require.NoError(t, err)

	assert.Empty(t, c.episodes)
	assert.Empty(t, c.feedback)
	require.Len(t, c.other, 1)
	assert.Equal(t, models.OtherRating{
		CompanyID: "c1", BranchID: "b1", UserID: 7,
		Criteria: "Parking", Score: 2, Comments: "too small", Department: "Lobby",
	}, c.other[0])

	step, _ := res.Step(submission.StepOther)
	assert.Equal(t, submission.StatusOK, step.Status)
}

func TestSubmit_BothLinksFeedbackToRating(t *testing.T) {
	c := &calls{}
	d := submission.NewDispatcher(recordingRepo(c), zap.NewNop(), submission.WithResetDelay(time.Hour))
	p := ratingDraft()
	p.Suggestion = ptr("More tellers")
	p.Comments = map[string]string{"Speed": "quick"}
	store := newStore(t, p)

	res, err := d.Submit(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, submission.PathBoth, res.Path)
	require.Len(t, c.feedback, 1)
	require.NotNil(t, c.feedback[0].RatingID)
	assert.Equal(t, int64(100), *c.feedback[0].RatingID)
	assert.Equal(t, map[string]string{"Speed": "quick"}, c.feedback[0].Comments)
}

func TestSubmit_SMSMarksIdentityPending(t *testing.T) {
	c := &calls{}
	d := submission.NewDispatcher(recordingRepo(c), zap.NewNop(), submission.WithResetDelay(time.Hour))
	p := ratingDraft()
	p.Identity = &draft.Identity{Phone: "555", SMS: true}
	store := newStore(t, p)

	res, err := d.Submit(context.Background(), store)
	require.NoError(t, err)
	assert.True(t, res.SMSPending)
	assert.Equal(t, "waiting", c.users[0].SMSStatus)
}

func TestSubmit_Validation(t *testing.T) {
	repo := &mocks.MockRepository{
		UpsertUserFunc: func(context.Context, models.User) (models.User, error) {
			t.Fatal("no write may happen on invalid input")
			return models.User{}, nil
		},
	}
	d := submission.NewDispatcher(repo, zap.NewNop())

	tests := []struct {
		name  string
		patch draft.Patch
	}{
		{"no identity", draft.Patch{Suggestion: ptr("hello")}},
		{"bad email", draft.Patch{Identity: &draft.Identity{Name: "Ada", Email: "nope"}, Suggestion: ptr("hello")}},
		{"unscored criterion", draft.Patch{
			Identity:         &draft.Identity{Name: "Ada"},
			ServicePoint:     &draft.ServicePoint{Name: "Teller"},
			SelectedCriteria: []string{"Speed", "Courtesy"},
			Scores:           map[string]int{"Speed": 5},
		}},
		{"incomplete other", draft.Patch{
			Identity: &draft.Identity{Name: "Ada"},
			Other:    &draft.OtherCriterion{Label: "Parking"},
		}},
		{"nothing to submit", draft.Patch{Identity: &draft.Identity{Name: "Ada"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Submit(context.Background(), newStore(t, tt.patch))
			assert.ErrorIs(t, err, submission.ErrValidation)
		})
	}
}

func TestSubmit_IdentityFailureAborts(t *testing.T) {
	c := &calls{}
	repo := recordingRepo(c)
	repo.UpsertUserFunc = func(context.Context, models.User) (models.User, error) {
		return models.User{}, errors.New("db down")
	}
	d := submission.NewDispatcher(repo, zap.NewNop(), submission.WithResetDelay(time.Millisecond))
	p := ratingDraft()
	p.Suggestion = ptr("x")
	store := newStore(t, p)

	res, err := d.Submit(context.Background(), store)
	require.ErrorIs(t, err, submission.ErrIdentityWrite)
	assert.Empty(t, c.episodes)
	assert.Empty(t, c.feedback)
	require.Len(t, res.Notices, 1)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, map[string]int{"Speed": 5, "Courtesy": 4}, store.Get().Scores, "draft is kept for a retry")
}

func TestSubmit_LaterStepFailuresContinue(t *testing.T) {
	c := &calls{}
	repo := recordingRepo(c)
	repo.InsertRatingEpisodeFunc = func(context.Context, models.EpisodeInput) (int64, error) {
		return 0, errors.New("constraint violation")
	}
	d := submission.NewDispatcher(repo, zap.NewNop(), submission.WithResetDelay(10*time.Millisecond))
	p := ratingDraft()
	p.Suggestion = ptr("More tellers")
	p.Other = &draft.OtherCriterion{Label: "Parking", Score: 2, Reason: "small", Department: "Teller"}
	store := newStore(t, p)

	res, err := d.Submit(context.Background(), store)
	require.NoError(t, err)
	assert.True(t, res.Partial())
	require.Len(t, res.Notices, 1)

	step, _ := res.Step(submission.StepRatingBatch)
	assert.Equal(t, submission.StatusFailed, step.Status)
	assert.Error(t, step.Err)

	require.Len(t, c.feedback, 1)
	assert.Nil(t, c.feedback[0].RatingID)
	require.Len(t, c.other, 1)

	assert.Eventually(t, func() bool {
		return len(store.Get().Scores) == 0
	}, time.Second, 5*time.Millisecond, "a partial submission still resets the draft")
}

func TestSubmit_DuplicatesShareOneIdentity(t *testing.T) {
	var upserts atomic.Int32
	release := make(chan struct{})
	c := &calls{}
	repo := recordingRepo(c)
	repo.UpsertUserFunc = func(_ context.Context, u models.User) (models.User, error) {
		upserts.Add(1)
		<-release
		u.ID = 7
		return u, nil
	}
	d := submission.NewDispatcher(repo, zap.NewNop(), submission.WithResetDelay(time.Hour))
	store := newStore(t, ratingDraft())

	var wg sync.WaitGroup
	results := make([]submission.Result, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := d.Submit(context.Background(), store)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), upserts.Load())
	assert.Len(t, c.episodes, 1)
	for _, r := range results {
		assert.Equal(t, results[0].SubmissionKey, r.SubmissionKey)
	}

	again, err := d.Submit(context.Background(), store)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, int32(1), upserts.Load())
}
