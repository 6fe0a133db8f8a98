package mocks

import (
	"context"
	"errors"

	"github.com/godilite/feedback-server/internal/repository/models"
)

// MockRepository is a function-field implementation of submission.Repository.
type MockRepository struct {
	UpsertUserFunc          func(ctx context.Context, u models.User) (models.User, error)
	InsertRatingEpisodeFunc func(ctx context.Context, in models.EpisodeInput) (int64, error)
	InsertFeedbackFunc      func(ctx context.Context, f models.Feedback) (int64, error)
	InsertOtherFunc         func(ctx context.Context, o models.OtherRating) (int64, error)
}

func (m *MockRepository) UpsertUser(ctx context.Context, u models.User) (models.User, error) {
	if m.UpsertUserFunc != nil {
		return m.UpsertUserFunc(ctx, u)
	}
	return models.User{}, errors.New("UpsertUserFunc not implemented")
}

func (m *MockRepository) InsertRatingEpisode(ctx context.Context, in models.EpisodeInput) (int64, error) {
	if m.InsertRatingEpisodeFunc != nil {
		return m.InsertRatingEpisodeFunc(ctx, in)
	}
	return 0, errors.New("InsertRatingEpisodeFunc not implemented")
}

func (m *MockRepository) InsertFeedback(ctx context.Context, f models.Feedback) (int64, error) {
	if m.InsertFeedbackFunc != nil {
		return m.InsertFeedbackFunc(ctx, f)
	}
	return 0, errors.New("InsertFeedbackFunc not implemented")
}

func (m *MockRepository) InsertOther(ctx context.Context, o models.OtherRating) (int64, error) {
	if m.InsertOtherFunc != nil {
		return m.InsertOtherFunc(ctx, o)
	}
	return 0, errors.New("InsertOtherFunc not implemented")
}

// MockRecorder counts recorded outcomes.
type MockRecorder struct {
	Steps map[string]int
	Paths map[string]int
}

func NewMockRecorder() *MockRecorder {
	return &MockRecorder{Steps: map[string]int{}, Paths: map[string]int{}}
}

func (m *MockRecorder) SubmissionStep(step, status string) { m.Steps[step+":"+status]++ }
func (m *MockRecorder) Submission(path string)             { m.Paths[path]++ }
