package submission

import (
	"context"
	"time"

	"github.com/godilite/feedback-server/internal/draft"
	"github.com/godilite/feedback-server/internal/repository/models"
)

// Repository is the persistence the dispatcher writes through.
type Repository interface {
	UpsertUser(ctx context.Context, u models.User) (models.User, error)
	InsertRatingEpisode(ctx context.Context, in models.EpisodeInput) (int64, error)
	InsertFeedback(ctx context.Context, f models.Feedback) (int64, error)
	InsertOther(ctx context.Context, o models.OtherRating) (int64, error)
}

// DraftStore is the session the dispatcher submits and later resets.
type DraftStore interface {
	Get() draft.Draft
	Hints() draft.Hints
	SubmissionKey(ctx context.Context) (string, error)
	ScheduleReset(delay time.Duration, onDone func(error))
}

// Recorder receives submission outcomes, typically for metrics.
type Recorder interface {
	SubmissionStep(step, status string)
	Submission(path string)
}
