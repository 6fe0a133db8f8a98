package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/godilite/feedback-server/internal/repository/models"
)

var (
	ErrValidation    = errors.New("invalid submission")
	ErrIdentityWrite = errors.New("identity write failed")
)

const (
	DefaultResetDelay  = 5 * time.Second
	defaultStepTimeout = 2 * time.Second

	smsStatusWaiting = "waiting"
)

type Step string

const (
	StepIdentity    Step = "identity"
	StepRatingBatch Step = "rating_batch"
	StepFeedback    Step = "feedback"
	StepOther       Step = "other"
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

type StepResult struct {
	Step   Step
	Status Status
	Err    error
}

// Notice is a non-fatal message for the user about a failed write.
type Notice struct {
	Level   string
	Message string
}

type Result struct {
	SubmissionKey string
	Path          Path
	UserID        int64
	RatingID      *int64
	SMSPending    bool
	Steps         []StepResult
	Notices       []Notice
	// Replayed is set when the result comes from an earlier submit of the same draft.
	Replayed bool
}

// Partial reports whether any write after the identity step failed.
func (r Result) Partial() bool {
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			return true
		}
	}
	return false
}

func (r Result) Step(step Step) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Step == step {
			return s, true
		}
	}
	return StepResult{}, false
}

type Dispatcher struct {
	repo        Repository
	logger      *zap.Logger
	recorder    Recorder
	validate    *validator.Validate
	resetDelay  time.Duration
	stepTimeout time.Duration

	group     singleflight.Group
	mu        sync.Mutex
	completed map[string]Result
}

type Option func(*Dispatcher)

func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorder = r
		}
	}
}

// WithResetDelay sets how long a submitted draft stays readable before it is reset.
func WithResetDelay(delay time.Duration) Option {
	return func(d *Dispatcher) { d.resetDelay = delay }
}

func WithStepTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.stepTimeout = timeout
		}
	}
}

func NewDispatcher(repo Repository, logger *zap.Logger, opts ...Option) *Dispatcher {
	if repo == nil {
		panic("repository must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	d := &Dispatcher{
		repo:        repo,
		logger:      logger.Named("dispatcher"),
		recorder:    noopRecorder{},
		validate:    validator.New(),
		resetDelay:  DefaultResetDelay,
		stepTimeout: defaultStepTimeout,
		completed:   make(map[string]Result),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit validates the session's draft and writes it. The identity write must
// succeed; rating, feedback and Other writes are each attempted regardless of
// the others' outcome and reported in Result.Steps. After a successful
// identity write the draft is reset once the configured delay elapses.
//
// Submits of the same draft share one submission key: concurrent calls are
// collapsed and a repeat before the reset returns the first result.
func (d *Dispatcher) Submit(ctx context.Context, store DraftStore) (Result, error) {
	dr := store.Get()
	hints := store.Hints()

	if err := d.Validate(dr, hints); err != nil {
		d.logger.Info("submission rejected", zap.String("session", dr.SessionID), zap.Error(err))
		return Result{}, err
	}

	key, err := store.SubmissionKey(ctx)
	if err != nil {
		d.logger.Warn("submission key not persisted", zap.String("session", dr.SessionID), zap.Error(err))
	}

	if res, ok := d.replay(key); ok {
		return res, nil
	}

	v, err, _ := d.group.Do(key, func() (any, error) {
		if res, ok := d.replay(key); ok {
			return res, nil
		}
		res, err := d.dispatch(ctx, key, BuildEnvelope(dr, hints))
		if err != nil {
			return res, err
		}

		d.mu.Lock()
		d.completed[key] = res
		d.mu.Unlock()
		store.ScheduleReset(d.resetDelay, func(error) {
			d.mu.Lock()
			delete(d.completed, key)
			d.mu.Unlock()
		})
		return res, nil
	})
	return v.(Result), err
}

func (d *Dispatcher) replay(key string) (Result, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	res, ok := d.completed[key]
	if ok {
		res.Replayed = true
	}
	return res, ok
}

func (d *Dispatcher) dispatch(ctx context.Context, key string, env Envelope) (Result, error) {
	res := Result{SubmissionKey: key, Path: env.Path}
	log := d.logger.With(zap.String("submission", key), zap.String("path", string(env.Path)))

	user := models.User{
		SubmissionKey: key,
		Name:          env.Identity.Name,
		Phone:         env.Identity.Phone,
		Email:         env.Identity.Email,
		CompanyID:     env.CompanyID,
		BranchID:      env.BranchID,
		UserPath:      string(env.Path),
	}
	if env.Identity.SMS {
		user.SMSStatus = smsStatusWaiting
		res.SMSPending = true
	}

	stored, err := runStep(ctx, d.stepTimeout, func(ctx context.Context) (models.User, error) {
		return d.repo.UpsertUser(ctx, user)
	})
	if err != nil {
		res.record(d, StepIdentity, StatusFailed, err)
		log.Error("identity write failed", zap.Error(err))
		return res, fmt.Errorf("%w: %v", ErrIdentityWrite, err)
	}
	res.UserID = stored.ID
	res.record(d, StepIdentity, StatusOK, nil)
	log = log.With(zap.Int64("user_id", res.UserID))

	if env.HasRatings() {
		ratingID, err := runStep(ctx, d.stepTimeout, func(ctx context.Context) (int64, error) {
			return d.repo.InsertRatingEpisode(ctx, models.EpisodeInput{
				CompanyID:    env.CompanyID,
				BranchID:     env.BranchID,
				UserID:       res.UserID,
				ServicePoint: env.ServicePoint,
				Ratings:      env.Ratings,
			})
		})
		if err != nil {
			res.record(d, StepRatingBatch, StatusFailed, err)
			log.Error("rating batch write failed", zap.Int("ratings", len(env.Ratings)), zap.Error(err))
		} else {
			res.RatingID = &ratingID
			res.record(d, StepRatingBatch, StatusOK, nil)
		}
	} else {
		res.record(d, StepRatingBatch, StatusSkipped, nil)
	}

	if env.HasFeedback() {
		_, err := runStep(ctx, d.stepTimeout, func(ctx context.Context) (int64, error) {
			return d.repo.InsertFeedback(ctx, models.Feedback{
				CompanyID:  env.CompanyID,
				BranchID:   env.BranchID,
				UserID:     res.UserID,
				RatingID:   res.RatingID,
				Comments:   env.Comments,
				Suggestion: env.Suggestion,
			})
		})
		if err != nil {
			res.record(d, StepFeedback, StatusFailed, err)
			log.Error("feedback write failed", zap.Error(err))
		} else {
			res.record(d, StepFeedback, StatusOK, nil)
		}
	} else {
		res.record(d, StepFeedback, StatusSkipped, nil)
	}

	if env.HasOther() {
		_, err := runStep(ctx, d.stepTimeout, func(ctx context.Context) (int64, error) {
			return d.repo.InsertOther(ctx, models.OtherRating{
				CompanyID:  env.CompanyID,
				BranchID:   env.BranchID,
				UserID:     res.UserID,
				Criteria:   env.Other.Label,
				Score:      env.Other.Score,
				Comments:   env.Other.Reason,
				Department: env.Other.Department,
			})
		})
		if err != nil {
			res.record(d, StepOther, StatusFailed, err)
			log.Error("other criterion write failed", zap.Error(err))
		} else {
			res.record(d, StepOther, StatusOK, nil)
		}
	} else {
		res.record(d, StepOther, StatusSkipped, nil)
	}

	d.recorder.Submission(string(env.Path))
	log.Info("submission dispatched", zap.Bool("partial", res.Partial()), zap.Bool("sms_pending", res.SMSPending))
	return res, nil
}

func (r *Result) record(d *Dispatcher, step Step, status Status, err error) {
	r.Steps = append(r.Steps, StepResult{Step: step, Status: status, Err: err})
	d.recorder.SubmissionStep(string(step), string(status))
	if status == StatusFailed {
		r.Notices = append(r.Notices, Notice{Level: "error", Message: noticeText(step)})
	}
}

func noticeText(step Step) string {
	switch step {
	case StepIdentity:
		return "We could not save your details. Please try again."
	case StepRatingBatch:
		return "Your ratings could not be saved."
	case StepFeedback:
		return "Your comments could not be saved."
	case StepOther:
		return "Your custom rating could not be saved."
	}
	return "Part of your submission could not be saved."
}

// runStep bounds one write by the step timeout.
func runStep[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(stepCtx)
}

type noopRecorder struct{}

func (noopRecorder) SubmissionStep(string, string) {}
func (noopRecorder) Submission(string)             {}
