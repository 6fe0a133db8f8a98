package scoring

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/godilite/feedback-server/internal/draft"
	"github.com/godilite/feedback-server/internal/repository/models"
)

var (
	ErrInvalidScore     = errors.New("score must be between 1 and 5")
	ErrUnknownCriterion = errors.New("criterion is not selectable")
	ErrIncompleteOther  = errors.New("other criterion needs a label, a score and a reason")
	ErrNoServicePoint   = errors.New("no service point selected")
	ErrUnscoredCriteria = errors.New("every selected criterion must be scored")
	// ErrOtherSubflow is returned when the custom entry is toggled like a catalog criterion.
	ErrOtherSubflow = errors.New("other is captured through its own sub-flow")
)

// DraftStore is the slice of *draft.Store the engine needs.
type DraftStore interface {
	Get() draft.Draft
	Patch(ctx context.Context, p draft.Patch) error
}

type Engine struct {
	store    DraftStore
	fallback []string
	validate *validator.Validate
	logger   *zap.Logger
}

type Option func(*Engine)

func WithFallbackCriteria(names []string) Option {
	return func(e *Engine) {
		if len(names) > 0 {
			e.fallback = slices.Clone(names)
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEngine(store DraftStore, opts ...Option) *Engine {
	if store == nil {
		panic("draft store must not be nil")
	}
	e := &Engine{
		store:    store,
		fallback: DefaultFallbackCriteria,
		validate: validator.New(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Criteria lists the selectable entries for the selected service point, the
// custom entry last. A captured custom criterion shows its abbreviated label.
func (e *Engine) Criteria() ([]Criterion, error) {
	d := e.store.Get()
	if d.ServicePoint == nil {
		return nil, ErrNoServicePoint
	}

	out := make([]Criterion, 0, len(d.ServicePoint.Criteria)+1)
	for _, name := range d.ServicePoint.Criteria {
		out = append(out, Catalog(name))
	}
	custom := Custom()
	if d.Other != nil {
		custom.Name = Abbreviate(d.Other.Label)
	}
	return append(out, custom), nil
}

// SelectServicePoint makes sp the rating target. Selections, scores and
// comments made for a previous target are cleared.
func (e *Engine) SelectServicePoint(ctx context.Context, sp models.ServicePoint) error {
	if strings.TrimSpace(sp.Name) == "" {
		return fmt.Errorf("%w: service point has no name", ErrNoServicePoint)
	}
	return e.store.Patch(ctx, draft.Patch{
		ServicePoint: &draft.ServicePoint{
			ID:       sp.ID,
			Name:     sp.Name,
			Criteria: ResolveCriteria(sp, e.fallback),
		},
		SelectedCriteria: []string{},
		Scores:           map[string]int{},
		Comments:         map[string]string{},
	})
}

// ToggleCriterion adds a catalog criterion to the selection, or removes it
// together with its score and comment.
func (e *Engine) ToggleCriterion(ctx context.Context, name string) error {
	if isOtherName(name) {
		return ErrOtherSubflow
	}
	d := e.store.Get()
	if d.ServicePoint == nil {
		return ErrNoServicePoint
	}
	if !slices.Contains(d.ServicePoint.Criteria, name) {
		return fmt.Errorf("%w: %q", ErrUnknownCriterion, name)
	}

	if i := slices.Index(d.SelectedCriteria, name); i >= 0 {
		scores := maps.Clone(d.Scores)
		comments := maps.Clone(d.Comments)
		delete(scores, name)
		delete(comments, name)
		return e.store.Patch(ctx, draft.Patch{
			SelectedCriteria: slices.Delete(d.SelectedCriteria, i, i+1),
			Scores:           scores,
			Comments:         comments,
		})
	}
	return e.store.Patch(ctx, draft.Patch{SelectedCriteria: append(d.SelectedCriteria, name)})
}

// Rate records score for c. The custom entry's score lives on the captured
// Other criterion, never in the catalog score map.
func (e *Engine) Rate(ctx context.Context, c Criterion, score int) error {
	if !validScore(score) {
		return fmt.Errorf("%w: got %d", ErrInvalidScore, score)
	}
	d := e.store.Get()

	if c.IsCustom() {
		if d.Other == nil {
			return ErrIncompleteOther
		}
		other := *d.Other
		other.Score = score
		return e.store.Patch(ctx, draft.Patch{Other: &other})
	}

	if !slices.Contains(d.SelectedCriteria, c.Name) {
		return fmt.Errorf("%w: %q", ErrUnknownCriterion, c.Name)
	}
	scores := maps.Clone(d.Scores)
	scores[c.Name] = score
	return e.store.Patch(ctx, draft.Patch{Scores: scores})
}

// AttachComment stores free text for c. For the custom entry the text replaces
// the captured reason, which may not be emptied. An empty catalog comment
// removes it.
func (e *Engine) AttachComment(ctx context.Context, c Criterion, text string) error {
	d := e.store.Get()

	if c.IsCustom() {
		if d.Other == nil || strings.TrimSpace(text) == "" {
			return ErrIncompleteOther
		}
		other := *d.Other
		other.Reason = text
		return e.store.Patch(ctx, draft.Patch{Other: &other})
	}

	if !slices.Contains(d.SelectedCriteria, c.Name) {
		return fmt.Errorf("%w: %q", ErrUnknownCriterion, c.Name)
	}
	comments := maps.Clone(d.Comments)
	if strings.TrimSpace(text) == "" {
		delete(comments, c.Name)
	} else {
		comments[c.Name] = text
	}
	return e.store.Patch(ctx, draft.Patch{Comments: comments})
}

// CaptureOther submits the Other sub-flow. A form with every field empty is a
// no-op; a partially filled one is rejected without touching the draft. The
// department is taken from the service point selected at capture time.
func (e *Engine) CaptureOther(ctx context.Context, label string, score int, reason string) error {
	label = strings.TrimSpace(label)
	reason = strings.TrimSpace(reason)
	if label == "" && score == 0 && reason == "" {
		return nil
	}

	other := draft.OtherCriterion{Label: label, Score: score, Reason: reason}
	if err := e.validate.Struct(other); err != nil {
		return fmt.Errorf("%w: %v", ErrIncompleteOther, err)
	}

	d := e.store.Get()
	if d.ServicePoint == nil {
		return ErrNoServicePoint
	}
	other.Department = d.ServicePoint.Name

	e.logger.Debug("captured other criterion", zap.String("label", label), zap.String("department", other.Department))
	return e.store.Patch(ctx, draft.Patch{Other: &other})
}

// CancelOther discards the Other sub-flow.
func (e *Engine) CancelOther(ctx context.Context) error {
	return e.store.Patch(ctx, draft.Patch{ClearOther: true})
}

func (e *Engine) CanAdvance() bool {
	d := e.store.Get()
	return CanAdvance(d.SelectedCriteria, d.Scores)
}

// Advance returns ErrUnscoredCriteria while the step gate is closed.
func (e *Engine) Advance() error {
	if !e.CanAdvance() {
		return ErrUnscoredCriteria
	}
	return nil
}
