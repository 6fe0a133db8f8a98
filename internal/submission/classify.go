// Package submission turns a finished draft into persistence writes: one
// identity row, then the rating batch, feedback and Other writes it needs.
package submission

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/godilite/feedback-server/internal/draft"
	"github.com/godilite/feedback-server/internal/repository/models"
	"github.com/godilite/feedback-server/internal/scoring"
)

// Path tags the identity row with how the user engaged.
type Path string

const (
	PathBoth           Path = "both"
	PathSuggestionOnly Path = "suggestion_only"
	PathRatingOnly     Path = "rating_only"
)

// Classify picks the engagement path of d. A draft with neither ratings nor a
// suggestion, such as an Other-only one, counts as rating_only.
func Classify(d draft.Draft) Path {
	hasRatings := len(d.Scores) > 0
	hasSuggestion := strings.TrimSpace(d.Suggestion) != ""
	switch {
	case hasRatings && hasSuggestion:
		return PathBoth
	case hasSuggestion:
		return PathSuggestionOnly
	default:
		return PathRatingOnly
	}
}

// Envelope is the write set derived from one draft.
type Envelope struct {
	CompanyID    string
	BranchID     string
	Path         Path
	Identity     draft.Identity
	ServicePoint string
	Ratings      []models.CriterionScore
	Comments     map[string]string
	Suggestion   string
	Other        *draft.OtherCriterion
}

func (e Envelope) HasRatings() bool { return len(e.Ratings) > 0 }

func (e Envelope) HasFeedback() bool {
	return strings.TrimSpace(e.Suggestion) != "" || len(e.Comments) > 0
}

func (e Envelope) HasOther() bool {
	o := e.Other
	return o != nil && strings.TrimSpace(o.Label) != "" && o.Score >= 1 && o.Score <= 5 && strings.TrimSpace(o.Reason) != ""
}

// BuildEnvelope formats d for persistence. Ratings follow the selection
// order; scores left for unselected names come after, sorted.
func BuildEnvelope(d draft.Draft, hints draft.Hints) Envelope {
	env := Envelope{
		CompanyID:  hints.CompanyID,
		BranchID:   hints.BranchID,
		Path:       Classify(d),
		Identity:   d.Identity,
		Suggestion: strings.TrimSpace(d.Suggestion),
	}
	if d.ServicePoint != nil {
		env.ServicePoint = d.ServicePoint.Name
	}

	for _, name := range d.SelectedCriteria {
		if score, ok := d.Scores[name]; ok {
			env.Ratings = append(env.Ratings, models.CriterionScore{Title: name, Score: score})
		}
	}
	var rest []string
	for name := range d.Scores {
		if !slices.Contains(d.SelectedCriteria, name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		env.Ratings = append(env.Ratings, models.CriterionScore{Title: name, Score: d.Scores[name]})
	}

	for name, text := range d.Comments {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if env.Comments == nil {
			env.Comments = make(map[string]string)
		}
		env.Comments[name] = text
	}

	if d.Other != nil {
		o := *d.Other
		if o.Department == "" {
			o.Department = env.ServicePoint
		}
		env.Other = &o
	}
	return env
}

type identityInput struct {
	Name  string `validate:"required_without=Phone"`
	Phone string `validate:"required_without=Name"`
	Email string `validate:"omitempty,email"`
}

// Validate rejects drafts that must not reach persistence. Every failure wraps
// ErrValidation.
func (d *Dispatcher) Validate(dr draft.Draft, hints draft.Hints) error {
	if strings.TrimSpace(hints.CompanyID) == "" {
		return fmt.Errorf("%w: session has no company", ErrValidation)
	}

	id := identityInput{
		Name:  strings.TrimSpace(dr.Identity.Name),
		Phone: strings.TrimSpace(dr.Identity.Phone),
		Email: strings.TrimSpace(dr.Identity.Email),
	}
	if err := d.validate.Struct(id); err != nil {
		return fmt.Errorf("%w: identity needs a name or a phone and a valid email: %v", ErrValidation, err)
	}

	if !scoring.CanAdvance(dr.SelectedCriteria, dr.Scores) {
		return fmt.Errorf("%w: %v", ErrValidation, scoring.ErrUnscoredCriteria)
	}
	for name, score := range dr.Scores {
		if score < 1 || score > 5 {
			return fmt.Errorf("%w: %q: %v", ErrValidation, name, scoring.ErrInvalidScore)
		}
	}
	if len(dr.Scores) > 0 && dr.ServicePoint == nil {
		return fmt.Errorf("%w: %v", ErrValidation, scoring.ErrNoServicePoint)
	}

	if dr.Other != nil {
		if err := d.validate.Struct(*dr.Other); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, scoring.ErrIncompleteOther)
		}
	}

	env := BuildEnvelope(dr, hints)
	if !env.HasRatings() && !env.HasFeedback() && !env.HasOther() {
		return fmt.Errorf("%w: nothing to submit", ErrValidation)
	}
	return nil
}
