package submission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/godilite/feedback-server/internal/draft"
	"github.com/godilite/feedback-server/internal/repository/models"
	"github.com/godilite/feedback-server/internal/submission"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		draft draft.Draft
		want  submission.Path
	}{
		{"ratings only", draft.Draft{Scores: map[string]int{"Speed": 5}}, submission.PathRatingOnly},
		{"suggestion only", draft.Draft{Suggestion: "more parking"}, submission.PathSuggestionOnly},
		{"both", draft.Draft{Scores: map[string]int{"Speed": 5}, Suggestion: "more parking"}, submission.PathBoth},
		{"blank suggestion", draft.Draft{Scores: map[string]int{"Speed": 5}, Suggestion: "   "}, submission.PathRatingOnly},
		{"other only", draft.Draft{Other: &draft.OtherCriterion{Label: "Parking", Score: 2, Reason: "small"}}, submission.PathRatingOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, submission.Classify(tt.draft))
		})
	}
}

func TestBuildEnvelope(t *testing.T) {
	d := draft.New("s")
	d.ServicePoint = &draft.ServicePoint{Name: "Teller"}
	d.SelectedCriteria = []string{"Speed", "Courtesy"}
	d.Scores = map[string]int{"Courtesy": 4, "Speed": 5}
	d.Comments = map[string]string{"Speed": "fast", "Courtesy": " "}
	d.Other = &draft.OtherCriterion{Label: "Parking", Score: 2, Reason: "small"}

	env := submission.BuildEnvelope(d, draft.Hints{CompanyID: "c1", BranchID: "b1"})

	assert.Equal(t, "c1", env.CompanyID)
	assert.Equal(t, "b1", env.BranchID)
	assert.Equal(t, "Teller", env.ServicePoint)
	assert.Equal(t, []models.CriterionScore{{Title: "Speed", Score: 5}, {Title: "Courtesy", Score: 4}}, env.Ratings)
	assert.Equal(t, map[string]string{"Speed": "fast"}, env.Comments)
	assert.True(t, env.HasFeedback())
	assert.True(t, env.HasOther())
	assert.Equal(t, "Teller", env.Other.Department, "department defaults to the service point")
	assert.Equal(t, "Parking", d.Other.Label)
	assert.Empty(t, d.Other.Department, "the draft is not modified")
}
