// Package draft holds the in-progress rating submission of one session and
// mirrors it to a durable cache after every change.
package draft

import "maps"

type Identity struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	// SMS marks a deferred identity confirmed later by text message.
	SMS bool `json:"sms"`
}

// ServicePoint is the selected rating target and the criteria it offers.
type ServicePoint struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Criteria []string `json:"criteria"`
}

// OtherCriterion is a user-authored criterion outside the catalog. It is
// either fully populated or absent from a draft.
type OtherCriterion struct {
	Label      string `json:"label" validate:"required"`
	Score      int    `json:"score" validate:"min=1,max=5"`
	Reason     string `json:"reason" validate:"required"`
	Department string `json:"department"`
}

type Draft struct {
	SessionID        string            `json:"sessionId"`
	SubmissionKey    string            `json:"submissionKey"`
	Identity         Identity          `json:"identity"`
	ServicePoint     *ServicePoint     `json:"servicePoint"`
	SelectedCriteria []string          `json:"selectedCriteria"`
	Scores           map[string]int    `json:"scores"`
	Comments         map[string]string `json:"comments"`
	Other            *OtherCriterion   `json:"otherCriterion"`
	Suggestion       string            `json:"suggestion"`
}

// New returns the empty initial draft of a session.
func New(sessionID string) Draft {
	return Draft{
		SessionID:        sessionID,
		SelectedCriteria: []string{},
		Scores:           map[string]int{},
		Comments:         map[string]string{},
	}
}

// Hints are per-session values that outlive a submitted draft.
type Hints struct {
	CompanyID string `json:"companyId"`
	BranchID  string `json:"branchId"`
}

// Patch is a shallow update. Nil fields are left untouched; non-nil fields
// replace the draft's value wholesale.
type Patch struct {
	SubmissionKey     *string
	Identity          *Identity
	ServicePoint      *ServicePoint
	ClearServicePoint bool
	SelectedCriteria  []string
	Scores            map[string]int
	Comments          map[string]string
	Other             *OtherCriterion
	ClearOther        bool
	Suggestion        *string
}

func (d Draft) apply(p Patch) Draft {
	if p.SubmissionKey != nil {
		d.SubmissionKey = *p.SubmissionKey
	}
	if p.Identity != nil {
		d.Identity = *p.Identity
	}
	if p.ClearServicePoint {
		d.ServicePoint = nil
	}
	if p.ServicePoint != nil {
		sp := *p.ServicePoint
		sp.Criteria = append([]string{}, sp.Criteria...)
		d.ServicePoint = &sp
	}
	if p.SelectedCriteria != nil {
		d.SelectedCriteria = append([]string{}, p.SelectedCriteria...)
	}
	if p.Scores != nil {
		d.Scores = maps.Clone(p.Scores)
	}
	if p.Comments != nil {
		d.Comments = maps.Clone(p.Comments)
	}
	if p.ClearOther {
		d.Other = nil
	}
	if p.Other != nil {
		o := *p.Other
		d.Other = &o
	}
	if p.Suggestion != nil {
		d.Suggestion = *p.Suggestion
	}
	return d
}

// Clone returns a deep copy so callers can never mutate the store's draft.
func (d Draft) Clone() Draft {
	out := d
	if d.ServicePoint != nil {
		sp := *d.ServicePoint
		sp.Criteria = append([]string{}, d.ServicePoint.Criteria...)
		out.ServicePoint = &sp
	}
	out.SelectedCriteria = append([]string{}, d.SelectedCriteria...)
	out.Scores = maps.Clone(d.Scores)
	if out.Scores == nil {
		out.Scores = map[string]int{}
	}
	out.Comments = maps.Clone(d.Comments)
	if out.Comments == nil {
		out.Comments = map[string]string{}
	}
	if d.Other != nil {
		o := *d.Other
		out.Other = &o
	}
	return out
}
