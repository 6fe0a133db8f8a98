// Package v1 defines the feedback.v1.Feedback gRPC API: its messages, service
// descriptor and client.
package v1

import "google.golang.org/protobuf/types/known/timestamppb"

// Session flow

type StartSessionRequest struct {
	CompanyId string `json:"companyId"`
	BranchId  string `json:"branchId"`
}

func (x *StartSessionRequest) GetCompanyId() string {
	if x != nil {
		return x.CompanyId
	}
	return ""
}

func (x *StartSessionRequest) GetBranchId() string {
	if x != nil {
		return x.BranchId
	}
	return ""
}

type SessionRequest struct {
	SessionId string `json:"sessionId"`
}

func (x *SessionRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

type SetIdentityRequest struct {
	SessionId string `json:"sessionId"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Sms       bool   `json:"sms"`
}

func (x *SetIdentityRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

type SelectServicePointRequest struct {
	SessionId      string `json:"sessionId"`
	ServicePointId int64  `json:"servicePointId"`
}

func (x *SelectServicePointRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

type ToggleCriterionRequest struct {
	SessionId string `json:"sessionId"`
	Criterion string `json:"criterion"`
}

func (x *ToggleCriterionRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

// RateCriterionRequest rates a catalog criterion by name, or the captured
// custom criterion when Custom is set.
type RateCriterionRequest struct {
	SessionId string `json:"sessionId"`
	Criterion string `json:"criterion"`
	Custom    bool   `json:"custom"`
	Score     int32  `json:"score"`
}

func (x *RateCriterionRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

type AttachCommentRequest struct {
	SessionId string `json:"sessionId"`
	Criterion string `json:"criterion"`
	Custom    bool   `json:"custom"`
	Text      string `json:"text"`
}

func (x *AttachCommentRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

type CaptureOtherRequest struct {
	SessionId string `json:"sessionId"`
	Label     string `json:"label"`
	Score     int32  `json:"score"`
	Reason    string `json:"reason"`
}

func (x *CaptureOtherRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

type SetSuggestionRequest struct {
	SessionId  string `json:"sessionId"`
	Suggestion string `json:"suggestion"`
}

func (x *SetSuggestionRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

type Identity struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Sms   bool   `json:"sms"`
}

type ServicePointRef struct {
	Id   int64  `json:"id"`
	Name string `json:"name"`
}

type OtherCriterion struct {
	Label      string `json:"label"`
	Score      int32  `json:"score"`
	Reason     string `json:"reason"`
	Department string `json:"department"`
}

type Draft struct {
	SessionId        string            `json:"sessionId"`
	SubmissionKey    string            `json:"submissionKey,omitempty"`
	Identity         *Identity         `json:"identity"`
	ServicePoint     *ServicePointRef  `json:"servicePoint,omitempty"`
	SelectedCriteria []string          `json:"selectedCriteria"`
	Scores           map[string]int32  `json:"scores"`
	Comments         map[string]string `json:"comments"`
	Other            *OtherCriterion   `json:"other,omitempty"`
	Suggestion       string            `json:"suggestion"`
}

// CriterionOption is one selectable tile of the rating step.
type CriterionOption struct {
	Name     string `json:"name"`
	Custom   bool   `json:"custom"`
	Selected bool   `json:"selected"`
	Score    int32  `json:"score,omitempty"`
}

type DraftResponse struct {
	Draft      *Draft             `json:"draft"`
	Criteria   []*CriterionOption `json:"criteria,omitempty"`
	CanAdvance bool               `json:"canAdvance"`
}

func (x *DraftResponse) GetDraft() *Draft {
	if x != nil {
		return x.Draft
	}
	return nil
}

type StepResult struct {
	Step   string `json:"step"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type SubmitResponse struct {
	SubmissionKey string        `json:"submissionKey"`
	Path          string        `json:"path"`
	UserId        int64         `json:"userId"`
	RatingId      int64         `json:"ratingId,omitempty"`
	SmsPending    bool          `json:"smsPending"`
	Replayed      bool          `json:"replayed"`
	Steps         []*StepResult `json:"steps"`
	Notices       []*Notice     `json:"notices,omitempty"`
}

// Catalog

type ListServicePointsRequest struct {
	CompanyId string `json:"companyId"`
}

func (x *ListServicePointsRequest) GetCompanyId() string {
	if x != nil {
		return x.CompanyId
	}
	return ""
}

type Criterion struct {
	Id           int64  `json:"id"`
	Title        string `json:"title"`
	IsRequired   bool   `json:"isRequired"`
	DisplayOrder int32  `json:"displayOrder"`
}

type ServicePoint struct {
	Id         int64        `json:"id"`
	Name       string       `json:"name"`
	Department string       `json:"department"`
	IsActive   bool         `json:"isActive"`
	Criteria   []*Criterion `json:"criteria"`
}

type ListServicePointsResponse struct {
	ServicePoints []*ServicePoint `json:"servicePoints"`
}

// CriterionInput leaves IsRequired unset to mean required.
type CriterionInput struct {
	Title        string `json:"title"`
	IsRequired   *bool  `json:"isRequired,omitempty"`
	DisplayOrder int32  `json:"displayOrder"`
}

type UpsertCriteriaRequest struct {
	CompanyId      string            `json:"companyId"`
	ServicePointId int64             `json:"servicePointId"`
	Criteria       []*CriterionInput `json:"criteria"`
}

func (x *UpsertCriteriaRequest) GetCompanyId() string {
	if x != nil {
		return x.CompanyId
	}
	return ""
}

type UpsertCriteriaResponse struct {
	Ids []int64 `json:"ids"`
}

// Dashboard

// DashboardRequest scopes a dashboard read to a company branch. The filter
// fields apply to the listing calls that support them; "all" or empty
// disables a filter.
type DashboardRequest struct {
	CompanyId    string `json:"companyId"`
	BranchId     string `json:"branchId"`
	Criterion    string `json:"criterion,omitempty"`
	ServicePoint string `json:"servicePoint,omitempty"`
	Search       string `json:"search,omitempty"`
}

func (x *DashboardRequest) GetCompanyId() string {
	if x != nil {
		return x.CompanyId
	}
	return ""
}

func (x *DashboardRequest) GetBranchId() string {
	if x != nil {
		return x.BranchId
	}
	return ""
}

type ServicePointStats struct {
	Name          string  `json:"name"`
	IsActive      bool    `json:"isActive"`
	AverageRating float64 `json:"averageRating"`
	RatingCount   int64   `json:"ratingCount"`
	CommentCount  int64   `json:"commentCount"`
}

type Engagement struct {
	Total             int64 `json:"total"`
	RatingOnly        int64 `json:"ratingOnly"`
	SuggestionOnly    int64 `json:"suggestionOnly"`
	Both              int64 `json:"both"`
	RatingOnlyPct     int32 `json:"ratingOnlyPct"`
	SuggestionOnlyPct int32 `json:"suggestionOnlyPct"`
	BothPct           int32 `json:"bothPct"`
}

type SourceError struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

type OverviewResponse struct {
	GlobalAverage       float64              `json:"globalAverage"`
	Distribution        map[int32]int64      `json:"distribution"`
	TotalRatings        int64                `json:"totalRatings"`
	TotalEpisodes       int64                `json:"totalEpisodes"`
	TotalComments       int64                `json:"totalComments"`
	TotalSuggestions    int64                `json:"totalSuggestions"`
	ActiveServicePoints int64                `json:"activeServicePoints"`
	ServicePoints       []*ServicePointStats `json:"servicePoints"`
	Engagement          *Engagement          `json:"engagement"`
	Errors              []*SourceError       `json:"errors,omitempty"`
}

type EpisodeCriterion struct {
	Id    int64    `json:"id"`
	Name  string   `json:"name"`
	Score *float64 `json:"score"`
}

type Episode struct {
	ServicePoint string                 `json:"servicePoint"`
	UserId       int64                  `json:"userId"`
	UserName     string                 `json:"userName"`
	UserPhone    string                 `json:"userPhone"`
	Date         string                 `json:"date"`
	CreatedAt    *timestamppb.Timestamp `json:"createdAt"`
	Criteria     []*EpisodeCriterion    `json:"criteria"`
	AverageScore float64                `json:"averageScore"`
}

type EpisodesResponse struct {
	Episodes []*Episode `json:"episodes"`
}

type CommentCategory struct {
	Category string `json:"category"`
	Content  string `json:"content"`
}

type CommentGroup struct {
	Id           int64                  `json:"id"`
	RatingId     int64                  `json:"ratingId,omitempty"`
	ServicePoint string                 `json:"servicePoint"`
	UserName     string                 `json:"userName"`
	UserPhone    string                 `json:"userPhone"`
	Suggestion   string                 `json:"suggestion,omitempty"`
	Categories   []*CommentCategory     `json:"categories"`
	CreatedAt    *timestamppb.Timestamp `json:"createdAt"`
}

type CommentsResponse struct {
	Comments []*CommentGroup `json:"comments"`
}

type Suggestion struct {
	Id        int64                  `json:"id"`
	RatingId  int64                  `json:"ratingId,omitempty"`
	UserName  string                 `json:"userName"`
	UserPhone string                 `json:"userPhone"`
	Text      string                 `json:"text"`
	CreatedAt *timestamppb.Timestamp `json:"createdAt"`
}

type SuggestionsResponse struct {
	Suggestions []*Suggestion `json:"suggestions"`
}

type OtherRating struct {
	Id         int64                  `json:"id"`
	Criteria   string                 `json:"criteria"`
	Score      int32                  `json:"score"`
	Comments   string                 `json:"comments"`
	Department string                 `json:"department"`
	CreatedAt  *timestamppb.Timestamp `json:"createdAt"`
}

type OtherResponse struct {
	Other []*OtherRating `json:"other"`
}
