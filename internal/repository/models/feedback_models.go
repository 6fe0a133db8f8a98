package models

import "time"

// User is the identity row written first on every submission.
type User struct {
	ID            int64
	SubmissionKey string
	Name          string
	Phone         string
	Email         string
	CompanyID     string
	BranchID      string
	UserPath      string
	SMSStatus     string
	CreatedAt     time.Time
}

type Criterion struct {
	ID           int64
	Title        string
	IsRequired   bool
	DisplayOrder int
}

type ServicePoint struct {
	ID         int64
	CompanyID  string
	Name       string
	Department string
	IsActive   bool
	Criteria   []Criterion
}

// CriterionScore is one (criterion, score) pair of an episode. When CriterionID
// is zero the criterion is resolved, and created if needed, by Title.
type CriterionScore struct {
	CriterionID int64
	Title       string
	Score       int
}

// EpisodeInput is the argument of the atomic multi-rating insert.
type EpisodeInput struct {
	CompanyID    string
	BranchID     string
	UserID       int64
	ServicePoint string
	Ratings      []CriterionScore
}

// RatingRow is one persisted per-criterion rating joined with its criterion and rater.
type RatingRow struct {
	ID            int64
	ServicePoint  string
	Score         *float64
	CriterionID   int64
	CriterionName string
	UserID        int64
	UserName      string
	UserPhone     string
	CreatedAt     time.Time
}

type Feedback struct {
	ID         int64
	CompanyID  string
	BranchID   string
	UserID     int64
	UserName   string
	UserPhone  string
	RatingID   *int64
	Comments   map[string]string
	Suggestion string
	CreatedAt  time.Time
}

// OtherRating is a user-authored criterion outside the catalog.
type OtherRating struct {
	ID         int64
	CompanyID  string
	BranchID   string
	UserID     int64
	Criteria   string
	Score      int
	Comments   string
	Department string
	CreatedAt  time.Time
}

type Rater struct {
	ID        int64
	Name      string
	Phone     string
	Email     string
	UserPath  string
	CreatedAt time.Time
}
