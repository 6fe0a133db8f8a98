package service

import "time"

type EpisodeCriterion struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Score *float64 `json:"score"`
}

// Episode is one user's submission for one service point at one instant.
type Episode struct {
	ServicePoint string             `json:"servicePoint"`
	UserID       int64              `json:"userId"`
	UserName     string             `json:"userName"`
	UserPhone    string             `json:"userPhone"`
	Date         string             `json:"date"`
	CreatedAt    time.Time          `json:"createdAt"`
	Criteria     []EpisodeCriterion `json:"criteria"`
	AverageScore float64            `json:"averageScore"`
}

type CommentCategory struct {
	Category string `json:"category"`
	Content  string `json:"content"`
}

type CommentGroup struct {
	ID           int64             `json:"id"`
	RatingID     *int64            `json:"ratingId"`
	ServicePoint string            `json:"servicePoint"`
	UserName     string            `json:"userName"`
	UserPhone    string            `json:"userPhone"`
	Suggestion   string            `json:"suggestion"`
	Categories   []CommentCategory `json:"categories"`
	CreatedAt    time.Time         `json:"createdAt"`
}

type Suggestion struct {
	ID        int64     `json:"id"`
	RatingID  *int64    `json:"ratingId"`
	UserName  string    `json:"userName"`
	UserPhone string    `json:"userPhone"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type ServicePointStats struct {
	Name          string  `json:"name"`
	IsActive      bool    `json:"isActive"`
	AverageRating float64 `json:"averageRating"`
	RatingCount   int     `json:"ratingCount"`
	CommentCount  int     `json:"commentCount"`
}

// Engagement counts raters by the path they took through the flow.
type Engagement struct {
	Total             int `json:"total"`
	RatingOnly        int `json:"ratingOnly"`
	SuggestionOnly    int `json:"suggestionOnly"`
	Both              int `json:"both"`
	RatingOnlyPct     int `json:"ratingOnlyPct"`
	SuggestionOnlyPct int `json:"suggestionOnlyPct"`
	BothPct           int `json:"bothPct"`
}

// SourceError records a dashboard data source that could not be read.
type SourceError struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

type Overview struct {
	GlobalAverage       float64             `json:"globalAverage"`
	Distribution        map[int]int         `json:"distribution"`
	TotalRatings        int                 `json:"totalRatings"`
	TotalEpisodes       int                 `json:"totalEpisodes"`
	TotalComments       int                 `json:"totalComments"`
	TotalSuggestions    int                 `json:"totalSuggestions"`
	ActiveServicePoints int                 `json:"activeServicePoints"`
	ServicePoints       []ServicePointStats `json:"servicePoints"`
	Engagement          Engagement          `json:"engagement"`
	Errors              []SourceError       `json:"errors,omitempty"`
}

// CriterionInput is one catalog criterion to create or update.
type CriterionInput struct {
	Title        string `validate:"required"`
	IsRequired   bool
	DisplayOrder int `validate:"min=0"`
}
