package service

import (
	"encoding/json"
	"strings"

	"github.com/godilite/feedback-server/internal/repository/models"
)

// Filters never modify their input; each returns a new slice.

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "all")
}

// FilterByCriterion keeps episodes holding a criterion titled title.
func FilterByCriterion(episodes []Episode, title string) []Episode {
	out := make([]Episode, 0, len(episodes))
	for _, e := range episodes {
		if isAll(title) || hasCriterion(e, title) {
			out = append(out, e)
		}
	}
	return out
}

func hasCriterion(e Episode, title string) bool {
	for _, c := range e.Criteria {
		if strings.EqualFold(c.Name, title) {
			return true
		}
	}
	return false
}

func FilterByServicePoint(episodes []Episode, servicePoint string) []Episode {
	out := make([]Episode, 0, len(episodes))
	for _, e := range episodes {
		if isAll(servicePoint) || strings.EqualFold(e.ServicePoint, servicePoint) {
			out = append(out, e)
		}
	}
	return out
}

// FilterCommentsByServicePoint matches the service point the comment's rating
// was given to; comments without one match "Unknown".
func FilterCommentsByServicePoint(comments []CommentGroup, servicePoint string) []CommentGroup {
	out := make([]CommentGroup, 0, len(comments))
	for _, c := range comments {
		if isAll(servicePoint) || c.ServicePoint == servicePoint {
			out = append(out, c)
		}
	}
	return out
}

// FilterBySearch keeps items whose JSON form contains term, ignoring case.
func FilterBySearch[T any](items []T, term string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if term == "" {
			out = append(out, item)
			continue
		}
		raw, err := json.Marshal(item)
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(string(raw)), term) {
			out = append(out, item)
		}
	}
	return out
}

// MeaningfulOther drops Other rows with neither a label nor a comment.
func MeaningfulOther(rows []models.OtherRating) []models.OtherRating {
	out := make([]models.OtherRating, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.Criteria) != "" || strings.TrimSpace(r.Comments) != "" {
			out = append(out, r)
		}
	}
	return out
}
