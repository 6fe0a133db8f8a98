package service

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/godilite/feedback-server/internal/repository/models"
)

const unknownServicePoint = "Unknown"

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }

// episodeKey identifies the rows of one submission: same service point, same
// rater, same day and the same full timestamp.
func episodeKey(r models.RatingRow) string {
	ts := r.CreatedAt.UTC()
	return strings.Join([]string{
		r.ServicePoint,
		strconv.FormatInt(r.UserID, 10),
		ts.Format("2006-01-02"),
		ts.Format("2006-01-02T15:04:05.999999999Z07:00"),
	}, "|")
}

// GroupEpisodes folds per-criterion rows into episodes in first-seen order.
// Rows without a score are listed but excluded from the average.
func GroupEpisodes(rows []models.RatingRow) []Episode {
	type acc struct {
		episode Episode
		total   float64
		count   int
	}

	order := make([]string, 0)
	groups := make(map[string]*acc)
	for _, r := range rows {
		key := episodeKey(r)
		g, ok := groups[key]
		if !ok {
			g = &acc{episode: Episode{
				ServicePoint: r.ServicePoint,
				UserID:       r.UserID,
				UserName:     r.UserName,
				UserPhone:    r.UserPhone,
				Date:         r.CreatedAt.UTC().Format("2006-01-02"),
				CreatedAt:    r.CreatedAt,
			}}
			groups[key] = g
			order = append(order, key)
		}

		var score *float64
		if r.Score != nil {
			v := *r.Score
			score = &v
			g.total += v
			g.count++
		}
		g.episode.Criteria = append(g.episode.Criteria, EpisodeCriterion{ID: r.CriterionID, Name: r.CriterionName, Score: score})
	}

	out := make([]Episode, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if g.count > 0 {
			g.episode.AverageScore = round2(g.total / float64(g.count))
		}
		out = append(out, g.episode)
	}
	return out
}

// Distribution buckets every numeric score by its rounded value. Values that
// round outside 1..5 are not bucketed.
func Distribution(rows []models.RatingRow) map[int]int {
	buckets := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range rows {
		if r.Score == nil {
			continue
		}
		b := int(math.Round(*r.Score))
		if b >= 1 && b <= 5 {
			buckets[b]++
		}
	}
	return buckets
}

// GlobalAverage is the mean of all numeric scores to one decimal, or 0.
func GlobalAverage(rows []models.RatingRow) float64 {
	var sum float64
	var count int
	for _, r := range rows {
		if r.Score != nil {
			sum += *r.Score
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return round1(sum / float64(count))
}

func ServicePointAverage(rows []models.RatingRow, servicePoint string) float64 {
	return GlobalAverage(rowsForServicePoint(rows, servicePoint))
}

func rowsForServicePoint(rows []models.RatingRow, servicePoint string) []models.RatingRow {
	var out []models.RatingRow
	for _, r := range rows {
		if r.ServicePoint == servicePoint {
			out = append(out, r)
		}
	}
	return out
}

// GroupComments lists feedback carrying comments, newest first, each tagged
// with the service point of the rating it belongs to.
func GroupComments(feedback []models.Feedback, rows []models.RatingRow) []CommentGroup {
	servicePoints := ratingServicePoints(rows)

	out := make([]CommentGroup, 0)
	for _, f := range feedback {
		if len(f.Comments) == 0 {
			continue
		}
		names := make([]string, 0, len(f.Comments))
		for name := range f.Comments {
			names = append(names, name)
		}
		sort.Strings(names)

		cats := make([]CommentCategory, 0, len(names))
		for _, name := range names {
			cats = append(cats, CommentCategory{Category: name, Content: f.Comments[name]})
		}

		out = append(out, CommentGroup{
			ID:           f.ID,
			RatingID:     f.RatingID,
			ServicePoint: lookupServicePoint(servicePoints, f.RatingID),
			UserName:     orUnknown(f.UserName),
			UserPhone:    f.UserPhone,
			Suggestion:   f.Suggestion,
			Categories:   cats,
			CreatedAt:    f.CreatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Suggestions lists feedback with non-blank suggestion text, newest first.
func Suggestions(feedback []models.Feedback) []Suggestion {
	out := make([]Suggestion, 0)
	for _, f := range feedback {
		if strings.TrimSpace(f.Suggestion) == "" {
			continue
		}
		out = append(out, Suggestion{
			ID:        f.ID,
			RatingID:  f.RatingID,
			UserName:  orUnknown(f.UserName),
			UserPhone: f.UserPhone,
			Text:      f.Suggestion,
			CreatedAt: f.CreatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// ServicePointBreakdown computes per service point statistics for every
// catalog service point and any other name found in the rating rows.
func ServicePointBreakdown(points []models.ServicePoint, rows []models.RatingRow, comments []CommentGroup) []ServicePointStats {
	out := make([]ServicePointStats, 0, len(points))
	seen := make(map[string]bool)
	add := func(name string, active bool) {
		if seen[name] {
			return
		}
		seen[name] = true
		spRows := rowsForServicePoint(rows, name)
		stats := ServicePointStats{
			Name:          name,
			IsActive:      active,
			AverageRating: GlobalAverage(spRows),
			RatingCount:   len(spRows),
		}
		for _, c := range comments {
			if c.ServicePoint == name {
				stats.CommentCount++
			}
		}
		out = append(out, stats)
	}

	for _, sp := range points {
		add(sp.Name, sp.IsActive)
	}
	for _, r := range rows {
		add(r.ServicePoint, false)
	}
	return out
}

func EngagementOf(raters []models.Rater) Engagement {
	e := Engagement{Total: len(raters)}
	for _, r := range raters {
		switch r.UserPath {
		case "rating_only":
			e.RatingOnly++
		case "suggestion_only":
			e.SuggestionOnly++
		case "both":
			e.Both++
		}
	}
	if e.Total > 0 {
		e.RatingOnlyPct = int(math.Round(float64(e.RatingOnly) / float64(e.Total) * 100))
		e.SuggestionOnlyPct = int(math.Round(float64(e.SuggestionOnly) / float64(e.Total) * 100))
		e.BothPct = int(math.Round(float64(e.Both) / float64(e.Total) * 100))
	}
	return e
}

func ratingServicePoints(rows []models.RatingRow) map[int64]string {
	out := make(map[int64]string, len(rows))
	for _, r := range rows {
		out[r.ID] = r.ServicePoint
	}
	return out
}

func lookupServicePoint(index map[int64]string, ratingID *int64) string {
	if ratingID == nil {
		return unknownServicePoint
	}
	if sp, ok := index[*ratingID]; ok {
		return sp
	}
	return unknownServicePoint
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
