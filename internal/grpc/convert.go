package grpc

import (
	"slices"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	pb "github.com/godilite/feedback-server/api/v1"
	"github.com/godilite/feedback-server/internal/draft"
	"github.com/godilite/feedback-server/internal/repository/models"
	"github.com/godilite/feedback-server/internal/scoring"
	"github.com/godilite/feedback-server/internal/service"
	"github.com/godilite/feedback-server/internal/submission"
)

func draftResponse(d draft.Draft, engine *scoring.Engine) *pb.DraftResponse {
	resp := &pb.DraftResponse{Draft: toProtoDraft(d), CanAdvance: engine.CanAdvance()}

	criteria, err := engine.Criteria()
	if err != nil {
		return resp
	}
	resp.Criteria = make([]*pb.CriterionOption, len(criteria))
	for i, c := range criteria {
		opt := &pb.CriterionOption{Name: c.Name, Custom: c.IsCustom()}
		if c.IsCustom() {
			opt.Selected = d.Other != nil
			if d.Other != nil {
				opt.Score = int32(d.Other.Score)
			}
		} else {
			opt.Selected = slices.Contains(d.SelectedCriteria, c.Name)
			opt.Score = int32(d.Scores[c.Name])
		}
		resp.Criteria[i] = opt
	}
	return resp
}

func toProtoDraft(d draft.Draft) *pb.Draft {
	out := &pb.Draft{
		SessionId:     d.SessionID,
		SubmissionKey: d.SubmissionKey,
		Identity: &pb.Identity{
			Name:  d.Identity.Name,
			Phone: d.Identity.Phone,
			Email: d.Identity.Email,
			Sms:   d.Identity.SMS,
		},
		SelectedCriteria: slices.Clone(d.SelectedCriteria),
		Scores:           make(map[string]int32, len(d.Scores)),
		Comments:         make(map[string]string, len(d.Comments)),
		Suggestion:       d.Suggestion,
	}
	if out.SelectedCriteria == nil {
		out.SelectedCriteria = []string{}
	}
	for name, score := range d.Scores {
		out.Scores[name] = int32(score)
	}
	for name, text := range d.Comments {
		out.Comments[name] = text
	}
	if d.ServicePoint != nil {
		out.ServicePoint = &pb.ServicePointRef{Id: d.ServicePoint.ID, Name: d.ServicePoint.Name}
	}
	if d.Other != nil {
		out.Other = &pb.OtherCriterion{
			Label:      d.Other.Label,
			Score:      int32(d.Other.Score),
			Reason:     d.Other.Reason,
			Department: d.Other.Department,
		}
	}
	return out
}

func submitResponse(r submission.Result) *pb.SubmitResponse {
	out := &pb.SubmitResponse{
		SubmissionKey: r.SubmissionKey,
		Path:          string(r.Path),
		UserId:        r.UserID,
		SmsPending:    r.SMSPending,
		Replayed:      r.Replayed,
		Steps:         make([]*pb.StepResult, len(r.Steps)),
	}
	if r.RatingID != nil {
		out.RatingId = *r.RatingID
	}
	for i, step := range r.Steps {
		sr := &pb.StepResult{Step: string(step.Step), Status: string(step.Status)}
		if step.Err != nil {
			sr.Error = step.Err.Error()
		}
		out.Steps[i] = sr
	}
	for _, n := range r.Notices {
		out.Notices = append(out.Notices, &pb.Notice{Level: n.Level, Message: n.Message})
	}
	return out
}

func toProtoServicePoint(sp models.ServicePoint) *pb.ServicePoint {
	out := &pb.ServicePoint{
		Id:         sp.ID,
		Name:       sp.Name,
		Department: sp.Department,
		IsActive:   sp.IsActive,
		Criteria:   make([]*pb.Criterion, len(sp.Criteria)),
	}
	for i, c := range sp.Criteria {
		out.Criteria[i] = &pb.Criterion{
			Id:           c.ID,
			Title:        c.Title,
			IsRequired:   c.IsRequired,
			DisplayOrder: int32(c.DisplayOrder),
		}
	}
	return out
}

func timestamp(t time.Time) *timestamppb.Timestamp {
	if t.IsZero() {
		return nil
	}
	return timestamppb.New(t)
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

func toProtoOverview(o service.Overview) *pb.OverviewResponse {
	out := &pb.OverviewResponse{
		GlobalAverage:       o.GlobalAverage,
		Distribution:        make(map[int32]int64, len(o.Distribution)),
		TotalRatings:        int64(o.TotalRatings),
		TotalEpisodes:       int64(o.TotalEpisodes),
		TotalComments:       int64(o.TotalComments),
		TotalSuggestions:    int64(o.TotalSuggestions),
		ActiveServicePoints: int64(o.ActiveServicePoints),
		ServicePoints:       make([]*pb.ServicePointStats, len(o.ServicePoints)),
		Engagement: &pb.Engagement{
			Total:             int64(o.Engagement.Total),
			RatingOnly:        int64(o.Engagement.RatingOnly),
			SuggestionOnly:    int64(o.Engagement.SuggestionOnly),
			Both:              int64(o.Engagement.Both),
			RatingOnlyPct:     int32(o.Engagement.RatingOnlyPct),
			SuggestionOnlyPct: int32(o.Engagement.SuggestionOnlyPct),
			BothPct:           int32(o.Engagement.BothPct),
		},
	}
	for score, count := range o.Distribution {
		out.Distribution[int32(score)] = int64(count)
	}
	for i, sp := range o.ServicePoints {
		out.ServicePoints[i] = &pb.ServicePointStats{
			Name:          sp.Name,
			IsActive:      sp.IsActive,
			AverageRating: sp.AverageRating,
			RatingCount:   int64(sp.RatingCount),
			CommentCount:  int64(sp.CommentCount),
		}
	}
	for _, e := range o.Errors {
		out.Errors = append(out.Errors, &pb.SourceError{Source: e.Source, Message: e.Message})
	}
	return out
}

func toProtoEpisodes(episodes []service.Episode) []*pb.Episode {
	out := make([]*pb.Episode, len(episodes))
	for i, e := range episodes {
		criteria := make([]*pb.EpisodeCriterion, len(e.Criteria))
		for j, c := range e.Criteria {
			criteria[j] = &pb.EpisodeCriterion{Id: c.ID, Name: c.Name, Score: c.Score}
		}
		out[i] = &pb.Episode{
			ServicePoint: e.ServicePoint,
			UserId:       e.UserID,
			UserName:     e.UserName,
			UserPhone:    e.UserPhone,
			Date:         e.Date,
			CreatedAt:    timestamp(e.CreatedAt),
			Criteria:     criteria,
			AverageScore: e.AverageScore,
		}
	}
	return out
}

func toProtoComments(groups []service.CommentGroup) []*pb.CommentGroup {
	out := make([]*pb.CommentGroup, len(groups))
	for i, g := range groups {
		categories := make([]*pb.CommentCategory, len(g.Categories))
		for j, c := range g.Categories {
			categories[j] = &pb.CommentCategory{Category: c.Category, Content: c.Content}
		}
		out[i] = &pb.CommentGroup{
			Id:           g.ID,
			RatingId:     derefID(g.RatingID),
			ServicePoint: g.ServicePoint,
			UserName:     g.UserName,
			UserPhone:    g.UserPhone,
			Suggestion:   g.Suggestion,
			Categories:   categories,
			CreatedAt:    timestamp(g.CreatedAt),
		}
	}
	return out
}

func toProtoSuggestions(suggestions []service.Suggestion) []*pb.Suggestion {
	out := make([]*pb.Suggestion, len(suggestions))
	for i, s := range suggestions {
		out[i] = &pb.Suggestion{
			Id:        s.ID,
			RatingId:  derefID(s.RatingID),
			UserName:  s.UserName,
			UserPhone: s.UserPhone,
			Text:      s.Text,
			CreatedAt: timestamp(s.CreatedAt),
		}
	}
	return out
}

func toProtoOther(rows []models.OtherRating) []*pb.OtherRating {
	out := make([]*pb.OtherRating, len(rows))
	for i, r := range rows {
		out[i] = &pb.OtherRating{
			Id:         r.ID,
			Criteria:   r.Criteria,
			Score:      int32(r.Score),
			Comments:   r.Comments,
			Department: r.Department,
			CreatedAt:  timestamp(r.CreatedAt),
		}
	}
	return out
}
