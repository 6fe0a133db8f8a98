package grpc

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/godilite/feedback-server/api/v1"
	"github.com/godilite/feedback-server/internal/draft"
	"github.com/godilite/feedback-server/internal/scoring"
)

type sessionFunc func(ctx context.Context, store *draft.Store, engine *scoring.Engine) error

// withSession opens the session draft, applies fn and answers with the
// resulting draft.
func (s *GRPCHandlers) withSession(ctx context.Context, op, sessionID string, fn sessionFunc) (*pb.DraftResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	store, err := s.sessions.Open(ctx, sessionID)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	engine := s.engine(store)
	if fn != nil {
		if err := fn(ctx, store, engine); err != nil {
			return nil, s.handleError(ctx, op, err)
		}
	}
	return draftResponse(store.Get(), engine), nil
}

func (s *GRPCHandlers) engine(store *draft.Store) *scoring.Engine {
	return scoring.NewEngine(store,
		scoring.WithFallbackCriteria(s.fallback),
		scoring.WithLogger(s.logger),
	)
}

func criterionFor(custom bool, name string) scoring.Criterion {
	if custom {
		return scoring.Custom()
	}
	return scoring.Catalog(strings.TrimSpace(name))
}

func (s *GRPCHandlers) StartSession(ctx context.Context, req *pb.StartSessionRequest) (*pb.DraftResponse, error) {
	companyID := strings.TrimSpace(req.GetCompanyId())
	if companyID == "" {
		return nil, status.Error(codes.InvalidArgument, "company id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	store, err := s.sessions.Start(ctx, draft.Hints{CompanyID: companyID, BranchID: strings.TrimSpace(req.GetBranchId())})
	if err != nil {
		return nil, s.handleError(ctx, "StartSession", err)
	}
	return draftResponse(store.Get(), s.engine(store)), nil
}

func (s *GRPCHandlers) GetDraft(ctx context.Context, req *pb.SessionRequest) (*pb.DraftResponse, error) {
	return s.withSession(ctx, "GetDraft", req.GetSessionId(), nil)
}

func (s *GRPCHandlers) SetIdentity(ctx context.Context, req *pb.SetIdentityRequest) (*pb.DraftResponse, error) {
	return s.withSession(ctx, "SetIdentity", req.GetSessionId(), func(ctx context.Context, store *draft.Store, _ *scoring.Engine) error {
		return store.Patch(ctx, draft.Patch{Identity: &draft.Identity{
			Name:  strings.TrimSpace(req.Name),
			Phone: strings.TrimSpace(req.Phone),
			Email: strings.TrimSpace(req.Email),
			SMS:   req.Sms,
		}})
	})
}

func (s *GRPCHandlers) SelectServicePoint(ctx context.Context, req *pb.SelectServicePointRequest) (*pb.DraftResponse, error) {
	return s.withSession(ctx, "SelectServicePoint", req.GetSessionId(), func(ctx context.Context, store *draft.Store, engine *scoring.Engine) error {
		sp, err := s.catalog.ServicePoint(ctx, store.Hints().CompanyID, req.ServicePointId)
		if err != nil {
			return err
		}
		return engine.SelectServicePoint(ctx, sp)
	})
}

func (s *GRPCHandlers) ToggleCriterion(ctx context.Context, req *pb.ToggleCriterionRequest) (*pb.DraftResponse, error) {
	return s.withSession(ctx, "ToggleCriterion", req.GetSessionId(), func(ctx context.Context, _ *draft.Store, engine *scoring.Engine) error {
		return engine.ToggleCriterion(ctx, strings.TrimSpace(req.Criterion))
	})
}

func (s *GRPCHandlers) RateCriterion(ctx context.Context, req *pb.RateCriterionRequest) (*pb.DraftResponse, error) {
	return s.withSession(ctx, "RateCriterion", req.GetSessionId(), func(ctx context.Context, _ *draft.Store, engine *scoring.Engine) error {
		return engine.Rate(ctx, criterionFor(req.Custom, req.Criterion), int(req.Score))
	})
}

func (s *GRPCHandlers) AttachComment(ctx context.Context, req *pb.AttachCommentRequest) (*pb.DraftResponse, error) {
	return s.withSession(ctx, "AttachComment", req.GetSessionId(), func(ctx context.Context, _ *draft.Store, engine *scoring.Engine) error {
		return engine.AttachComment(ctx, criterionFor(req.Custom, req.Criterion), req.Text)
	})
}

func (s *GRPCHandlers) CaptureOther(ctx context.Context, req *pb.CaptureOtherRequest) (*pb.DraftResponse, error) {
	return s.withSession(ctx, "CaptureOther", req.GetSessionId(), func(ctx context.Context, _ *draft.Store, engine *scoring.Engine) error {
		return engine.CaptureOther(ctx, req.Label, int(req.Score), req.Reason)
	})
}

func (s *GRPCHandlers) CancelOther(ctx context.Context, req *pb.SessionRequest) (*pb.DraftResponse, error) {
	return s.withSession(ctx, "CancelOther", req.GetSessionId(), func(ctx context.Context, _ *draft.Store, engine *scoring.Engine) error {
		return engine.CancelOther(ctx)
	})
}

func (s *GRPCHandlers) SetSuggestion(ctx context.Context, req *pb.SetSuggestionRequest) (*pb.DraftResponse, error) {
	return s.withSession(ctx, "SetSuggestion", req.GetSessionId(), func(ctx context.Context, store *draft.Store, _ *scoring.Engine) error {
		text := req.Suggestion
		return store.Patch(ctx, draft.Patch{Suggestion: &text})
	})
}

// Submit dispatches the session draft. Writes that fail after the identity
// step are reported in the response, not as an error.
func (s *GRPCHandlers) Submit(ctx context.Context, req *pb.SessionRequest) (*pb.SubmitResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	store, err := s.sessions.Open(ctx, req.GetSessionId())
	if err != nil {
		return nil, s.handleError(ctx, "Submit", err)
	}

	result, err := s.submitter.Submit(ctx, store)
	if err != nil {
		return nil, s.handleError(ctx, "Submit", err)
	}

	if !result.Replayed {
		hints := store.Hints()
		keys := make([]string, len(dashboardKeys))
		for i, prefix := range dashboardKeys {
			keys[i] = normalizeKey(prefix, hints.CompanyID, hints.BranchID)
		}
		s.readThrough().invalidate(ctx, keys...)
	}

	if result.Partial() {
		s.logger.Warn("partial submission", zap.String("submission", result.SubmissionKey), zap.String("path", string(result.Path)))
	}
	return submitResponse(result), nil
}
