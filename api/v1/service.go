package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "feedback.v1.Feedback"

// FeedbackServer is the server API for the Feedback service.
type FeedbackServer interface {
	StartSession(context.Context, *StartSessionRequest) (*DraftResponse, error)
	GetDraft(context.Context, *SessionRequest) (*DraftResponse, error)
	SetIdentity(context.Context, *SetIdentityRequest) (*DraftResponse, error)
	SelectServicePoint(context.Context, *SelectServicePointRequest) (*DraftResponse, error)
	ToggleCriterion(context.Context, *ToggleCriterionRequest) (*DraftResponse, error)
	RateCriterion(context.Context, *RateCriterionRequest) (*DraftResponse, error)
	AttachComment(context.Context, *AttachCommentRequest) (*DraftResponse, error)
	CaptureOther(context.Context, *CaptureOtherRequest) (*DraftResponse, error)
	CancelOther(context.Context, *SessionRequest) (*DraftResponse, error)
	SetSuggestion(context.Context, *SetSuggestionRequest) (*DraftResponse, error)
	Submit(context.Context, *SessionRequest) (*SubmitResponse, error)

	ListServicePoints(context.Context, *ListServicePointsRequest) (*ListServicePointsResponse, error)
	UpsertCriteria(context.Context, *UpsertCriteriaRequest) (*UpsertCriteriaResponse, error)

	GetOverview(context.Context, *DashboardRequest) (*OverviewResponse, error)
	ListEpisodes(context.Context, *DashboardRequest) (*EpisodesResponse, error)
	ListComments(context.Context, *DashboardRequest) (*CommentsResponse, error)
	ListSuggestions(context.Context, *DashboardRequest) (*SuggestionsResponse, error)
	ListOther(context.Context, *DashboardRequest) (*OtherResponse, error)
}

// UnimplementedFeedbackServer answers every method with codes.Unimplemented.
// Embed it to stay forward compatible.
type UnimplementedFeedbackServer struct{}

func (UnimplementedFeedbackServer) StartSession(context.Context, *StartSessionRequest) (*DraftResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method StartSession not implemented")
}
func (UnimplementedFeedbackServer) GetDraft(context.Context, *SessionRequest) (*DraftResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDraft not implemented")
}
func (UnimplementedFeedbackServer) SetIdentity(context.Context, *SetIdentityRequest) (*DraftResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetIdentity not implemented")
}
func (UnimplementedFeedbackServer) SelectServicePoint(context.Context, *SelectServicePointRequest) (*DraftResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SelectServicePoint not implemented")
}
func (UnimplementedFeedbackServer) ToggleCriterion(context.Context, *ToggleCriterionRequest) (*DraftResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ToggleCriterion not implemented")
}
func (UnimplementedFeedbackServer) RateCriterion(context.Context, *RateCriterionRequest) (*DraftResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RateCriterion not implemented")
}
func (UnimplementedFeedbackServer) AttachComment(context.Context, *AttachCommentRequest) (*DraftResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AttachComment not implemented")
}
func (UnimplementedFeedbackServer) CaptureOther(context.Context, *CaptureOtherRequest) (*DraftResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CaptureOther not implemented")
}
func (UnimplementedFeedbackServer) CancelOther(context.Context, *SessionRequest) (*DraftResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelOther not implemented")
}
func (UnimplementedFeedbackServer) SetSuggestion(context.Context, *SetSuggestionRequest) (*DraftResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetSuggestion not implemented")
}
func (UnimplementedFeedbackServer) Submit(context.Context, *SessionRequest) (*SubmitResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Submit not implemented")
}
func (UnimplementedFeedbackServer) ListServicePoints(context.Context, *ListServicePointsRequest) (*ListServicePointsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListServicePoints not implemented")
}
func (UnimplementedFeedbackServer) UpsertCriteria(context.Context, *UpsertCriteriaRequest) (*UpsertCriteriaResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpsertCriteria not implemented")
}
func (UnimplementedFeedbackServer) GetOverview(context.Context, *DashboardRequest) (*OverviewResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetOverview not implemented")
}
func (UnimplementedFeedbackServer) ListEpisodes(context.Context, *DashboardRequest) (*EpisodesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListEpisodes not implemented")
}
func (UnimplementedFeedbackServer) ListComments(context.Context, *DashboardRequest) (*CommentsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListComments not implemented")
}
func (UnimplementedFeedbackServer) ListSuggestions(context.Context, *DashboardRequest) (*SuggestionsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListSuggestions not implemented")
}
func (UnimplementedFeedbackServer) ListOther(context.Context, *DashboardRequest) (*OtherResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListOther not implemented")
}

func unary[Req, Resp any](name string, call func(FeedbackServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FeedbackServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(FeedbackServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// FeedbackServiceDesc describes the Feedback service for grpc.Server.RegisterService.
var FeedbackServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FeedbackServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("StartSession", FeedbackServer.StartSession),
		unary("GetDraft", FeedbackServer.GetDraft),
		unary("SetIdentity", FeedbackServer.SetIdentity),
		unary("SelectServicePoint", FeedbackServer.SelectServicePoint),
		unary("ToggleCriterion", FeedbackServer.ToggleCriterion),
		unary("RateCriterion", FeedbackServer.RateCriterion),
		unary("AttachComment", FeedbackServer.AttachComment),
		unary("CaptureOther", FeedbackServer.CaptureOther),
		unary("CancelOther", FeedbackServer.CancelOther),
		unary("SetSuggestion", FeedbackServer.SetSuggestion),
		unary("Submit", FeedbackServer.Submit),
		unary("ListServicePoints", FeedbackServer.ListServicePoints),
		unary("UpsertCriteria", FeedbackServer.UpsertCriteria),
		unary("GetOverview", FeedbackServer.GetOverview),
		unary("ListEpisodes", FeedbackServer.ListEpisodes),
		unary("ListComments", FeedbackServer.ListComments),
		unary("ListSuggestions", FeedbackServer.ListSuggestions),
		unary("ListOther", FeedbackServer.ListOther),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "feedback/v1/feedback.proto",
}

func RegisterFeedbackServer(s grpc.ServiceRegistrar, srv FeedbackServer) {
	s.RegisterService(&FeedbackServiceDesc, srv)
}

// FeedbackClient calls the Feedback service using the JSON codec.
type FeedbackClient struct {
	cc grpc.ClientConnInterface
}

func NewFeedbackClient(cc grpc.ClientConnInterface) *FeedbackClient {
	return &FeedbackClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FeedbackClient) StartSession(ctx context.Context, in *StartSessionRequest, opts ...grpc.CallOption) (*DraftResponse, error) {
	return invoke[DraftResponse](ctx, c.cc, "StartSession", in, opts)
}

func (c *FeedbackClient) GetDraft(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*DraftResponse, error) {
	return invoke[DraftResponse](ctx, c.cc, "GetDraft", in, opts)
}

func (c *FeedbackClient) SetIdentity(ctx context.Context, in *SetIdentityRequest, opts ...grpc.CallOption) (*DraftResponse, error) {
	return invoke[DraftResponse](ctx, c.cc, "SetIdentity", in, opts)
}

func (c *FeedbackClient) SelectServicePoint(ctx context.Context, in *SelectServicePointRequest, opts ...grpc.CallOption) (*DraftResponse, error) {
	return invoke[DraftResponse](ctx, c.cc, "SelectServicePoint", in, opts)
}

func (c *FeedbackClient) ToggleCriterion(ctx context.Context, in *ToggleCriterionRequest, opts ...grpc.CallOption) (*DraftResponse, error) {
	return invoke[DraftResponse](ctx, c.cc, "ToggleCriterion", in, opts)
}

func (c *FeedbackClient) RateCriterion(ctx context.Context, in *RateCriterionRequest, opts ...grpc.CallOption) (*DraftResponse, error) {
	return invoke[DraftResponse](ctx, c.cc, "RateCriterion", in, opts)
}

func (c *FeedbackClient) AttachComment(ctx context.Context, in *AttachCommentRequest, opts ...grpc.CallOption) (*DraftResponse, error) {
	return invoke[DraftResponse](ctx, c.cc, "AttachComment", in, opts)
}

func (c *FeedbackClient) CaptureOther(ctx context.Context, in *CaptureOtherRequest, opts ...grpc.CallOption) (*DraftResponse, error) {
	return invoke[DraftResponse](ctx, c.cc, "CaptureOther", in, opts)
}

func (c *FeedbackClient) CancelOther(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*DraftResponse, error) {
	return invoke[DraftResponse](ctx, c.cc, "CancelOther", in, opts)
}

func (c *FeedbackClient) SetSuggestion(ctx context.Context, in *SetSuggestionRequest, opts ...grpc.CallOption) (*DraftResponse, error) {
	return invoke[DraftResponse](ctx, c.cc, "SetSuggestion", in, opts)
}

func (c *FeedbackClient) Submit(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*SubmitResponse, error) {
	return invoke[SubmitResponse](ctx, c.cc, "Submit", in, opts)
}

func (c *FeedbackClient) ListServicePoints(ctx context.Context, in *ListServicePointsRequest, opts ...grpc.CallOption) (*ListServicePointsResponse, error) {
	return invoke[ListServicePointsResponse](ctx, c.cc, "ListServicePoints", in, opts)
}

func (c *FeedbackClient) UpsertCriteria(ctx context.Context, in *UpsertCriteriaRequest, opts ...grpc.CallOption) (*UpsertCriteriaResponse, error) {
	return invoke[UpsertCriteriaResponse](ctx, c.cc, "UpsertCriteria", in, opts)
}

func (c *FeedbackClient) GetOverview(ctx context.Context, in *DashboardRequest, opts ...grpc.CallOption) (*OverviewResponse, error) {
	return invoke[OverviewResponse](ctx, c.cc, "GetOverview", in, opts)
}

func (c *FeedbackClient) ListEpisodes(ctx context.Context, in *DashboardRequest, opts ...grpc.CallOption) (*EpisodesResponse, error) {
	return invoke[EpisodesResponse](ctx, c.cc, "ListEpisodes", in, opts)
}

func (c *FeedbackClient) ListComments(ctx context.Context, in *DashboardRequest, opts ...grpc.CallOption) (*CommentsResponse, error) {
	return invoke[CommentsResponse](ctx, c.cc, "ListComments", in, opts)
}

func (c *FeedbackClient) ListSuggestions(ctx context.Context, in *DashboardRequest, opts ...grpc.CallOption) (*SuggestionsResponse, error) {
	return invoke[SuggestionsResponse](ctx, c.cc, "ListSuggestions", in, opts)
}

func (c *FeedbackClient) ListOther(ctx context.Context, in *DashboardRequest, opts ...grpc.CallOption) (*OtherResponse, error) {
	return invoke[OtherResponse](ctx, c.cc, "ListOther", in, opts)
}
