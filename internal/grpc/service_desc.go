package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "feedback.v1.FeedbackAnalytics"

// FeedbackAnalyticsServer is the server API for the analytics service.
// Requests carry optional start_date, end_date, type, provider, days and id
// fields; responses hold the same JSON shape as the HTTP API.
type FeedbackAnalyticsServer interface {
	Summary(context.Context, *structpb.Struct) (*structpb.Value, error)
	Criteria(context.Context, *structpb.Struct) (*structpb.Value, error)
	TimeSeries(context.Context, *structpb.Struct) (*structpb.Value, error)
	Heatmap(context.Context, *structpb.Struct) (*structpb.Value, error)
	CriteriaOverTime(context.Context, *structpb.Struct) (*structpb.Value, error)
	Dashboard(context.Context, *structpb.Struct) (*structpb.Value, error)
	GetFeedback(context.Context, *structpb.Struct) (*structpb.Value, error)
}

type unaryMethod func(FeedbackAnalyticsServer, context.Context, *structpb.Struct) (*structpb.Value, error)

func methodDesc(name string, call unaryMethod) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(FeedbackAnalyticsServer), ctx, req.(*structpb.Struct))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var FeedbackAnalyticsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FeedbackAnalyticsServer)(nil),
	Methods: []grpc.MethodDesc{
		methodDesc("Summary", FeedbackAnalyticsServer.Summary),
		methodDesc("Criteria", FeedbackAnalyticsServer.Criteria),
		methodDesc("TimeSeries", FeedbackAnalyticsServer.TimeSeries),
		methodDesc("Heatmap", FeedbackAnalyticsServer.Heatmap),
		methodDesc("CriteriaOverTime", FeedbackAnalyticsServer.CriteriaOverTime),
		methodDesc("Dashboard", FeedbackAnalyticsServer.Dashboard),
		methodDesc("GetFeedback", FeedbackAnalyticsServer.GetFeedback),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "feedback/v1/analytics.proto",
}

func RegisterFeedbackAnalyticsServer(s grpc.ServiceRegistrar, srv FeedbackAnalyticsServer) {
	s.RegisterService(&FeedbackAnalyticsServiceDesc, srv)
}

// Client calls FeedbackAnalytics over a client connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Value, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Value)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Summary(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Value, error) {
	return c.invoke(ctx, "Summary", in, opts...)
}

func (c *Client) Criteria(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Value, error) {
	return c.invoke(ctx, "Criteria", in, opts...)
}

func (c *Client) TimeSeries(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Value, error) {
	return c.invoke(ctx, "TimeSeries", in, opts...)
}

func (c *Client) Heatmap(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Value, error) {
	return c.invoke(ctx, "Heatmap", in, opts...)
}

func (c *Client) CriteriaOverTime(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Value, error) {
	return c.invoke(ctx, "CriteriaOverTime", in, opts...)
}

func (c *Client) Dashboard(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Value, error) {
	return c.invoke(ctx, "Dashboard", in, opts...)
}

func (c *Client) GetFeedback(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Value, error) {
	return c.invoke(ctx, "GetFeedback", in, opts...)
}
