package handlers

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "matchmaker.v1.MatchService"

const (
	MethodListCompanies      = "ListCompanies"
	MethodGetCompany         = "GetCompany"
	MethodCreateCompany      = "CreateCompany"
	MethodListIndustries     = "ListIndustries"
	MethodGetRecommendations = "GetRecommendations"
	MethodHealth             = "Health"
)

// FullMethod returns the gRPC path of method, e.g. "/matchmaker.v1.MatchService/Health".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// MatchServiceServer is the server API of the match service. Requests and
// responses are google.protobuf.Struct documents shaped like the JSON API.
type MatchServiceServer interface {
	ListCompanies(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetCompany(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreateCompany(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListIndustries(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetRecommendations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Health(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(MatchServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryMethod) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MatchServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(MatchServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// MatchServiceDesc describes the match service for grpc.Server.RegisterService.
var MatchServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MatchServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodListCompanies, Handler: unaryHandler(MethodListCompanies, MatchServiceServer.ListCompanies)},
		{MethodName: MethodGetCompany, Handler: unaryHandler(MethodGetCompany, MatchServiceServer.GetCompany)},
		{MethodName: MethodCreateCompany, Handler: unaryHandler(MethodCreateCompany, MatchServiceServer.CreateCompany)},
		{MethodName: MethodListIndustries, Handler: unaryHandler(MethodListIndustries, MatchServiceServer.ListIndustries)},
		{MethodName: MethodGetRecommendations, Handler: unaryHandler(MethodGetRecommendations, MatchServiceServer.GetRecommendations)},
		{MethodName: MethodHealth, Handler: unaryHandler(MethodHealth, MatchServiceServer.Health)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "matchmaker/v1/match_service.proto",
}

// MatchClient calls the match service over a client connection.
type MatchClient struct {
	conn grpc.ClientConnInterface
}

func NewMatchClient(conn grpc.ClientConnInterface) *MatchClient {
	return &MatchClient{conn: conn}
}

// Call invokes method with req. A nil req is sent as an empty document.
func (c *MatchClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
