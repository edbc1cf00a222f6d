package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "usuaris.UsuarisService"

const (
	MethodListUsers  = "/" + ServiceName + "/ListUsers"
	MethodGetUser    = "/" + ServiceName + "/GetUser"
	MethodCreateUser = "/" + ServiceName + "/CreateUser"
	MethodUpdateUser = "/" + ServiceName + "/UpdateUser"
	MethodDeleteUser = "/" + ServiceName + "/DeleteUser"
)

// UsuarisServiceServer is the server side of usuaris.UsuarisService.
// Messages are protobuf well-known types, so no generated code is needed.
type UsuarisServiceServer interface {
	ListUsers(ctx context.Context, filter *structpb.Struct) (*structpb.Struct, error)
	GetUser(ctx context.Context, id *wrapperspb.Int64Value) (*structpb.Struct, error)
	CreateUser(ctx context.Context, payload *structpb.Struct) (*structpb.Struct, error)
	UpdateUser(ctx context.Context, payload *structpb.Struct) (*structpb.Struct, error)
	DeleteUser(ctx context.Context, id *wrapperspb.Int64Value) (*wrapperspb.StringValue, error)
}

func unaryHandler[Req proto.Message, Resp proto.Message](
	fullMethod string,
	newRequest func() Req,
	call func(srv UsuarisServiceServer, ctx context.Context, in Req) (Resp, error),
) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(
		srv interface{},
		ctx context.Context,
		dec func(interface{}) error,
		interceptor grpc.UnaryServerInterceptor,
	) (interface{}, error) {
		in := newRequest()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(UsuarisServiceServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(UsuarisServiceServer), ctx, req.(Req))
		}

		return interceptor(ctx, in, info, handler)
	}
}

func newStruct() *structpb.Struct { return &structpb.Struct{} }

func newInt64Value() *wrapperspb.Int64Value { return &wrapperspb.Int64Value{} }

// ServiceDesc describes usuaris.UsuarisService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UsuarisServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListUsers",
			Handler: unaryHandler(MethodListUsers, newStruct,
				func(srv UsuarisServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return srv.ListUsers(ctx, in)
				}),
		},
		{
			MethodName: "GetUser",
			Handler: unaryHandler(MethodGetUser, newInt64Value,
				func(srv UsuarisServiceServer, ctx context.Context, in *wrapperspb.Int64Value) (*structpb.Struct, error) {
					return srv.GetUser(ctx, in)
				}),
		},
		{
			MethodName: "CreateUser",
			Handler: unaryHandler(MethodCreateUser, newStruct,
				func(srv UsuarisServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return srv.CreateUser(ctx, in)
				}),
		},
		{
			MethodName: "UpdateUser",
			Handler: unaryHandler(MethodUpdateUser, newStruct,
				func(srv UsuarisServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return srv.UpdateUser(ctx, in)
				}),
		},
		{
			MethodName: "DeleteUser",
			Handler: unaryHandler(MethodDeleteUser, newInt64Value,
				func(srv UsuarisServiceServer, ctx context.Context, in *wrapperspb.Int64Value) (*wrapperspb.StringValue, error) {
					return srv.DeleteUser(ctx, in)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "usuaris.proto",
}

// RegisterUsuarisServiceServer attaches srv to s.
func RegisterUsuarisServiceServer(s grpc.ServiceRegistrar, srv UsuarisServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls usuaris.UsuarisService over a client connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) ListUsers(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodListUsers, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodGetUser, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodCreateUser, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodUpdateUser, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteUser(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, MethodDeleteUser, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
