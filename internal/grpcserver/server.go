// Package grpcserver exposes the record store as the usuaris.UsuarisService
// gRPC service.
package grpcserver

import (
	"net"

	"google.golang.org/grpc"

	"github.com/patric-chuzhbe/usuaris/internal/grpcserver/interceptor"
)

// NewGRPCServer listens on addr and registers handler on a new server.
// The caller serves on the returned listener.
func NewGRPCServer(
	addr string,
	handler UsuarisServiceServer,
) (*grpc.Server, net.Listener, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptor.UnaryLoggingInterceptor([]string{
				MethodListUsers,
				MethodGetUser,
				MethodCreateUser,
				MethodUpdateUser,
				MethodDeleteUser,
			}),
			interceptor.UnaryRecoveryInterceptor(),
		),
	)
	RegisterUsuarisServiceServer(server, handler)

	return server, lis, nil
}
