package interceptor

import (
	"context"
	"runtime/debug"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/usuaris/internal/logger"
)

const msgInternalError = "Hi ha hagut un error!"

// UnaryRecoveryInterceptor turns a panicking handler into codes.Internal.
func UnaryRecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		defer func() {
			if rvr := recover(); rvr != nil {
				logger.Log.Errorw(
					"panic while serving gRPC request",
					"method", info.FullMethod,
					"panic", rvr,
					"stack", string(debug.Stack()),
				)
				resp, err = nil, status.Error(codes.Internal, msgInternalError)
			}
		}()

		return handler(ctx, req)
	}
}
