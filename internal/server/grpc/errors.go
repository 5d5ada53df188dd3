package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var statusCodes = []struct {
	err  error
	code codes.Code
}{
	{common.ErrorNotFound, codes.NotFound},
	{common.ErrorAlreadyExists, codes.AlreadyExists},
	{common.ErrorPermissionDenied, codes.PermissionDenied},
	{common.ErrorInvalidArgument, codes.InvalidArgument},
	{common.ErrorUnauthorized, codes.Unauthenticated},
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrTokenExpired, codes.Unauthenticated},
	{common.ErrRefreshTokenExpired, codes.Unauthenticated},
	{common.ErrorUnavailable, codes.Unavailable},
	{context.Canceled, codes.Canceled},
	{context.DeadlineExceeded, codes.DeadlineExceeded},
}

// toStatus converts a service error into a gRPC status. Sentinel errors keep
// their text so clients can match on it; anything else is logged and
// reported as Internal.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, m := range statusCodes {
		if errors.Is(err, m.err) {
			if m.code == codes.InvalidArgument {
				return status.Error(m.code, err.Error())
			}
			return status.Error(m.code, m.err.Error())
		}
	}
	s.logger.Error(ctx, "request failed", "method", method, "error", err)
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}
