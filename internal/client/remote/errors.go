package remote

import (
	"fmt"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.AlreadyExists:
		return common.ErrorAlreadyExists
	case codes.PermissionDenied:
		return common.ErrorPermissionDenied
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrorInvalidArgument, st.Message())
	case codes.Unauthenticated:
		switch st.Message() {
		case common.ErrTokenExpired.Error():
			return common.ErrTokenExpired
		case common.ErrRefreshTokenExpired.Error():
			return common.ErrRefreshTokenExpired
		case common.ErrInvalidToken.Error():
			return common.ErrInvalidToken
		}
		return common.ErrorUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return common.ErrorUnavailable
	case codes.Canceled:
		return fmt.Errorf("rpc canceled: %w", err)
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
