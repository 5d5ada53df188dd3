package grpc

import (
	"context"

	"github.com/dmitrijs2005/dreamsync/internal/api"
)

// socialCall runs one of the social graph edits with the caller and the
// peer named in req.
func (s *GRPCServer) socialCall(ctx context.Context, method string, req *api.UserRequest, fn func(ctx context.Context, callerID, otherID string) error) (*api.Empty, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(ctx, userID, req.UserID); err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) SendFriendRequest(ctx context.Context, req *api.UserRequest) (*api.Empty, error) {
	return s.socialCall(ctx, "SendFriendRequest", req, s.social.SendFriendRequest)
}

func (s *GRPCServer) AcceptFriendRequest(ctx context.Context, req *api.UserRequest) (*api.Empty, error) {
	return s.socialCall(ctx, "AcceptFriendRequest", req, s.social.AcceptFriendRequest)
}

func (s *GRPCServer) DeclineFriendRequest(ctx context.Context, req *api.UserRequest) (*api.Empty, error) {
	return s.socialCall(ctx, "DeclineFriendRequest", req, s.social.DeclineFriendRequest)
}

func (s *GRPCServer) BlockUser(ctx context.Context, req *api.UserRequest) (*api.Empty, error) {
	return s.socialCall(ctx, "BlockUser", req, s.social.Block)
}

func (s *GRPCServer) UnblockUser(ctx context.Context, req *api.UserRequest) (*api.Empty, error) {
	return s.socialCall(ctx, "UnblockUser", req, s.social.Unblock)
}
