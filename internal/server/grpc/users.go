package grpc

import (
	"context"

	"github.com/dmitrijs2005/dreamsync/internal/api"
	"github.com/dmitrijs2005/dreamsync/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) GetUser(ctx context.Context, req *api.UserRequest) (*api.UserResponse, error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, req.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, "GetUser", err)
	}
	return &api.UserResponse{User: u}, nil
}

func (s *GRPCServer) GetUserByUsername(ctx context.Context, req *api.UsernameRequest) (*api.UserResponse, error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}
	u, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, s.toStatus(ctx, "GetUserByUsername", err)
	}
	return &api.UserResponse{User: u}, nil
}

func (s *GRPCServer) SaveUser(ctx context.Context, req *api.SaveUserRequest) (*api.UserResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if req.User == nil {
		return nil, status.Error(codes.InvalidArgument, "missing user")
	}
	u, err := s.users.Save(ctx, userID, req.User)
	if err != nil {
		return nil, s.toStatus(ctx, "SaveUser", err)
	}
	return &api.UserResponse{User: u}, nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *api.UpdateProfileRequest) (*api.UserResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.UpdateProfile(ctx, userID, req.Update)
	if err != nil {
		return nil, s.toStatus(ctx, "UpdateProfile", err)
	}
	return &api.UserResponse{User: u}, nil
}

func (s *GRPCServer) StartSession(ctx context.Context, req *api.Empty) (*api.UserResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.StartSession(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "StartSession", err)
	}
	return &api.UserResponse{User: u}, nil
}

func (s *GRPCServer) CheckUsername(ctx context.Context, req *api.UsernameRequest) (*api.CheckUsernameResponse, error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}
	ok, err := s.users.CheckUsername(ctx, req.Username)
	if err != nil {
		return nil, s.toStatus(ctx, "CheckUsername", err)
	}
	return &api.CheckUsernameResponse{Available: ok}, nil
}

func (s *GRPCServer) SearchUsers(ctx context.Context, req *api.SearchUsersRequest) (*api.UsersResponse, error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}
	list, err := s.users.Search(ctx, req.Query, req.Limit)
	if err != nil {
		return nil, s.toStatus(ctx, "SearchUsers", err)
	}
	return &api.UsersResponse{Users: list}, nil
}

func (s *GRPCServer) FindUsersByPhones(ctx context.Context, req *api.FindUsersByPhonesRequest) (*api.UsersResponse, error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}
	list, err := s.users.FindByPhones(ctx, req.PhoneNumbers)
	if err != nil {
		return nil, s.toStatus(ctx, "FindUsersByPhones", err)
	}
	return &api.UsersResponse{Users: list}, nil
}

func (s *GRPCServer) ProfilePictureUploadURL(ctx context.Context, req *api.Empty) (*api.UploadURLResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	upload, public, err := s.users.ProfilePictureUploadURL(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "ProfilePictureUploadURL", err)
	}
	return &api.UploadURLResponse{UploadURL: upload, PublicURL: public}, nil
}

func (s *GRPCServer) DeleteAccount(ctx context.Context, req *api.Empty) (*api.Empty, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.users.DeleteAccount(ctx, userID); err != nil {
		return nil, s.toStatus(ctx, "DeleteAccount", err)
	}
	s.logger.Info(ctx, "Account deleted", "user_id", userID)
	return &api.Empty{}, nil
}

func (s *GRPCServer) WatchUser(req *api.UserRequest, stream api.UserWatchStream) error {
	ctx := stream.Context()
	if _, err := callerID(ctx); err != nil {
		return err
	}
	if req.UserID == "" {
		return status.Error(codes.InvalidArgument, "missing user id")
	}

	err := s.users.Watch(ctx, req.UserID, func(u *models.UserProfile) error {
		return stream.Send(&api.UserResponse{User: u})
	})
	return s.toStatus(ctx, "WatchUser", err)
}
