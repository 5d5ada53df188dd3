package grpc

import (
	"context"

	"github.com/dmitrijs2005/dreamsync/internal/api"
	"github.com/dmitrijs2005/dreamsync/internal/models"
	"github.com/dmitrijs2005/dreamsync/internal/server/services"
)

func tokenResponse(p *services.TokenPair) *api.TokenResponse {
	return &api.TokenResponse{UserID: p.UserID, AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

// SignUp creates the account and, when a username is given, its profile.
func (s *GRPCServer) SignUp(ctx context.Context, req *api.SignUpRequest) (*api.TokenResponse, error) {

	s.logger.Info(ctx, "Registration request")

	tokens, err := s.auth.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "SignUp", err)
	}

	if req.Username != "" {
		profile := &models.UserProfile{ID: tokens.UserID, Username: req.Username, Email: req.Email}
		if _, err := s.users.Save(ctx, tokens.UserID, profile); err != nil {
			return nil, s.toStatus(ctx, "SignUp", err)
		}
	}

	s.logger.Info(ctx, "Registered", "user_id", tokens.UserID)
	return tokenResponse(tokens), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *api.SignInRequest) (*api.TokenResponse, error) {
	tokens, err := s.auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "SignIn", err)
	}
	return tokenResponse(tokens), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.TokenResponse, error) {
	tokens, err := s.auth.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, "RefreshToken", err)
	}
	return tokenResponse(tokens), nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, req *api.Empty) (*api.WhoAmIResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	return &api.WhoAmIResponse{UserID: userID}, nil
}
