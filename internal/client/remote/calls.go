package remote

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/dreamsync/internal/api"
	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/models"
)

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return mapError(err)
	}
	if resp.Status != "OK" {
		return common.ErrorUnavailable
	}
	return nil
}

func (s *GRPCClient) storeTokens(resp *api.TokenResponse) string {
	s.SetTokens(resp.AccessToken, resp.RefreshToken)
	return resp.UserID
}

// SignUp creates an account and keeps its session. It returns the user id.
func (s *GRPCClient) SignUp(ctx context.Context, email, password, username string) (string, error) {
	resp, err := s.client.SignUp(ctx, &api.SignUpRequest{Email: email, Password: password, Username: username})
	if err != nil {
		return "", mapError(err)
	}
	return s.storeTokens(resp), nil
}

// SignIn opens a session and returns the user id.
func (s *GRPCClient) SignIn(ctx context.Context, email, password string) (string, error) {
	resp, err := s.client.SignIn(ctx, &api.SignInRequest{Email: email, Password: password})
	if err != nil {
		return "", mapError(err)
	}
	return s.storeTokens(resp), nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (string, error) {
	resp, err := s.client.WhoAmI(ctx, &api.Empty{})
	if err != nil {
		return "", mapError(err)
	}
	return resp.UserID, nil
}

// QueryDreams returns the raw documents so the caller can decode each one
// on its own.
func (s *GRPCClient) QueryDreams(ctx context.Context, q models.DreamQuery) ([]json.RawMessage, error) {
	resp, err := s.client.QueryDreams(ctx, api.NewQueryDreamsRequest(q))
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Documents, nil
}

func (s *GRPCClient) UpsertDream(ctx context.Context, d *models.DreamDocument) (*models.DreamDocument, error) {
	resp, err := s.client.UpsertDream(ctx, &api.UpsertDreamRequest{Dream: d})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Dream, nil
}

func (s *GRPCClient) MarkDreamDeleted(ctx context.Context, dreamID string) (int, error) {
	resp, err := s.client.MarkDreamDeleted(ctx, &api.MarkDreamDeletedRequest{DreamID: dreamID})
	if err != nil {
		return 0, mapError(err)
	}
	return resp.Count, nil
}

func (s *GRPCClient) GetDream(ctx context.Context, ownerID, docID string) (*models.DreamDocument, error) {
	resp, err := s.client.GetDream(ctx, &api.DreamRef{OwnerID: ownerID, DocID: docID})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Dream, nil
}

func (s *GRPCClient) SetDreamLike(ctx context.Context, ownerID, docID string, liked bool) (*models.DreamDocument, error) {
	resp, err := s.client.SetDreamLike(ctx, &api.SetDreamLikeRequest{
		DreamRef: api.DreamRef{OwnerID: ownerID, DocID: docID},
		Liked:    liked,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Dream, nil
}

func (s *GRPCClient) GetUser(ctx context.Context, id string) (*models.UserProfile, error) {
	resp, err := s.client.GetUser(ctx, &api.UserRequest{UserID: id})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) GetUserByUsername(ctx context.Context, username string) (*models.UserProfile, error) {
	resp, err := s.client.GetUserByUsername(ctx, &api.UsernameRequest{Username: username})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) SaveUser(ctx context.Context, u *models.UserProfile) (*models.UserProfile, error) {
	resp, err := s.client.SaveUser(ctx, &api.SaveUserRequest{User: u})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) UpdateProfile(ctx context.Context, up models.ProfileUpdate) (*models.UserProfile, error) {
	resp, err := s.client.UpdateProfile(ctx, &api.UpdateProfileRequest{Update: up})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) StartSession(ctx context.Context) (*models.UserProfile, error) {
	resp, err := s.client.StartSession(ctx, &api.Empty{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) CheckUsername(ctx context.Context, username string) (bool, error) {
	resp, err := s.client.CheckUsername(ctx, &api.UsernameRequest{Username: username})
	if err != nil {
		return false, mapError(err)
	}
	return resp.Available, nil
}

func (s *GRPCClient) SearchUsers(ctx context.Context, query string, limit int) ([]*models.UserProfile, error) {
	resp, err := s.client.SearchUsers(ctx, &api.SearchUsersRequest{Query: query, Limit: limit})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Users, nil
}

func (s *GRPCClient) FindUsersByPhones(ctx context.Context, phones []string) ([]*models.UserProfile, error) {
	resp, err := s.client.FindUsersByPhones(ctx, &api.FindUsersByPhonesRequest{PhoneNumbers: phones})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Users, nil
}

func (s *GRPCClient) ProfilePictureUploadURL(ctx context.Context) (string, string, error) {
	resp, err := s.client.ProfilePictureUploadURL(ctx, &api.Empty{})
	if err != nil {
		return "", "", mapError(err)
	}
	return resp.UploadURL, resp.PublicURL, nil
}

func (s *GRPCClient) DeleteAccount(ctx context.Context) error {
	_, err := s.client.DeleteAccount(ctx, &api.Empty{})
	return mapError(err)
}

func (s *GRPCClient) SendFriendRequest(ctx context.Context, userID string) error {
	_, err := s.client.SendFriendRequest(ctx, &api.UserRequest{UserID: userID})
	return mapError(err)
}

func (s *GRPCClient) AcceptFriendRequest(ctx context.Context, userID string) error {
	_, err := s.client.AcceptFriendRequest(ctx, &api.UserRequest{UserID: userID})
	return mapError(err)
}

func (s *GRPCClient) DeclineFriendRequest(ctx context.Context, userID string) error {
	_, err := s.client.DeclineFriendRequest(ctx, &api.UserRequest{UserID: userID})
	return mapError(err)
}

func (s *GRPCClient) BlockUser(ctx context.Context, userID string) error {
	_, err := s.client.BlockUser(ctx, &api.UserRequest{UserID: userID})
	return mapError(err)
}

func (s *GRPCClient) UnblockUser(ctx context.Context, userID string) error {
	_, err := s.client.UnblockUser(ctx, &api.UserRequest{UserID: userID})
	return mapError(err)
}
