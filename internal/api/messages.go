package api

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/models"
)

type Empty struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type WhoAmIResponse struct {
	UserID string `json:"user_id"`
}

type QueryDreamsRequest struct {
	OwnerID    string            `json:"owner_id"`
	PublicOnly bool              `json:"public_only"`
	From       time.Time         `json:"from"`
	To         time.Time         `json:"to"`
	Order      models.DreamOrder `json:"order"`
	Limit      int               `json:"limit"`
}

// NewQueryDreamsRequest copies a query onto the wire.
func NewQueryDreamsRequest(q models.DreamQuery) *QueryDreamsRequest {
	return &QueryDreamsRequest{
		OwnerID:    q.OwnerID,
		PublicOnly: q.PublicOnly,
		From:       q.From,
		To:         q.To,
		Order:      q.Order,
		Limit:      q.Limit,
	}
}

func (r *QueryDreamsRequest) Query() models.DreamQuery {
	return models.DreamQuery{
		OwnerID:    r.OwnerID,
		PublicOnly: r.PublicOnly,
		From:       r.From,
		To:         r.To,
		Order:      r.Order,
		Limit:      r.Limit,
	}
}

// QueryDreamsResponse carries raw documents so a reader can skip the ones
// that fail to decode without losing the rest.
type QueryDreamsResponse struct {
	Documents []json.RawMessage `json:"documents"`
}

type UpsertDreamRequest struct {
	Dream *models.DreamDocument `json:"dream"`
}

type MarkDreamDeletedRequest struct {
	DreamID string `json:"dream_id"`
}

type MarkDreamDeletedResponse struct {
	Count int `json:"count"`
}

type DreamRef struct {
	OwnerID string `json:"owner_id"`
	DocID   string `json:"doc_id"`
}

type SetDreamLikeRequest struct {
	DreamRef
	Liked bool `json:"liked"`
}

type DreamResponse struct {
	Dream *models.DreamDocument `json:"dream"`
}

type UserRequest struct {
	UserID string `json:"user_id"`
}

type UsernameRequest struct {
	Username string `json:"username"`
}

type UserResponse struct {
	User *models.UserProfile `json:"user"`
}

type UsersResponse struct {
	Users []*models.UserProfile `json:"users"`
}

type SaveUserRequest struct {
	User *models.UserProfile `json:"user"`
}

type UpdateProfileRequest struct {
	Update models.ProfileUpdate `json:"update"`
}

type CheckUsernameResponse struct {
	Available bool `json:"available"`
}

type SearchUsersRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type FindUsersByPhonesRequest struct {
	PhoneNumbers []string `json:"phone_numbers"`
}

type UploadURLResponse struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
}
