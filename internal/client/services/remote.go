package services

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/dreamsync/internal/models"
)

// DreamRemote is the remote dream collection as seen by a signed-in user.
type DreamRemote interface {
	QueryDreams(ctx context.Context, q models.DreamQuery) ([]json.RawMessage, error)
	UpsertDream(ctx context.Context, d *models.DreamDocument) (*models.DreamDocument, error)
	// MarkDreamDeleted soft-deletes every caller document for dreamID.
	MarkDreamDeleted(ctx context.Context, dreamID string) (int, error)
	GetDream(ctx context.Context, ownerID, docID string) (*models.DreamDocument, error)
	SetDreamLike(ctx context.Context, ownerID, docID string, liked bool) (*models.DreamDocument, error)
	WatchDream(ctx context.Context, ownerID, docID string) (<-chan *models.DreamDocument, error)
}

// DirectoryRemote reads and writes profile documents.
type DirectoryRemote interface {
	GetUser(ctx context.Context, id string) (*models.UserProfile, error)
	GetUserByUsername(ctx context.Context, username string) (*models.UserProfile, error)
	SaveUser(ctx context.Context, u *models.UserProfile) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, up models.ProfileUpdate) (*models.UserProfile, error)
	StartSession(ctx context.Context) (*models.UserProfile, error)
	CheckUsername(ctx context.Context, username string) (bool, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]*models.UserProfile, error)
	FindUsersByPhones(ctx context.Context, phones []string) ([]*models.UserProfile, error)
	ProfilePictureUploadURL(ctx context.Context) (uploadURL, publicURL string, err error)
	DeleteAccount(ctx context.Context) error
	WatchUser(ctx context.Context, userID string) (<-chan *models.UserProfile, error)
}

// SocialRemote mutates friend edges and block lists on the server.
type SocialRemote interface {
	SendFriendRequest(ctx context.Context, userID string) error
	AcceptFriendRequest(ctx context.Context, userID string) error
	DeclineFriendRequest(ctx context.Context, userID string) error
	BlockUser(ctx context.Context, userID string) error
	UnblockUser(ctx context.Context, userID string) error
}

// SessionRemote opens sessions and carries their tokens.
type SessionRemote interface {
	Ping(ctx context.Context) error
	SignUp(ctx context.Context, email, password, username string) (string, error)
	SignIn(ctx context.Context, email, password string) (string, error)
	WhoAmI(ctx context.Context) (string, error)
	SetTokens(access, refresh string)
	Tokens() (access, refresh string)
	OnRefresh(fn func(access, refresh string))
}

// Remote is everything the client needs from the server.
// *remote.GRPCClient implements it.
type Remote interface {
	DreamRemote
	DirectoryRemote
	SocialRemote
	SessionRemote
}
