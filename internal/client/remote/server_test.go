package remote

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/dmitrijs2005/dreamsync/internal/models"
	gs "github.com/dmitrijs2005/dreamsync/internal/server/grpc"
	"github.com/dmitrijs2005/dreamsync/internal/server/notify"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dreamsync/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

// dialer starts an in-memory server and returns a function that connects a
// fresh client to it.
func dialer(t *testing.T) func() *GRPCClient {
	t.Helper()

	rm := repomanager.NewMemoryRepositoryManager()
	hub := notify.NewHub()
	logger := logging.Nop()
	svc := gs.Services{
		Auth: services.NewAuthService(rm, services.AuthConfig{
			SecretKey:                    "secret",
			AccessTokenValidityDuration:  time.Minute,
			RefreshTokenValidityDuration: time.Hour,
		}, logger),
		Dreams: services.NewDreamService(rm, hub, logger),
		Users:  services.NewUserService(rm, hub, nil, 10, logger),
		Social: services.NewSocialService(rm, hub, logger),
	}

	lis := bufconn.Listen(1 << 20)
	srv := gs.NewGRPCServer("bufnet", logger, svc, "secret").NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() {
		srv.Stop()
		_ = hub.Close()
	})

	return func() *GRPCClient {
		c, err := NewGRPCClient("passthrough:///bufnet", logger,
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}))
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })
		return c
	}
}

func TestGRPCClient_SessionAndDreams(t *testing.T) {
	dial := dialer(t)
	c := dial()
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	_, err := c.WhoAmI(ctx)
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	id, err := c.SignUp(ctx, "a@example.com", "password", "alice")
	require.NoError(t, err)
	who, err := c.WhoAmI(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, who)

	_, err = c.SignUp(ctx, "a@example.com", "password", "")
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	d := &models.DreamDocument{OwnerID: id, DreamID: "d1", Title: "sea", Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	stored, err := c.UpsertDream(ctx, d)
	require.NoError(t, err)

	raw, err := c.QueryDreams(ctx, models.DreamQuery{OwnerID: id})
	require.NoError(t, err)
	require.Len(t, raw, 1)
	doc, err := models.DecodeDreamDocument(raw[0])
	require.NoError(t, err)
	assert.Equal(t, "sea", doc.Title)

	n, err := c.MarkDreamDeleted(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := c.GetDream(ctx, id, stored.DocID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)

	bad := *d
	bad.Severity = 3
	_, err = c.UpsertDream(ctx, &bad)
	require.ErrorIs(t, err, common.ErrorInvalidArgument)
}

func TestGRPCClient_TokensSurviveReconnect(t *testing.T) {
	dial := dialer(t)
	ctx := context.Background()

	first := dial()
	id, err := first.SignUp(ctx, "a@example.com", "password", "")
	require.NoError(t, err)
	access, refresh := first.Tokens()

	second := dial()
	second.SetTokens(access, refresh)
	who, err := second.WhoAmI(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, who)
}

func TestGRPCClient_SocialAndWatch(t *testing.T) {
	dial := dialer(t)
	ctx := context.Background()

	alice, bob := dial(), dial()
	aliceID, err := alice.SignUp(ctx, "a@example.com", "password", "alice")
	require.NoError(t, err)
	bobID, err := bob.SignUp(ctx, "b@example.com", "password", "bob")
	require.NoError(t, err)

	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	updates, err := bob.WatchUser(wctx, bobID)
	require.NoError(t, err)

	initial := <-updates
	require.NotNil(t, initial)
	assert.Empty(t, initial.FriendRequests)

	require.NoError(t, alice.SendFriendRequest(ctx, bobID))
	next := <-updates
	require.NotNil(t, next)
	assert.Equal(t, []string{aliceID}, next.FriendRequests)

	require.NoError(t, bob.AcceptFriendRequest(ctx, aliceID))
	a, err := alice.GetUser(ctx, aliceID)
	require.NoError(t, err)
	assert.Equal(t, []string{bobID}, a.Friends)

	found, err := alice.SearchUsers(ctx, "bo", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "bob", found[0].Username)

	_, err = alice.WatchUser(wctx, "nobody")
	require.ErrorIs(t, err, common.ErrorNotFound)

	cancel()
	for range updates {
	}
}
