// Package remote is the client side of the dreamsync gRPC API. It keeps the
// session tokens, attaches the access token to every call, refreshes it once
// when the server reports it expired, and maps status codes back to the
// sentinel errors of internal/common.
package remote

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/dreamsync/internal/api"
	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type tokenRefresher interface {
	RefreshToken(ctx context.Context, in *api.RefreshTokenRequest, opts ...grpc.CallOption) (*api.TokenResponse, error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *api.DreamSyncClient
	refresher   tokenRefresher
	logger      logging.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onRefresh    func(access, refresh string)
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

// refresh trades the refresh token for a new pair. It reports false when
// there is nothing to refresh with.
func (s *GRPCClient) refresh(ctx context.Context) (bool, error) {
	s.mu.Lock()
	refreshToken := s.refreshToken
	s.mu.Unlock()
	if refreshToken == "" {
		return false, nil
	}

	resp, err := s.refresher.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return false, err
	}

	// TOKENS REFRESHED
	s.SetTokens(resp.AccessToken, resp.RefreshToken)
	s.mu.Lock()
	cb := s.onRefresh
	s.mu.Unlock()
	if cb != nil {
		cb(resp.AccessToken, resp.RefreshToken)
	}
	return true, nil
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if method == api.FullMethod("RefreshToken") {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	access, _ := s.Tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) {
		return err
	}

	ok, rerr := s.refresh(ctx)
	if rerr != nil {
		return rerr
	}
	if !ok {
		return err
	}

	access, _ = s.Tokens()
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

func (s *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	access, _ := s.Tokens()
	return streamer(withAccessToken(ctx, access), desc, cc, method, opts...)
}

// NewGRPCClient connects to endpointURL. Extra dial options are appended
// after the defaults.
func NewGRPCClient(endpointURL string, logger logging.Logger, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, logger: logger.With("module", "grpc_client")}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithStreamInterceptor(s.streamAccessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewDreamSyncClient(conn)
	s.refresher = s.client
	return nil
}

// SetTokens installs the session tokens, e.g. ones restored from the local
// preferences.
func (s *GRPCClient) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
	s.refreshToken = refresh
}

func (s *GRPCClient) Tokens() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

// OnRefresh registers fn to run after every successful token refresh.
func (s *GRPCClient) OnRefresh(fn func(access, refresh string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRefresh = fn
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}
