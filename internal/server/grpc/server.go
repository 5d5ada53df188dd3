// Package grpc serves the dreamsync API over gRPC with a JSON codec.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/dmitrijs2005/dreamsync/internal/api"
	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/dmitrijs2005/dreamsync/internal/server/services"
	"google.golang.org/grpc"
)

// Services groups the application services the handlers call into.
type Services struct {
	Auth   *services.AuthService
	Dreams *services.DreamService
	Users  *services.UserService
	Social *services.SocialService
}

type GRPCServer struct {
	address   string
	auth      *services.AuthService
	dreams    *services.DreamService
	users     *services.UserService
	social    *services.SocialService
	logger    logging.Logger
	jwtSecret []byte
}

var _ api.DreamSyncServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, svc Services, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		auth:      svc.Auth,
		dreams:    svc.Dreams,
		users:     svc.Users,
		social:    svc.Social,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer returns a grpc.Server with the dreamsync service and the access
// token interceptors registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts,
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamAccessTokenInterceptor),
	)
	srv := grpc.NewServer(opts...)
	api.RegisterDreamSyncServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done, then
// drains in-flight calls.
func (s *GRPCServer) Run(ctx context.Context) error {
	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "tcp", s.address)
	if err != nil {
		return fmt.Errorf("grpc listen %s: %w", s.address, err)
	}
	return s.Serve(ctx, lis)
}

// Serve runs the server on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "grpc server draining")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "grpc server listening", "address", lis.Addr().String())
	err := srv.Serve(lis)
	if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	<-stopped
	return nil
}
