// Package httpapi is a read-only HTTP gateway to the dreamsync services: a
// health probe, JSON reads of profiles and dreams, and websocket feeds of
// document changes for clients that cannot speak gRPC.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/dmitrijs2005/dreamsync/internal/server/services"
	"github.com/gin-gonic/gin"
)

type Server struct {
	address   string
	dreams    *services.DreamService
	users     *services.UserService
	logger    logging.Logger
	jwtSecret []byte
}

func NewServer(a string, l logging.Logger, dreams *services.DreamService, users *services.UserService, secretKey string) *Server {
	return &Server{
		address:   a,
		logger:    l.With("module", "http_server"),
		dreams:    dreams,
		users:     users,
		jwtSecret: []byte(secretKey),
	}
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		success(c, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(s.authMiddleware())
	{
		api.GET("/users/:id", s.getUser)
		api.GET("/users/:id/dreams", s.queryDreams)
		api.GET("/dreams/:owner/:doc", s.getDream)
	}

	ws := r.Group("/ws")
	ws.Use(s.authMiddleware())
	{
		ws.GET("/dreams/:owner/:doc", s.watchDream)
		ws.GET("/users/:id", s.watchUser)
	}

	return r
}

// Run serves HTTP until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
