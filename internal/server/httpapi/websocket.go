package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn serialises writes to a websocket and cancels its context once the
// peer goes away.
type wsConn struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	cancel context.CancelFunc
}

func (w *wsConn) writeJSON(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteJSON(v)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(websocket.PingMessage, nil)
}

// readPump discards inbound frames; it exists to process control frames
// and notice the close.
func (w *wsConn) readPump() {
	defer w.cancel()
	_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		return w.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (w *wsConn) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ping(); err != nil {
				w.cancel()
				return
			}
		}
	}
}

// serveWatch upgrades the request and runs watch until either side ends it.
// A watch error is sent as a final message before the close frame.
func (s *Server) serveWatch(c *gin.Context, watch func(ctx context.Context, send func(v interface{}) error) error) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn(c.Request.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	w := &wsConn{conn: conn, cancel: cancel}

	go w.readPump()
	go w.pingLoop(ctx)

	err = watch(ctx, func(v interface{}) error {
		return w.writeJSON(Response{Code: 0, Message: "success", Data: v})
	})
	if err != nil {
		code, msg := statusOf(err)
		_ = w.writeJSON(Response{Code: code, Message: msg})
	}

	w.mu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	w.mu.Unlock()
}

func (s *Server) watchDream(c *gin.Context) {
	caller, owner, doc := callerID(c), c.Param("owner"), c.Param("doc")
	s.serveWatch(c, func(ctx context.Context, send func(v interface{}) error) error {
		return s.dreams.Watch(ctx, caller, owner, doc, func(d *models.DreamDocument) error {
			return send(d)
		})
	})
}

func (s *Server) watchUser(c *gin.Context) {
	id := c.Param("id")
	s.serveWatch(c, func(ctx context.Context, send func(v interface{}) error) error {
		return s.users.Watch(ctx, id, func(u *models.UserProfile) error {
			return send(u)
		})
	})
}
