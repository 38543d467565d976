package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/okutsen/chatline/internal/app"
	"github.com/okutsen/chatline/internal/config"
	"github.com/okutsen/chatline/internal/core"
	"github.com/okutsen/chatline/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type WSController struct {
	Hub *app.Hub
	Cfg *config.Config
}

func NewWSController(hub *app.Hub, cfg *config.Config) *WSController {
	return &WSController{Hub: hub, Cfg: cfg}
}

type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSocket upgrades the request and runs the connection's event
// loop until the transport closes. The auth middleware has already
// resolved the user identity into the gin context.
func (ctl *WSController) HandleSocket(ctx context.Context, c *gin.Context) {
	user := domain.UserID(c.GetString("user_id"))
	if user == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("user", string(user)).Msg("new WS connection")

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	live := ctl.Hub.Connect(ctx, user, core.ConnID(uuid.NewString()), conn)

	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, live, conn)
		ctl.Hub.Disconnect(live)
	}()
}
