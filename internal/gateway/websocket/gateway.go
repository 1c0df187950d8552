package websocket

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/common/logger"
	ws "github.com/apper-canvas/holodevboard/pkg/websocket"
)

// Gateway serves /ws. Board actions are added to Router by the handlers
// package; subscriptions are answered by the gateway itself.
type Gateway struct {
	Hub    *Hub
	Router *ws.Router

	upgrader gorillaws.Upgrader
	logger   *logger.Logger
}

// NewGateway accepts connections from allowedOrigins. "*" or an empty list
// accepts any origin, and requests without an Origin header are always let
// through.
func NewGateway(allowedOrigins []string, log *logger.Logger) *Gateway {
	anyOrigin := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")
	g := &Gateway{
		Hub:    NewHub(log),
		Router: ws.NewRouter(),
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return anyOrigin || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
		logger: log.WithFields(zap.String("component", "ws-gateway")),
	}
	g.Router.Handle(ws.ActionHealthCheck, g.health)
	return g
}

// SetupRoutes mounts the upgrade endpoint.
func (g *Gateway) SetupRoutes(router *gin.Engine) {
	router.GET("/ws", g.serve)
}

func (g *Gateway) serve(c *gin.Context) {
	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.logger.Warn("WebSocket upgrade rejected",
			zap.String("remote_addr", c.Request.RemoteAddr),
			zap.Error(err))
		return
	}

	p := newPeer(uuid.NewString(), conn, g.Hub, g.Router, g.logger)
	if !g.Hub.attach(p) {
		_ = conn.Close()
		return
	}
	g.logger.Debug("WebSocket connected",
		zap.String("client_id", p.id),
		zap.String("remote_addr", c.Request.RemoteAddr))

	go p.writeLoop()
	// The connection outlives the upgrade request.
	p.readLoop(context.WithoutCancel(c.Request.Context()))
}

func (g *Gateway) health(_ context.Context, msg *ws.Message) (*ws.Message, error) {
	return msg.Reply(map[string]interface{}{
		"status":  "ok",
		"service": "devboard",
		"clients": g.Hub.ClientCount(),
		"actions": g.Router.Actions(),
	})
}
