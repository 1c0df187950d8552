package websocket

import (
	"context"
	"encoding/json"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/common/logger"
	ws "github.com/apper-canvas/holodevboard/pkg/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 * 1024
	outboundQueue  = 256
)

// SubscribeRequest is the payload of board.subscribe and board.unsubscribe.
type SubscribeRequest struct {
	BoardID int64 `json:"board_id"`
}

// peer is one connected client. The read loop answers requests in order;
// the write loop owns every write to conn.
type peer struct {
	id     string
	conn   *gorillaws.Conn
	hub    *Hub
	router *ws.Router
	out    chan []byte
	logger *logger.Logger
}

func newPeer(id string, conn *gorillaws.Conn, hub *Hub, router *ws.Router, log *logger.Logger) *peer {
	return &peer{
		id:     id,
		conn:   conn,
		hub:    hub,
		router: router,
		out:    make(chan []byte, outboundQueue),
		logger: log.WithFields(zap.String("client_id", id)),
	}
}

func (p *peer) readLoop(ctx context.Context) {
	defer func() {
		p.hub.detach(p)
		_ = p.conn.Close()
	}()

	p.conn.SetReadLimit(maxMessageSize)
	_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if gorillaws.IsUnexpectedCloseError(err, gorillaws.CloseGoingAway, gorillaws.CloseAbnormalClosure) {
				p.logger.Warn("WebSocket read failed", zap.Error(err))
			}
			return
		}
		var msg ws.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			p.reply((*ws.Message)(nil).Fail(ws.ErrorCodeBadRequest, "Invalid message format"))
			continue
		}
		p.handle(ctx, &msg)
	}
}

func (p *peer) handle(ctx context.Context, msg *ws.Message) {
	start := time.Now()
	switch msg.Action {
	case ws.ActionBoardSubscribe, ws.ActionBoardUnsubscribe:
		p.reply(p.subscription(msg))
	default:
		reply, err := p.router.Dispatch(ctx, msg)
		if err != nil {
			p.logger.Error("WebSocket handler failed", zap.String("action", msg.Action), zap.Error(err))
			reply, err = msg.Fail(ws.ErrorCodeInternalError, err.Error())
		}
		if reply != nil {
			p.reply(reply, err)
		}
	}
	p.logger.Debug("WebSocket request",
		zap.String("action", msg.Action),
		zap.String("id", msg.ID),
		zap.Duration("duration", time.Since(start)))
}

func (p *peer) subscription(msg *ws.Message) (*ws.Message, error) {
	var req SubscribeRequest
	if err := msg.Decode(&req); err != nil {
		return msg.Fail(ws.ErrorCodeBadRequest, "Invalid payload: "+err.Error())
	}
	if req.BoardID <= 0 {
		return msg.Fail(ws.ErrorCodeValidation, "board_id is required")
	}
	if msg.Action == ws.ActionBoardSubscribe {
		p.hub.Subscribe(p, req.BoardID)
	} else {
		p.hub.Unsubscribe(p, req.BoardID)
	}
	return msg.Reply(map[string]interface{}{"success": true, "board_id": req.BoardID})
}

func (p *peer) reply(msg *ws.Message, err error) {
	if err != nil {
		p.logger.Error("Failed to build reply", zap.Error(err))
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("Failed to encode reply", zap.Error(err))
		return
	}
	if !p.hub.enqueue(p, data) {
		p.logger.Warn("Reply dropped", zap.String("action", msg.Action))
	}
}

// writeLoop drains out until the hub closes it, pinging in between.
func (p *peer) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = p.conn.Close()
	}()

	for {
		select {
		case data, ok := <-p.out:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = p.conn.WriteMessage(gorillaws.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(gorillaws.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(gorillaws.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
