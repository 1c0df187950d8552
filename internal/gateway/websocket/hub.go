// Package websocket is the DevBoard WebSocket gateway. It upgrades
// connections, keeps per-board subscriptions and relays bus events to the
// subscribed clients.
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/common/logger"
	ws "github.com/apper-canvas/holodevboard/pkg/websocket"
)

// Hub tracks connected peers and which boards each one watches.
type Hub struct {
	mu     sync.RWMutex
	peers  map[*peer]map[int64]struct{}
	boards map[int64]map[*peer]struct{}
	closed bool
	logger *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		peers:  make(map[*peer]map[int64]struct{}),
		boards: make(map[int64]map[*peer]struct{}),
		logger: log.WithFields(zap.String("component", "ws-hub")),
	}
}

// Run blocks until ctx is done and then disconnects every peer. Peers that
// connect afterwards are refused.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for p := range h.peers {
		close(p.out)
	}
	n := len(h.peers)
	h.peers = make(map[*peer]map[int64]struct{})
	h.boards = make(map[int64]map[*peer]struct{})
	h.logger.Info("WebSocket hub stopped", zap.Int("disconnected", n))
}

func (h *Hub) attach(p *peer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.peers[p] = make(map[int64]struct{})
	return true
}

// detach forgets p and closes its outbound queue. Safe to call twice.
func (h *Hub) detach(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	watched, ok := h.peers[p]
	if !ok {
		return
	}
	for boardID := range watched {
		h.dropWatcher(boardID, p)
	}
	delete(h.peers, p)
	close(p.out)
	h.logger.Debug("WebSocket disconnected", zap.String("client_id", p.id))
}

func (h *Hub) dropWatcher(boardID int64, p *peer) {
	if set, ok := h.boards[boardID]; ok {
		delete(set, p)
		if len(set) == 0 {
			delete(h.boards, boardID)
		}
	}
}

// Subscribe adds boardID to the boards p watches.
func (h *Hub) Subscribe(p *peer, boardID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	watched, ok := h.peers[p]
	if !ok {
		return
	}
	watched[boardID] = struct{}{}
	if h.boards[boardID] == nil {
		h.boards[boardID] = make(map[*peer]struct{})
	}
	h.boards[boardID][p] = struct{}{}
}

// Unsubscribe removes boardID from the boards p watches.
func (h *Hub) Unsubscribe(p *peer, boardID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if watched, ok := h.peers[p]; ok {
		delete(watched, boardID)
	}
	h.dropWatcher(boardID, p)
}

// Deliver sends msg to the watchers of boardID, or to every peer when
// boardID is 0. Peers whose queue is full miss the message.
func (h *Hub) Deliver(boardID int64, msg *ws.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode push", zap.String("action", msg.Action), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	deliver := func(p *peer) {
		if !trySend(p, data) {
			h.logger.Warn("Dropping push for slow client",
				zap.String("client_id", p.id),
				zap.String("action", msg.Action))
		}
	}
	if boardID == 0 {
		for p := range h.peers {
			deliver(p)
		}
		return
	}
	for p := range h.boards[boardID] {
		deliver(p)
	}
}

// enqueue queues data for p unless p is gone or its queue is full.
func (h *Hub) enqueue(p *peer, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.peers[p]; !ok {
		return false
	}
	return trySend(p, data)
}

// trySend must run under h.mu so out cannot be closed concurrently.
func trySend(p *peer, data []byte) bool {
	select {
	case p.out <- data:
		return true
	default:
		return false
	}
}

// SubscriberCount is the number of peers watching boardID.
func (h *Hub) SubscriberCount(boardID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.boards[boardID])
}

// ClientCount is the number of connected peers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}
