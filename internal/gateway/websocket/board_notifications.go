package websocket

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/common/logger"
	"github.com/apper-canvas/holodevboard/internal/events"
	"github.com/apper-canvas/holodevboard/internal/events/bus"
	ws "github.com/apper-canvas/holodevboard/pkg/websocket"
)

// BoardEventBroadcaster relays entity events and notifications from the
// bus. Column, task and notification messages carrying a board id go to that
// board's subscribers; everything else goes to every client.
type BoardEventBroadcaster struct {
	hub           *Hub
	subscriptions []bus.Subscription
	closeOnce     sync.Once
	logger        *logger.Logger
}

func RegisterBoardNotifications(ctx context.Context, eventBus bus.EventBus, hub *Hub, log *logger.Logger) *BoardEventBroadcaster {
	b := &BoardEventBroadcaster{
		hub:    hub,
		logger: log.WithFields(zap.String("component", "ws-board-broadcaster")),
	}
	if eventBus == nil {
		return b
	}

	b.subscribe(eventBus, "board.*", "", false)
	b.subscribe(eventBus, "label.*", "", false)
	b.subscribe(eventBus, "column.*", "", true)
	b.subscribe(eventBus, "task.*", "", true)
	b.subscribe(eventBus, events.NotificationCreated, ws.ActionNotification, true)

	go func() {
		<-ctx.Done()
		b.Close()
	}()

	return b
}

// Close drops the bus subscriptions. It also runs when the registration
// context ends.
func (b *BoardEventBroadcaster) Close() {
	b.closeOnce.Do(func() {
		for _, sub := range b.subscriptions {
			if sub.IsValid() {
				_ = sub.Unsubscribe()
			}
		}
	})
}

// subscribe relays subject; an empty action uses the event type.
func (b *BoardEventBroadcaster) subscribe(eventBus bus.EventBus, subject, action string, scoped bool) {
	sub, err := eventBus.Subscribe(subject, func(ctx context.Context, event *bus.Event) error {
		name := action
		if name == "" {
			name = event.Type
		}
		msg, err := ws.NewNotification(name, event.Data)
		if err != nil {
			b.logger.Error("failed to build websocket notification", zap.String("action", name), zap.Error(err))
			return nil
		}
		var boardID int64
		if scoped {
			boardID, _ = event.BoardID()
		}
		b.hub.Deliver(boardID, msg)
		return nil
	})
	if err != nil {
		b.logger.Error("failed to subscribe to events", zap.String("subject", subject), zap.Error(err))
		return
	}
	b.subscriptions = append(b.subscriptions, sub)
}
