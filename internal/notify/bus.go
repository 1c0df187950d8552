package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/common/logger"
	"github.com/apper-canvas/holodevboard/internal/events"
	"github.com/apper-canvas/holodevboard/internal/events/bus"
)

// BusNotifier publishes notifications on the event bus; the WebSocket
// gateway relays them to connected clients.
type BusNotifier struct {
	bus    bus.EventBus
	logger *logger.Logger
}

// NewBusNotifier creates a bus-backed notifier.
func NewBusNotifier(eventBus bus.EventBus, log *logger.Logger) *BusNotifier {
	return &BusNotifier{
		bus:    eventBus,
		logger: log.WithFields(zap.String("component", "notify-bus")),
	}
}

// Notify implements Notifier. Publish errors are logged, never returned.
func (b *BusNotifier) Notify(ctx context.Context, n Notification) {
	if b.bus == nil {
		return
	}
	data := map[string]interface{}{
		"severity":  string(n.Severity),
		"message":   n.Message,
		"timestamp": n.Timestamp,
	}
	if n.BoardID != 0 {
		data["board_id"] = n.BoardID
	}
	event := bus.NewEvent(events.NotificationCreated, "notify", data)
	if err := b.bus.Publish(context.WithoutCancel(ctx), events.NotificationCreated, event); err != nil {
		b.logger.Warn("failed to publish notification", zap.Error(err))
	}
}
