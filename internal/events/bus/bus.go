// Package bus carries board events between the services that change board
// data and the consumers that react to it: board sessions, the WebSocket
// relay and other DevBoard processes when NATS is configured.
package bus

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is one change notice. Data holds the ids involved under snake_case
// keys ("board_id", "task_id", ...) plus event specific fields.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func NewEvent(eventType, source string, data map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// Int64 reads a non-zero id from Data. Events that crossed NATS carry
// numbers as float64.
func (e *Event) Int64(key string) (int64, bool) {
	if e == nil {
		return 0, false
	}
	var id int64
	switch v := e.Data[key].(type) {
	case int64:
		id = v
	case int:
		id = int64(v)
	case float64:
		id = int64(v)
	}
	return id, id != 0
}

// BoardID is the board the event belongs to, when it names one.
func (e *Event) BoardID() (int64, bool) {
	return e.Int64("board_id")
}

type EventHandler func(ctx context.Context, event *Event) error

type Subscription interface {
	Unsubscribe() error
	IsValid() bool
}

// EventBus is implemented in process by MemoryEventBus and across
// processes by NATSEventBus. Subjects use NATS wildcard syntax.
type EventBus interface {
	Publish(ctx context.Context, subject string, event *Event) error
	Subscribe(subject string, handler EventHandler) (Subscription, error)
	// QueueSubscribe delivers each event to one member of queue.
	QueueSubscribe(subject, queue string, handler EventHandler) (Subscription, error)
	Close()
	IsConnected() bool
}
