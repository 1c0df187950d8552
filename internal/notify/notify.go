// Package notify is the user-facing notification sink. Services and the drag
// controller report the outcome of every mutation here; rendering is left to
// the transport (WebSocket toast, TUI status line, log).
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/apper-canvas/holodevboard/internal/common/logger"
)

// Severity of a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Notification is a single user-visible message.
type Notification struct {
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	BoardID   int64     `json:"board_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier delivers notifications. Implementations must not block the caller
// for long and must never fail it.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Success sends a success notification.
func Success(ctx context.Context, n Notifier, message string) {
	send(ctx, n, SeveritySuccess, message)
}

// Error sends an error notification.
func Error(ctx context.Context, n Notifier, message string) {
	send(ctx, n, SeverityError, message)
}

// Info sends an informational notification.
func Info(ctx context.Context, n Notifier, message string) {
	send(ctx, n, SeverityInfo, message)
}

func send(ctx context.Context, n Notifier, sev Severity, message string) {
	if n == nil {
		return
	}
	boardID, _ := logger.BoardFromContext(ctx)
	n.Notify(ctx, Notification{
		Severity:  sev,
		Message:   message,
		BoardID:   boardID,
		Timestamp: time.Now().UTC(),
	})
}

type quietKey struct{}

// Quiet marks ctx so that services skip their own notifications; the caller
// reports the outcome of the whole operation itself.
func Quiet(ctx context.Context) context.Context {
	return context.WithValue(ctx, quietKey{}, true)
}

// IsQuiet reports whether ctx was marked with Quiet.
func IsQuiet(ctx context.Context) bool {
	v, _ := ctx.Value(quietKey{}).(bool)
	return v
}

// WithBoard tags notifications sent with ctx with a board id so transports
// can route them to that board's subscribers. Log lines written with ctx
// carry the same id.
func WithBoard(ctx context.Context, boardID int64) context.Context {
	return logger.ContextWithBoard(ctx, boardID)
}

// Multi fans a notification out to several sinks.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, target := range m {
		if target != nil {
			target.Notify(ctx, n)
		}
	}
}

// Recorder keeps notifications in memory. The TUI reads the latest one for
// its status line and tests assert on the full list.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify implements Notifier.
func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of every recorded notification.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Messages returns the recorded messages in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.items))
	for _, n := range r.items {
		out = append(out, n.Message)
	}
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Reset clears the recorder.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}
