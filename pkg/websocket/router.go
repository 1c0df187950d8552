package websocket

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// HandlerFunc answers one request. A nil reply sends nothing back.
type HandlerFunc func(ctx context.Context, msg *Message) (*Message, error)

// Router maps actions to handlers. It is safe for concurrent use, and
// handlers may be added while connections are being served.
type Router struct {
	mu     sync.RWMutex
	routes map[string]HandlerFunc
}

func NewRouter() *Router {
	return &Router{routes: make(map[string]HandlerFunc)}
}

// Handle registers fn for action. Registering an action twice panics.
func (r *Router) Handle(action string, fn HandlerFunc) {
	if action == "" || fn == nil {
		panic("websocket: empty action or nil handler")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.routes[action]; dup {
		panic("websocket: duplicate handler for " + action)
	}
	r.routes[action] = fn
}

// Actions lists the registered actions in sorted order.
func (r *Router) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.routes))
	for action := range r.routes {
		out = append(out, action)
	}
	sort.Strings(out)
	return out
}

// Dispatch runs the handler for msg.Action. Unknown actions get an
// UNKNOWN_ACTION reply; a panicking handler is reported as an error.
func (r *Router) Dispatch(ctx context.Context, msg *Message) (reply *Message, err error) {
	r.mu.RLock()
	fn, ok := r.routes[msg.Action]
	r.mu.RUnlock()
	if !ok {
		return msg.Fail(ErrorCodeUnknownAction, "Unknown action: "+msg.Action)
	}
	defer func() {
		if p := recover(); p != nil {
			reply, err = nil, fmt.Errorf("handler %s panicked: %v", msg.Action, p)
		}
	}()
	return fn(ctx, msg)
}
