// Package session keeps one loaded board state per open board on the
// server, shared by every HTTP and WebSocket client looking at that board.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/board/drag"
	"github.com/apper-canvas/holodevboard/internal/board/optimistic"
	"github.com/apper-canvas/holodevboard/internal/board/service"
	"github.com/apper-canvas/holodevboard/internal/board/state"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
	"github.com/apper-canvas/holodevboard/internal/events"
	"github.com/apper-canvas/holodevboard/internal/events/bus"
	"github.com/apper-canvas/holodevboard/internal/notify"
)

// Session is the shared state of one board.
type Session struct {
	BoardID int64
	Board   *state.Store
	Runner  *optimistic.Runner

	manager *Manager
	once    sync.Once
	loadErr error
}

// Controller returns a fresh drag controller over the session. Grabs are
// private to the controller; the in-flight guard is shared by the session.
func (s *Session) Controller() *drag.Controller {
	return drag.NewController(drag.Config{
		Board:    s.Board,
		Runner:   s.Runner,
		Tasks:    s.manager.services.Tasks,
		Columns:  s.manager.services.Columns,
		Notifier: s.manager.notifier,
		Logger:   s.manager.logger,
	})
}

// Manager creates sessions lazily and drops them when their board goes away.
type Manager struct {
	services       *service.Services
	notifier       notify.Notifier
	logger         *logger.Logger
	persistTimeout time.Duration

	mu       sync.Mutex
	sessions map[int64]*Session
	subs     []bus.Subscription
}

// NewManager creates an empty manager.
func NewManager(services *service.Services, notifier notify.Notifier, persistTimeout time.Duration, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Default()
	}
	return &Manager{
		services:       services,
		notifier:       notifier,
		logger:         log.WithFields(zap.String("component", "board-sessions")),
		persistTimeout: persistTimeout,
		sessions:       make(map[int64]*Session),
	}
}

// Get returns the session of boardID, loading it on first use. An unknown
// board yields NotFound and no session.
func (m *Manager) Get(ctx context.Context, boardID int64) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[boardID]
	if !ok {
		s = &Session{
			BoardID: boardID,
			Board:   state.New(m.services.Columns, m.services.Tasks, m.logger),
			Runner:  optimistic.NewRunner(m.persistTimeout, m.logger),
			manager: m,
		}
		m.sessions[boardID] = s
	}
	m.mu.Unlock()

	s.once.Do(func() {
		if _, err := m.services.Boards.GetByID(ctx, boardID); err != nil {
			s.loadErr = err
			return
		}
		s.loadErr = s.Board.Load(ctx, boardID)
	})
	if s.loadErr != nil {
		m.evictSession(s)
		return nil, s.loadErr
	}
	return s, nil
}

// Evict drops the session of boardID, if any.
func (m *Manager) Evict(boardID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[boardID]; ok {
		delete(m.sessions, boardID)
		m.logger.Debug("board session evicted", zap.Int64("board_id", boardID))
	}
}

func (m *Manager) evictSession(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[s.BoardID] == s {
		delete(m.sessions, s.BoardID)
	}
}

// Open returns the ids of boards with a live session.
func (m *Manager) Open() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, 0, len(m.sessions))
	for id := range m.sessions {
		out = append(out, id)
	}
	return out
}

func (m *Manager) lookup(boardID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[boardID]
	return s, ok
}

// Watch keeps sessions in step with the data source: a deleted board is
// evicted and column or task changes reload the affected board.
func (m *Manager) Watch(eventBus bus.EventBus) error {
	handler := func(ctx context.Context, event *bus.Event) error {
		boardID, ok := event.BoardID()
		if !ok {
			return nil
		}
		if event.Type == events.BoardDeleted {
			m.Evict(boardID)
			return nil
		}
		s, ok := m.lookup(boardID)
		if !ok {
			return nil
		}
		if status, _ := s.Board.Status(); status == state.StatusIdle {
			return nil
		}
		return s.Board.Reload(notify.Quiet(ctx))
	}

	for _, subject := range []string{events.BoardDeleted, "column.*", "task.*"} {
		sub, err := eventBus.Subscribe(subject, handler)
		if err != nil {
			m.Close()
			return err
		}
		m.mu.Lock()
		m.subs = append(m.subs, sub)
		m.mu.Unlock()
	}
	return nil
}

// Close stops watching the event bus and drops every session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sub := range m.subs {
		_ = sub.Unsubscribe()
	}
	m.subs = nil
	m.sessions = make(map[int64]*Session)
}
