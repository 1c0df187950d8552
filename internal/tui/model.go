// Package tui is the terminal board client. It drives the same board
// sessions and drag controller as the WebSocket gateway.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/board/drag"
	"github.com/apper-canvas/holodevboard/internal/board/filter"
	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/board/service"
	"github.com/apper-canvas/holodevboard/internal/board/session"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
	"github.com/apper-canvas/holodevboard/internal/notify"
)

const defaultRefresh = 250 * time.Millisecond

// Deps are the collaborators of the terminal client.
type Deps struct {
	Services *service.Services
	Sessions *session.Manager
	// Recorder must be one of the sinks the services and sessions notify;
	// its latest entry is shown on the status line.
	Recorder *notify.Recorder
	Logger   *logger.Logger
	// Refresh is the redraw interval for changes made outside the client.
	Refresh time.Duration
}

// Run starts the client and blocks until it quits or ctx is done.
func Run(ctx context.Context, deps Deps) error {
	program := tea.NewProgram(New(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// Model is the bubbletea model of the board.
type Model struct {
	ctx    context.Context
	deps   Deps
	logger *logger.Logger

	boards   []*models.Board
	boardIdx int
	labels   []*models.Label
	session  *session.Session
	drag     *drag.Controller

	col, row  int
	query     filter.Query
	labelIdx  int
	searching bool

	width  int
	height int
	busy   int
	err    error
}

type boardsMsg struct {
	boards []*models.Board
	labels []*models.Label
	err    error
}

type labelsMsg []*models.Label

type sessionMsg struct {
	session *session.Session
	err     error
}

type doneMsg struct{ err error }

type tickMsg time.Time

// New creates the model. Nothing is loaded until Init runs.
func New(ctx context.Context, deps Deps) *Model {
	if deps.Refresh <= 0 {
		deps.Refresh = defaultRefresh
	}
	if deps.Recorder == nil {
		deps.Recorder = notify.NewRecorder()
	}
	log := deps.Logger
	if log == nil {
		log = logger.Default()
	}
	return &Model{
		ctx:      ctx,
		deps:     deps,
		logger:   log.WithFields(zap.String("component", "tui")),
		labelIdx: -1,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadBoards(), tick(m.deps.Refresh))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if m.searching {
			m.updateSearch(msg)
			return m, nil
		}
		return m, m.handleKey(msg)
	case boardsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.boards, m.labels = msg.boards, msg.labels
		if len(m.boards) == 0 {
			return m, nil
		}
		if m.boardIdx >= len(m.boards) {
			m.boardIdx = 0
		}
		return m, m.openBoard()
	case labelsMsg:
		m.labels = msg
	case sessionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.session = msg.session
		m.drag = msg.session.Controller()
		m.col, m.row = 0, 0
	case doneMsg:
		m.busy--
		m.err = msg.err
	case tickMsg:
		m.clamp()
		return m, tick(m.deps.Refresh)
	}
	m.clamp()
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "left", "h":
		m.col--
		m.row = 0
	case "right", "l":
		m.col++
		m.row = 0
	case "up", "k":
		m.row--
	case "down", "j":
		m.row++
	case " ":
		return m.toggleTask()
	case "m":
		return m.toggleColumn()
	case "esc":
		if m.drag != nil {
			m.drag.Cancel()
		}
	case "/":
		m.searching = true
	case "f":
		m.cycleLabel()
	case "r":
		return m.reload()
	case "tab":
		return m.nextBoard()
	}
	m.clamp()
	return nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
	case tea.KeyBackspace:
		if r := []rune(m.query.Text); len(r) > 0 {
			m.query.Text = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.query.Text += " "
	case tea.KeyRunes:
		m.query.Text += string(msg.Runes)
	}
	m.row = 0
	m.clamp()
}

// cycleLabel steps the label filter through every label and back to none.
func (m *Model) cycleLabel() {
	if len(m.labels) == 0 {
		m.labelIdx = -1
		m.query.Labels = nil
		return
	}
	m.labelIdx++
	if m.labelIdx >= len(m.labels) {
		m.labelIdx = -1
		m.query.Labels = nil
	} else {
		m.query.Labels = []string{m.labels[m.labelIdx].Name}
	}
	m.row = 0
}

func (m *Model) toggleTask() tea.Cmd {
	if m.drag == nil {
		return nil
	}
	switch m.drag.Grabbed().Kind {
	case drag.KindNone:
		if t := m.currentTask(); t != nil {
			m.setErr(m.drag.GrabTask(t.ID))
		}
	case drag.KindTask:
		target := m.currentColumn()
		if target == nil {
			m.drag.Cancel()
			return nil
		}
		ctrl := m.drag
		return m.run(func(ctx context.Context) error {
			_, err := ctrl.DropTask(ctx, target.ID)
			return err
		})
	}
	return nil
}

func (m *Model) toggleColumn() tea.Cmd {
	if m.drag == nil {
		return nil
	}
	switch m.drag.Grabbed().Kind {
	case drag.KindNone:
		if c := m.currentColumn(); c != nil {
			m.setErr(m.drag.GrabColumn(c.ID))
		}
	case drag.KindColumn:
		target := m.currentColumn()
		if target == nil {
			m.drag.Cancel()
			return nil
		}
		ctrl := m.drag
		return m.run(func(ctx context.Context) error {
			_, err := ctrl.DropColumn(ctx, target.ID)
			return err
		})
	}
	return nil
}

func (m *Model) reload() tea.Cmd {
	if m.session == nil {
		return m.loadBoards()
	}
	board := m.session.Board
	return tea.Batch(
		m.run(board.Reload),
		m.loadLabels(),
	)
}

func (m *Model) nextBoard() tea.Cmd {
	if len(m.boards) < 2 {
		return nil
	}
	if m.drag != nil {
		m.drag.Cancel()
	}
	m.boardIdx = (m.boardIdx + 1) % len(m.boards)
	m.session, m.drag = nil, nil
	return m.openBoard()
}

// run executes fn off the update loop and reports its error as a doneMsg.
func (m *Model) run(fn func(ctx context.Context) error) tea.Cmd {
	m.busy++
	ctx := m.ctx
	return func() tea.Msg {
		return doneMsg{err: fn(ctx)}
	}
}

func (m *Model) setErr(err error) {
	m.err = err
	if err != nil {
		m.logger.Debug("action rejected", zap.Error(err))
	}
}

func (m *Model) loadBoards() tea.Cmd {
	ctx, svc := m.ctx, m.deps.Services
	return func() tea.Msg {
		boards, err := svc.Boards.GetAll(ctx)
		if err != nil {
			return boardsMsg{err: err}
		}
		labels, err := svc.Labels.GetAll(ctx)
		if err != nil {
			return boardsMsg{err: err}
		}
		return boardsMsg{boards: boards, labels: labels}
	}
}

func (m *Model) loadLabels() tea.Cmd {
	ctx, svc := m.ctx, m.deps.Services
	return func() tea.Msg {
		labels, err := svc.Labels.GetAll(ctx)
		if err != nil {
			return nil
		}
		return labelsMsg(labels)
	}
}

func (m *Model) openBoard() tea.Cmd {
	ctx, sessions := m.ctx, m.deps.Sessions
	boardID := m.boards[m.boardIdx].ID
	return func() tea.Msg {
		s, err := sessions.Get(ctx, boardID)
		if err != nil {
			return sessionMsg{err: fmt.Errorf("open board %d: %w", boardID, err)}
		}
		return sessionMsg{session: s}
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// visible groups the tasks matching the query by column, in board order.
func (m *Model) visible() ([]*models.Column, map[int64][]*models.Task) {
	if m.session == nil {
		return nil, nil
	}
	cols := m.session.Board.Columns()
	byColumn := make(map[int64][]*models.Task, len(cols))
	for _, t := range filter.Apply(m.session.Board.Tasks(), m.labels, m.query) {
		byColumn[t.ColumnID] = append(byColumn[t.ColumnID], t)
	}
	return cols, byColumn
}

func (m *Model) currentColumn() *models.Column {
	cols, _ := m.visible()
	if m.col < 0 || m.col >= len(cols) {
		return nil
	}
	return cols[m.col]
}

func (m *Model) currentTask() *models.Task {
	cols, byColumn := m.visible()
	if m.col < 0 || m.col >= len(cols) {
		return nil
	}
	tasks := byColumn[cols[m.col].ID]
	if m.row < 0 || m.row >= len(tasks) {
		return nil
	}
	return tasks[m.row]
}

// clamp keeps the cursor on an existing column and task.
func (m *Model) clamp() {
	cols, byColumn := m.visible()
	if len(cols) == 0 {
		m.col, m.row = 0, 0
		return
	}
	m.col = max(0, min(m.col, len(cols)-1))
	n := len(byColumn[cols[m.col].ID])
	m.row = max(0, min(m.row, n-1))
}
