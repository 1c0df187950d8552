package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/holodevboard/internal/common/logger"
	"github.com/apper-canvas/holodevboard/internal/events"
	"github.com/apper-canvas/holodevboard/internal/events/bus"
	ws "github.com/apper-canvas/holodevboard/pkg/websocket"
)

func startGateway(t *testing.T) (*Gateway, bus.EventBus, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	eventBus := bus.NewMemoryEventBus(log)
	t.Cleanup(eventBus.Close)

	gw := NewGateway([]string{"*"}, log)
	go gw.Hub.Run(ctx)
	RegisterBoardNotifications(ctx, eventBus, gw.Hub, log)

	router := gin.New()
	gw.SetupRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return gw, eventBus, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *gorillaws.Conn {
	t.Helper()
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *gorillaws.Conn, id, action string, payload interface{}) *ws.Message {
	t.Helper()
	req, err := ws.NewRequest(id, action, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(req))
	return read(t, conn)
}

func read(t *testing.T, conn *gorillaws.Conn) *ws.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ws.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return &msg
}

func TestHealthCheck(t *testing.T) {
	_, _, url := startGateway(t)
	conn := dial(t, url)

	resp := roundTrip(t, conn, "h1", ws.ActionHealthCheck, nil)
	assert.Equal(t, ws.MessageTypeResponse, resp.Type)
	assert.Equal(t, "h1", resp.ID)
}

func TestBoardSubscriptionReceivesEvents(t *testing.T) {
	gw, eventBus, url := startGateway(t)
	conn := dial(t, url)

	resp := roundTrip(t, conn, "s1", ws.ActionBoardSubscribe, SubscribeRequest{BoardID: 4})
	require.Equal(t, ws.MessageTypeResponse, resp.Type)
	require.Eventually(t, func() bool { return gw.Hub.SubscriberCount(4) == 1 }, time.Second, 10*time.Millisecond)

	event := bus.NewEvent(events.TaskMoved, "test", map[string]interface{}{"board_id": int64(4), "task_id": int64(1)})
	require.NoError(t, eventBus.Publish(context.Background(), events.TaskMoved, event))

	msg := read(t, conn)
	assert.Equal(t, ws.MessageTypeNotification, msg.Type)
	assert.Equal(t, events.TaskMoved, msg.Action)

	var data map[string]interface{}
	require.NoError(t, msg.Decode(&data))
	assert.EqualValues(t, 1, data["task_id"])

	note := bus.NewEvent(events.NotificationCreated, "notify", map[string]interface{}{"board_id": int64(4), "message": "Columns reordered"})
	require.NoError(t, eventBus.Publish(context.Background(), events.NotificationCreated, note))
	msg = read(t, conn)
	assert.Equal(t, ws.ActionNotification, msg.Action)
}

func TestSubscribeValidation(t *testing.T) {
	_, _, url := startGateway(t)
	conn := dial(t, url)

	resp := roundTrip(t, conn, "s2", ws.ActionBoardSubscribe, map[string]int{"board_id": 0})
	assert.Equal(t, ws.MessageTypeError, resp.Type)

	var ep ws.ErrorPayload
	require.NoError(t, resp.Decode(&ep))
	assert.Equal(t, ws.ErrorCodeValidation, ep.Code)

	resp = roundTrip(t, conn, "u1", "board.explode", nil)
	require.NoError(t, resp.Decode(&ep))
	assert.Equal(t, ws.ErrorCodeUnknownAction, ep.Code)
}

func TestHealthListsActions(t *testing.T) {
	gw, _, url := startGateway(t)
	gw.Router.Handle(ws.ActionBoardList, func(_ context.Context, msg *ws.Message) (*ws.Message, error) {
		return msg.Reply([]string{})
	})
	conn := dial(t, url)
	require.Eventually(t, func() bool { return gw.Hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	resp := roundTrip(t, conn, "h2", ws.ActionHealthCheck, nil)
	var body struct {
		Clients int      `json:"clients"`
		Actions []string `json:"actions"`
	}
	require.NoError(t, resp.Decode(&body))
	assert.Equal(t, 1, body.Clients)
	assert.Equal(t, []string{ws.ActionBoardList, ws.ActionHealthCheck}, body.Actions)
}

func TestMalformedMessageGetsBadRequest(t *testing.T) {
	_, _, url := startGateway(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteMessage(gorillaws.TextMessage, []byte("{not json")))
	resp := read(t, conn)
	assert.Equal(t, ws.MessageTypeError, resp.Type)
	var ep ws.ErrorPayload
	require.NoError(t, resp.Decode(&ep))
	assert.Equal(t, ws.ErrorCodeBadRequest, ep.Code)
}

func TestHubDeliverScopesByBoard(t *testing.T) {
	hub := NewHub(logger.NewNop())
	a := newPeer("a", nil, hub, nil, logger.NewNop())
	b := newPeer("b", nil, hub, nil, logger.NewNop())
	require.True(t, hub.attach(a))
	require.True(t, hub.attach(b))
	hub.Subscribe(a, 1)

	msg, err := ws.NewNotification(events.TaskMoved, nil)
	require.NoError(t, err)
	hub.Deliver(1, msg)
	assert.Len(t, a.out, 1)
	assert.Len(t, b.out, 0)

	hub.Deliver(0, msg)
	assert.Len(t, a.out, 2)
	assert.Len(t, b.out, 1)

	hub.detach(a)
	hub.detach(a)
	assert.Equal(t, 0, hub.SubscriberCount(1))
	assert.Equal(t, 1, hub.ClientCount())
	assert.False(t, hub.enqueue(a, []byte("late")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)
	assert.Equal(t, 0, hub.ClientCount())
	assert.False(t, hub.attach(newPeer("c", nil, hub, nil, logger.NewNop())))
}
