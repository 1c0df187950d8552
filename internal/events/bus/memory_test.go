package bus

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/holodevboard/internal/common/logger"
)

func TestMemoryEventBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryEventBus(logger.NewNop())
	defer bus.Close()

	received := make(chan *Event, 1)
	sub, err := bus.Subscribe("task.*", func(ctx context.Context, event *Event) error {
		received <- event
		return nil
	})
	require.NoError(t, err)
	defer func() { _ = sub.Unsubscribe() }()

	event := NewEvent("task.moved", "test", map[string]interface{}{"board_id": int64(4)})
	require.NoError(t, bus.Publish(context.Background(), "task.moved", event))

	select {
	case e := <-received:
		assert.Equal(t, event.ID, e.ID)
		boardID, ok := e.BoardID()
		assert.True(t, ok)
		assert.Equal(t, int64(4), boardID)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestMemoryEventBus_QueueDeliversOnce(t *testing.T) {
	bus := NewMemoryEventBus(logger.NewNop())
	defer bus.Close()

	var count int32
	handler := func(ctx context.Context, event *Event) error {
		atomic.AddInt32(&count, 1)
		return nil
	}
	_, err := bus.QueueSubscribe("board.created", "workers", handler)
	require.NoError(t, err)
	_, err = bus.QueueSubscribe("board.created", "workers", handler)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		require.NoError(t, bus.Publish(context.Background(), "board.created", NewEvent("board.created", "test", nil)))
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&count) == 4 }, time.Second, 10*time.Millisecond)
}

func TestMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryEventBus(logger.NewNop())
	sub, err := bus.Subscribe("label.deleted", func(ctx context.Context, event *Event) error { return nil })
	require.NoError(t, err)
	assert.True(t, sub.IsValid())
	require.NoError(t, sub.Unsubscribe())
	assert.False(t, sub.IsValid())

	bus.Close()
	assert.False(t, bus.IsConnected())
	assert.Error(t, bus.Publish(context.Background(), "label.deleted", NewEvent("label.deleted", "test", nil)))
}

func TestSubjectMatches(t *testing.T) {
	cases := []struct {
		pattern, subject string
		want             bool
	}{
		{"task.moved", "task.moved", true},
		{"task.*", "task.moved", true},
		{"task.*", "column.reordered", false},
		{"*.deleted", "label.deleted", true},
		{">", "notification.created", true},
		{"task.>", "task", false},
		{"task.*", "task.a.b", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, subjectMatches(tc.pattern, tc.subject), "%s vs %s", tc.pattern, tc.subject)
	}
}

func TestEventInt64(t *testing.T) {
	e := NewEvent("task.moved", "test", map[string]interface{}{
		"board_id": float64(3),
		"task_id":  int64(9),
		"other":    "x",
	})
	id, ok := e.BoardID()
	assert.True(t, ok)
	assert.Equal(t, int64(3), id)
	id, ok = e.Int64("task_id")
	assert.True(t, ok)
	assert.Equal(t, int64(9), id)
	_, ok = e.Int64("other")
	assert.False(t, ok)
	_, ok = (*Event)(nil).BoardID()
	assert.False(t, ok)
}
