package sse

import (
	"context"
	"testing"
	"time"

	"estate_portal_backend/internal/notification/inapp"
	"estate_portal_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subscribe(s *Service, userID string) *client {
	c := &client{userID: userID, events: make(chan Event, clientBufferSize)}
	s.addClient(c)
	return c
}

func receive(t *testing.T, c *client) Event {
	t.Helper()
	select {
	case e := <-c.events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublish_OnlyReachesTargetUser(t *testing.T) {
	s := New(logger.Discard())
	a1 := subscribe(s, "agent-1")
	a1b := subscribe(s, "agent-1")
	other := subscribe(s, "agent-2")

	n := s.Publish("agent-1", Event{Type: EventNotification, Message: "hi"})
	assert.Equal(t, 2, n)
	assert.Equal(t, "hi", receive(t, a1).Message)
	assert.Equal(t, "hi", receive(t, a1b).Message)
	assert.Empty(t, other.events)

	s.removeClient(a1)
	assert.Equal(t, 1, s.Connections("agent-1"))
}

func TestPublish_DropsWhenBufferFull(t *testing.T) {
	s := New(logger.Discard())
	c := subscribe(s, "u1")
	for i := 0; i < clientBufferSize; i++ {
		require.Equal(t, 1, s.Publish("u1", Event{Type: EventNotification}))
	}
	assert.Equal(t, 0, s.Publish("u1", Event{Type: EventNotification}))
	assert.Len(t, c.events, clientBufferSize)
}

func TestEventFor_ReportOutcomes(t *testing.T) {
	kind := inapp.ResourceReportArchive
	ready := inapp.Notification{Title: "ready", ResourceType: &kind, Category: inapp.CategorySuccess}
	failed := inapp.Notification{Title: "failed", ResourceType: &kind, Category: inapp.CategoryWarning}

	assert.Equal(t, EventReportReady, eventFor(ready).Type)
	assert.Equal(t, EventReportFailed, eventFor(failed).Type)
	assert.Equal(t, EventNotification, eventFor(inapp.Notification{Title: "x"}).Type)
}

func TestRelay_DeliversBroadcastsFromOtherProcesses(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s := New(logger.Discard())
	c := subscribe(s, "agent-1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Relay(ctx, rdb) }()

	require.Eventually(t, func() bool {
		return mr.PubSubNumPat() > 0
	}, 2*time.Second, 10*time.Millisecond)

	b := NewBroadcaster(rdb, logger.Discard())
	kind := inapp.ResourceReportArchive
	b.Push(context.Background(), "agent-1", inapp.Notification{ID: uuid.New(), Title: "Your report is ready", ResourceType: &kind, Category: inapp.CategorySuccess})

	e := receive(t, c)
	assert.Equal(t, EventReportReady, e.Type)
	assert.Equal(t, "Your report is ready", e.Message)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}
