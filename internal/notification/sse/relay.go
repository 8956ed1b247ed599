package sse

import (
	"context"
	"encoding/json"
	"strings"

	"estate_portal_backend/internal/notification/inapp"
	"estate_portal_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "notifications:"

type envelope struct {
	UserID string `json:"userId"`
	Event  Event  `json:"event"`
}

// Broadcaster publishes notifications on redis so the API process holding
// the user's stream can deliver them. The scheduler process uses it.
type Broadcaster struct {
	rdb redis.UniversalClient
	log *logger.Logger
}

func NewBroadcaster(rdb redis.UniversalClient, log *logger.Logger) *Broadcaster {
	return &Broadcaster{rdb: rdb, log: log}
}

// Push implements inapp.Pusher.
func (b *Broadcaster) Push(ctx context.Context, userID string, n inapp.Notification) {
	data, err := json.Marshal(envelope{UserID: userID, Event: eventFor(n)})
	if err != nil {
		b.log.Error("encode notification", "error", err)
		return
	}
	if err := b.rdb.Publish(ctx, channelPrefix+userID, data).Err(); err != nil {
		b.log.Warn("notification broadcast failed", "userId", userID, "error", err)
	}
}

// Push implements inapp.Pusher for notifications created in this process.
func (s *Service) Push(_ context.Context, userID string, n inapp.Notification) {
	s.Publish(userID, eventFor(n))
}

// Relay forwards broadcasts from redis to the local streams until ctx ends.
func (s *Service) Relay(ctx context.Context, rdb redis.UniversalClient) error {
	sub := rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				s.log.Warn("malformed notification broadcast", "channel", msg.Channel, "error", err)
				continue
			}
			if env.UserID == "" {
				env.UserID = strings.TrimPrefix(msg.Channel, channelPrefix)
			}
			s.Publish(env.UserID, env.Event)
		}
	}
}

// eventFor picks the stream event type; report outcomes get their own so
// clients can refresh the archive list.
func eventFor(n inapp.Notification) Event {
	t := EventNotification
	if n.ResourceType != nil && *n.ResourceType == inapp.ResourceReportArchive {
		switch n.Category {
		case inapp.CategorySuccess:
			t = EventReportReady
		case inapp.CategoryWarning, inapp.CategoryError:
			t = EventReportFailed
		}
	}
	return Event{Type: t, Message: n.Title, Data: n}
}

var (
	_ inapp.Pusher = (*Broadcaster)(nil)
	_ inapp.Pusher = (*Service)(nil)
)
