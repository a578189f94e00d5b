package websocket

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/pkg/kvstore"
)

func runHub(t *testing.T) *Hub {
	t.Helper()

	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHubDeliversToListeners(t *testing.T) {
	hub := runHub(t)
	listener := make(chan Notification, 1)
	hub.AddListener(listener)

	hub.Publish(Notification{Type: TypeEventJoined, Kind: models.TimelineKindEvent, ID: "e1", UserID: "u1"})

	select {
	case n := <-listener:
		assert.Equal(t, TypeEventJoined, n.Type)
		assert.Equal(t, "e1", n.ID)
		assert.False(t, n.Timestamp.IsZero(), "publish stamps notifications")
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not delivered")
	}

	hub.RemoveListener(listener)
	assert.Empty(t, hub.listeners)
}

func TestHubFansOutByKind(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	all := &Client{hub: hub, send: make(chan []byte, 4), logger: zerolog.Nop()}
	posts := &Client{hub: hub, send: make(chan []byte, 4), kind: models.TimelineKindPost, logger: zerolog.Nop()}
	hub.registerClient(all)
	hub.registerClient(posts)

	hub.broadcastNotification(Notification{Type: TypeEventCreated, Kind: models.TimelineKindEvent, ID: "e1"})
	hub.broadcastNotification(Notification{Type: TypePostLiked, Kind: models.TimelineKindPost, ID: "p1"})

	assert.Len(t, all.send, 2)
	assert.Len(t, posts.send, 1)
	assert.Contains(t, string(<-posts.send), `"id":"p1"`)

	hub.unregisterClient(posts)
	assert.Equal(t, 0, hub.ClientsCount(models.TimelineKindPost))
	assert.Equal(t, 1, hub.ClientsCount(""))
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	slow := &Client{hub: hub, send: make(chan []byte), logger: zerolog.Nop()}
	hub.registerClient(slow)

	hub.broadcastNotification(Notification{Type: TypeSurveyVoted, Kind: models.TimelineKindSurvey, ID: "s1"})

	assert.Equal(t, 0, hub.ClientsCount(""))
	_, open := <-slow.send
	assert.False(t, open)
}

func TestActivityRecorderKeepsNewestFirst(t *testing.T) {
	ctx := context.Background()
	recorder := NewActivityRecorder(kvstore.NewMemoryStore(), NewHub(zerolog.Nop()), 3, zerolog.Nop())

	for i := 0; i < 5; i++ {
		kind := models.TimelineKindPost
		if i%2 == 0 {
			kind = models.TimelineKindEvent
		}
		require.NoError(t, recorder.Record(ctx, Notification{Type: "test", Kind: kind, ID: fmt.Sprintf("r%d", i)}))
	}

	recent, err := recorder.Recent(ctx, "", 0)
	require.NoError(t, err)
	ids := make([]string, len(recent))
	for i, n := range recent {
		ids[i] = n.ID
	}
	assert.Equal(t, []string{"r4", "r3", "r2"}, ids)

	events, err := recorder.Recent(ctx, models.TimelineKindEvent, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "r4", events[0].ID)
}

func TestActivityRecorderEmptyFeed(t *testing.T) {
	recorder := NewActivityRecorder(kvstore.NewMemoryStore(), NewHub(zerolog.Nop()), 0, zerolog.Nop())

	recent, err := recorder.Recent(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestParseKind(t *testing.T) {
	kind, ok := ParseKind("Post")
	assert.True(t, ok)
	assert.Equal(t, models.TimelineKindPost, kind)

	kind, ok = ParseKind("all")
	assert.True(t, ok)
	assert.Equal(t, models.TimelineKind(""), kind)

	_, ok = ParseKind("chat")
	assert.False(t, ok)
}
