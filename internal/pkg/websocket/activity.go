package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/pkg/kvstore"
)

// ActivityKey is the gateway key holding the recent activity feed
const ActivityKey = "activity_v1"

// DefaultActivityLimit caps how many notifications the feed keeps
const DefaultActivityLimit = 200

// ActivityRecorder listens to the hub and persists the most recent
// notifications, newest first, so clients that were offline can catch up.
type ActivityRecorder struct {
	gw      kvstore.Gateway
	hub     *Hub
	limit   int
	timeout time.Duration
	logger  zerolog.Logger
}

// NewActivityRecorder creates a recorder keeping at most limit notifications
func NewActivityRecorder(gw kvstore.Gateway, hub *Hub, limit int, logger zerolog.Logger) *ActivityRecorder {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	return &ActivityRecorder{
		gw:      gw,
		hub:     hub,
		limit:   limit,
		timeout: 5 * time.Second,
		logger:  logger,
	}
}

// Start records notifications until ctx is cancelled
func (r *ActivityRecorder) Start(ctx context.Context) {
	listener := make(chan Notification, broadcastBuffer)
	r.hub.AddListener(listener)

	go func() {
		defer r.hub.RemoveListener(listener)
		for {
			select {
			case <-ctx.Done():
				return
			case n := <-listener:
				r.record(n)
			}
		}
	}()
}

func (r *ActivityRecorder) record(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.Record(ctx, n); err != nil {
		r.logger.Error().
			Err(err).
			Str("type", n.Type).
			Str("id", n.ID).
			Msg("Failed to record activity")
		return
	}

	r.logger.Debug().
		Str("type", n.Type).
		Str("id", n.ID).
		Msg("Activity recorded")
}

// Record prepends n to the feed, trimming it to the configured limit
func (r *ActivityRecorder) Record(ctx context.Context, n Notification) error {
	return r.gw.Update(ctx, ActivityKey, func(current []byte, exists bool) ([]byte, error) {
		var feed []Notification
		if exists && len(current) > 0 {
			if err := json.Unmarshal(current, &feed); err != nil {
				return nil, fmt.Errorf("decode activity feed: %w", err)
			}
		}

		feed = append([]Notification{n}, feed...)
		if len(feed) > r.limit {
			feed = feed[:r.limit]
		}
		return json.Marshal(feed)
	})
}

// Recent returns up to limit notifications, newest first, optionally restricted to one kind
func (r *ActivityRecorder) Recent(ctx context.Context, kind models.TimelineKind, limit int) ([]Notification, error) {
	data, err := r.gw.Get(ctx, ActivityKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []Notification{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read activity feed: %w", err)
	}

	var feed []Notification
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("decode activity feed: %w", err)
	}

	out := make([]Notification, 0, len(feed))
	for _, n := range feed {
		if kind != "" && n.Kind != kind {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
