package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/pkg/metrics"
)

// Notification types published after successful registry mutations
const (
	TypeEventCreated       = "event.created"
	TypeEventJoined        = "event.joined"
	TypeEventLeft          = "event.left"
	TypeEventCommented     = "event.commented"
	TypeEventStatusChanged = "event.status_changed"
	TypeSurveyCreated      = "survey.created"
	TypeSurveyVoted        = "survey.voted"
	TypeSurveyClosed       = "survey.closed"
	TypePostCreated        = "post.created"
	TypePostLiked          = "post.liked"
	TypePostUnliked        = "post.unliked"
	TypePostCommented      = "post.commented"
	TypePostCommentLiked   = "post.comment_liked"
	TypePostShared         = "post.shared"
)

// broadcastBuffer bounds how many notifications may queue before Publish drops
const broadcastBuffer = 256

// Notification tells subscribers that a record changed. It carries a reference,
// not the record, so clients re-read current state.
type Notification struct {
	Type      string              `json:"type"`
	Kind      models.TimelineKind `json:"kind"`
	ID        string              `json:"id"`
	UserID    string              `json:"userId,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// Notifier publishes change notifications
type Notifier interface {
	Publish(n Notification)
}

// NopNotifier drops every notification
type NopNotifier struct{}

// Publish implements Notifier
func (NopNotifier) Publish(Notification) {}

// Hub maintains the set of active subscribers and fans notifications out to them
type Hub struct {
	// Registered clients grouped by kind filter; "" receives everything
	clients map[models.TimelineKind]map[*Client]bool

	broadcast  chan Notification
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	listenersMu sync.RWMutex
	listeners   []chan Notification

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[models.TimelineKind]map[*Client]bool),
		broadcast:  make(chan Notification, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case n := <-h.broadcast:
			h.broadcastNotification(n)
		}
	}
}

// Publish queues n for delivery. It never blocks the caller: when the queue is
// full the notification is dropped and logged.
func (h *Hub) Publish(n Notification) {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}

	select {
	case h.broadcast <- n:
		metrics.NotificationPublished(n.Type)
	default:
		h.logger.Warn().
			Str("type", n.Type).
			Str("id", n.ID).
			Msg("Notification queue full, dropping notification")
	}
}

// attach hands client to the running hub; it reports false once the hub stopped
func (h *Hub) attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// detach asks the running hub to drop client
func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.kind]; !ok {
		h.clients[client.kind] = make(map[*Client]bool)
	}
	h.clients[client.kind][client] = true
	metrics.SubscriberConnected()

	h.logger.Info().
		Str("kind", string(client.kind)).
		Str("userID", client.userID).
		Str("addr", client.remoteAddr()).
		Msg("Subscriber registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	group, ok := h.clients[client.kind]
	if !ok {
		return
	}
	if _, ok := group[client]; !ok {
		return
	}

	delete(group, client)
	close(client.send)
	metrics.SubscriberDisconnected()
	if len(group) == 0 {
		delete(h.clients, client.kind)
	}

	h.logger.Info().
		Str("kind", string(client.kind)).
		Str("userID", client.userID).
		Str("addr", client.remoteAddr()).
		Msg("Subscriber unregistered")
}

func (h *Hub) broadcastNotification(n Notification) {
	h.notifyListeners(n)

	data, err := json.Marshal(n)
	if err != nil {
		h.logger.Error().Err(err).Str("type", n.Type).Msg("Failed to marshal notification")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	kinds := []models.TimelineKind{""}
	if n.Kind != "" {
		kinds = append(kinds, n.Kind)
	}

	delivered := 0
	for _, kind := range kinds {
		for client := range h.clients[kind] {
			select {
			case client.send <- data:
				delivered++
			default:
				// slow subscriber; drop it rather than stall everyone else
				h.removeLocked(client)
			}
		}
	}

	h.logger.Debug().
		Str("type", n.Type).
		Str("id", n.ID).
		Int("clientCount", delivered).
		Msg("Notification broadcasted")
}

func (h *Hub) notifyListeners(n Notification) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, listener := range h.listeners {
		select {
		case listener <- n:
		default:
			h.logger.Warn().Msg("Skipped slow notification listener")
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, group := range h.clients {
		for client := range group {
			h.removeLocked(client)
		}
	}
}

// ClientsCount returns the number of subscribers registered with the kind filter
func (h *Hub) ClientsCount(kind models.TimelineKind) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[kind])
}

// AddListener registers a channel that receives every notification the hub broadcasts
func (h *Hub) AddListener(listener chan Notification) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	h.listeners = append(h.listeners, listener)
}

// RemoveListener removes a listener from the hub
func (h *Hub) RemoveListener(listener chan Notification) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	for i, l := range h.listeners {
		if l == listener {
			h.listeners[i] = h.listeners[len(h.listeners)-1]
			h.listeners = h.listeners[:len(h.listeners)-1]
			break
		}
	}
}
