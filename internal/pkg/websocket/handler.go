package websocket

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/hobbysphere/internal/app/models"
)

// Handler upgrades HTTP requests into notification subscriptions
type Handler struct {
	hub    *Hub
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		logger: logger,
	}
}

// ParseKind accepts an empty filter or one of the timeline kinds
func ParseKind(raw string) (models.TimelineKind, bool) {
	switch kind := models.TimelineKind(strings.ToLower(strings.TrimSpace(raw))); kind {
	case "", models.TimelineKind(models.TimelineFilterAll):
		return "", true
	case models.TimelineKindEvent, models.TimelineKindSurvey, models.TimelineKindPost:
		return kind, true
	}
	return "", false
}

// HandleConnection subscribes the caller to change notifications.
// Query parameters: kind (event|survey|post, optional) and userId (optional).
func (h *Handler) HandleConnection(c *gin.Context) {
	kind, ok := ParseKind(c.Query("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "kind must be one of event, survey, post",
		})
		return
	}
	userID := c.Query("userId")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("kind", string(kind)).
			Str("userID", userID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
		kind:   kind,
		logger: h.logger,
	}
	if !h.hub.attach(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Str("kind", string(kind)).
		Str("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket subscription established")
}
