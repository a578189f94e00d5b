package repositories

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
	"github.com/yigit/hobbysphere/internal/pkg/kvstore"
)

// EventsKey is the gateway key of the event collection
const EventsKey = "events_v1"

// EventRepository handles persistence of events
type EventRepository struct {
	collection[models.Event]
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(gw kvstore.Gateway, logger zerolog.Logger) *EventRepository {
	return &EventRepository{collection[models.Event]{
		gw:       gw,
		key:      EventsKey,
		idOf:     func(e *models.Event) string { return e.ID },
		notFound: apperrors.ErrEventNotFound,
		logger:   logger,
	}}
}

// ListByCommunity returns the events tagged with community (case-insensitive)
func (r *EventRepository) ListByCommunity(ctx context.Context, community string) ([]models.Event, error) {
	events, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(events, func(e models.Event, _ int) bool {
		return strings.EqualFold(e.Community, community)
	}), nil
}
