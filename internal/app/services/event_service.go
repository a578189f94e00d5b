package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/app/models/dto"
	"github.com/yigit/hobbysphere/internal/app/repositories"
	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
	"github.com/yigit/hobbysphere/internal/pkg/helpers"
	"github.com/yigit/hobbysphere/internal/pkg/kvstore"
	"github.com/yigit/hobbysphere/internal/pkg/metrics"
	"github.com/yigit/hobbysphere/internal/pkg/websocket"
)

// EventService defines the interface for event operations
type EventService interface {
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*models.Event, error)
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	ListEvents(ctx context.Context, community string) ([]models.Event, error)
	Join(ctx context.Context, eventID, userID string) (models.JoinOutcome, *models.Event, error)
	JoinEvent(ctx context.Context, eventID, userID string) (bool, error)
	LeaveEvent(ctx context.Context, eventID, userID string) (bool, error)
	IsParticipant(ctx context.Context, eventID, userID string) (bool, error)
	AddEventComment(ctx context.Context, eventID string, author models.CommentAuthor, text string) (*models.Comment, error)
	SetEventStatus(ctx context.Context, eventID string, status models.EventStatus) (*models.Event, error)
}

// eventServiceImpl implements EventService
type eventServiceImpl struct {
	eventRepo *repositories.EventRepository
	notifier  websocket.Notifier
	logger    zerolog.Logger
	now       func() time.Time
}

// NewEventService creates a new EventService
func NewEventService(eventRepo *repositories.EventRepository, notifier websocket.Notifier, logger zerolog.Logger) EventService {
	return &eventServiceImpl{
		eventRepo: eventRepo,
		notifier:  notifier,
		logger:    logger,
		now:       utcNow,
	}
}

func (s *eventServiceImpl) publish(notificationType, eventID, userID string) {
	s.notifier.Publish(websocket.Notification{
		Type:      notificationType,
		Kind:      models.TimelineKindEvent,
		ID:        eventID,
		UserID:    userID,
		Timestamp: s.now(),
	})
}

// CreateEvent validates and stores a new open event
func (s *eventServiceImpl) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*models.Event, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("Event title is required")
	}
	if req.Capacity <= 0 {
		return nil, apperrors.ErrInvalidCapacity
	}
	organizer := strings.TrimSpace(req.Organizer)
	if organizer == "" {
		return nil, apperrors.NewValidationError("Event organizer is required")
	}

	now := s.now()
	startsAt, err := helpers.NormalizeTimestamp(req.StartsAt, now)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Invalid event start time: %v", err))
	}

	event := models.Event{
		ID:           uuid.NewString(),
		Title:        title,
		Description:  strings.TrimSpace(req.Description),
		StartsAt:     startsAt,
		Location:     strings.TrimSpace(req.Location),
		Community:    strings.TrimSpace(req.Community),
		Organizer:    organizer,
		Capacity:     req.Capacity,
		Participants: []string{},
		Comments:     []models.Comment{},
		Status:       models.EventStatusOpen,
		CreatedAt:    now,
	}

	if err := s.eventRepo.Insert(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("title", title).Msg("Failed to store event")
		metrics.ObserveMutation(metrics.RegistryEvents, "create", metrics.OutcomeFailed)
		return nil, fmt.Errorf("error creating event: %w", err)
	}

	s.logger.Info().
		Str("eventID", event.ID).
		Str("organizer", organizer).
		Int("capacity", event.Capacity).
		Msg("Event created")
	metrics.ObserveMutation(metrics.RegistryEvents, "create", metrics.OutcomeApplied)
	s.publish(websocket.TypeEventCreated, event.ID, organizer)

	return &event, nil
}

// GetEvent retrieves an event by id
func (s *eventServiceImpl) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	return s.eventRepo.Get(ctx, eventID)
}

// ListEvents returns all events, or those of one community. No ordering is guaranteed.
func (s *eventServiceImpl) ListEvents(ctx context.Context, community string) ([]models.Event, error) {
	community = strings.TrimSpace(community)
	if community == "" {
		return s.eventRepo.List(ctx)
	}
	return s.eventRepo.ListByCommunity(ctx, community)
}

// Join seats userID on the event. The capacity check and the append happen in
// one atomic update, so concurrent joins never overshoot capacity. Expected
// refusals are reported through the outcome with a nil error.
func (s *eventServiceImpl) Join(ctx context.Context, eventID, userID string) (models.JoinOutcome, *models.Event, error) {
	if strings.TrimSpace(userID) == "" {
		return models.JoinOutcomeInvalidRequest, nil, apperrors.NewValidationError("User ID is required")
	}

	s.logger.Debug().
		Str("eventID", eventID).
		Str("userID", userID).
		Msg("User joining event")

	var outcome models.JoinOutcome
	event, err := s.eventRepo.Mutate(ctx, eventID, func(e *models.Event) error {
		outcome = e.AddParticipant(userID)
		if outcome != models.JoinOutcomeJoined {
			return kvstore.ErrSkipWrite
		}
		return nil
	})
	if errors.Is(err, apperrors.ErrEventNotFound) {
		metrics.ObserveMutation(metrics.RegistryEvents, "join", models.JoinOutcomeEventNotFound.String())
		return models.JoinOutcomeEventNotFound, nil, nil
	}
	if err != nil {
		s.logger.Error().Err(err).
			Str("eventID", eventID).
			Str("userID", userID).
			Msg("Failed to add participant")
		metrics.ObserveMutation(metrics.RegistryEvents, "join", metrics.OutcomeFailed)
		return outcome, nil, fmt.Errorf("error joining event: %w", err)
	}

	metrics.ObserveMutation(metrics.RegistryEvents, "join", outcome.String())
	if outcome == models.JoinOutcomeJoined {
		s.publish(websocket.TypeEventJoined, eventID, userID)
	} else {
		s.logger.Debug().
			Str("eventID", eventID).
			Str("userID", userID).
			Stringer("outcome", outcome).
			Msg("Join refused")
	}

	return outcome, event, nil
}

// JoinEvent reports true only when userID was newly seated
func (s *eventServiceImpl) JoinEvent(ctx context.Context, eventID, userID string) (bool, error) {
	outcome, _, err := s.Join(ctx, eventID, userID)
	if err != nil {
		return false, err
	}
	return outcome == models.JoinOutcomeJoined, nil
}

// LeaveEvent releases userID's seat and reports whether one was held.
// An unknown event is reported as false.
func (s *eventServiceImpl) LeaveEvent(ctx context.Context, eventID, userID string) (bool, error) {
	removed := false
	_, err := s.eventRepo.Mutate(ctx, eventID, func(e *models.Event) error {
		removed = e.RemoveParticipant(userID)
		if !removed {
			return kvstore.ErrSkipWrite
		}
		return nil
	})
	if errors.Is(err, apperrors.ErrEventNotFound) {
		metrics.ObserveMutation(metrics.RegistryEvents, "leave", metrics.OutcomeNoop)
		return false, nil
	}
	if err != nil {
		s.logger.Error().Err(err).
			Str("eventID", eventID).
			Str("userID", userID).
			Msg("Failed to remove participant")
		metrics.ObserveMutation(metrics.RegistryEvents, "leave", metrics.OutcomeFailed)
		return false, fmt.Errorf("error leaving event: %w", err)
	}

	if removed {
		metrics.ObserveMutation(metrics.RegistryEvents, "leave", metrics.OutcomeApplied)
		s.publish(websocket.TypeEventLeft, eventID, userID)
	} else {
		metrics.ObserveMutation(metrics.RegistryEvents, "leave", metrics.OutcomeNoop)
	}
	return removed, nil
}

// IsParticipant reports whether userID holds a seat on the event
func (s *eventServiceImpl) IsParticipant(ctx context.Context, eventID, userID string) (bool, error) {
	event, err := s.eventRepo.Get(ctx, eventID)
	if err != nil {
		return false, err
	}
	return event.IsParticipant(userID), nil
}

// AddEventComment appends a comment to the event's thread
func (s *eventServiceImpl) AddEventComment(ctx context.Context, eventID string, author models.CommentAuthor, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.ErrEmptyContent
	}
	if strings.TrimSpace(author.ID) == "" {
		return nil, apperrors.NewValidationError("Comment author is required")
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		EventID:   eventID,
		Author:    author,
		Text:      text,
		Timestamp: s.now(),
		Likes:     []string{},
	}

	_, err := s.eventRepo.Mutate(ctx, eventID, func(e *models.Event) error {
		e.Comments = append(e.Comments, comment)
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Error().Err(err).Str("eventID", eventID).Msg("Failed to add event comment")
		}
		metrics.ObserveMutation(metrics.RegistryEvents, "comment", metrics.OutcomeFailed)
		return nil, err
	}

	metrics.ObserveMutation(metrics.RegistryEvents, "comment", metrics.OutcomeApplied)
	s.publish(websocket.TypeEventCommented, eventID, author.ID)
	return &comment, nil
}

// SetEventStatus stores an organizer decision. Only open, closed and cancelled
// can be set; full always follows from the participant count.
func (s *eventServiceImpl) SetEventStatus(ctx context.Context, eventID string, status models.EventStatus) (*models.Event, error) {
	if !status.IsManual() {
		return nil, apperrors.ErrInvalidEventState
	}

	changed := false
	event, err := s.eventRepo.Mutate(ctx, eventID, func(e *models.Event) error {
		changed = e.Status != status
		if !changed {
			return kvstore.ErrSkipWrite
		}
		e.Status = status
		return nil
	})
	if err != nil {
		metrics.ObserveMutation(metrics.RegistryEvents, "set_status", metrics.OutcomeFailed)
		return nil, err
	}

	if changed {
		s.logger.Info().
			Str("eventID", eventID).
			Str("status", string(status)).
			Msg("Event status changed")
		metrics.ObserveMutation(metrics.RegistryEvents, "set_status", metrics.OutcomeApplied)
		s.publish(websocket.TypeEventStatusChanged, eventID, "")
	} else {
		metrics.ObserveMutation(metrics.RegistryEvents, "set_status", metrics.OutcomeNoop)
	}
	return event, nil
}
