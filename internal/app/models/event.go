package models

import (
	"time"

	"github.com/samber/lo"
	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
)

// EventStatus is the lifecycle state of an event
type EventStatus string

const (
	EventStatusOpen      EventStatus = "open"
	EventStatusClosed    EventStatus = "closed"
	EventStatusCancelled EventStatus = "cancelled"
	// EventStatusFull is derived from the participant count and never stored
	EventStatusFull EventStatus = "full"
)

// IsManual reports whether an organizer may set the status directly
func (s EventStatus) IsManual() bool {
	return s == EventStatusOpen || s == EventStatusClosed || s == EventStatusCancelled
}

// JoinOutcome describes what a join attempt did
type JoinOutcome int

const (
	JoinOutcomeJoined JoinOutcome = iota
	JoinOutcomeAlreadyParticipant
	JoinOutcomeCapacityReached
	JoinOutcomeEventClosed
	JoinOutcomeEventNotFound
	JoinOutcomeInvalidRequest
)

func (o JoinOutcome) String() string {
	switch o {
	case JoinOutcomeJoined:
		return "joined"
	case JoinOutcomeAlreadyParticipant:
		return "already_participant"
	case JoinOutcomeCapacityReached:
		return "capacity_reached"
	case JoinOutcomeEventClosed:
		return "event_closed"
	case JoinOutcomeEventNotFound:
		return "event_not_found"
	case JoinOutcomeInvalidRequest:
		return "invalid_request"
	default:
		return "unknown"
	}
}

// Err returns the error behind a refusal. It is nil when the user holds a
// seat, including one taken earlier, and for an invalid request, which
// carries its own validation error.
func (o JoinOutcome) Err() error {
	switch o {
	case JoinOutcomeCapacityReached:
		return apperrors.ErrCapacityExceeded
	case JoinOutcomeEventClosed:
		return apperrors.ErrEventClosed
	case JoinOutcomeEventNotFound:
		return apperrors.ErrEventNotFound
	default:
		return nil
	}
}

// Event is a community meetup with a fixed number of seats
type Event struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	StartsAt     time.Time   `json:"startsAt"`
	Location     string      `json:"location"`
	Community    string      `json:"community"`
	Organizer    string      `json:"organizer"`
	Capacity     int         `json:"capacity"`
	Participants []string    `json:"participants"`
	Comments     []Comment   `json:"comments"`
	Status       EventStatus `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// EffectiveStatus derives "full" from the participant count. Only closed and
// cancelled are organizer decisions that override it.
func (e *Event) EffectiveStatus() EventStatus {
	switch e.Status {
	case EventStatusClosed, EventStatusCancelled:
		return e.Status
	}
	if len(e.Participants) >= e.Capacity {
		return EventStatusFull
	}
	return EventStatusOpen
}

// IsParticipant reports whether userID holds a seat
func (e *Event) IsParticipant(userID string) bool {
	return lo.Contains(e.Participants, userID)
}

// SeatsLeft returns the number of free seats
func (e *Event) SeatsLeft() int {
	left := e.Capacity - len(e.Participants)
	if left < 0 {
		return 0
	}
	return left
}

// AddParticipant seats userID if possible; only JoinOutcomeJoined mutates the event
func (e *Event) AddParticipant(userID string) JoinOutcome {
	if e.IsParticipant(userID) {
		return JoinOutcomeAlreadyParticipant
	}
	if e.Status == EventStatusClosed || e.Status == EventStatusCancelled {
		return JoinOutcomeEventClosed
	}
	if len(e.Participants) >= e.Capacity {
		return JoinOutcomeCapacityReached
	}
	e.Participants = append(e.Participants, userID)
	return JoinOutcomeJoined
}

// RemoveParticipant frees userID's seat and reports whether one was held
func (e *Event) RemoveParticipant(userID string) bool {
	if !e.IsParticipant(userID) {
		return false
	}
	e.Participants = lo.Without(e.Participants, userID)
	return true
}

// Comment looks up a comment by id
func (e *Event) Comment(id string) *Comment {
	return findComment(e.Comments, id)
}
