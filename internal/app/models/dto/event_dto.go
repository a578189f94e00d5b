package dto

import (
	"time"

	"github.com/yigit/hobbysphere/internal/app/models"
)

// CreateEventRequest represents a request to publish an event
type CreateEventRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=200" example:"Board game night"`
	Description string `json:"description" binding:"max=4000" example:"Bring your favourite game"`
	StartsAt    string `json:"startsAt" binding:"required" example:"2025-03-01 19:00"`
	Location    string `json:"location" binding:"max=200" example:"Community hall"`
	Community   string `json:"community" binding:"max=100" example:"games"`
	Organizer   string `json:"organizer" binding:"required,notblank" example:"user-1"`
	Capacity    int    `json:"capacity" binding:"required" example:"12"`
}

// ParticipationRequest identifies the user joining or leaving an event
type ParticipationRequest struct {
	UserID string `json:"userId" binding:"required,notblank" example:"user-2"`
}

// CommentAuthorRequest is the author snapshot attached to a new comment
type CommentAuthorRequest struct {
	ID     string `json:"id" binding:"required,notblank" example:"user-2"`
	Name   string `json:"name" binding:"max=100" example:"Aiko"`
	Avatar string `json:"avatar" binding:"max=500"`
}

// ToModel converts the request into the stored author snapshot
func (r CommentAuthorRequest) ToModel() models.CommentAuthor {
	return models.CommentAuthor{ID: r.ID, Name: r.Name, Avatar: r.Avatar}
}

// AddCommentRequest represents a comment on an event or post
type AddCommentRequest struct {
	Author CommentAuthorRequest `json:"author" binding:"required"`
	Text   string               `json:"text" binding:"required,notblank,max=2000" example:"See you there!"`
}

// SetEventStatusRequest changes the organizer-controlled state of an event
type SetEventStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open closed cancelled" example:"closed"`
}

// EventResponse is an event as returned by the API, with its derived state
type EventResponse struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	StartsAt     time.Time        `json:"startsAt"`
	Location     string           `json:"location"`
	Community    string           `json:"community"`
	Organizer    string           `json:"organizer"`
	Capacity     int              `json:"capacity"`
	Participants []string         `json:"participants"`
	SeatsLeft    int              `json:"seatsLeft"`
	Comments     []models.Comment `json:"comments"`
	Status       string           `json:"status" enums:"open,closed,cancelled,full"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// FromEvent converts a models.Event to an EventResponse
func FromEvent(e *models.Event) EventResponse {
	participants := e.Participants
	if participants == nil {
		participants = []string{}
	}
	comments := e.Comments
	if comments == nil {
		comments = []models.Comment{}
	}

	return EventResponse{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		StartsAt:     e.StartsAt,
		Location:     e.Location,
		Community:    e.Community,
		Organizer:    e.Organizer,
		Capacity:     e.Capacity,
		Participants: participants,
		SeatsLeft:    e.SeatsLeft(),
		Comments:     comments,
		Status:       string(e.EffectiveStatus()),
		CreatedAt:    e.CreatedAt,
	}
}

// FromEvents converts a slice of events
func FromEvents(events []models.Event) []EventResponse {
	out := make([]EventResponse, len(events))
	for i := range events {
		out[i] = FromEvent(&events[i])
	}
	return out
}

// JoinEventResponse reports the result of a join attempt
type JoinEventResponse struct {
	Joined  bool           `json:"joined"`
	Outcome string         `json:"outcome" enums:"joined,already_participant,capacity_reached,event_closed,event_not_found"`
	Reason  ErrorCode      `json:"reason,omitempty" example:"EVT_001"`
	Event   *EventResponse `json:"event,omitempty"`
}

// LeaveEventResponse reports whether a seat was released
type LeaveEventResponse struct {
	Left bool `json:"left"`
}

// ParticipantStatusResponse answers whether a user holds a seat
type ParticipantStatusResponse struct {
	EventID       string `json:"eventId"`
	UserID        string `json:"userId"`
	IsParticipant bool   `json:"isParticipant"`
}
