package dto

import (
	"time"

	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/pkg/websocket"
)

// TimelineItemResponse is one timeline entry. Exactly one of Event, Survey or
// Post is set, matching Kind, and it carries the same derived fields as the
// single-record endpoints.
type TimelineItemResponse struct {
	Kind      models.TimelineKind `json:"kind" enums:"event,survey,post"`
	Ref       models.TimelineRef  `json:"ref"`
	Timestamp time.Time           `json:"timestamp"`
	Event     *EventResponse      `json:"event,omitempty"`
	Survey    *SurveyResponse     `json:"survey,omitempty"`
	Post      *PostResponse       `json:"post,omitempty"`
}

// FromTimelineItems converts merged timeline items to their API form
func FromTimelineItems(items []models.TimelineItem) []TimelineItemResponse {
	out := make([]TimelineItemResponse, len(items))
	for i := range items {
		item := &items[i]
		out[i] = TimelineItemResponse{
			Kind:      item.Kind,
			Ref:       item.Ref,
			Timestamp: item.Timestamp,
		}
		switch {
		case item.Event != nil:
			event := FromEvent(item.Event)
			out[i].Event = &event
		case item.Survey != nil:
			survey := FromSurvey(item.Survey)
			out[i].Survey = &survey
		case item.Post != nil:
			post := FromPost(item.Post)
			out[i].Post = &post
		}
	}
	return out
}

// TimelineResponse is one page of the merged timeline
type TimelineResponse struct {
	Filter     string                 `json:"filter" enums:"all,event,survey,post"`
	Items      []TimelineItemResponse `json:"items"`
	Pagination PaginationInfo         `json:"pagination"`
}

// ActivityResponse lists recent change notifications, newest first
type ActivityResponse struct {
	Items []websocket.Notification `json:"items"`
}
