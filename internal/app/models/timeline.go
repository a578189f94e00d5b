package models

import (
	"sort"
	"strings"
	"time"

	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
)

// TimelineKind tags the record behind a timeline item
type TimelineKind string

const (
	TimelineKindEvent  TimelineKind = "event"
	TimelineKindSurvey TimelineKind = "survey"
	TimelineKindPost   TimelineKind = "post"
)

// TimelineFilter restricts a timeline to one kind of record
type TimelineFilter string

const (
	TimelineFilterAll    TimelineFilter = "all"
	TimelineFilterEvent  TimelineFilter = "event"
	TimelineFilterSurvey TimelineFilter = "survey"
	TimelineFilterPost   TimelineFilter = "post"
)

// ParseTimelineFilter accepts all, event, survey, post or an empty string (all)
func ParseTimelineFilter(raw string) (TimelineFilter, error) {
	switch filter := TimelineFilter(strings.ToLower(strings.TrimSpace(raw))); filter {
	case "", TimelineFilterAll:
		return TimelineFilterAll, nil
	case TimelineFilterEvent, TimelineFilterSurvey, TimelineFilterPost:
		return filter, nil
	}
	return "", apperrors.NewValidationError("unknown timeline filter " + raw)
}

func (f TimelineFilter) admits(kind TimelineKind) bool {
	return f == TimelineFilterAll || f == "" || string(f) == string(kind)
}

// TimelineRef identifies the record behind an item
type TimelineRef struct {
	Kind TimelineKind `json:"kind"`
	ID   string       `json:"id"`
}

// TimelineItem wraps exactly one of Event, Survey or Post, matching Kind.
type TimelineItem struct {
	Kind      TimelineKind `json:"kind"`
	Ref       TimelineRef  `json:"ref"`
	Timestamp time.Time    `json:"timestamp"`
	Event     *Event       `json:"event,omitempty"`
	Survey    *Survey      `json:"survey,omitempty"`
	Post      *Post        `json:"post,omitempty"`
}

// BuildTimeline merges the three collections newest first. Items with equal
// timestamps keep their input order: events, then surveys, then posts. The
// filter is applied after ordering. The result points into the given slices
// and holds no other state, so callers rebuild it from fresh snapshots.
func BuildTimeline(events []Event, surveys []Survey, posts []Post, filter TimelineFilter) []TimelineItem {
	items := make([]TimelineItem, 0, len(events)+len(surveys)+len(posts))

	for i := range events {
		e := &events[i]
		items = append(items, TimelineItem{
			Kind:      TimelineKindEvent,
			Ref:       TimelineRef{Kind: TimelineKindEvent, ID: e.ID},
			Timestamp: e.CreatedAt,
			Event:     e,
		})
	}
	for i := range surveys {
		s := &surveys[i]
		items = append(items, TimelineItem{
			Kind:      TimelineKindSurvey,
			Ref:       TimelineRef{Kind: TimelineKindSurvey, ID: s.ID},
			Timestamp: s.CreatedAt,
			Survey:    s,
		})
	}
	for i := range posts {
		p := &posts[i]
		items = append(items, TimelineItem{
			Kind:      TimelineKindPost,
			Ref:       TimelineRef{Kind: TimelineKindPost, ID: p.ID},
			Timestamp: p.Timestamp,
			Post:      p,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})

	filtered := items[:0]
	for _, item := range items {
		if filter.admits(item.Kind) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
