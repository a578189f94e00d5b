package services

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/hobbysphere/internal/app/repositories"
	"github.com/yigit/hobbysphere/internal/pkg/websocket"
)

// Services defined in this package:
// - EventService: events, seats and event comments
// - SurveyService: surveys, votes and tallies
// - PostService: the social feed, likes and comment threads
// - TimelineService: the merged, newest-first view over all three
type Services struct {
	EventService    EventService
	SurveyService   SurveyService
	PostService     PostService
	TimelineService TimelineService
}

// NewServices wires every service on top of the given repositories
func NewServices(repos *repositories.Repositories, notifier websocket.Notifier, logger zerolog.Logger) *Services {
	if notifier == nil {
		notifier = websocket.NopNotifier{}
	}

	return &Services{
		EventService:    NewEventService(repos.EventRepository, notifier, logger.With().Str("service", "events").Logger()),
		SurveyService:   NewSurveyService(repos.SurveyRepository, notifier, logger.With().Str("service", "surveys").Logger()),
		PostService:     NewPostService(repos.PostRepository, notifier, logger.With().Str("service", "posts").Logger()),
		TimelineService: NewTimelineService(repos, logger.With().Str("service", "timeline").Logger()),
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}
