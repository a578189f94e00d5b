package repositories

import (
	"github.com/rs/zerolog"
	"github.com/yigit/hobbysphere/internal/pkg/kvstore"
)

// Repositories holds all the repository instances
type Repositories struct {
	EventRepository  *EventRepository
	SurveyRepository *SurveyRepository
	PostRepository   *PostRepository
}

// NewRepositories initializes all repositories on top of one gateway
func NewRepositories(gw kvstore.Gateway, logger zerolog.Logger) *Repositories {
	return &Repositories{
		EventRepository:  NewEventRepository(gw, logger.With().Str("repository", "events").Logger()),
		SurveyRepository: NewSurveyRepository(gw, logger.With().Str("repository", "surveys").Logger()),
		PostRepository:   NewPostRepository(gw, logger.With().Str("repository", "posts").Logger()),
	}
}
