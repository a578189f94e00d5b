package repositories

import (
	"github.com/rs/zerolog"
	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
	"github.com/yigit/hobbysphere/internal/pkg/kvstore"
)

// SurveysKey is the gateway key of the survey collection
const SurveysKey = "surveys_v1"

// SurveyRepository handles persistence of surveys and their votes
type SurveyRepository struct {
	collection[models.Survey]
}

// NewSurveyRepository creates a new SurveyRepository
func NewSurveyRepository(gw kvstore.Gateway, logger zerolog.Logger) *SurveyRepository {
	return &SurveyRepository{collection[models.Survey]{
		gw:       gw,
		key:      SurveysKey,
		idOf:     func(s *models.Survey) string { return s.ID },
		notFound: apperrors.ErrSurveyNotFound,
		logger:   logger,
	}}
}
