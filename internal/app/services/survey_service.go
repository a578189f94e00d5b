package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/app/models/dto"
	"github.com/yigit/hobbysphere/internal/app/repositories"
	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
	"github.com/yigit/hobbysphere/internal/pkg/kvstore"
	"github.com/yigit/hobbysphere/internal/pkg/metrics"
	"github.com/yigit/hobbysphere/internal/pkg/websocket"
)

// SurveyService defines the interface for survey operations
type SurveyService interface {
	CreateSurvey(ctx context.Context, req *dto.CreateSurveyRequest) (*models.Survey, error)
	GetSurvey(ctx context.Context, surveyID string) (*models.Survey, error)
	ListSurveys(ctx context.Context) ([]models.Survey, error)
	CastVote(ctx context.Context, surveyID, questionID, userID, answer string) error
	CloseSurvey(ctx context.Context, surveyID string) (*models.Survey, error)
	Tally(ctx context.Context, surveyID, questionID string) (map[string]int, error)
	Responses(ctx context.Context, surveyID, questionID string) (map[string]string, error)
}

// surveyServiceImpl implements SurveyService
type surveyServiceImpl struct {
	surveyRepo *repositories.SurveyRepository
	notifier   websocket.Notifier
	logger     zerolog.Logger
	now        func() time.Time
}

// NewSurveyService creates a new SurveyService
func NewSurveyService(surveyRepo *repositories.SurveyRepository, notifier websocket.Notifier, logger zerolog.Logger) SurveyService {
	return &surveyServiceImpl{
		surveyRepo: surveyRepo,
		notifier:   notifier,
		logger:     logger,
		now:        utcNow,
	}
}

func (s *surveyServiceImpl) publish(notificationType, surveyID, userID string) {
	s.notifier.Publish(websocket.Notification{
		Type:      notificationType,
		Kind:      models.TimelineKindSurvey,
		ID:        surveyID,
		UserID:    userID,
		Timestamp: s.now(),
	})
}

// buildQuestions validates the requested questions and assigns missing ids
func buildQuestions(reqs []dto.CreateQuestionRequest) ([]models.Question, error) {
	if len(reqs) == 0 {
		return nil, apperrors.NewValidationError("A survey needs at least one question")
	}

	questions := make([]models.Question, 0, len(reqs))
	seen := make(map[string]bool, len(reqs))
	for i, req := range reqs {
		text := strings.TrimSpace(req.Text)
		if text == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("Question %d has no text", i+1))
		}

		id := strings.TrimSpace(req.ID)
		if id == "" {
			id = uuid.NewString()
		}
		if seen[id] {
			return nil, apperrors.NewValidationError(fmt.Sprintf("Question id %q is used twice", id))
		}
		seen[id] = true

		q := models.Question{ID: id, Text: text, Type: models.QuestionType(req.Type)}
		switch q.Type {
		case models.QuestionTypeSingle, models.QuestionTypeMultiple:
			options := lo.Map(req.Options, func(o string, _ int) string { return strings.TrimSpace(o) })
			if len(options) == 0 {
				return nil, apperrors.NewValidationError(fmt.Sprintf("Question %q needs at least one option", id))
			}
			if lo.Contains(options, "") {
				return nil, apperrors.NewValidationError(fmt.Sprintf("Question %q has a blank option", id))
			}
			if len(lo.Uniq(options)) != len(options) {
				return nil, apperrors.NewValidationError(fmt.Sprintf("Question %q repeats an option", id))
			}
			q.Options = options
			q.Votes = make(map[string][]string, len(options))
			for _, option := range options {
				q.Votes[option] = []string{}
			}
		case models.QuestionTypeText:
			if len(req.Options) > 0 {
				return nil, apperrors.NewValidationError(fmt.Sprintf("Text question %q cannot have options", id))
			}
			q.Responses = map[string]string{}
		default:
			return nil, apperrors.NewValidationError(fmt.Sprintf("Question %q has unknown type %q", id, req.Type))
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// CreateSurvey validates and stores a new open survey
func (s *surveyServiceImpl) CreateSurvey(ctx context.Context, req *dto.CreateSurveyRequest) (*models.Survey, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("Survey title is required")
	}
	author := strings.TrimSpace(req.Author)
	if author == "" {
		return nil, apperrors.NewValidationError("Survey author is required")
	}

	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	survey := models.Survey{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Community:   strings.TrimSpace(req.Community),
		Author:      author,
		Questions:   questions,
		Status:      models.SurveyStatusOpen,
		CreatedAt:   s.now(),
	}

	if err := s.surveyRepo.Insert(ctx, survey); err != nil {
		s.logger.Error().Err(err).Str("title", title).Msg("Failed to store survey")
		metrics.ObserveMutation(metrics.RegistrySurveys, "create", metrics.OutcomeFailed)
		return nil, fmt.Errorf("error creating survey: %w", err)
	}

	s.logger.Info().
		Str("surveyID", survey.ID).
		Int("questions", len(questions)).
		Msg("Survey created")
	metrics.ObserveMutation(metrics.RegistrySurveys, "create", metrics.OutcomeApplied)
	s.publish(websocket.TypeSurveyCreated, survey.ID, author)

	return &survey, nil
}

// GetSurvey retrieves a survey by id
func (s *surveyServiceImpl) GetSurvey(ctx context.Context, surveyID string) (*models.Survey, error) {
	return s.surveyRepo.Get(ctx, surveyID)
}

// ListSurveys returns every survey in stored order
func (s *surveyServiceImpl) ListSurveys(ctx context.Context) ([]models.Survey, error) {
	return s.surveyRepo.List(ctx)
}

// CastVote records userID's answer to one question. Closure and option checks
// run inside the same atomic update as the vote itself.
func (s *surveyServiceImpl) CastVote(ctx context.Context, surveyID, questionID, userID, answer string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.NewValidationError("User ID is required")
	}

	_, err := s.surveyRepo.Mutate(ctx, surveyID, func(survey *models.Survey) error {
		if survey.IsClosed() {
			return apperrors.ErrSurveyClosed
		}
		question := survey.Question(questionID)
		if question == nil {
			return apperrors.ErrQuestionNotFound
		}
		return question.Vote(userID, answer)
	})
	if err != nil {
		s.logger.Debug().Err(err).
			Str("surveyID", surveyID).
			Str("questionID", questionID).
			Str("userID", userID).
			Msg("Vote rejected")
		metrics.ObserveMutation(metrics.RegistrySurveys, "vote", metrics.OutcomeFailed)
		return err
	}

	metrics.ObserveMutation(metrics.RegistrySurveys, "vote", metrics.OutcomeApplied)
	s.publish(websocket.TypeSurveyVoted, surveyID, userID)
	return nil
}

// CloseSurvey stops a survey from accepting votes. Closing twice keeps the
// first closing time.
func (s *surveyServiceImpl) CloseSurvey(ctx context.Context, surveyID string) (*models.Survey, error) {
	closedNow := false
	survey, err := s.surveyRepo.Mutate(ctx, surveyID, func(survey *models.Survey) error {
		if survey.IsClosed() {
			closedNow = false
			return kvstore.ErrSkipWrite
		}
		closedAt := s.now()
		survey.Status = models.SurveyStatusClosed
		survey.ClosedAt = &closedAt
		closedNow = true
		return nil
	})
	if err != nil {
		metrics.ObserveMutation(metrics.RegistrySurveys, "close", metrics.OutcomeFailed)
		return nil, err
	}

	if closedNow {
		s.logger.Info().Str("surveyID", surveyID).Msg("Survey closed")
		metrics.ObserveMutation(metrics.RegistrySurveys, "close", metrics.OutcomeApplied)
		s.publish(websocket.TypeSurveyClosed, surveyID, "")
	} else {
		metrics.ObserveMutation(metrics.RegistrySurveys, "close", metrics.OutcomeNoop)
	}
	return survey, nil
}

func (s *surveyServiceImpl) question(ctx context.Context, surveyID, questionID string) (*models.Question, error) {
	survey, err := s.surveyRepo.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	question := survey.Question(questionID)
	if question == nil {
		return nil, apperrors.ErrQuestionNotFound
	}
	return question, nil
}

// Tally counts voters per option from the stored voter sets on every call
func (s *surveyServiceImpl) Tally(ctx context.Context, surveyID, questionID string) (map[string]int, error) {
	question, err := s.question(ctx, surveyID, questionID)
	if err != nil {
		return nil, err
	}
	return question.Tally(), nil
}

// Responses returns the free-text answers of a text question keyed by voter
func (s *surveyServiceImpl) Responses(ctx context.Context, surveyID, questionID string) (map[string]string, error) {
	question, err := s.question(ctx, surveyID, questionID)
	if err != nil {
		return nil, err
	}
	if question.Type != models.QuestionTypeText {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Question %q does not take free-text answers", questionID))
	}

	responses := make(map[string]string, len(question.Responses))
	for voter, text := range question.Responses {
		responses[voter] = text
	}
	return responses, nil
}
