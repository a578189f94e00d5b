package dto

import (
	"time"

	"github.com/yigit/hobbysphere/internal/app/models"
)

// CreateQuestionRequest describes one question of a new survey
type CreateQuestionRequest struct {
	ID      string   `json:"id" binding:"max=64" example:"q1"`
	Text    string   `json:"text" binding:"required,notblank,max=500" example:"Which day suits you?"`
	Type    string   `json:"type" binding:"required,oneof=single multiple text" example:"single"`
	Options []string `json:"options" binding:"max=20,dive,max=200" example:"Saturday,Sunday"`
}

// CreateSurveyRequest represents a request to publish a survey
type CreateSurveyRequest struct {
	Title       string                  `json:"title" binding:"required,notblank,max=200" example:"Next meetup"`
	Description string                  `json:"description" binding:"max=4000"`
	Community   string                  `json:"community" binding:"max=100" example:"games"`
	Author      string                  `json:"author" binding:"required,notblank" example:"user-1"`
	Questions   []CreateQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// CastVoteRequest carries an option label, or free text for text questions
type CastVoteRequest struct {
	UserID string `json:"userId" binding:"required,notblank" example:"user-2"`
	Answer string `json:"answer" binding:"required" example:"Saturday"`
}

// QuestionResponse is a question with its current tally. Voter ids are not exposed.
type QuestionResponse struct {
	ID      string         `json:"id"`
	Text    string         `json:"text"`
	Type    string         `json:"type" enums:"single,multiple,text"`
	Options []string       `json:"options,omitempty"`
	Tally   map[string]int `json:"tally"`
}

// SurveyResponse is a survey as returned by the API
type SurveyResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Community   string             `json:"community"`
	Author      string             `json:"author"`
	Questions   []QuestionResponse `json:"questions"`
	Status      string             `json:"status" enums:"open,closed"`
	CreatedAt   time.Time          `json:"createdAt"`
	ClosedAt    *time.Time         `json:"closedAt,omitempty"`
}

// FromSurvey converts a models.Survey to a SurveyResponse
func FromSurvey(s *models.Survey) SurveyResponse {
	questions := make([]QuestionResponse, len(s.Questions))
	for i := range s.Questions {
		q := &s.Questions[i]
		questions[i] = QuestionResponse{
			ID:      q.ID,
			Text:    q.Text,
			Type:    string(q.Type),
			Options: q.Options,
			Tally:   q.Tally(),
		}
	}

	return SurveyResponse{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Community:   s.Community,
		Author:      s.Author,
		Questions:   questions,
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
		ClosedAt:    s.ClosedAt,
	}
}

// FromSurveys converts a slice of surveys
func FromSurveys(surveys []models.Survey) []SurveyResponse {
	out := make([]SurveyResponse, len(surveys))
	for i := range surveys {
		out[i] = FromSurvey(&surveys[i])
	}
	return out
}

// TallyResponse holds fresh vote counts for one question
type TallyResponse struct {
	SurveyID   string         `json:"surveyId"`
	QuestionID string         `json:"questionId"`
	Counts     map[string]int `json:"counts"`
}

// ResponsesResponse holds the free-text answers of a text question keyed by voter
type ResponsesResponse struct {
	SurveyID   string            `json:"surveyId"`
	QuestionID string            `json:"questionId"`
	Responses  map[string]string `json:"responses"`
}
