package models

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
)

// QuestionType selects how a question accepts answers
type QuestionType string

const (
	QuestionTypeSingle   QuestionType = "single"
	QuestionTypeMultiple QuestionType = "multiple"
	QuestionTypeText     QuestionType = "text"
)

// IsChoice reports whether answers pick from configured options
func (t QuestionType) IsChoice() bool {
	return t == QuestionTypeSingle || t == QuestionTypeMultiple
}

// SurveyStatus tells whether a survey still accepts votes
type SurveyStatus string

const (
	SurveyStatusOpen   SurveyStatus = "open"
	SurveyStatusClosed SurveyStatus = "closed"
)

// TextResponsesKey is the tally key used for free-text questions
const TextResponsesKey = "responses"

// Question is one item of a survey. Votes maps an option label to its voters;
// Responses maps a voter to their free-text answer.
type Question struct {
	ID        string              `json:"id"`
	Text      string              `json:"text"`
	Type      QuestionType        `json:"type"`
	Options   []string            `json:"options,omitempty"`
	Votes     map[string][]string `json:"votes,omitempty"`
	Responses map[string]string   `json:"responses,omitempty"`
}

// Survey is a questionnaire published to a community
type Survey struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Community   string       `json:"community"`
	Author      string       `json:"author"`
	Questions   []Question   `json:"questions"`
	Status      SurveyStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	ClosedAt    *time.Time   `json:"closedAt,omitempty"`
}

// IsClosed reports whether votes are rejected
func (s *Survey) IsClosed() bool {
	return s.Status == SurveyStatusClosed
}

// Question looks up a question by id
func (s *Survey) Question(id string) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}

// HasOption reports whether option is configured on a choice question
func (q *Question) HasOption(option string) bool {
	return q.Type.IsChoice() && lo.Contains(q.Options, option)
}

// Vote records userID's answer.
//   - single: the voter is removed from every other option, then added to the chosen one
//   - multiple: the voter's membership in the chosen option is toggled
//   - text: the voter's response is replaced
func (q *Question) Vote(userID, answer string) error {
	switch q.Type {
	case QuestionTypeSingle:
		if !q.HasOption(answer) {
			return apperrors.ErrInvalidOption
		}
		q.ensureVotes()
		for _, option := range q.Options {
			if option != answer {
				q.Votes[option] = lo.Without(q.Votes[option], userID)
			}
		}
		if !lo.Contains(q.Votes[answer], userID) {
			q.Votes[answer] = append(q.Votes[answer], userID)
		}
		return nil

	case QuestionTypeMultiple:
		if !q.HasOption(answer) {
			return apperrors.ErrInvalidOption
		}
		q.ensureVotes()
		if lo.Contains(q.Votes[answer], userID) {
			q.Votes[answer] = lo.Without(q.Votes[answer], userID)
		} else {
			q.Votes[answer] = append(q.Votes[answer], userID)
		}
		return nil

	case QuestionTypeText:
		text := strings.TrimSpace(answer)
		if text == "" {
			return apperrors.NewValidationError("response text must not be empty")
		}
		if q.Responses == nil {
			q.Responses = make(map[string]string)
		}
		q.Responses[userID] = text
		return nil
	}

	return apperrors.NewValidationError("unsupported question type " + string(q.Type))
}

// Tally counts voters per configured option. Text questions report the number
// of responses under TextResponsesKey.
func (q *Question) Tally() map[string]int {
	if q.Type == QuestionTypeText {
		return map[string]int{TextResponsesKey: len(q.Responses)}
	}

	counts := make(map[string]int, len(q.Options))
	for _, option := range q.Options {
		counts[option] = len(q.Votes[option])
	}
	return counts
}

// Choices returns the options userID currently has a vote on, in option order
func (q *Question) Choices(userID string) []string {
	return lo.Filter(q.Options, func(option string, _ int) bool {
		return lo.Contains(q.Votes[option], userID)
	})
}

func (q *Question) ensureVotes() {
	if q.Votes == nil {
		q.Votes = make(map[string][]string, len(q.Options))
	}
}
