package models_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
)

func TestSingleChoiceLastVoteWins(t *testing.T) {
	q := &models.Question{ID: "q1", Type: models.QuestionTypeSingle, Options: []string{"X", "Y"}}

	require.NoError(t, q.Vote("u1", "X"))
	require.NoError(t, q.Vote("u1", "Y"))

	assert.Equal(t, map[string]int{"X": 0, "Y": 1}, q.Tally())
	assert.Equal(t, []string{"Y"}, q.Choices("u1"))
}

func TestSingleChoiceRevoteSameOption(t *testing.T) {
	q := &models.Question{ID: "q1", Type: models.QuestionTypeSingle, Options: []string{"X", "Y"}}

	require.NoError(t, q.Vote("u1", "X"))
	require.NoError(t, q.Vote("u1", "X"))

	assert.Equal(t, map[string]int{"X": 1, "Y": 0}, q.Tally())
}

func TestSingleChoiceExclusivityAcrossVoters(t *testing.T) {
	q := &models.Question{ID: "q1", Type: models.QuestionTypeSingle, Options: []string{"A", "B", "C"}}
	votes := [][2]string{
		{"u1", "A"}, {"u2", "B"}, {"u1", "C"}, {"u3", "A"}, {"u2", "A"}, {"u1", "B"}, {"u3", "A"},
	}
	for _, v := range votes {
		require.NoError(t, q.Vote(v[0], v[1]))
	}

	for _, voter := range []string{"u1", "u2", "u3"} {
		assert.Len(t, q.Choices(voter), 1, voter)
	}
	assert.Equal(t, map[string]int{"A": 2, "B": 1, "C": 0}, q.Tally())
}

func TestMultipleChoiceToggles(t *testing.T) {
	q := &models.Question{ID: "q1", Type: models.QuestionTypeMultiple, Options: []string{"X", "Y"}}

	require.NoError(t, q.Vote("u1", "X"))
	require.NoError(t, q.Vote("u1", "X"))
	require.NoError(t, q.Vote("u1", "Y"))

	assert.Equal(t, map[string]int{"X": 0, "Y": 1}, q.Tally())

	require.NoError(t, q.Vote("u1", "X"))
	assert.Equal(t, []string{"X", "Y"}, q.Choices("u1"))
}

func TestVoteRejectsUnknownOption(t *testing.T) {
	for _, qt := range []models.QuestionType{models.QuestionTypeSingle, models.QuestionTypeMultiple} {
		q := &models.Question{ID: "q1", Type: qt, Options: []string{"X"}}
		err := q.Vote("u1", "Z")
		assert.True(t, errors.Is(err, apperrors.ErrInvalidOption), string(qt))
		assert.Equal(t, map[string]int{"X": 0}, q.Tally())
	}
}

func TestTextQuestionReplacesResponse(t *testing.T) {
	q := &models.Question{ID: "q1", Type: models.QuestionTypeText}

	require.NoError(t, q.Vote("u1", "first"))
	require.NoError(t, q.Vote("u1", "  second "))
	require.NoError(t, q.Vote("u2", "other"))

	assert.Equal(t, map[string]string{"u1": "second", "u2": "other"}, q.Responses)
	assert.Equal(t, map[string]int{models.TextResponsesKey: 2}, q.Tally())

	err := q.Vote("u3", "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Len(t, q.Responses, 2)
}

func TestSurveyQuestionLookup(t *testing.T) {
	s := &models.Survey{
		Status:    models.SurveyStatusOpen,
		Questions: []models.Question{{ID: "q1"}, {ID: "q2"}},
	}

	q := s.Question("q2")
	require.NotNil(t, q)
	q.Text = "changed"
	assert.Equal(t, "changed", s.Questions[1].Text)
	assert.Nil(t, s.Question("q3"))
	assert.False(t, s.IsClosed())
}
