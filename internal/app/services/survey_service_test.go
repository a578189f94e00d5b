package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/app/models/dto"
	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
	"github.com/yigit/hobbysphere/internal/pkg/kvstore"
)

func createSurvey(t *testing.T, f *fixture) *models.Survey {
	t.Helper()

	survey, err := f.services.SurveyService.CreateSurvey(context.Background(), &dto.CreateSurveyRequest{
		Title:  "Next meetup",
		Author: "organizer",
		Questions: []dto.CreateQuestionRequest{
			{ID: "day", Text: "Which day?", Type: "single", Options: []string{"X", "Y"}},
			{ID: "games", Text: "Which games?", Type: "multiple", Options: []string{"X", "Y"}},
			{ID: "notes", Text: "Anything else?", Type: "text"},
		},
	})
	require.NoError(t, err)
	return survey
}

func TestCreateSurveyValidation(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()

	survey := createSurvey(t, f)
	assert.Equal(t, models.SurveyStatusOpen, survey.Status)
	assert.Len(t, survey.Questions, 3)
	assert.Equal(t, map[string]int{"X": 0, "Y": 0}, survey.Questions[0].Tally())

	generated, err := f.services.SurveyService.CreateSurvey(ctx, &dto.CreateSurveyRequest{
		Title: "t", Author: "a",
		Questions: []dto.CreateQuestionRequest{
			{Text: "one", Type: "text"},
			{Text: "two", Type: "text"},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, generated.Questions[0].ID)
	assert.NotEqual(t, generated.Questions[0].ID, generated.Questions[1].ID)

	invalid := []struct {
		name      string
		questions []dto.CreateQuestionRequest
	}{
		{"no questions", nil},
		{"duplicate ids", []dto.CreateQuestionRequest{{ID: "q", Text: "a", Type: "text"}, {ID: "q", Text: "b", Type: "text"}}},
		{"choice without options", []dto.CreateQuestionRequest{{Text: "a", Type: "single"}}},
		{"repeated option", []dto.CreateQuestionRequest{{Text: "a", Type: "multiple", Options: []string{"X", " X"}}}},
		{"blank option", []dto.CreateQuestionRequest{{Text: "a", Type: "single", Options: []string{"X", " "}}}},
		{"text with options", []dto.CreateQuestionRequest{{Text: "a", Type: "text", Options: []string{"X"}}}},
		{"unknown type", []dto.CreateQuestionRequest{{Text: "a", Type: "ranking", Options: []string{"X"}}}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.services.SurveyService.CreateSurvey(ctx, &dto.CreateSurveyRequest{
				Title: "t", Author: "a", Questions: tt.questions,
			})
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestSingleChoiceRevoteScenario(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()
	survey := createSurvey(t, f)

	require.NoError(t, f.services.SurveyService.CastVote(ctx, survey.ID, "day", "u1", "X"))
	require.NoError(t, f.services.SurveyService.CastVote(ctx, survey.ID, "day", "u1", "Y"))

	tally, err := f.services.SurveyService.Tally(ctx, survey.ID, "day")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"X": 0, "Y": 1}, tally)
}

func TestMultipleChoiceRetractScenario(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()
	survey := createSurvey(t, f)

	require.NoError(t, f.services.SurveyService.CastVote(ctx, survey.ID, "games", "u1", "X"))
	require.NoError(t, f.services.SurveyService.CastVote(ctx, survey.ID, "games", "u1", "X"))
	require.NoError(t, f.services.SurveyService.CastVote(ctx, survey.ID, "games", "u1", "Y"))

	tally, err := f.services.SurveyService.Tally(ctx, survey.ID, "games")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"X": 0, "Y": 1}, tally)
}

func TestTextResponses(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()
	survey := createSurvey(t, f)

	require.NoError(t, f.services.SurveyService.CastVote(ctx, survey.ID, "notes", "u1", "bring snacks"))
	require.NoError(t, f.services.SurveyService.CastVote(ctx, survey.ID, "notes", "u1", "bring drinks"))

	responses, err := f.services.SurveyService.Responses(ctx, survey.ID, "notes")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u1": "bring drinks"}, responses)

	tally, err := f.services.SurveyService.Tally(ctx, survey.ID, "notes")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{models.TextResponsesKey: 1}, tally)

	_, err = f.services.SurveyService.Responses(ctx, survey.ID, "day")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCastVoteErrors(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()
	survey := createSurvey(t, f)
	svc := f.services.SurveyService

	assert.ErrorIs(t, svc.CastVote(ctx, "missing", "day", "u1", "X"), apperrors.ErrSurveyNotFound)
	assert.ErrorIs(t, svc.CastVote(ctx, survey.ID, "missing", "u1", "X"), apperrors.ErrQuestionNotFound)
	assert.ErrorIs(t, svc.CastVote(ctx, survey.ID, "day", "u1", "Z"), apperrors.ErrInvalidOption)
	assert.ErrorIs(t, svc.CastVote(ctx, survey.ID, "day", "", "X"), apperrors.ErrValidationFailed)

	_, err := svc.Tally(ctx, survey.ID, "missing")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestCloseSurveyRejectsVotes(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()
	survey := createSurvey(t, f)
	svc := f.services.SurveyService

	require.NoError(t, svc.CastVote(ctx, survey.ID, "day", "u1", "X"))

	closed, err := svc.CloseSurvey(ctx, survey.ID)
	require.NoError(t, err)
	assert.True(t, closed.IsClosed())
	require.NotNil(t, closed.ClosedAt)
	firstClosedAt := *closed.ClosedAt

	f.clock.Set(firstClosedAt.Add(1))
	again, err := svc.CloseSurvey(ctx, survey.ID)
	require.NoError(t, err)
	assert.Equal(t, firstClosedAt, *again.ClosedAt)

	assert.ErrorIs(t, svc.CastVote(ctx, survey.ID, "day", "u2", "Y"), apperrors.ErrSurveyClosed)

	tally, err := svc.Tally(ctx, survey.ID, "day")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"X": 1, "Y": 0}, tally)

	_, err = svc.CloseSurvey(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrSurveyNotFound)
}

func TestConcurrentSingleChoiceVotesStayExclusive(t *testing.T) {
	for name, gw := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, gw)
			ctx := context.Background()
			survey := createSurvey(t, f)

			var wg sync.WaitGroup
			for i := 0; i < 40; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					option := []string{"X", "Y"}[i%2]
					err := f.services.SurveyService.CastVote(ctx, survey.ID, "day", fmt.Sprintf("u%d", i%5), option)
					assert.NoError(t, err)
				}(i)
			}
			wg.Wait()

			stored, err := f.services.SurveyService.GetSurvey(ctx, survey.ID)
			require.NoError(t, err)
			question := stored.Question("day")
			for i := 0; i < 5; i++ {
				assert.Len(t, question.Choices(fmt.Sprintf("u%d", i)), 1)
			}
			tally := question.Tally()
			assert.Equal(t, 5, tally["X"]+tally["Y"])
		})
	}
}
