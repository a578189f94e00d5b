package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/hobbysphere/internal/app/models"
	appRepos "github.com/yigit/hobbysphere/internal/app/repositories"
	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
	"github.com/yigit/hobbysphere/internal/pkg/helpers"
)

// CreateDefaultData inserts sample events, surveys and posts. Records that
// already exist are left untouched, so running it twice is harmless.
func CreateDefaultData(ctx context.Context, repos *appRepos.Repositories, lgr zerolog.Logger) error {
	return createDefaultData(ctx, repos, time.Now().UTC(), lgr)
}

func createDefaultData(ctx context.Context, repos *appRepos.Repositories, now time.Time, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (events/surveys/posts)...")
	var finalErr error

	at := func(raw string) time.Time {
		ts, err := helpers.NormalizeTimestamp(raw, now)
		if err != nil {
			lgr.Warn().Err(err).Str("raw", raw).Msg("Unparseable seed timestamp, using now")
			return now
		}
		return ts
	}

	// --- Events --- //
	events := []appModels.Event{
		{
			ID:           "seed-event-boardgames",
			Title:        "Board game night",
			Description:  "Bring your favourite game or learn a new one.",
			StartsAt:     at("2025-03-08 19:00"),
			Location:     "Community hall, room 2",
			Community:    "games",
			Organizer:    "seed-user-aiko",
			Capacity:     12,
			Participants: []string{"seed-user-aiko", "seed-user-ren"},
			Comments:     []appModels.Comment{},
			Status:       appModels.EventStatusOpen,
			CreatedAt:    at("3日前"),
		},
		{
			ID:           "seed-event-sketchwalk",
			Title:        "Sketch walk by the river",
			Description:  "Pencils provided. Meet at the north bridge.",
			StartsAt:     at("2025-03-09T10:00:00+09:00"),
			Location:     "North bridge",
			Community:    "art",
			Organizer:    "seed-user-mina",
			Capacity:     8,
			Participants: []string{},
			Comments:     []appModels.Comment{},
			Status:       appModels.EventStatusOpen,
			CreatedAt:    at("5時間前"),
		},
	}
	for _, event := range events {
		finalErr = errors.Join(finalErr, insertIgnoringDuplicates(ctx, lgr, "event", event.ID, repos.EventRepository.Insert, event))
	}

	// --- Surveys --- //
	surveys := []appModels.Survey{
		{
			ID:          "seed-survey-meetup",
			Title:       "When should we meet next?",
			Description: "Pick a day and tell us which games to bring.",
			Community:   "games",
			Author:      "seed-user-aiko",
			Questions: []appModels.Question{
				{
					ID:      "day",
					Text:    "Which day suits you?",
					Type:    appModels.QuestionTypeSingle,
					Options: []string{"Saturday", "Sunday"},
					Votes:   map[string][]string{"Saturday": {"seed-user-ren"}, "Sunday": {}},
				},
				{
					ID:      "games",
					Text:    "Which games should we bring?",
					Type:    appModels.QuestionTypeMultiple,
					Options: []string{"Catan", "Carcassonne", "Go"},
					Votes:   map[string][]string{"Catan": {}, "Carcassonne": {}, "Go": {}},
				},
				{
					ID:        "notes",
					Text:      "Anything else we should know?",
					Type:      appModels.QuestionTypeText,
					Responses: map[string]string{},
				},
			},
			Status:    appModels.SurveyStatusOpen,
			CreatedAt: at("2 days ago"),
		},
	}
	for _, survey := range surveys {
		finalErr = errors.Join(finalErr, insertIgnoringDuplicates(ctx, lgr, "survey", survey.ID, repos.SurveyRepository.Insert, survey))
	}

	// --- Posts --- //
	posts := []appModels.Post{
		{
			ID:        "seed-post-welcome",
			Author:    appModels.PostAuthor{ID: "seed-user-mina", Name: "Mina", Community: "art"},
			Content:   appModels.PostContent{Text: "Welcome! Share what you made this week."},
			Timestamp: at("たった今"),
			Likes:     []string{"seed-user-aiko"},
			Comments:  []appModels.Comment{},
		},
		{
			ID:        "seed-post-photos",
			Author:    appModels.PostAuthor{ID: "seed-user-ren", Name: "Ren", Community: "games"},
			Content:   appModels.PostContent{Text: "Photos from last week's game night", Images: []string{"gamenight-1.jpg"}},
			Timestamp: at("1 week ago"),
			Likes:     []string{},
			Comments: []appModels.Comment{
				{
					ID:        "seed-comment-1",
					PostID:    "seed-post-photos",
					Author:    appModels.CommentAuthor{ID: "seed-user-aiko", Name: "Aiko"},
					Text:      "That was fun!",
					Timestamp: at("6日前"),
					Likes:     []string{},
				},
			},
		},
	}
	for _, post := range posts {
		finalErr = errors.Join(finalErr, insertIgnoringDuplicates(ctx, lgr, "post", post.ID, repos.PostRepository.Insert, post))
	}

	if finalErr != nil {
		lgr.Warn().Err(finalErr).Msg("Default data creation finished with errors")
		return finalErr
	}

	lgr.Info().Msg("Default data check/creation complete")
	return nil
}

func insertIgnoringDuplicates[T any](ctx context.Context, lgr zerolog.Logger, kind, id string, insert func(context.Context, T) error, record T) error {
	err := insert(ctx, record)
	switch {
	case err == nil:
		lgr.Debug().Str("kind", kind).Str("id", id).Msg("Seed record created")
		return nil
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		return nil
	default:
		lgr.Error().Err(err).Str("kind", kind).Str("id", id).Msg("Error creating seed record")
		return fmt.Errorf("seed %s %s: %w", kind, id, err)
	}
}
