package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
)

func TestEventJoinLeaveSequence(t *testing.T) {
	event := &models.Event{ID: "e1", Capacity: 2, Status: models.EventStatusOpen}

	assert.Equal(t, models.JoinOutcomeJoined, event.AddParticipant("A"))
	assert.Equal(t, models.JoinOutcomeJoined, event.AddParticipant("B"))
	assert.Equal(t, models.EventStatusFull, event.EffectiveStatus())
	assert.Equal(t, models.JoinOutcomeCapacityReached, event.AddParticipant("C"))

	assert.True(t, event.RemoveParticipant("A"))
	assert.Equal(t, models.EventStatusOpen, event.EffectiveStatus())
	assert.Equal(t, models.JoinOutcomeJoined, event.AddParticipant("C"))

	assert.ElementsMatch(t, []string{"B", "C"}, event.Participants)
}

func TestJoinOutcomeErr(t *testing.T) {
	tests := []struct {
		outcome models.JoinOutcome
		want    error
	}{
		{models.JoinOutcomeJoined, nil},
		{models.JoinOutcomeAlreadyParticipant, nil},
		{models.JoinOutcomeCapacityReached, apperrors.ErrCapacityExceeded},
		{models.JoinOutcomeEventClosed, apperrors.ErrEventClosed},
		{models.JoinOutcomeEventNotFound, apperrors.ErrResourceNotFound},
		{models.JoinOutcomeInvalidRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			err := tt.outcome.Err()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEventAddParticipantIsUnique(t *testing.T) {
	event := &models.Event{ID: "e1", Capacity: 5}

	require.Equal(t, models.JoinOutcomeJoined, event.AddParticipant("A"))
	assert.Equal(t, models.JoinOutcomeAlreadyParticipant, event.AddParticipant("A"))
	assert.Len(t, event.Participants, 1)
	assert.Equal(t, 4, event.SeatsLeft())
}

func TestEventRemoveParticipantWhenAbsent(t *testing.T) {
	event := &models.Event{ID: "e1", Capacity: 2, Participants: []string{"A"}}

	assert.False(t, event.RemoveParticipant("Z"))
	assert.Equal(t, []string{"A"}, event.Participants)
}

func TestEventManualStatusOverridesFull(t *testing.T) {
	tests := []struct {
		name    string
		status  models.EventStatus
		members []string
		want    models.EventStatus
		outcome models.JoinOutcome
	}{
		{"open with seats", models.EventStatusOpen, []string{"A"}, models.EventStatusOpen, models.JoinOutcomeJoined},
		{"open and full", models.EventStatusOpen, []string{"A", "B"}, models.EventStatusFull, models.JoinOutcomeCapacityReached},
		{"closed", models.EventStatusClosed, nil, models.EventStatusClosed, models.JoinOutcomeEventClosed},
		{"cancelled and full", models.EventStatusCancelled, []string{"A", "B"}, models.EventStatusCancelled, models.JoinOutcomeEventClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &models.Event{Capacity: 2, Status: tt.status, Participants: tt.members}
			assert.Equal(t, tt.want, event.EffectiveStatus())
			assert.Equal(t, tt.outcome, event.AddParticipant("new"))
		})
	}
}

func TestEventStatusIsManual(t *testing.T) {
	assert.True(t, models.EventStatusOpen.IsManual())
	assert.True(t, models.EventStatusClosed.IsManual())
	assert.True(t, models.EventStatusCancelled.IsManual())
	assert.False(t, models.EventStatusFull.IsManual())
	assert.False(t, models.EventStatus("archived").IsManual())
}

func TestPostSetLikeAndCommentToggle(t *testing.T) {
	post := &models.Post{ID: "p1", Comments: []models.Comment{{ID: "c1"}}}

	assert.True(t, post.SetLike("u1", true))
	assert.False(t, post.SetLike("u1", true), "setting the same state twice changes nothing")
	assert.True(t, post.IsLiked("u1"))
	assert.True(t, post.SetLike("u1", false))
	assert.False(t, post.IsLiked("u1"))
	assert.Empty(t, post.Likes)

	comment := post.Comment("c1")
	require.NotNil(t, comment)
	assert.True(t, comment.ToggleLike("u2"))
	assert.False(t, comment.ToggleLike("u2"))
	assert.Empty(t, comment.Likes)
	assert.Nil(t, post.Comment("missing"))
}
