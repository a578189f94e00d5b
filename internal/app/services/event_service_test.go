package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/app/models/dto"
	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
	"github.com/yigit/hobbysphere/internal/pkg/kvstore"
	"github.com/yigit/hobbysphere/internal/pkg/websocket"
)

func createEvent(t *testing.T, f *fixture, capacity int) *models.Event {
	t.Helper()

	event, err := f.services.EventService.CreateEvent(context.Background(), &dto.CreateEventRequest{
		Title:     "Board game night",
		StartsAt:  "2025-03-08 19:00",
		Community: "games",
		Organizer: "organizer",
		Capacity:  capacity,
	})
	require.NoError(t, err)
	return event
}

func TestCreateEventNormalizesAndValidates(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()

	event := createEvent(t, f, 3)
	assert.Equal(t, time.Date(2025, 3, 8, 19, 0, 0, 0, time.UTC), event.StartsAt)
	assert.Equal(t, f.clock.Now(), event.CreatedAt)
	assert.Equal(t, models.EventStatusOpen, event.Status)
	assert.NotEmpty(t, event.ID)

	tests := []struct {
		name string
		req  dto.CreateEventRequest
		want error
	}{
		{"zero capacity", dto.CreateEventRequest{Title: "x", StartsAt: "2025-03-08", Organizer: "o", Capacity: 0}, apperrors.ErrInvalidCapacity},
		{"negative capacity", dto.CreateEventRequest{Title: "x", StartsAt: "2025-03-08", Organizer: "o", Capacity: -2}, apperrors.ErrInvalidCapacity},
		{"blank title", dto.CreateEventRequest{Title: "  ", StartsAt: "2025-03-08", Organizer: "o", Capacity: 2}, apperrors.ErrValidationFailed},
		{"bad start", dto.CreateEventRequest{Title: "x", StartsAt: "someday", Organizer: "o", Capacity: 2}, apperrors.ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.services.EventService.CreateEvent(ctx, &tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}

	events, err := f.services.EventService.ListEvents(ctx, "")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestJoinLeaveScenario(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()
	svc := f.services.EventService
	event := createEvent(t, f, 2)

	steps := []struct {
		op   string
		user string
		want bool
	}{
		{"join", "A", true},
		{"join", "B", true},
		{"join", "C", false},
		{"leave", "A", true},
		{"join", "C", true},
	}
	for _, step := range steps {
		var (
			got bool
			err error
		)
		if step.op == "join" {
			got, err = svc.JoinEvent(ctx, event.ID, step.user)
		} else {
			got, err = svc.LeaveEvent(ctx, event.ID, step.user)
		}
		require.NoError(t, err)
		assert.Equal(t, step.want, got, "%s(%s)", step.op, step.user)
	}

	stored, err := svc.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"B", "C"}, stored.Participants)
	assert.Equal(t, models.EventStatusFull, stored.EffectiveStatus())

	assert.Equal(t, []string{
		websocket.TypeEventCreated,
		websocket.TypeEventJoined,
		websocket.TypeEventJoined,
		websocket.TypeEventLeft,
		websocket.TypeEventJoined,
	}, f.notifier.types(), "refused joins publish nothing")
}

func TestJoinOutcomes(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()
	svc := f.services.EventService
	event := createEvent(t, f, 1)

	outcome, snapshot, err := svc.Join(ctx, event.ID, "A")
	require.NoError(t, err)
	assert.Equal(t, models.JoinOutcomeJoined, outcome)
	assert.Equal(t, []string{"A"}, snapshot.Participants)

	outcome, _, err = svc.Join(ctx, event.ID, "A")
	require.NoError(t, err)
	assert.Equal(t, models.JoinOutcomeAlreadyParticipant, outcome)

	outcome, _, err = svc.Join(ctx, event.ID, "B")
	require.NoError(t, err)
	assert.Equal(t, models.JoinOutcomeCapacityReached, outcome)

	outcome, snapshot, err = svc.Join(ctx, "missing", "B")
	require.NoError(t, err)
	assert.Equal(t, models.JoinOutcomeEventNotFound, outcome)
	assert.Nil(t, snapshot)

	_, err = svc.SetEventStatus(ctx, event.ID, models.EventStatusCancelled)
	require.NoError(t, err)
	_, err = svc.LeaveEvent(ctx, event.ID, "A")
	require.NoError(t, err)

	outcome, _, err = svc.Join(ctx, event.ID, "B")
	require.NoError(t, err)
	assert.Equal(t, models.JoinOutcomeEventClosed, outcome)

	joined, err := svc.JoinEvent(ctx, event.ID, "B")
	require.NoError(t, err)
	assert.False(t, joined)
}

func TestJoinWithBlankUserIsInvalidRequest(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()
	event := createEvent(t, f, 2)

	outcome, snapshot, err := f.services.EventService.Join(ctx, event.ID, "  ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, models.JoinOutcomeInvalidRequest, outcome)
	assert.Equal(t, "invalid_request", outcome.String())
	assert.Nil(t, snapshot)

	stored, err := f.services.EventService.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Participants)
}

func TestJoinTwiceAddsOneSeat(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()
	event := createEvent(t, f, 10)

	first, err := f.services.EventService.JoinEvent(ctx, event.ID, "A")
	require.NoError(t, err)
	second, err := f.services.EventService.JoinEvent(ctx, event.ID, "A")
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	stored, err := f.services.EventService.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Participants, 1)
}

func TestLeaveWithoutSeatIsNoop(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()
	event := createEvent(t, f, 2)
	_, err := f.services.EventService.JoinEvent(ctx, event.ID, "A")
	require.NoError(t, err)

	left, err := f.services.EventService.LeaveEvent(ctx, event.ID, "Z")
	require.NoError(t, err)
	assert.False(t, left)

	left, err = f.services.EventService.LeaveEvent(ctx, "missing", "A")
	require.NoError(t, err)
	assert.False(t, left)

	stored, err := f.services.EventService.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, stored.Participants)
}

func TestConcurrentJoinsNeverOvershootCapacity(t *testing.T) {
	for name, gw := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, gw)
			ctx := context.Background()
			event := createEvent(t, f, 7)

			var (
				wg     sync.WaitGroup
				joined int32
			)
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					ok, err := f.services.EventService.JoinEvent(ctx, event.ID, fmt.Sprintf("user-%d", i%30))
					assert.NoError(t, err)
					if ok {
						atomic.AddInt32(&joined, 1)
					}
				}(i)
			}
			wg.Wait()

			stored, err := f.services.EventService.GetEvent(ctx, event.ID)
			require.NoError(t, err)
			assert.Len(t, stored.Participants, 7)
			assert.Equal(t, int32(7), joined)

			seen := map[string]bool{}
			for _, p := range stored.Participants {
				assert.False(t, seen[p], "participant %s appears twice", p)
				seen[p] = true
			}
		})
	}
}

func TestEventCommentsAndParticipantQuery(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()
	svc := f.services.EventService
	event := createEvent(t, f, 2)

	comment, err := svc.AddEventComment(ctx, event.ID, models.CommentAuthor{ID: "u1", Name: "Aiko"}, " see you ")
	require.NoError(t, err)
	assert.Equal(t, "see you", comment.Text)
	assert.Equal(t, event.ID, comment.EventID)

	_, err = svc.AddEventComment(ctx, "missing", models.CommentAuthor{ID: "u1"}, "hi")
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)

	_, err = svc.AddEventComment(ctx, event.ID, models.CommentAuthor{ID: "u1"}, "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	stored, err := svc.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, stored.Comments, 1)
	assert.Equal(t, comment.ID, stored.Comments[0].ID)

	_, err = svc.JoinEvent(ctx, event.ID, "u1")
	require.NoError(t, err)
	is, err := svc.IsParticipant(ctx, event.ID, "u1")
	require.NoError(t, err)
	assert.True(t, is)
	is, err = svc.IsParticipant(ctx, event.ID, "u2")
	require.NoError(t, err)
	assert.False(t, is)
	_, err = svc.IsParticipant(ctx, "missing", "u1")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestSetEventStatus(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()
	svc := f.services.EventService
	event := createEvent(t, f, 2)

	_, err := svc.SetEventStatus(ctx, event.ID, models.EventStatusFull)
	assert.ErrorIs(t, err, apperrors.ErrInvalidEventState)

	updated, err := svc.SetEventStatus(ctx, event.ID, models.EventStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusClosed, updated.EffectiveStatus())

	_, err = svc.SetEventStatus(ctx, event.ID, models.EventStatusClosed)
	require.NoError(t, err)

	reopened, err := svc.SetEventStatus(ctx, event.ID, models.EventStatusOpen)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusOpen, reopened.EffectiveStatus())

	_, err = svc.SetEventStatus(ctx, "missing", models.EventStatusOpen)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)

	changes := 0
	for _, typ := range f.notifier.types() {
		if typ == websocket.TypeEventStatusChanged {
			changes++
		}
	}
	assert.Equal(t, 2, changes, "setting the same status twice publishes once")
}

func TestListEventsByCommunity(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()
	createEvent(t, f, 2)

	_, err := f.services.EventService.CreateEvent(ctx, &dto.CreateEventRequest{
		Title: "Sketch walk", StartsAt: "2025-03-09", Community: "art", Organizer: "o", Capacity: 5,
	})
	require.NoError(t, err)

	art, err := f.services.EventService.ListEvents(ctx, "ART")
	require.NoError(t, err)
	require.Len(t, art, 1)
	assert.Equal(t, "Sketch walk", art[0].Title)
}
