package repositories_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/app/repositories"
	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
	"github.com/yigit/hobbysphere/internal/pkg/kvstore"
)

func stores(t *testing.T) map[string]kvstore.Gateway {
	t.Helper()

	bolt, err := kvstore.OpenBolt(filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { bolt.Close() })

	return map[string]kvstore.Gateway{
		"memory": kvstore.NewMemoryStore(),
		"bolt":   bolt,
	}
}

func TestEventRepositoryInsertGetList(t *testing.T) {
	ctx := context.Background()
	for name, gw := range stores(t) {
		t.Run(name, func(t *testing.T) {
			repo := repositories.NewEventRepository(gw, zerolog.Nop())

			events, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, events)

			require.NoError(t, repo.Insert(ctx, models.Event{ID: "e1", Title: "Board games", Community: "Games", Capacity: 4}))
			require.NoError(t, repo.Insert(ctx, models.Event{ID: "e2", Title: "Sketching", Community: "art", Capacity: 2}))

			err = repo.Insert(ctx, models.Event{ID: "e1"})
			assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)

			got, err := repo.Get(ctx, "e2")
			require.NoError(t, err)
			assert.Equal(t, "Sketching", got.Title)

			_, err = repo.Get(ctx, "missing")
			assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
			assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

			games, err := repo.ListByCommunity(ctx, "games")
			require.NoError(t, err)
			require.Len(t, games, 1)
			assert.Equal(t, "e1", games[0].ID)

			count, err := repo.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, count)
		})
	}
}

func TestMutatePersistsAndSkips(t *testing.T) {
	ctx := context.Background()
	for name, gw := range stores(t) {
		t.Run(name, func(t *testing.T) {
			repo := repositories.NewPostRepository(gw, zerolog.Nop())
			require.NoError(t, repo.Insert(ctx, models.Post{ID: "p1", Timestamp: time.Now().UTC()}))

			updated, err := repo.Mutate(ctx, "p1", func(p *models.Post) error {
				p.SetLike("u1", true)
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"u1"}, updated.Likes)

			skipped, err := repo.Mutate(ctx, "p1", func(p *models.Post) error {
				p.Shares = 99
				return kvstore.ErrSkipWrite
			})
			require.NoError(t, err)
			assert.Equal(t, 99, skipped.Shares, "the caller sees what fn produced")

			stored, err := repo.Get(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, 0, stored.Shares, "a skipped write is not persisted")
			assert.Equal(t, []string{"u1"}, stored.Likes)

			_, err = repo.Mutate(ctx, "p2", func(*models.Post) error { return nil })
			assert.ErrorIs(t, err, apperrors.ErrPostNotFound)

			_, err = repo.Mutate(ctx, "p1", func(*models.Post) error { return apperrors.ErrEmptyContent })
			assert.ErrorIs(t, err, apperrors.ErrEmptyContent)
		})
	}
}

func TestMutateKeepsCapacityUnderConcurrentJoins(t *testing.T) {
	ctx := context.Background()
	for name, gw := range stores(t) {
		t.Run(name, func(t *testing.T) {
			repo := repositories.NewEventRepository(gw, zerolog.Nop())
			require.NoError(t, repo.Insert(ctx, models.Event{ID: "e1", Capacity: 5, Status: models.EventStatusOpen}))

			var (
				wg     sync.WaitGroup
				mu     sync.Mutex
				joined int
			)
			for i := 0; i < 40; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					var outcome models.JoinOutcome
					_, err := repo.Mutate(ctx, "e1", func(e *models.Event) error {
						outcome = e.AddParticipant(fmt.Sprintf("user-%d", i))
						if outcome != models.JoinOutcomeJoined {
							return kvstore.ErrSkipWrite
						}
						return nil
					})
					assert.NoError(t, err)
					if outcome == models.JoinOutcomeJoined {
						mu.Lock()
						joined++
						mu.Unlock()
					}
				}(i)
			}
			wg.Wait()

			event, err := repo.Get(ctx, "e1")
			require.NoError(t, err)
			assert.Len(t, event.Participants, 5)
			assert.Equal(t, 5, joined)
		})
	}
}

func TestRepositoriesShareGatewayUnderSeparateKeys(t *testing.T) {
	ctx := context.Background()
	gw := kvstore.NewMemoryStore()
	repos := repositories.NewRepositories(kvstore.Namespaced(gw, "test"), zerolog.Nop())

	require.NoError(t, repos.SurveyRepository.Insert(ctx, models.Survey{ID: "s1"}))
	require.NoError(t, repos.PostRepository.Insert(ctx, models.Post{ID: "p1"}))

	_, err := gw.Get(ctx, "test:"+repositories.SurveysKey)
	assert.NoError(t, err)
	_, err = gw.Get(ctx, "test:"+repositories.PostsKey)
	assert.NoError(t, err)
	_, err = gw.Get(ctx, "test:"+repositories.EventsKey)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestListRejectsCorruptPayload(t *testing.T) {
	ctx := context.Background()
	gw := kvstore.NewMemoryStore()
	require.NoError(t, gw.Set(ctx, repositories.SurveysKey, []byte("{not json")))

	_, err := repositories.NewSurveyRepository(gw, zerolog.Nop()).List(ctx)
	assert.Error(t, err)
}
