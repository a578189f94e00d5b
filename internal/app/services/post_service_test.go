package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
	"github.com/yigit/hobbysphere/internal/pkg/kvstore"
	"github.com/yigit/hobbysphere/internal/pkg/websocket"
)

var testAuthor = models.PostAuthor{ID: "u0", Name: "Aiko", Community: "games"}

func TestCreatePost(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()

	post, err := f.services.PostService.CreatePost(ctx, testAuthor, "  hello ", []string{"a.png", " ", "b.png"})
	require.NoError(t, err)
	assert.Equal(t, "hello", post.Content.Text)
	assert.Equal(t, []string{"a.png", "b.png"}, post.Content.Images)
	assert.Equal(t, f.clock.Now(), post.Timestamp)

	_, err = f.services.PostService.CreatePost(ctx, testAuthor, " \n ", nil)
	assert.ErrorIs(t, err, apperrors.ErrEmptyContent)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.services.PostService.CreatePost(ctx, models.PostAuthor{}, "hi", nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	posts, err := f.services.PostService.ListPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestToggleLikeScenario(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()
	svc := f.services.PostService

	post, err := svc.CreatePost(ctx, testAuthor, "hello", nil)
	require.NoError(t, err)

	liked, err := svc.ToggleLike(ctx, post.ID, "u1")
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = svc.ToggleLike(ctx, post.ID, "u1")
	require.NoError(t, err)
	assert.False(t, liked)

	isLiked, err := svc.IsLiked(ctx, post.ID, "u1")
	require.NoError(t, err)
	assert.False(t, isLiked)

	assert.Equal(t, []string{websocket.TypePostCreated, websocket.TypePostLiked, websocket.TypePostUnliked}, f.notifier.types())
}

func TestSetLikeIsIdempotent(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()
	svc := f.services.PostService

	post, err := svc.CreatePost(ctx, testAuthor, "hello", nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		liked, err := svc.SetLike(ctx, post.ID, "u1", true)
		require.NoError(t, err)
		assert.True(t, liked)
	}

	stored, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, stored.Likes)

	liked, err := svc.SetLike(ctx, post.ID, "u1", false)
	require.NoError(t, err)
	assert.False(t, liked)
	liked, err = svc.SetLike(ctx, post.ID, "u1", false)
	require.NoError(t, err)
	assert.False(t, liked)

	assert.Equal(t, []string{websocket.TypePostCreated, websocket.TypePostLiked, websocket.TypePostUnliked}, f.notifier.types(),
		"repeated calls with the same state publish nothing")

	_, err = svc.SetLike(ctx, "missing", "u1", true)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestConcurrentTogglesConverge(t *testing.T) {
	for name, gw := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, gw)
			ctx := context.Background()
			post, err := f.services.PostService.CreatePost(ctx, testAuthor, "hello", nil)
			require.NoError(t, err)

			// every user toggles an even number of times
			var wg sync.WaitGroup
			for i := 0; i < 40; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := f.services.PostService.ToggleLike(ctx, post.ID, fmt.Sprintf("u%d", i%10))
					assert.NoError(t, err)
				}(i)
			}
			wg.Wait()

			stored, err := f.services.PostService.GetPost(ctx, post.ID)
			require.NoError(t, err)
			assert.Empty(t, stored.Likes)
		})
	}
}

func TestPostComments(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()
	svc := f.services.PostService

	post, err := svc.CreatePost(ctx, testAuthor, "hello", nil)
	require.NoError(t, err)

	comment, err := svc.AddComment(ctx, post.ID, models.CommentAuthor{ID: "u1", Name: "Ren"}, "nice")
	require.NoError(t, err)
	assert.Equal(t, post.ID, comment.PostID)

	_, err = svc.AddComment(ctx, "missing", models.CommentAuthor{ID: "u1"}, "nice")
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)

	_, err = svc.AddComment(ctx, post.ID, models.CommentAuthor{ID: "u1"}, "")
	assert.ErrorIs(t, err, apperrors.ErrEmptyContent)

	liked, err := svc.ToggleCommentLike(ctx, post.ID, comment.ID, "u2")
	require.NoError(t, err)
	assert.True(t, liked)
	liked, err = svc.ToggleCommentLike(ctx, post.ID, comment.ID, "u2")
	require.NoError(t, err)
	assert.False(t, liked)

	_, err = svc.ToggleCommentLike(ctx, post.ID, "missing", "u2")
	assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)

	stored, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, stored.Comments, 1)
	assert.Empty(t, stored.Comments[0].Likes)
}

func TestShareCounter(t *testing.T) {
	f := newFixture(t, kvstore.NewMemoryStore())
	ctx := context.Background()

	post, err := f.services.PostService.CreatePost(ctx, testAuthor, "hello", nil)
	require.NoError(t, err)

	shares, err := f.services.PostService.Share(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, shares)
	shares, err = f.services.PostService.Share(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, shares)
}
