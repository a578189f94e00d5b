package repositories

import (
	"github.com/rs/zerolog"
	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
	"github.com/yigit/hobbysphere/internal/pkg/kvstore"
)

// PostsKey is the gateway key of the post collection
const PostsKey = "posts_v1"

// PostRepository handles persistence of posts
type PostRepository struct {
	collection[models.Post]
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(gw kvstore.Gateway, logger zerolog.Logger) *PostRepository {
	return &PostRepository{collection[models.Post]{
		gw:       gw,
		key:      PostsKey,
		idOf:     func(p *models.Post) string { return p.ID },
		notFound: apperrors.ErrPostNotFound,
		logger:   logger,
	}}
}
