package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/app/repositories"
	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
	"github.com/yigit/hobbysphere/internal/pkg/kvstore"
	"github.com/yigit/hobbysphere/internal/pkg/metrics"
	"github.com/yigit/hobbysphere/internal/pkg/websocket"
)

// PostService defines the interface for feed operations
type PostService interface {
	CreatePost(ctx context.Context, author models.PostAuthor, text string, images []string) (*models.Post, error)
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	SetLike(ctx context.Context, postID, userID string, liked bool) (bool, error)
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
	IsLiked(ctx context.Context, postID, userID string) (bool, error)
	AddComment(ctx context.Context, postID string, author models.CommentAuthor, text string) (*models.Comment, error)
	ToggleCommentLike(ctx context.Context, postID, commentID, userID string) (bool, error)
	Share(ctx context.Context, postID string) (int, error)
}

// postServiceImpl implements PostService
type postServiceImpl struct {
	postRepo *repositories.PostRepository
	notifier websocket.Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

// NewPostService creates a new PostService
func NewPostService(postRepo *repositories.PostRepository, notifier websocket.Notifier, logger zerolog.Logger) PostService {
	return &postServiceImpl{
		postRepo: postRepo,
		notifier: notifier,
		logger:   logger,
		now:      utcNow,
	}
}

func (s *postServiceImpl) publish(notificationType, postID, userID string) {
	s.notifier.Publish(websocket.Notification{
		Type:      notificationType,
		Kind:      models.TimelineKindPost,
		ID:        postID,
		UserID:    userID,
		Timestamp: s.now(),
	})
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.NewValidationError("User ID is required")
	}
	return nil
}

// CreatePost publishes a post. The text must not be blank; images are stored
// as references in the given order.
func (s *postServiceImpl) CreatePost(ctx context.Context, author models.PostAuthor, text string, images []string) (*models.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.ErrEmptyContent
	}
	if strings.TrimSpace(author.ID) == "" {
		return nil, apperrors.NewValidationError("Post author is required")
	}

	refs := make([]string, 0, len(images))
	for _, image := range images {
		if image = strings.TrimSpace(image); image != "" {
			refs = append(refs, image)
		}
	}

	post := models.Post{
		ID:        uuid.NewString(),
		Author:    author,
		Content:   models.PostContent{Text: text, Images: refs},
		Timestamp: s.now(),
		Likes:     []string{},
		Comments:  []models.Comment{},
	}

	if err := s.postRepo.Insert(ctx, post); err != nil {
		s.logger.Error().Err(err).Str("authorID", author.ID).Msg("Failed to store post")
		metrics.ObserveMutation(metrics.RegistryPosts, "create", metrics.OutcomeFailed)
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	s.logger.Info().
		Str("postID", post.ID).
		Str("authorID", author.ID).
		Int("images", len(refs)).
		Msg("Post created")
	metrics.ObserveMutation(metrics.RegistryPosts, "create", metrics.OutcomeApplied)
	s.publish(websocket.TypePostCreated, post.ID, author.ID)

	return &post, nil
}

// GetPost retrieves a post by id
func (s *postServiceImpl) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	return s.postRepo.Get(ctx, postID)
}

// ListPosts returns every post in stored order
func (s *postServiceImpl) ListPosts(ctx context.Context) ([]models.Post, error) {
	return s.postRepo.List(ctx)
}

// SetLike makes userID's like match liked and returns the resulting state.
// Repeating a call is harmless, which makes it safe for client retries.
func (s *postServiceImpl) SetLike(ctx context.Context, postID, userID string, liked bool) (bool, error) {
	if err := requireUser(userID); err != nil {
		return false, err
	}

	changed := false
	_, err := s.postRepo.Mutate(ctx, postID, func(p *models.Post) error {
		changed = p.SetLike(userID, liked)
		if !changed {
			return kvstore.ErrSkipWrite
		}
		return nil
	})
	if err != nil {
		metrics.ObserveMutation(metrics.RegistryPosts, "set_like", metrics.OutcomeFailed)
		return false, err
	}

	s.afterLike("set_like", postID, userID, liked, changed)
	return liked, nil
}

// ToggleLike flips userID's like inside one atomic update and returns the new state
func (s *postServiceImpl) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	if err := requireUser(userID); err != nil {
		return false, err
	}

	liked := false
	_, err := s.postRepo.Mutate(ctx, postID, func(p *models.Post) error {
		liked = !p.IsLiked(userID)
		p.SetLike(userID, liked)
		return nil
	})
	if err != nil {
		metrics.ObserveMutation(metrics.RegistryPosts, "toggle_like", metrics.OutcomeFailed)
		return false, err
	}

	s.afterLike("toggle_like", postID, userID, liked, true)
	return liked, nil
}

func (s *postServiceImpl) afterLike(operation, postID, userID string, liked, changed bool) {
	if !changed {
		metrics.ObserveMutation(metrics.RegistryPosts, operation, metrics.OutcomeNoop)
		return
	}

	metrics.ObserveMutation(metrics.RegistryPosts, operation, metrics.OutcomeApplied)
	if liked {
		s.publish(websocket.TypePostLiked, postID, userID)
	} else {
		s.publish(websocket.TypePostUnliked, postID, userID)
	}
}

// IsLiked reports whether userID likes the post
func (s *postServiceImpl) IsLiked(ctx context.Context, postID, userID string) (bool, error) {
	post, err := s.postRepo.Get(ctx, postID)
	if err != nil {
		return false, err
	}
	return post.IsLiked(userID), nil
}

// AddComment appends a comment to the post's thread
func (s *postServiceImpl) AddComment(ctx context.Context, postID string, author models.CommentAuthor, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.ErrEmptyContent
	}
	if err := requireUser(author.ID); err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		Author:    author,
		Text:      text,
		Timestamp: s.now(),
		Likes:     []string{},
	}

	_, err := s.postRepo.Mutate(ctx, postID, func(p *models.Post) error {
		p.Comments = append(p.Comments, comment)
		return nil
	})
	if err != nil {
		metrics.ObserveMutation(metrics.RegistryPosts, "comment", metrics.OutcomeFailed)
		return nil, err
	}

	s.logger.Debug().
		Str("postID", postID).
		Str("commentID", comment.ID).
		Msg("Comment added")
	metrics.ObserveMutation(metrics.RegistryPosts, "comment", metrics.OutcomeApplied)
	s.publish(websocket.TypePostCommented, postID, author.ID)
	return &comment, nil
}

// ToggleCommentLike flips userID's like on one comment and returns the new state
func (s *postServiceImpl) ToggleCommentLike(ctx context.Context, postID, commentID, userID string) (bool, error) {
	if err := requireUser(userID); err != nil {
		return false, err
	}

	liked := false
	_, err := s.postRepo.Mutate(ctx, postID, func(p *models.Post) error {
		comment := p.Comment(commentID)
		if comment == nil {
			return apperrors.ErrCommentNotFound
		}
		liked = comment.ToggleLike(userID)
		return nil
	})
	if err != nil {
		metrics.ObserveMutation(metrics.RegistryPosts, "comment_like", metrics.OutcomeFailed)
		return false, err
	}

	metrics.ObserveMutation(metrics.RegistryPosts, "comment_like", metrics.OutcomeApplied)
	s.publish(websocket.TypePostCommentLiked, postID, userID)
	return liked, nil
}

// Share bumps the informational share counter and returns its new value
func (s *postServiceImpl) Share(ctx context.Context, postID string) (int, error) {
	post, err := s.postRepo.Mutate(ctx, postID, func(p *models.Post) error {
		p.Shares++
		return nil
	})
	if err != nil {
		metrics.ObserveMutation(metrics.RegistryPosts, "share", metrics.OutcomeFailed)
		return 0, err
	}

	metrics.ObserveMutation(metrics.RegistryPosts, "share", metrics.OutcomeApplied)
	s.publish(websocket.TypePostShared, postID, "")
	return post.Shares, nil
}
