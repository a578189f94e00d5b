package dto

import (
	"github.com/yigit/hobbysphere/internal/app/models"
)

// PostAuthorRequest is the author snapshot attached to a new post
type PostAuthorRequest struct {
	ID        string `json:"id" binding:"required,notblank" example:"user-1"`
	Name      string `json:"name" binding:"required,notblank,max=100" example:"Aiko"`
	Community string `json:"community" binding:"max=100" example:"games"`
	Avatar    string `json:"avatar" binding:"max=500"`
	Diagnosis string `json:"diagnosis" binding:"max=100"`
}

// ToModel converts the request into the stored author snapshot
func (r PostAuthorRequest) ToModel() models.PostAuthor {
	return models.PostAuthor{
		ID:        r.ID,
		Name:      r.Name,
		Community: r.Community,
		Avatar:    r.Avatar,
		Diagnosis: r.Diagnosis,
	}
}

// CreatePostRequest represents a new entry in the feed
type CreatePostRequest struct {
	Author PostAuthorRequest `json:"author" binding:"required"`
	Text   string            `json:"text" binding:"required,notblank,max=4000" example:"hello"`
	Images []string          `json:"images" binding:"dive,max=500"`
}

// LikeRequest identifies the user toggling a like
type LikeRequest struct {
	UserID string `json:"userId" binding:"required,notblank" example:"user-2"`
}

// SetLikeRequest sets a user's like to an explicit state
type SetLikeRequest struct {
	UserID string `json:"userId" binding:"required,notblank" example:"user-2"`
	Liked  *bool  `json:"liked" binding:"required" example:"true"`
}

// LikeResponse reports the like state after a mutation
type LikeResponse struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// ShareResponse reports the share counter after an increment
type ShareResponse struct {
	Shares int `json:"shares"`
}

// PostResponse is a post with derived counters
type PostResponse struct {
	models.Post
	LikeCount    int `json:"likeCount"`
	CommentCount int `json:"commentCount"`
}

// FromPost converts a models.Post to a PostResponse
func FromPost(p *models.Post) PostResponse {
	post := *p
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	return PostResponse{
		Post:         post,
		LikeCount:    len(post.Likes),
		CommentCount: len(post.Comments),
	}
}

// FromPosts converts a slice of posts
func FromPosts(posts []models.Post) []PostResponse {
	out := make([]PostResponse, len(posts))
	for i := range posts {
		out[i] = FromPost(&posts[i])
	}
	return out
}
