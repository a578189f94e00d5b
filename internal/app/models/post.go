package models

import (
	"time"

	"github.com/samber/lo"
)

// PostAuthor is the author snapshot stored with a post
type PostAuthor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Community string `json:"community,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Diagnosis string `json:"diagnosis,omitempty"`
}

// PostContent holds the text and optional image references of a post
type PostContent struct {
	Text   string   `json:"text"`
	Images []string `json:"images,omitempty"`
}

// Post is an entry in the social feed
type Post struct {
	ID        string      `json:"id"`
	Author    PostAuthor  `json:"author"`
	Content   PostContent `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	Likes     []string    `json:"likes"`
	Comments  []Comment   `json:"comments"`
	Shares    int         `json:"shares"`
}

// IsLiked reports whether userID likes the post
func (p *Post) IsLiked(userID string) bool {
	return lo.Contains(p.Likes, userID)
}

// SetLike makes userID's like match liked and reports whether anything changed
func (p *Post) SetLike(userID string, liked bool) bool {
	if p.IsLiked(userID) == liked {
		return false
	}
	if liked {
		p.Likes = append(p.Likes, userID)
	} else {
		p.Likes = lo.Without(p.Likes, userID)
	}
	return true
}

// Comment looks up a comment by id
func (p *Post) Comment(id string) *Comment {
	return findComment(p.Comments, id)
}
