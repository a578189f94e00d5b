package models

import (
	"time"

	"github.com/samber/lo"
)

// CommentAuthor is the author snapshot stored with a comment
type CommentAuthor struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Comment is shared by events and posts. The owner is referenced by id only.
type Comment struct {
	ID        string        `json:"id"`
	PostID    string        `json:"postId,omitempty"`
	EventID   string        `json:"eventId,omitempty"`
	Author    CommentAuthor `json:"author"`
	Text      string        `json:"text"`
	Timestamp time.Time     `json:"timestamp"`
	Likes     []string      `json:"likes"`
}

// ToggleLike flips userID's like on the comment and reports the new state
func (c *Comment) ToggleLike(userID string) bool {
	if lo.Contains(c.Likes, userID) {
		c.Likes = lo.Without(c.Likes, userID)
		return false
	}
	c.Likes = append(c.Likes, userID)
	return true
}

func findComment(comments []Comment, id string) *Comment {
	for i := range comments {
		if comments[i].ID == id {
			return &comments[i]
		}
	}
	return nil
}
