package domain

import (
	"strings"
	"time"
)

// UserComment is a message left on a member's profile.
type UserComment struct {
	ID       int64 `json:"id"`
	UserID   int64 `json:"user_id"`
	AuthorID int64 `json:"author_id"`
	// Author and AuthorPhoto are filled when listing comments.
	Author      string    `json:"username,omitempty"`
	AuthorPhoto string    `json:"photo,omitempty"`
	Content     string    `json:"content"`
	Date        time.Time `json:"date"`
}

// NewUserComment creates a profile comment dated now.
func NewUserComment(userID, authorID int64, content string) (*UserComment, error) {
	c := &UserComment{
		UserID:   userID,
		AuthorID: authorID,
		Content:  strings.TrimSpace(content),
		Date:     time.Now().UTC(),
	}
	if c.Content == "" {
		return nil, ErrEmptyContent
	}
	return c, nil
}
