package domain

import (
	"strings"
	"time"
)

// summaryLength bounds the generated article summary, in characters.
const summaryLength = 300

// Article is a news post published by an admin.
type Article struct {
	ID       int64     `json:"id"`
	AuthorID int64     `json:"author_id"`
	Author   string    `json:"username,omitempty"`
	Title    string    `json:"title"`
	Summary  string    `json:"summary"`
	Content  string    `json:"content"`
	Date     time.Time `json:"date"`
	Picture  string    `json:"picture"`
	Views    int       `json:"views"`
}

// NewArticle creates an article with no views yet.
func NewArticle(authorID int64, title, content string, date time.Time, picture string) (*Article, error) {
	a := &Article{
		AuthorID: authorID,
		Title:    strings.TrimSpace(title),
		Content:  content,
		Date:     date,
		Picture:  picture,
	}
	a.Summary = Summarize(content)

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks if the Article has valid data.
func (a *Article) Validate() error {
	if a.Title == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(a.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// Summarize returns the first characters of content with markup removed.
func Summarize(content string) string {
	var b strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}

	text := strings.Join(strings.Fields(b.String()), " ")
	runes := []rune(text)
	if len(runes) <= summaryLength {
		return text
	}
	return strings.TrimSpace(string(runes[:summaryLength])) + "..."
}
