package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultCategory = "Other"
	DefaultTTL      = 7 * 24 * time.Hour
)

// Article is the record broadcast with article:created and article:updated.
type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Excerpt   string    `json:"excerpt"`
	Author    string    `json:"author"`
	Category  string    `json:"category"`
	ImageURL  *string   `json:"imageURL"`
	SourceURL *string   `json:"sourceURL"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (a Article) Expired(now time.Time) bool {
	return a.ExpiresAt.Before(now)
}

// ArticleInput is the request body for create and update. Nil fields are
// left unchanged on update.
type ArticleInput struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Author    *string `json:"author"`
	Category  *string `json:"category"`
	ImageURL  *string `json:"imageURL"`
	SourceURL *string `json:"sourceURL"`
}

var ErrValidation = errors.New("validation failed")

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewArticle validates in and builds an unsaved article that expires ttl
// after now.
func NewArticle(in ArticleInput, now time.Time, ttl time.Duration) (Article, error) {
	title, content, author := trimmed(in.Title), trimmed(in.Content), trimmed(in.Author)
	if title == "" || content == "" || author == "" {
		return Article{}, &ValidationError{Message: "Title, content, and author are required"}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	a := Article{
		Title:     title,
		Content:   content,
		Author:    author,
		Category:  trimmed(in.Category),
		ImageURL:  optional(in.ImageURL),
		SourceURL: optional(in.SourceURL),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if a.Category == "" {
		a.Category = DefaultCategory
	}
	a.Excerpt = Excerpt(a.Content, ExcerptLength)
	return a, nil
}

// Apply merges the non-nil fields of in into a. Required fields may not be
// blanked.
func (a Article) Apply(in ArticleInput, now time.Time) (Article, error) {
	for name, v := range map[string]*string{"title": in.Title, "content": in.Content, "author": in.Author} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return Article{}, &ValidationError{Message: fmt.Sprintf("%s cannot be empty", name)}
		}
	}

	if in.Title != nil {
		a.Title = trimmed(in.Title)
	}
	if in.Content != nil {
		a.Content = trimmed(in.Content)
		a.Excerpt = Excerpt(a.Content, ExcerptLength)
	}
	if in.Author != nil {
		a.Author = trimmed(in.Author)
	}
	if in.Category != nil {
		a.Category = trimmed(in.Category)
		if a.Category == "" {
			a.Category = DefaultCategory
		}
	}
	if in.ImageURL != nil {
		a.ImageURL = optional(in.ImageURL)
	}
	if in.SourceURL != nil {
		a.SourceURL = optional(in.SourceURL)
	}
	a.UpdatedAt = now
	return a, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func optional(s *string) *string {
	v := trimmed(s)
	if v == "" {
		return nil
	}
	return &v
}
