package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// StoryTTL is how long a story stays visible after creation.
const StoryTTL = 24 * time.Hour

// Story is ephemeral organizer content that disappears 24 hours after
// creation. Expiry is a soft delete: the sweep flips is_active, the
// document stays.
type Story struct {
	Entity     `bson:",inline"`
	Content    string    `bson:"content" json:"content"`
	ImageURL   string    `bson:"image_url,omitempty" json:"image_url,omitempty"`
	AuthorID   string    `bson:"author_id" json:"author_id"`
	AuthorName string    `bson:"author_name" json:"author_name"`
	AuthorRole Role      `bson:"author_role" json:"author_role"`
	ViewsCount int64     `bson:"views_count" json:"views_count"`
	ExpiresAt  time.Time `bson:"expires_at" json:"expires_at"`
	IsActive   bool      `bson:"is_active" json:"is_active"`
}

// Validate checks the story business rules before a write
func (s *Story) Validate() error {
	if strings.TrimSpace(s.Content) == "" {
		return errors.New("story content cannot be empty")
	}
	if s.AuthorID == "" || s.AuthorName == "" {
		return errors.New("story requires an author")
	}
	return nil
}

// Expired reports whether the story has passed its expiry time
func (s *Story) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TimeRemaining returns how long the story stays visible, zero once expired
func (s *Story) TimeRemaining(now time.Time) time.Duration {
	if s.Expired(now) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}

// StoryView records that a user viewed a story. At most one per
// (user, story) pair; repeat views are no-ops.
type StoryView struct {
	Entity   `bson:",inline"`
	StoryID  string `bson:"story_id" json:"story_id"`
	UserID   string `bson:"user_id" json:"user_id"`
	UserName string `bson:"user_name" json:"user_name"`
}

// StoryRepository defines story data access
type StoryRepository interface {
	Create(ctx context.Context, story *Story) error
	GetByID(ctx context.Context, id string) (*Story, error)
	ListActive(ctx context.Context, now time.Time, skip, limit int64) ([]Story, error)
	ListActiveByAuthor(ctx context.Context, authorID string, now time.Time, skip, limit int64) ([]Story, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*Story, error)
	Delete(ctx context.Context, id string) (bool, error)
	IncrementViews(ctx context.Context, id string) error
	ExpireOld(ctx context.Context, now time.Time) (int64, error)
}

// StoryViewRepository defines story view data access
type StoryViewRepository interface {
	Create(ctx context.Context, view *StoryView) error
	GetByUserAndStory(ctx context.Context, userID, storyID string) (*StoryView, error)
	ListByStory(ctx context.Context, storyID string, skip, limit int64) ([]StoryView, error)
}
