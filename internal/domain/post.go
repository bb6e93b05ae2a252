package domain

import (
	"context"
	"errors"
	"strings"
)

// Post is an organizer announcement on the event wall. Author name and
// role are denormalized onto the document; likes_count and
// comments_count are caches of the likes/comments collections kept in
// step by PostService on every like, unlike and comment.
type Post struct {
	Entity        `bson:",inline"`
	Title         string `bson:"title" json:"title"`
	Content       string `bson:"content" json:"content"`
	ImageURL      string `bson:"image_url,omitempty" json:"image_url,omitempty"`
	AuthorID      string `bson:"author_id" json:"author_id"`
	AuthorName    string `bson:"author_name" json:"author_name"`
	AuthorRole    Role   `bson:"author_role" json:"author_role"`
	LikesCount    int64  `bson:"likes_count" json:"likes_count"`
	CommentsCount int64  `bson:"comments_count" json:"comments_count"`
	IsActive      bool   `bson:"is_active" json:"is_active"`

	// Read-time enrichment, never persisted.
	Likes    []string  `bson:"-" json:"likes,omitempty"`
	Comments []Comment `bson:"-" json:"comments,omitempty"`
}

// Validate checks the post business rules before a write
func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Content) == "" {
		return errors.New("post requires title and content")
	}
	if p.AuthorID == "" || p.AuthorName == "" {
		return errors.New("post requires an author")
	}
	return nil
}

// Comment is a participant remark on a post
type Comment struct {
	Entity   `bson:",inline"`
	PostID   string `bson:"post_id" json:"post_id"`
	UserID   string `bson:"user_id" json:"user_id"`
	UserName string `bson:"user_name" json:"user_name"`
	Content  string `bson:"content" json:"content"`
}

// Validate checks the comment business rules before a write
func (c *Comment) Validate() error {
	if strings.TrimSpace(c.Content) == "" {
		return errors.New("comment content cannot be empty")
	}
	if c.PostID == "" || c.UserID == "" {
		return errors.New("comment requires a post and a user")
	}
	return nil
}

// Like records that a participant liked a post. At most one per
// (user, post) pair, enforced by a pre-check in PostService.
type Like struct {
	Entity   `bson:",inline"`
	PostID   string `bson:"post_id" json:"post_id"`
	UserID   string `bson:"user_id" json:"user_id"`
	UserName string `bson:"user_name" json:"user_name"`
}

// Validate checks the like business rules before a write
func (l *Like) Validate() error {
	if l.PostID == "" || l.UserID == "" {
		return errors.New("like requires a post and a user")
	}
	return nil
}

// PostRepository defines post data access
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id string) (*Post, error)
	ListActive(ctx context.Context, skip, limit int64) ([]Post, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*Post, error)
	Delete(ctx context.Context, id string) (bool, error)
	IncrementLikes(ctx context.Context, id string, delta int64) error
	IncrementComments(ctx context.Context, id string, delta int64) error
}

// CommentRepository defines comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	ListByPost(ctx context.Context, postID string, skip, limit int64) ([]Comment, error)
}

// LikeRepository defines like data access
type LikeRepository interface {
	Create(ctx context.Context, like *Like) error
	Delete(ctx context.Context, id string) (bool, error)
	GetByUserAndPost(ctx context.Context, userID, postID string) (*Like, error)
	ListByPost(ctx context.Context, postID string, skip, limit int64) ([]Like, error)
}
