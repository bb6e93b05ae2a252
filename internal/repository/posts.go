package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/convene/backend/internal/domain"
)

var newestFirst = bson.D{{Key: "created_at", Value: -1}}

// Posts implements domain.PostRepository over the posts collection
type Posts struct {
	store *Store[domain.Post]
}

// NewPosts creates the posts repository
func NewPosts(db *mongo.Database) *Posts {
	return &Posts{store: NewStore[domain.Post](db, "posts")}
}

func (r *Posts) Create(ctx context.Context, post *domain.Post) error {
	post.CreatedAt = time.Now().UTC()
	id, err := r.store.Insert(ctx, post)
	if err != nil {
		return err
	}
	post.ID = id
	return nil
}

func (r *Posts) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	return r.store.GetByID(ctx, id)
}

func (r *Posts) ListActive(ctx context.Context, skip, limit int64) ([]domain.Post, error) {
	return r.store.Find(ctx, bson.M{"is_active": true}, skip, limit, newestFirst)
}

func (r *Posts) Update(ctx context.Context, id string, fields map[string]interface{}) (*domain.Post, error) {
	return r.store.Update(ctx, id, fields)
}

func (r *Posts) Delete(ctx context.Context, id string) (bool, error) {
	return r.store.Delete(ctx, id)
}

// IncrementLikes bumps the denormalized likes counter. Separate from
// the Like document write, so the pair is not atomic.
func (r *Posts) IncrementLikes(ctx context.Context, id string, delta int64) error {
	return r.store.Apply(ctx, id, bson.M{"$inc": bson.M{"likes_count": delta}})
}

// IncrementComments bumps the denormalized comments counter
func (r *Posts) IncrementComments(ctx context.Context, id string, delta int64) error {
	return r.store.Apply(ctx, id, bson.M{"$inc": bson.M{"comments_count": delta}})
}

// Comments implements domain.CommentRepository over the comments collection
type Comments struct {
	store *Store[domain.Comment]
}

// NewComments creates the comments repository
func NewComments(db *mongo.Database) *Comments {
	return &Comments{store: NewStore[domain.Comment](db, "comments")}
}

func (r *Comments) Create(ctx context.Context, comment *domain.Comment) error {
	comment.CreatedAt = time.Now().UTC()
	id, err := r.store.Insert(ctx, comment)
	if err != nil {
		return err
	}
	comment.ID = id
	return nil
}

func (r *Comments) ListByPost(ctx context.Context, postID string, skip, limit int64) ([]domain.Comment, error) {
	return r.store.Find(ctx, bson.M{"post_id": postID}, skip, limit, newestFirst)
}

// Likes implements domain.LikeRepository over the likes collection
type Likes struct {
	store *Store[domain.Like]
}

// NewLikes creates the likes repository
func NewLikes(db *mongo.Database) *Likes {
	return &Likes{store: NewStore[domain.Like](db, "likes")}
}

func (r *Likes) Create(ctx context.Context, like *domain.Like) error {
	like.CreatedAt = time.Now().UTC()
	id, err := r.store.Insert(ctx, like)
	if err != nil {
		// Unique (user_id, post_id) index backstops the pre-check
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyLiked
		}
		return err
	}
	like.ID = id
	return nil
}

func (r *Likes) Delete(ctx context.Context, id string) (bool, error) {
	return r.store.Delete(ctx, id)
}

func (r *Likes) GetByUserAndPost(ctx context.Context, userID, postID string) (*domain.Like, error) {
	return r.store.FindOne(ctx, bson.M{"user_id": userID, "post_id": postID})
}

func (r *Likes) ListByPost(ctx context.Context, postID string, skip, limit int64) ([]domain.Like, error) {
	return r.store.Find(ctx, bson.M{"post_id": postID}, skip, limit, nil)
}
