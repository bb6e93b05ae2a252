package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/convene/backend/internal/domain"
)

// Stories implements domain.StoryRepository over the stories collection
type Stories struct {
	store *Store[domain.Story]
}

// NewStories creates the stories repository
func NewStories(db *mongo.Database) *Stories {
	return &Stories{store: NewStore[domain.Story](db, "stories")}
}

func (r *Stories) Create(ctx context.Context, story *domain.Story) error {
	story.CreatedAt = time.Now().UTC()
	id, err := r.store.Insert(ctx, story)
	if err != nil {
		return err
	}
	story.ID = id
	return nil
}

func (r *Stories) GetByID(ctx context.Context, id string) (*domain.Story, error) {
	return r.store.GetByID(ctx, id)
}

func (r *Stories) ListActive(ctx context.Context, now time.Time, skip, limit int64) ([]domain.Story, error) {
	filter := bson.M{
		"is_active":  true,
		"expires_at": bson.M{"$gt": now},
	}
	return r.store.Find(ctx, filter, skip, limit, newestFirst)
}

func (r *Stories) ListActiveByAuthor(ctx context.Context, authorID string, now time.Time, skip, limit int64) ([]domain.Story, error) {
	filter := bson.M{
		"author_id":  authorID,
		"is_active":  true,
		"expires_at": bson.M{"$gt": now},
	}
	return r.store.Find(ctx, filter, skip, limit, newestFirst)
}

func (r *Stories) Update(ctx context.Context, id string, fields map[string]interface{}) (*domain.Story, error) {
	return r.store.Update(ctx, id, fields)
}

func (r *Stories) Delete(ctx context.Context, id string) (bool, error) {
	return r.store.Delete(ctx, id)
}

func (r *Stories) IncrementViews(ctx context.Context, id string) error {
	return r.store.Apply(ctx, id, bson.M{"$inc": bson.M{"views_count": 1}})
}

// ExpireOld flips is_active off for stories past their window. The
// filter includes is_active so a rerun modifies nothing.
func (r *Stories) ExpireOld(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"expires_at": bson.M{"$lte": now},
		"is_active":  true,
	}
	update := bson.M{"$set": bson.M{"is_active": false, "updated_at": now}}
	return r.store.UpdateMany(ctx, filter, update)
}

// StoryViews implements domain.StoryViewRepository over the
// story_views collection.
type StoryViews struct {
	store *Store[domain.StoryView]
}

// NewStoryViews creates the story views repository
func NewStoryViews(db *mongo.Database) *StoryViews {
	return &StoryViews{store: NewStore[domain.StoryView](db, "story_views")}
}

func (r *StoryViews) Create(ctx context.Context, view *domain.StoryView) error {
	view.CreatedAt = time.Now().UTC()
	id, err := r.store.Insert(ctx, view)
	if err != nil {
		// Unique (user_id, story_id) index backstops the pre-check
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyViewed
		}
		return err
	}
	view.ID = id
	return nil
}

func (r *StoryViews) GetByUserAndStory(ctx context.Context, userID, storyID string) (*domain.StoryView, error) {
	return r.store.FindOne(ctx, bson.M{"user_id": userID, "story_id": storyID})
}

func (r *StoryViews) ListByStory(ctx context.Context, storyID string, skip, limit int64) ([]domain.StoryView, error) {
	return r.store.Find(ctx, bson.M{"story_id": storyID}, skip, limit, nil)
}
