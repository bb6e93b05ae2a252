package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/convene/backend/internal/domain"
)

// Users implements domain.UserRepository over the users collection
type Users struct {
	store *Store[domain.User]
}

// NewUsers creates the users repository
func NewUsers(db *mongo.Database) *Users {
	return &Users{store: NewStore[domain.User](db, "users")}
}

func (r *Users) Create(ctx context.Context, user *domain.User) error {
	user.CreatedAt = time.Now().UTC()
	id, err := r.store.Insert(ctx, user)
	if err != nil {
		// The unique email index catches the race the service's
		// existence check cannot.
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return err
	}
	user.ID = id
	return nil
}

func (r *Users) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.store.GetByID(ctx, id)
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.store.FindOne(ctx, bson.M{"email": email})
}

func (r *Users) EmailExists(ctx context.Context, email string) (bool, error) {
	count, err := r.store.Count(ctx, bson.M{"email": email})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Users) Update(ctx context.Context, id string, fields map[string]interface{}) (*domain.User, error) {
	return r.store.Update(ctx, id, fields)
}

// ActiveParticipantsWithToken returns every active participant that has
// a registered push token, feeding the notification dispatcher.
func (r *Users) ActiveParticipantsWithToken(ctx context.Context) ([]domain.User, error) {
	filter := bson.M{
		"role":      domain.RoleParticipant,
		"is_active": true,
		"fcm_token": bson.M{"$exists": true, "$ne": ""},
	}
	return r.store.Find(ctx, filter, 0, 0, nil)
}
