package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entity is the base every persisted document embeds: an opaque id, a
// creation timestamp and an optional update timestamp. The id is a Mongo
// ObjectID; references between documents are stored as its hex string.
type Entity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// HexID returns the string form of the entity id
func (e *Entity) HexID() string {
	return e.ID.Hex()
}
