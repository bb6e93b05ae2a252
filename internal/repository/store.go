package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the generic persistence adapter: one flat document
// collection per entity type, CRUD plus filtered find/count. It owns no
// business semantics. Lookups with a malformed id hex behave as "not
// found" rather than erroring, and every Update stamps updated_at.
// There are no transactions; multi-step writes in the services are not
// atomic.
type Store[T any] struct {
	coll *mongo.Collection
}

// NewStore creates a store over the named collection
func NewStore[T any](db *mongo.Database, collection string) *Store[T] {
	return &Store[T]{coll: db.Collection(collection)}
}

// Insert writes a new document and returns its generated id
func (s *Store[T]) Insert(ctx context.Context, doc interface{}) (primitive.ObjectID, error) {
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("inserted id is not an object id")
	}
	return id, nil
}

// GetByID returns the document with the given hex id, or nil when it
// does not exist or the id is not valid hex.
func (s *Store[T]) GetByID(ctx context.Context, id string) (*T, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return s.FindOne(ctx, bson.M{"_id": oid})
}

// FindOne returns the first document matching the filter, or nil
func (s *Store[T]) FindOne(ctx context.Context, filter interface{}) (*T, error) {
	var doc T
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// Find returns documents matching the filter with pagination and an
// optional sort.
func (s *Store[T]) Find(ctx context.Context, filter interface{}, skip, limit int64, sort interface{}) ([]T, error) {
	opts := options.Find()
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if sort != nil {
		opts.SetSort(sort)
	}

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Update applies a partial $set to the document and returns the updated
// version, or nil when no document matches. The update-timestamp stamp
// happens here so callers cannot forget it.
func (s *Store[T]) Update(ctx context.Context, id string, fields map[string]interface{}) (*T, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc T
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// Apply runs a raw update document ($inc and friends) against one id.
// updated_at is stamped alongside.
func (s *Store[T]) Apply(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	set, ok := update["$set"].(bson.M)
	if !ok {
		set = bson.M{}
		update["$set"] = set
	}
	set["updated_at"] = time.Now().UTC()

	_, err = s.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

// Delete removes the document and reports whether one was removed
func (s *Store[T]) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// Count returns how many documents match the filter
func (s *Store[T]) Count(ctx context.Context, filter interface{}) (int64, error) {
	return s.coll.CountDocuments(ctx, filter)
}

// UpdateMany applies an update to every document matching the filter
// and returns the modified count.
func (s *Store[T]) UpdateMany(ctx context.Context, filter, update bson.M) (int64, error) {
	res, err := s.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
