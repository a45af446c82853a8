package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/RafexStrike/eventment-server/internal/domain/events"
	"github.com/RafexStrike/eventment-server/internal/domain/ids"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventRepository struct {
	coll collection
}

func (r *EventRepository) Insert(ctx context.Context, doc events.Document) (events.InsertResult, error) {
	var result events.InsertResult
	err := r.coll.run(ctx, "insert_one", func(ctx context.Context) error {
		res, err := r.coll.InsertOne(ctx, bson.M(doc))
		if err != nil {
			return err
		}
		result = events.InsertResult{Acknowledged: true, InsertedID: ids.Hex(res.InsertedID)}
		return nil
	})
	if err != nil {
		return events.InsertResult{}, fmt.Errorf("insert event: %w", err)
	}
	return result, nil
}

func (r *EventRepository) ListPublic(ctx context.Context, query events.PublicQuery) ([]events.Document, error) {
	return r.find(ctx, "find_public", publicFilter(query), byStartDate)
}

func (r *EventRepository) ListByEmail(ctx context.Context, email string) ([]events.Document, error) {
	return r.find(ctx, "find_by_email", emailFilter(email), nil)
}

func (r *EventRepository) ListFeatured(ctx context.Context) ([]events.Document, error) {
	return r.find(ctx, "find_featured", featuredFilter(), nil)
}

func (r *EventRepository) GetByID(ctx context.Context, id primitive.ObjectID) (events.Document, error) {
	var doc bson.M
	err := r.coll.run(ctx, "find_one", func(ctx context.Context) error {
		return r.coll.FindOne(ctx, idFilter(id)).Decode(&doc)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	return events.Document(doc), nil
}

func (r *EventRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (events.DeleteResult, error) {
	var result events.DeleteResult
	err := r.coll.run(ctx, "delete_one", func(ctx context.Context) error {
		res, err := r.coll.DeleteOne(ctx, idFilter(id))
		if err != nil {
			return err
		}
		result = events.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}
		return nil
	})
	if err != nil {
		return events.DeleteResult{}, fmt.Errorf("delete event: %w", err)
	}
	return result, nil
}

// UpsertByID sets the given fields on the event, inserting it under id when no
// such event exists.
func (r *EventRepository) UpsertByID(ctx context.Context, id primitive.ObjectID, fields events.Document) (events.UpdateResult, error) {
	var result events.UpdateResult
	err := r.coll.run(ctx, "update_one", func(ctx context.Context) error {
		res, err := r.coll.UpdateOne(ctx, idFilter(id), setFields(fields), options.Update().SetUpsert(true))
		if err != nil {
			return err
		}
		result = events.UpdateResult{
			Acknowledged:  true,
			MatchedCount:  res.MatchedCount,
			ModifiedCount: res.ModifiedCount,
			UpsertedCount: res.UpsertedCount,
		}
		if res.UpsertedID != nil {
			hex := ids.Hex(res.UpsertedID)
			result.UpsertedID = &hex
		}
		return nil
	})
	if err != nil {
		return events.UpdateResult{}, fmt.Errorf("upsert event: %w", err)
	}
	return result, nil
}

func (r *EventRepository) find(ctx context.Context, operation string, filter bson.M, sort bson.D) ([]events.Document, error) {
	docs, err := findAll(ctx, r.coll, operation, filter, sort)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return docs, nil
}

// findAll returns every match for filter, in natural order when sort is nil.
func findAll(ctx context.Context, coll collection, operation string, filter bson.M, sort bson.D) ([]events.Document, error) {
	var raw []bson.M
	err := coll.run(ctx, operation, func(ctx context.Context) error {
		opts := options.Find()
		if sort != nil {
			opts.SetSort(sort)
		}
		cursor, err := coll.Find(ctx, filter, opts)
		if err != nil {
			return err
		}
		return cursor.All(ctx, &raw)
	})
	if err != nil {
		return nil, err
	}
	docs := make([]events.Document, len(raw))
	for i, doc := range raw {
		docs[i] = events.Document(doc)
	}
	return docs, nil
}
