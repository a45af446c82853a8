package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/RafexStrike/eventment-server/internal/domain/events"
	"github.com/RafexStrike/eventment-server/internal/domain/ids"
	"github.com/RafexStrike/eventment-server/internal/domain/joined"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type JoinedRepository struct {
	coll collection
}

func (r *JoinedRepository) Exists(ctx context.Context, email string, groupID any) (bool, error) {
	err := r.coll.run(ctx, "find_one", func(ctx context.Context) error {
		opts := options.FindOne().SetProjection(bson.M{events.FieldID: 1})
		return r.coll.FindOne(ctx, joinFilter(email, groupID), opts).Err()
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find joined event: %w", err)
	}
	return true, nil
}

// Insert stores a join record. A violation of the (email, groupID) unique
// index is reported as joined.ErrAlreadyJoined.
func (r *JoinedRepository) Insert(ctx context.Context, doc events.Document) (events.InsertResult, error) {
	var result events.InsertResult
	err := r.coll.run(ctx, "insert_one", func(ctx context.Context) error {
		res, err := r.coll.InsertOne(ctx, bson.M(doc))
		if err != nil {
			return err
		}
		result = events.InsertResult{Acknowledged: true, InsertedID: ids.Hex(res.InsertedID)}
		return nil
	})
	if mongo.IsDuplicateKeyError(err) {
		return events.InsertResult{}, joined.ErrAlreadyJoined
	}
	if err != nil {
		return events.InsertResult{}, fmt.Errorf("insert joined event: %w", err)
	}
	return result, nil
}

func (r *JoinedRepository) ListByEmail(ctx context.Context, email string) ([]events.Document, error) {
	docs, err := findAll(ctx, r.coll, "find_by_email", emailFilter(email), byStartDate)
	if err != nil {
		return nil, fmt.Errorf("list joined events: %w", err)
	}
	return docs, nil
}
