package mongodb

import (
	"context"
	"fmt"

	"github.com/RafexStrike/eventment-server/internal/domain/events"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// JoinedUniqueIndex makes (email, groupID) unique across join records.
const JoinedUniqueIndex = "joined_email_group_unique"

func eventIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: events.FieldStartDate, Value: 1}},
			Options: options.Index().SetName("events_start_date"),
		},
		{
			Keys:    bson.D{{Key: events.FieldType, Value: 1}, {Key: events.FieldStartDate, Value: 1}},
			Options: options.Index().SetName("events_type_start_date"),
		},
		{
			Keys:    bson.D{{Key: events.FieldEmail, Value: 1}, {Key: events.FieldStartDate, Value: 1}},
			Options: options.Index().SetName("events_email_start_date"),
		},
		{
			Keys:    bson.D{{Key: events.FieldFeatured, Value: 1}},
			Options: options.Index().SetName("events_featured"),
		},
	}
}

func joinedIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: events.FieldEmail, Value: 1}, {Key: events.FieldGroupID, Value: 1}},
			Options: options.Index().SetName(JoinedUniqueIndex).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: events.FieldEmail, Value: 1}, {Key: events.FieldStartDate, Value: 1}},
			Options: options.Index().SetName("joined_email_start_date"),
		},
	}
}

// EnsureIndexes creates the indexes both collections rely on. It is safe to call
// repeatedly. Creating the unique index fails while duplicate join records exist.
func (r *Repository) EnsureIndexes(ctx context.Context) ([]string, error) {
	var names []string

	for _, target := range []struct {
		coll   collection
		models []mongo.IndexModel
	}{
		{r.events.coll, eventIndexes()},
		{r.joined.coll, joinedIndexes()},
	} {
		err := target.coll.run(ctx, "create_indexes", func(ctx context.Context) error {
			created, err := target.coll.Indexes().CreateMany(ctx, target.models)
			names = append(names, created...)
			return err
		})
		if err != nil {
			return names, fmt.Errorf("create indexes on %s: %w", target.coll.Name(), err)
		}
	}
	return names, nil
}
