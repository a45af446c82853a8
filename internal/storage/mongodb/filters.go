package mongodb

import (
	"regexp"

	"github.com/RafexStrike/eventment-server/internal/domain/events"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// byStartDate orders listings by ascending startDate.
var byStartDate = bson.D{{Key: events.FieldStartDate, Value: 1}}

// publicFilter selects events starting at or after query.Since. The search
// term is matched literally, case-insensitively, anywhere in the title.
func publicFilter(query events.PublicQuery) bson.M {
	filter := bson.M{
		events.FieldStartDate: bson.M{"$gte": query.Since},
	}
	if query.Type != "" {
		filter[events.FieldType] = query.Type
	}
	if query.Search != "" {
		filter[events.FieldTitle] = primitive.Regex{
			Pattern: regexp.QuoteMeta(query.Search),
			Options: "i",
		}
	}
	return filter
}

// featuredFilter accepts the flag stored either as a boolean or as "true".
func featuredFilter() bson.M {
	return bson.M{
		events.FieldFeatured: bson.M{"$in": bson.A{"true", true}},
	}
}

func emailFilter(email string) bson.M {
	return bson.M{events.FieldEmail: email}
}

func idFilter(id primitive.ObjectID) bson.M {
	return bson.M{events.FieldID: id}
}

func joinFilter(email string, groupID any) bson.M {
	return bson.M{events.FieldEmail: email, events.FieldGroupID: groupID}
}

// setFields builds a $set update from a document without its identifier.
func setFields(fields events.Document) bson.M {
	set := bson.M{}
	for key, value := range fields {
		if key == events.FieldID {
			continue
		}
		set[key] = value
	}
	return bson.M{"$set": set}
}
