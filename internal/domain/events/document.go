package events

import "time"

// Field names of event documents as stored by the frontend.
const (
	FieldID        = "_id"
	FieldEmail     = "email"
	FieldTitle     = "eventTitle"
	FieldType      = "eventType"
	FieldStartDate = "startDate"
	FieldFeatured  = "isFeatured"
	FieldGroupID   = "groupID"
)

// timestampLayout matches JavaScript's Date.prototype.toISOString, which is how
// startDate values are written by clients. Stored dates compare as strings.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Document is a schema-flexible event record.
type Document map[string]any

// String returns a string field or "" when absent or not a string.
func (d Document) String(key string) string {
	if d == nil {
		return ""
	}
	value, _ := d[key].(string)
	return value
}

// WithoutID returns a shallow copy without the store identifier. Identifiers are
// store generated and immutable, so client-supplied ones are never written.
func (d Document) WithoutID() Document {
	out := make(Document, len(d))
	for key, value := range d {
		if key == FieldID {
			continue
		}
		out[key] = value
	}
	return out
}

// FormatTimestamp renders t the way startDate values are stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// InsertResult mirrors the acknowledgement the frontend expects from a create.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

type UpdateResult struct {
	Acknowledged  bool    `json:"acknowledged"`
	MatchedCount  int64   `json:"matchedCount"`
	ModifiedCount int64   `json:"modifiedCount"`
	UpsertedCount int64   `json:"upsertedCount"`
	UpsertedID    *string `json:"upsertedId"`
}
