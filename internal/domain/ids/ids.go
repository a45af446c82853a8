package ids

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidID is returned for path identifiers that are not 24-character hex ObjectIDs.
var ErrInvalidID = errors.New("invalid ObjectID")

// ParseObjectID validates and converts a store identifier taken from a request.
func ParseObjectID(value string) (primitive.ObjectID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return primitive.NilObjectID, ErrInvalidID
	}
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}

// Hex renders an inserted or upserted id for responses. String ids pass through,
// anything else renders empty.
func Hex(value any) string {
	switch v := value.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return ""
	}
}
