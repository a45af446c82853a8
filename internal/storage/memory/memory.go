// Package memory is an in-process storage.Repository. It applies the same
// filters, ordering and uniqueness rules as the MongoDB backend and backs API
// tests that should not need a database.
package memory

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/RafexStrike/eventment-server/internal/domain/events"
	"github.com/RafexStrike/eventment-server/internal/domain/joined"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Repository struct {
	events *EventRepository
	joined *JoinedRepository
}

func New() *Repository {
	return &Repository{events: &EventRepository{}, joined: &JoinedRepository{}}
}

func (r *Repository) Events() events.Repository { return r.events }

func (r *Repository) Joined() joined.Repository { return r.joined }

func (r *Repository) Ping(context.Context) error { return nil }

// EventRepository keeps documents in insertion order.
type EventRepository struct {
	mu   sync.RWMutex
	docs []events.Document
}

func (r *EventRepository) Insert(_ context.Context, doc events.Document) (events.InsertResult, error) {
	id := primitive.NewObjectID()
	stored := doc.WithoutID()
	stored[events.FieldID] = id

	r.mu.Lock()
	r.docs = append(r.docs, stored)
	r.mu.Unlock()
	return events.InsertResult{Acknowledged: true, InsertedID: id.Hex()}, nil
}

func (r *EventRepository) ListPublic(_ context.Context, query events.PublicQuery) ([]events.Document, error) {
	search := strings.ToLower(query.Search)
	docs := r.filter(func(doc events.Document) bool {
		if doc.String(events.FieldStartDate) < query.Since {
			return false
		}
		if query.Type != "" && doc.String(events.FieldType) != query.Type {
			return false
		}
		if search != "" && !strings.Contains(strings.ToLower(doc.String(events.FieldTitle)), search) {
			return false
		}
		return true
	})
	sortByStartDate(docs)
	return docs, nil
}

func (r *EventRepository) ListByEmail(_ context.Context, email string) ([]events.Document, error) {
	return r.filter(func(doc events.Document) bool {
		return doc.String(events.FieldEmail) == email
	}), nil
}

func (r *EventRepository) ListFeatured(context.Context) ([]events.Document, error) {
	return r.filter(func(doc events.Document) bool {
		switch v := doc[events.FieldFeatured].(type) {
		case bool:
			return v
		case string:
			return v == "true"
		}
		return false
	}), nil
}

func (r *EventRepository) GetByID(_ context.Context, id primitive.ObjectID) (events.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return copyDoc(r.docs[i]), nil
	}
	return nil, nil
}

func (r *EventRepository) DeleteByID(_ context.Context, id primitive.ObjectID) (events.DeleteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return events.DeleteResult{Acknowledged: true}, nil
	}
	r.docs = append(r.docs[:i], r.docs[i+1:]...)
	return events.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

func (r *EventRepository) UpsertByID(_ context.Context, id primitive.ObjectID, fields events.Document) (events.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(id); i >= 0 {
		modified := false
		for key, value := range fields.WithoutID() {
			if current, ok := r.docs[i][key]; !ok || !reflect.DeepEqual(current, value) {
				modified = true
			}
			r.docs[i][key] = value
		}
		result := events.UpdateResult{Acknowledged: true, MatchedCount: 1}
		if modified {
			result.ModifiedCount = 1
		}
		return result, nil
	}

	stored := fields.WithoutID()
	stored[events.FieldID] = id
	r.docs = append(r.docs, stored)
	hex := id.Hex()
	return events.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: &hex}, nil
}

func (r *EventRepository) filter(keep func(events.Document) bool) []events.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []events.Document{}
	for _, doc := range r.docs {
		if keep(doc) {
			out = append(out, copyDoc(doc))
		}
	}
	return out
}

func (r *EventRepository) indexOf(id primitive.ObjectID) int {
	for i, doc := range r.docs {
		if stored, ok := doc[events.FieldID].(primitive.ObjectID); ok && stored == id {
			return i
		}
	}
	return -1
}

// JoinedRepository enforces (email, groupID) uniqueness on insert.
type JoinedRepository struct {
	mu   sync.RWMutex
	docs []events.Document
}

func (r *JoinedRepository) Exists(_ context.Context, email string, groupID any) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.find(email, groupID), nil
}

func (r *JoinedRepository) Insert(_ context.Context, doc events.Document) (events.InsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.find(doc.String(events.FieldEmail), doc[events.FieldGroupID]) {
		return events.InsertResult{}, joined.ErrAlreadyJoined
	}
	id := primitive.NewObjectID()
	stored := doc.WithoutID()
	stored[events.FieldID] = id
	r.docs = append(r.docs, stored)
	return events.InsertResult{Acknowledged: true, InsertedID: id.Hex()}, nil
}

func (r *JoinedRepository) ListByEmail(_ context.Context, email string) ([]events.Document, error) {
	r.mu.RLock()
	out := []events.Document{}
	for _, doc := range r.docs {
		if doc.String(events.FieldEmail) == email {
			out = append(out, copyDoc(doc))
		}
	}
	r.mu.RUnlock()
	sortByStartDate(out)
	return out, nil
}

func (r *JoinedRepository) find(email string, groupID any) bool {
	for _, doc := range r.docs {
		if doc.String(events.FieldEmail) == email && reflect.DeepEqual(doc[events.FieldGroupID], groupID) {
			return true
		}
	}
	return false
}

func sortByStartDate(docs []events.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].String(events.FieldStartDate) < docs[j].String(events.FieldStartDate)
	})
}

func copyDoc(doc events.Document) events.Document {
	out := make(events.Document, len(doc))
	for key, value := range doc {
		out[key] = value
	}
	return out
}
