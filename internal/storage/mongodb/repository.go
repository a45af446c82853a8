package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/RafexStrike/eventment-server/internal/domain/events"
	"github.com/RafexStrike/eventment-server/internal/domain/joined"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultOperationTimeout = 5 * time.Second

// Options names the collections and bounds each store call.
type Options struct {
	EventsCollection string
	JoinedCollection string
	OperationTimeout time.Duration
}

// Repository implements storage.Repository with a MongoDB backend
type Repository struct {
	db *mongo.Database

	events *EventRepository
	joined *JoinedRepository
}

// NewRepository creates a new MongoDB-backed repository
func NewRepository(db *mongo.Database, opts Options) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}
	if opts.EventsCollection == "" || opts.JoinedCollection == "" {
		return nil, fmt.Errorf("collection names cannot be empty")
	}
	if opts.OperationTimeout <= 0 {
		opts.OperationTimeout = defaultOperationTimeout
	}

	return &Repository{
		db: db,
		events: &EventRepository{
			coll: newCollection(db.Collection(opts.EventsCollection), opts.OperationTimeout),
		},
		joined: &JoinedRepository{
			coll: newCollection(db.Collection(opts.JoinedCollection), opts.OperationTimeout),
		},
	}, nil
}

// Events returns the events repository
func (r *Repository) Events() events.Repository {
	return r.events
}

// Joined returns the joined-events repository
func (r *Repository) Joined() joined.Repository {
	return r.joined
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}
