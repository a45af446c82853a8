package storage

import (
	"context"

	"github.com/RafexStrike/eventment-server/internal/domain/events"
	"github.com/RafexStrike/eventment-server/internal/domain/joined"
)

// Repository groups data access by domain.
type Repository interface {
	Events() events.Repository
	Joined() joined.Repository

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
