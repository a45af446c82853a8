package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RafexStrike/eventment-server/internal/domain/ids"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrEmptyUpdate  = errors.New("update body has no fields")
	ErrMissingOwner = errors.New("owner email is required")
)

// PublicQuery selects upcoming events for the public listing.
type PublicQuery struct {
	Type   string
	Search string
	// Since is the lower bound for startDate, already formatted as stored.
	Since string
}

type Repository interface {
	Insert(ctx context.Context, doc Document) (InsertResult, error)
	ListPublic(ctx context.Context, query PublicQuery) ([]Document, error)
	ListByEmail(ctx context.Context, email string) ([]Document, error)
	ListFeatured(ctx context.Context) ([]Document, error)
	// GetByID returns nil, nil when no document has the id.
	GetByID(ctx context.Context, id primitive.ObjectID) (Document, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (DeleteResult, error)
	UpsertByID(ctx context.Context, id primitive.ObjectID, fields Document) (UpdateResult, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock replaces the time source used for the upcoming-events cutoff.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Create(ctx context.Context, doc Document) (InsertResult, error) {
	return s.repo.Insert(ctx, doc.WithoutID())
}

// ListPublic returns events starting at or after now, optionally narrowed by
// exact type and a case-insensitive title substring, ordered by startDate.
func (s *Service) ListPublic(ctx context.Context, eventType, search string) ([]Document, error) {
	query := PublicQuery{
		Type:   eventType,
		Search: search,
		Since:  FormatTimestamp(s.now()),
	}
	docs, err := s.repo.ListPublic(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list public events: %w", err)
	}
	return nonNil(docs), nil
}

func (s *Service) ListByOwner(ctx context.Context, email string) ([]Document, error) {
	if email == "" {
		return nil, ErrMissingOwner
	}
	docs, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list events by owner: %w", err)
	}
	return nonNil(docs), nil
}

func (s *Service) Featured(ctx context.Context) ([]Document, error) {
	docs, err := s.repo.ListFeatured(ctx)
	if err != nil {
		return nil, fmt.Errorf("list featured events: %w", err)
	}
	return nonNil(docs), nil
}

// Get returns nil without error when the event does not exist.
func (s *Service) Get(ctx context.Context, rawID string) (Document, error) {
	id, err := ids.ParseObjectID(rawID)
	if err != nil {
		return nil, err
	}
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", id.Hex(), err)
	}
	return doc, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) (DeleteResult, error) {
	id, err := ids.ParseObjectID(rawID)
	if err != nil {
		return DeleteResult{}, err
	}
	result, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("delete event %s: %w", id.Hex(), err)
	}
	return result, nil
}

// Update sets every supplied field on the event, creating it under the given id
// when it does not exist yet.
func (s *Service) Update(ctx context.Context, rawID string, fields Document) (UpdateResult, error) {
	id, err := ids.ParseObjectID(rawID)
	if err != nil {
		return UpdateResult{}, err
	}
	fields = fields.WithoutID()
	if len(fields) == 0 {
		return UpdateResult{}, ErrEmptyUpdate
	}
	result, err := s.repo.UpsertByID(ctx, id, fields)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("update event %s: %w", id.Hex(), err)
	}
	return result, nil
}

func nonNil(docs []Document) []Document {
	if docs == nil {
		return []Document{}
	}
	return docs
}
