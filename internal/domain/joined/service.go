package joined

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RafexStrike/eventment-server/internal/domain/events"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrAlreadyJoined is returned when the (email, groupID) pair already exists.
	ErrAlreadyJoined = errors.New("already joined this event")
	ErrInvalidJoin   = errors.New("invalid join request")
)

// Repository stores join records. Insert must report a violated uniqueness
// constraint on (email, groupID) as ErrAlreadyJoined.
type Repository interface {
	Exists(ctx context.Context, email string, groupID any) (bool, error)
	Insert(ctx context.Context, doc events.Document) (events.InsertResult, error)
	ListByEmail(ctx context.Context, email string) ([]events.Document, error)
}

type joinRequest struct {
	Email    string `validate:"required,email"`
	GroupID  any    `validate:"required"`
	// GroupKey is the string form of GroupID; a blank string is not a group.
	GroupKey string `validate:"required"`
}

func groupKey(v any) string {
	switch g := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(g)
	default:
		return fmt.Sprint(g)
	}
}

type Service struct {
	repo      Repository
	validator *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validator: validator.New()}
}

// Join records that the document's email joined its groupID. The pre-check gives
// the common case a clean answer; the store's unique index settles races.
func (s *Service) Join(ctx context.Context, doc events.Document) (events.InsertResult, error) {
	req := joinRequest{
		Email:   doc.String(events.FieldEmail),
		GroupID: doc[events.FieldGroupID],
	}
	req.GroupKey = groupKey(req.GroupID)
	if err := s.validator.Struct(req); err != nil {
		return events.InsertResult{}, fmt.Errorf("%w: %v", ErrInvalidJoin, err)
	}

	exists, err := s.repo.Exists(ctx, req.Email, req.GroupID)
	if err != nil {
		return events.InsertResult{}, fmt.Errorf("check joined event: %w", err)
	}
	if exists {
		return events.InsertResult{}, ErrAlreadyJoined
	}

	result, err := s.repo.Insert(ctx, doc.WithoutID())
	if err != nil {
		if errors.Is(err, ErrAlreadyJoined) {
			return events.InsertResult{}, ErrAlreadyJoined
		}
		return events.InsertResult{}, fmt.Errorf("insert joined event: %w", err)
	}
	return result, nil
}

// ListByEmail returns the caller's joined events ordered by startDate.
func (s *Service) ListByEmail(ctx context.Context, email string) ([]events.Document, error) {
	if email == "" {
		return nil, events.ErrMissingOwner
	}
	docs, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list joined events: %w", err)
	}
	if docs == nil {
		docs = []events.Document{}
	}
	return docs, nil
}
