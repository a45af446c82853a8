package joined

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/RafexStrike/eventment-server/internal/domain/events"
	"github.com/stretchr/testify/require"
)

// memoryRepo enforces (email, groupID) uniqueness like the unique index does.
type memoryRepo struct {
	mu        sync.Mutex
	docs      []events.Document
	existsErr error
	// skipExists simulates a concurrent joiner that passed the pre-check.
	skipExists bool
}

func (m *memoryRepo) Exists(_ context.Context, email string, groupID any) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	if m.skipExists {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(email, groupID), nil
}

func (m *memoryRepo) Insert(_ context.Context, doc events.Document) (events.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(doc.String(events.FieldEmail), doc[events.FieldGroupID]) {
		return events.InsertResult{}, ErrAlreadyJoined
	}
	m.docs = append(m.docs, doc)
	return events.InsertResult{Acknowledged: true, InsertedID: "joined-id"}, nil
}

func (m *memoryRepo) ListByEmail(_ context.Context, email string) ([]events.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []events.Document
	for _, doc := range m.docs {
		if doc.String(events.FieldEmail) == email {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *memoryRepo) find(email string, groupID any) bool {
	for _, doc := range m.docs {
		if doc.String(events.FieldEmail) == email && doc[events.FieldGroupID] == groupID {
			return true
		}
	}
	return false
}

func joinDoc(email, groupID string) events.Document {
	return events.Document{
		events.FieldEmail:     email,
		events.FieldGroupID:   groupID,
		events.FieldTitle:     "Tree plantation",
		events.FieldStartDate: "2030-01-01T10:00:00.000Z",
	}
}

func TestJoinTwiceConflicts(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)

	result, err := svc.Join(context.Background(), joinDoc("a@example.com", "g1"))
	require.NoError(t, err)
	require.True(t, result.Acknowledged)

	_, err = svc.Join(context.Background(), joinDoc("a@example.com", "g1"))
	require.ErrorIs(t, err, ErrAlreadyJoined)
	require.Len(t, repo.docs, 1, "no second document is created")
}

func TestJoinDifferentGroupsAndUsers(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)

	_, err := svc.Join(context.Background(), joinDoc("a@example.com", "g1"))
	require.NoError(t, err)
	_, err = svc.Join(context.Background(), joinDoc("a@example.com", "g2"))
	require.NoError(t, err)
	_, err = svc.Join(context.Background(), joinDoc("b@example.com", "g1"))
	require.NoError(t, err)
	require.Len(t, repo.docs, 3)
}

func TestJoinUniqueIndexRaceMapsToConflict(t *testing.T) {
	repo := &memoryRepo{skipExists: true}
	svc := NewService(repo)

	_, err := svc.Join(context.Background(), joinDoc("a@example.com", "g1"))
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), joinDoc("a@example.com", "g1"))
	require.ErrorIs(t, err, ErrAlreadyJoined)
	require.Len(t, repo.docs, 1)
}

func TestJoinValidation(t *testing.T) {
	svc := NewService(&memoryRepo{})

	cases := map[string]events.Document{
		"missing email":   {events.FieldGroupID: "g1"},
		"malformed email": {events.FieldEmail: "not-an-email", events.FieldGroupID: "g1"},
		"missing groupID": {events.FieldEmail: "a@example.com"},
		"empty groupID":   {events.FieldEmail: "a@example.com", events.FieldGroupID: ""},
		"blank groupID":   {events.FieldEmail: "a@example.com", events.FieldGroupID: "   "},
		"null groupID":    {events.FieldEmail: "a@example.com", events.FieldGroupID: nil},
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Join(context.Background(), doc)
			require.ErrorIs(t, err, ErrInvalidJoin)
		})
	}
}

func TestJoinStripsClientID(t *testing.T) {
	repo := &memoryRepo{}
	doc := joinDoc("a@example.com", "g1")
	doc[events.FieldID] = "forged"

	_, err := NewService(repo).Join(context.Background(), doc)
	require.NoError(t, err)
	require.NotContains(t, repo.docs[0], events.FieldID)
}

func TestJoinExistsError(t *testing.T) {
	boom := errors.New("store down")
	_, err := NewService(&memoryRepo{existsErr: boom}).Join(context.Background(), joinDoc("a@example.com", "g1"))
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrAlreadyJoined)
}

func TestListByEmail(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)

	docs, err := svc.ListByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	require.NotNil(t, docs)
	require.Empty(t, docs)

	_, err = svc.Join(context.Background(), joinDoc("a@example.com", "g1"))
	require.NoError(t, err)

	docs, err = svc.ListByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	_, err = svc.ListByEmail(context.Background(), "")
	require.ErrorIs(t, err, events.ErrMissingOwner)
}
