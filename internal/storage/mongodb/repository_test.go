package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/RafexStrike/eventment-server/internal/domain/events"
	"github.com/RafexStrike/eventment-server/internal/domain/joined"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func eventDoc(email, title, eventType string, start time.Time) events.Document {
	return events.Document{
		events.FieldEmail:     email,
		events.FieldTitle:     title,
		events.FieldType:      eventType,
		events.FieldStartDate: events.FormatTimestamp(start),
		"location":            map[string]any{"city": "Dhaka"},
	}
}

func TestNewRepositoryValidates(t *testing.T) {
	_, err := NewRepository(nil, Options{EventsCollection: "e", JoinedCollection: "j"})
	require.Error(t, err)
}

func TestEventRepositoryInsertAndGet(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	result, err := repo.Events().Insert(ctx, eventDoc("a@example.com", "Beach cleanup", "Cleanup", time.Now().Add(24*time.Hour)))
	require.NoError(t, err)
	require.True(t, result.Acknowledged)
	require.Len(t, result.InsertedID, 24)

	id, err := primitive.ObjectIDFromHex(result.InsertedID)
	require.NoError(t, err)

	doc, err := repo.Events().GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Beach cleanup", doc[events.FieldTitle])
	require.IsType(t, primitive.M{}, doc["location"], "nested documents decode as maps")

	missing, err := repo.Events().GetByID(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestEventRepositoryListPublic(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	now := time.Now()

	seed := []events.Document{
		eventDoc("a@example.com", "Tree plantation", "Plantation", now.Add(48*time.Hour)),
		eventDoc("a@example.com", "Old TREE walk", "Plantation", now.Add(-48*time.Hour)),
		eventDoc("b@example.com", "Street trees survey", "Survey", now.Add(24*time.Hour)),
		eventDoc("b@example.com", "Food drive", "Donation", now.Add(72*time.Hour)),
	}
	for _, doc := range seed {
		_, err := repo.Events().Insert(ctx, doc)
		require.NoError(t, err)
	}

	since := events.FormatTimestamp(now)

	all, err := repo.Events().ListPublic(ctx, events.PublicQuery{Since: since})
	require.NoError(t, err)
	require.Len(t, all, 3, "past events are excluded")
	require.Equal(t, "Street trees survey", all[0][events.FieldTitle], "ordered by startDate")

	byType, err := repo.Events().ListPublic(ctx, events.PublicQuery{Type: "Plantation", Since: since})
	require.NoError(t, err)
	require.Len(t, byType, 1)

	bySearch, err := repo.Events().ListPublic(ctx, events.PublicQuery{Search: "TREE", Since: since})
	require.NoError(t, err)
	require.Len(t, bySearch, 2)

	none, err := repo.Events().ListPublic(ctx, events.PublicQuery{Search: ".*", Since: since})
	require.NoError(t, err)
	require.Empty(t, none, "search is matched literally")
}

func TestEventRepositoryListByEmailAndFeatured(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	now := time.Now()

	first := eventDoc("a@example.com", "One", "Meetup", now.Add(time.Hour))
	first[events.FieldFeatured] = "true"
	second := eventDoc("a@example.com", "Two", "Meetup", now.Add(-time.Hour))
	second[events.FieldFeatured] = true
	third := eventDoc("b@example.com", "Three", "Meetup", now.Add(2*time.Hour))
	third[events.FieldFeatured] = false

	for _, doc := range []events.Document{first, second, third} {
		_, err := repo.Events().Insert(ctx, doc)
		require.NoError(t, err)
	}

	mine, err := repo.Events().ListByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.Len(t, mine, 2)

	featured, err := repo.Events().ListFeatured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 2)
}

func TestEventRepositoryUpsertAndDelete(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	id := primitive.NewObjectID()

	created, err := repo.Events().UpsertByID(ctx, id, events.Document{events.FieldTitle: "Draft"})
	require.NoError(t, err)
	require.Equal(t, int64(0), created.MatchedCount)
	require.Equal(t, int64(1), created.UpsertedCount)
	require.NotNil(t, created.UpsertedID)
	require.Equal(t, id.Hex(), *created.UpsertedID)

	updated, err := repo.Events().UpsertByID(ctx, id, events.Document{events.FieldTitle: "Final"})
	require.NoError(t, err)
	require.Equal(t, int64(1), updated.MatchedCount)
	require.Equal(t, int64(1), updated.ModifiedCount)
	require.Nil(t, updated.UpsertedID)

	doc, err := repo.Events().GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Final", doc[events.FieldTitle])

	deleted, err := repo.Events().DeleteByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted.DeletedCount)

	again, err := repo.Events().DeleteByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(0), again.DeletedCount)
}

func TestJoinedRepositoryUniqueIndex(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	doc := events.Document{
		events.FieldEmail:     "a@example.com",
		events.FieldGroupID:   "6650f0c2a1b2c3d4e5f60718",
		events.FieldStartDate: "2030-01-01T10:00:00.000Z",
	}

	exists, err := repo.Joined().Exists(ctx, "a@example.com", "6650f0c2a1b2c3d4e5f60718")
	require.NoError(t, err)
	require.False(t, exists)

	_, err = repo.Joined().Insert(ctx, doc)
	require.NoError(t, err)

	exists, err = repo.Joined().Exists(ctx, "a@example.com", "6650f0c2a1b2c3d4e5f60718")
	require.NoError(t, err)
	require.True(t, exists)

	_, err = repo.Joined().Insert(ctx, events.Document{
		events.FieldEmail:   "a@example.com",
		events.FieldGroupID: "6650f0c2a1b2c3d4e5f60718",
	})
	require.ErrorIs(t, err, joined.ErrAlreadyJoined)

	list, err := repo.Joined().ListByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestJoinedServiceOverMongo(t *testing.T) {
	repo := setupRepository(t)
	svc := joined.NewService(repo.Joined())
	ctx := context.Background()

	doc := events.Document{events.FieldEmail: "c@example.com", events.FieldGroupID: "g-1"}
	_, err := svc.Join(ctx, doc)
	require.NoError(t, err)

	_, err = svc.Join(ctx, doc)
	require.ErrorIs(t, err, joined.ErrAlreadyJoined)
}

func TestEnsureIndexesIsIdempotent(t *testing.T) {
	repo := setupRepository(t)

	names, err := repo.EnsureIndexes(context.Background())
	require.NoError(t, err)
	require.Contains(t, names, JoinedUniqueIndex)
	require.NoError(t, repo.Ping(context.Background()))
}
