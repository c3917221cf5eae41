package mongodb

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmongodb "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/vncsmyrnk/organs/internal/core/domain"
	"github.com/vncsmyrnk/organs/internal/core/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func setupMongo(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	container, err := tcmongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, testcontainers.TerminateContainer(container))
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, db, err := Connect(ctx, Config{URI: uri, Database: "organs_test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return db
}

func createUser(t *testing.T, repo ports.UserRepository) *domain.User {
	t.Helper()
	id := uuid.New()
	user := &domain.User{
		ID:        id,
		Username:  "user",
		Email:     fmt.Sprintf("%s@example.com", id),
		Organs:    []uuid.UUID{},
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func newPoll(owner uuid.UUID, title string) *domain.Poll {
	return domain.NewPoll(owner, title, "", []domain.Candidate{{FullName: "Alice"}, {FullName: "Bob"}}, time.Now())
}

func TestMongoPollLifecycle(t *testing.T) {
	db := setupMongo(t)
	ctx := context.Background()
	polls := NewPollRepository(db)
	users := NewUserRepository(db)
	owner := createUser(t, users)

	t.Run("duplicate email", func(t *testing.T) {
		err := users.Create(ctx, &domain.User{ID: uuid.New(), Email: owner.Email})
		require.ErrorIs(t, err, domain.ErrEmailTaken)
	})

	poll := newPoll(owner.ID, "Election")
	require.NoError(t, polls.Create(ctx, poll))

	t.Run("create attaches to owner", func(t *testing.T) {
		stored, err := users.GetByID(ctx, owner.ID)
		require.NoError(t, err)
		assert.True(t, stored.Owns(poll.ID))

		mine, err := polls.ListByOwner(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, poll.ID, mine[0].ID)
	})

	t.Run("create for unknown owner is rolled back", func(t *testing.T) {
		orphan := newPoll(uuid.New(), "Orphan")
		require.ErrorIs(t, polls.Create(ctx, orphan), domain.ErrUserNotFound)

		_, err := polls.GetByID(ctx, orphan.ID)
		require.ErrorIs(t, err, domain.ErrPollNotFound)
	})

	t.Run("update keeps tallies", func(t *testing.T) {
		result, err := polls.CastVote(ctx, poll.ID, uuid.New(), "Alice")
		require.NoError(t, err)
		require.Equal(t, ports.VoteApplied, result.Outcome)

		title := "Renamed"
		updated, err := polls.Update(ctx, poll.ID, domain.PollChanges{
			Title:      &title,
			Candidates: []domain.Candidate{{FullName: "Alice"}, {FullName: "Carol"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, int64(1), updated.Candidates[0].Votes)
		assert.Equal(t, poll.Candidates[0].ID, updated.Candidates[0].ID)
		assert.Len(t, updated.Voted, 1)
	})

	t.Run("delete detaches from owner", func(t *testing.T) {
		require.ErrorIs(t, polls.Delete(ctx, poll.ID, uuid.New()), domain.ErrForbidden)
		require.NoError(t, polls.Delete(ctx, poll.ID, owner.ID))
		require.ErrorIs(t, polls.Delete(ctx, poll.ID, owner.ID), domain.ErrPollNotFound)

		stored, err := users.GetByID(ctx, owner.ID)
		require.NoError(t, err)
		assert.False(t, stored.Owns(poll.ID))
	})
}

func TestMongoCastVote(t *testing.T) {
	db := setupMongo(t)
	ctx := context.Background()
	polls := NewPollRepository(db)
	owner := createUser(t, NewUserRepository(db))
	poll := newPoll(owner.ID, "Election")
	require.NoError(t, polls.Create(ctx, poll))

	t.Run("outcomes", func(t *testing.T) {
		voter := uuid.New()

		result, err := polls.CastVote(ctx, poll.ID, voter, "Mallory")
		require.NoError(t, err)
		assert.Equal(t, ports.VoteUnknownCandidate, result.Outcome)

		result, err = polls.CastVote(ctx, poll.ID, voter, "Bob")
		require.NoError(t, err)
		require.Equal(t, ports.VoteApplied, result.Outcome)
		assert.Equal(t, int64(1), result.Poll.Candidates[1].Votes)
		assert.Zero(t, result.Poll.Candidates[0].Votes)

		result, err = polls.CastVote(ctx, poll.ID, voter, "Alice")
		require.NoError(t, err)
		assert.Equal(t, ports.VoteAlreadyCast, result.Outcome)

		_, err = polls.CastVote(ctx, uuid.New(), voter, "Alice")
		require.ErrorIs(t, err, domain.ErrPollNotFound)
	})

	t.Run("concurrent same voter", func(t *testing.T) {
		voter := uuid.New()
		const attempts = 10

		var wg sync.WaitGroup
		outcomes := make(chan ports.VoteOutcome, attempts)
		for range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result, err := polls.CastVote(ctx, poll.ID, voter, "Alice")
				if assert.NoError(t, err) {
					outcomes <- result.Outcome
				}
			}()
		}
		wg.Wait()
		close(outcomes)

		applied := 0
		for o := range outcomes {
			if o == ports.VoteApplied {
				applied++
			}
		}
		assert.Equal(t, 1, applied)

		got, err := polls.GetByID(ctx, poll.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Candidates[0].Votes)
	})
}

func TestMongoReconcileOwner(t *testing.T) {
	db := setupMongo(t)
	ctx := context.Background()
	polls := NewPollRepository(db)
	users := NewUserRepository(db)
	owner := createUser(t, users)

	kept := newPoll(owner.ID, "Kept")
	require.NoError(t, polls.Create(ctx, kept))
	lost := newPoll(owner.ID, "Lost")
	require.NoError(t, polls.Create(ctx, lost))

	dangling := uuid.NewString()
	_, err := db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": owner.ID.String()},
		bson.M{"$set": bson.M{"organs": []string{kept.ID.String(), dangling}}},
	)
	require.NoError(t, err)

	mine, err := polls.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	repo := NewOwnershipRepository(db)
	owners, err := repo.ListOwnerIDs(ctx)
	require.NoError(t, err)
	assert.Contains(t, owners, owner.ID)

	repairs, err := repo.ReconcileOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, repairs)

	stored, err := users.GetByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{kept.ID, lost.ID}, stored.Organs)
}
