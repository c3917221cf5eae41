package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/organs/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/organs/internal/core/domain"
	"github.com/vncsmyrnk/organs/internal/core/ports"
)

type testEnv struct {
	db      *memory.DB
	polls   *memory.PollRepository
	users   *memory.UserRepository
	ballot  ports.BallotService
	service ports.PollService
}

func newTestEnv() *testEnv {
	db := memory.New()
	polls := memory.NewPollRepository(db)
	users := memory.NewUserRepository(db)
	ballot := NewBallotService(polls, Options{})
	return &testEnv{
		db:      db,
		polls:   polls,
		users:   users,
		ballot:  ballot,
		service: NewPollService(polls, users, ballot, Options{}),
	}
}

func (e *testEnv) createUser(t *testing.T) *domain.User {
	t.Helper()
	id := uuid.New()
	user := &domain.User{ID: id, Username: "user", Email: fmt.Sprintf("%s@example.com", id)}
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

func (e *testEnv) createPoll(t *testing.T, owner uuid.UUID, title string, names ...string) *domain.Poll {
	t.Helper()
	if len(names) == 0 {
		names = []string{"Alice", "Bob"}
	}
	candidates := make([]ports.CandidateInput, 0, len(names))
	for _, n := range names {
		candidates = append(candidates, ports.CandidateInput{FullName: n})
	}
	poll, err := e.service.Create(context.Background(), ports.CreatePollInput{
		OwnerID:    owner,
		Title:      title,
		Image:      "/public/" + title + ".png",
		Candidates: candidates,
	})
	require.NoError(t, err)
	return poll
}

// slowPollRepository blocks every call until its context is done.
type slowPollRepository struct {
	ports.PollRepository
}

func (slowPollRepository) CastVote(ctx context.Context, _, _ uuid.UUID, _ string) (ports.VoteResult, error) {
	<-ctx.Done()
	return ports.VoteResult{}, ctx.Err()
}

func (slowPollRepository) GetAll(ctx context.Context) ([]*domain.Poll, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type countingRecorder struct {
	votes map[string]int
}

func (r *countingRecorder) VoteCast(outcome string) {
	if r.votes == nil {
		r.votes = map[string]int{}
	}
	r.votes[outcome]++
}
func (r *countingRecorder) PollCreated()  {}
func (r *countingRecorder) PollDeleted()  {}
func (r *countingRecorder) SignedUp()     {}
func (r *countingRecorder) SignedIn(bool) {}

var shortTimeout = Options{StoreTimeout: 20 * time.Millisecond}
