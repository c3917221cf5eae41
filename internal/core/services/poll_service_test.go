package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/organs/internal/core/domain"
	"github.com/vncsmyrnk/organs/internal/core/ports"
)

func TestPollService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("new poll starts empty and is owned", func(t *testing.T) {
		env := newTestEnv()
		owner := env.createUser(t)
		poll := env.createPoll(t, owner.ID, "Election")

		assert.Empty(t, poll.Voted)
		for _, c := range poll.Candidates {
			assert.Zero(t, c.Votes)
			assert.Equal(t, "/public/Election.png", c.Image)
		}

		owned, err := env.service.ListOwnedBy(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, owned, 1)
		assert.Equal(t, poll.ID, owned[0].ID)
	})

	tests := []struct {
		name    string
		input   ports.CreatePollInput
		wantErr error
	}{
		{
			name:    "missing title",
			input:   ports.CreatePollInput{Title: " ", Candidates: []ports.CandidateInput{{FullName: "Alice"}}},
			wantErr: domain.ErrTitleRequired,
		},
		{
			name:    "no candidates",
			input:   ports.CreatePollInput{Title: "Election"},
			wantErr: domain.ErrCandidatesRequired,
		},
		{
			name:    "duplicate candidates",
			input:   ports.CreatePollInput{Title: "Election", Candidates: []ports.CandidateInput{{FullName: "Alice"}, {FullName: "Alice"}}},
			wantErr: domain.ErrDuplicateCandidate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			tt.input.OwnerID = env.createUser(t).ID
			_, err := env.service.Create(ctx, tt.input)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPollService_Update(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	owner := env.createUser(t)
	poll := env.createPoll(t, owner.ID, "Election")

	_, err := env.service.Vote(ctx, ports.VoteInput{PollID: poll.ID, VoterID: uuid.New(), Candidate: "Alice"})
	require.NoError(t, err)

	t.Run("edits by any identity keep surviving tallies", func(t *testing.T) {
		title := "Election 2"
		updated, err := env.service.Update(ctx, ports.UpdatePollInput{
			PollID:     poll.ID,
			Title:      &title,
			Candidates: []ports.CandidateInput{{FullName: "Alice"}, {FullName: "Carol"}},
		})
		require.NoError(t, err)

		assert.Equal(t, "Election 2", updated.Title)
		require.Len(t, updated.Candidates, 2)
		assert.Equal(t, poll.Candidates[0].ID, updated.Candidates[0].ID)
		assert.Equal(t, int64(1), updated.Candidates[0].Votes)
		assert.Zero(t, updated.Candidates[1].Votes)
		assert.Len(t, updated.Voted, 1)
	})

	t.Run("missing poll", func(t *testing.T) {
		_, err := env.service.Update(ctx, ports.UpdatePollInput{PollID: uuid.New()})
		require.ErrorIs(t, err, domain.ErrPollNotFound)
	})

	t.Run("blank title", func(t *testing.T) {
		blank := ""
		_, err := env.service.Update(ctx, ports.UpdatePollInput{PollID: poll.ID, Title: &blank})
		require.ErrorIs(t, err, domain.ErrTitleRequired)
	})
}

func TestPollService_Delete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	owner := env.createUser(t)
	stranger := env.createUser(t)
	poll := env.createPoll(t, owner.ID, "Election")

	_, err := env.service.Delete(ctx, poll.ID, stranger.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	still, err := env.service.GetPoll(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, poll.Title, still.Title)

	deleted, err := env.service.Delete(ctx, poll.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, poll.ID, deleted.ID)

	_, err = env.service.GetPoll(ctx, poll.ID)
	require.ErrorIs(t, err, domain.ErrPollNotFound)

	owned, err := env.service.ListOwnedBy(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, owned)

	_, err = env.service.Delete(ctx, poll.ID, owner.ID)
	require.ErrorIs(t, err, domain.ErrPollNotFound)
}

func TestPollService_ListDistinctNames(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	owner := env.createUser(t)
	first := env.createPoll(t, owner.ID, "Election A")
	env.createPoll(t, owner.ID, "Election A")
	env.createPoll(t, owner.ID, "Election B")

	names, err := env.service.ListDistinctNames(ctx)
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, first.ID, names[0].ID)
	assert.Equal(t, first.Image, names[0].Image)
	assert.Equal(t, "Election B", names[1].Title)
}

func TestPollService_GetPollResolvesOwner(t *testing.T) {
	env := newTestEnv()
	owner := env.createUser(t)
	poll := env.createPoll(t, owner.ID, "Election")

	got, err := env.service.GetPoll(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.Owner.ID)
	assert.Equal(t, owner.Email, got.Owner.Email)
}

func TestPollService_Results(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	owner := env.createUser(t)
	poll := env.createPoll(t, owner.ID, "Election")

	for _, name := range []string{"Alice", "Alice", "Alice", "Bob"} {
		_, err := env.service.Vote(ctx, ports.VoteInput{PollID: poll.ID, VoterID: uuid.New(), Candidate: name})
		require.NoError(t, err)
	}

	results, err := env.service.Results(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), results.TotalVotes)
	assert.InDelta(t, 75.0, results.Candidates[0].Percentage, 0.001)
}

func TestPollService_StoreTimeout(t *testing.T) {
	env := newTestEnv()
	service := NewPollService(slowPollRepository{}, env.users, env.ballot, shortTimeout)

	_, err := service.ListAll(context.Background())
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
