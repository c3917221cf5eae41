package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/organs/internal/core/domain"
	"github.com/vncsmyrnk/organs/internal/core/ports"
)

type PollRepository struct {
	db *DB
}

func NewPollRepository(db *DB) *PollRepository {
	return &PollRepository{db: db}
}

var _ ports.PollRepository = (*PollRepository)(nil)

func (r *PollRepository) Create(ctx context.Context, poll *domain.Poll) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	owner, ok := r.db.users[poll.Owner.ID]
	if !ok {
		return domain.ErrUserNotFound
	}

	r.db.polls[poll.ID] = clonePoll(poll)
	r.db.order = append(r.db.order, poll.ID)
	owner.Organs = append(owner.Organs, poll.ID)
	return nil
}

func (r *PollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	poll, ok := r.db.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return clonePoll(poll), nil
}

func (r *PollRepository) GetAll(ctx context.Context) ([]*domain.Poll, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	polls := make([]*domain.Poll, 0, len(r.db.order))
	for _, id := range r.db.order {
		polls = append(polls, clonePoll(r.db.polls[id]))
	}
	return polls, nil
}

func (r *PollRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Poll, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	owner, ok := r.db.users[ownerID]
	if !ok {
		return []*domain.Poll{}, nil
	}

	polls := make([]*domain.Poll, 0, len(owner.Organs))
	for _, id := range owner.Organs {
		poll, ok := r.db.polls[id]
		if !ok || poll.Owner.ID != ownerID {
			continue
		}
		polls = append(polls, clonePoll(poll))
	}
	return polls, nil
}

func (r *PollRepository) Update(ctx context.Context, id uuid.UUID, changes domain.PollChanges) (*domain.Poll, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	poll, ok := r.db.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	poll.Apply(changes, time.Now())
	return clonePoll(poll), nil
}

func (r *PollRepository) Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	poll, ok := r.db.polls[id]
	if !ok {
		return domain.ErrPollNotFound
	}
	if poll.Owner.ID != ownerID {
		return domain.ErrForbidden
	}

	delete(r.db.polls, id)
	r.db.order = slices.DeleteFunc(r.db.order, func(v uuid.UUID) bool { return v == id })
	if owner, ok := r.db.users[ownerID]; ok {
		owner.Organs = slices.DeleteFunc(owner.Organs, func(v uuid.UUID) bool { return v == id })
	}
	return nil
}

// CastVote checks the voted set and increments the tally inside one critical
// section.
func (r *PollRepository) CastVote(ctx context.Context, pollID, voterID uuid.UUID, candidate string) (ports.VoteResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.VoteResult{}, err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	poll, ok := r.db.polls[pollID]
	if !ok {
		return ports.VoteResult{}, domain.ErrPollNotFound
	}
	if poll.HasVoted(voterID) {
		return ports.VoteResult{Outcome: ports.VoteAlreadyCast}, nil
	}
	idx := poll.CandidateIndex(candidate)
	if idx < 0 {
		return ports.VoteResult{Outcome: ports.VoteUnknownCandidate}, nil
	}

	poll.Voted = append(poll.Voted, voterID)
	poll.Candidates[idx].Votes++
	poll.UpdatedAt = time.Now()

	return ports.VoteResult{Outcome: ports.VoteApplied, Poll: clonePoll(poll)}, nil
}
