package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/organs/internal/core/domain"
)

// VoteOutcome is the tagged result of the store's conditional vote update.
type VoteOutcome int

const (
	VoteApplied VoteOutcome = iota
	VoteAlreadyCast
	VoteUnknownCandidate
)

func (o VoteOutcome) String() string {
	switch o {
	case VoteApplied:
		return "applied"
	case VoteAlreadyCast:
		return "already_voted"
	case VoteUnknownCandidate:
		return "unknown_candidate"
	default:
		return "unknown"
	}
}

// VoteResult carries the refreshed poll when Outcome is VoteApplied.
type VoteResult struct {
	Outcome VoteOutcome
	Poll    *domain.Poll
}

type PollRepository interface {
	// Create inserts the poll and attaches it to the owner's owned-poll set
	// as one logical operation.
	Create(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error)
	// GetAll returns every poll in store iteration (insertion) order.
	GetAll(ctx context.Context) ([]*domain.Poll, error)
	// ListByOwner resolves the owner's owned-poll set, skipping ids that no
	// longer resolve.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Poll, error)
	Update(ctx context.Context, id uuid.UUID, changes domain.PollChanges) (*domain.Poll, error)
	// Delete removes the poll owned by ownerID and detaches it from the
	// owner's owned-poll set.
	Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error
	// CastVote atomically records voterID in the voted set and increments
	// the named candidate, iff voterID has not voted yet and the candidate
	// exists. Nothing is written for any other outcome.
	CastVote(ctx context.Context, pollID, voterID uuid.UUID, candidate string) (VoteResult, error)
}

type CandidateInput struct {
	FullName    string `json:"fullname"`
	Description string `json:"description"`
}

type CreatePollInput struct {
	OwnerID    uuid.UUID
	Title      string
	Image      string
	Candidates []CandidateInput
}

type UpdatePollInput struct {
	PollID     uuid.UUID
	Title      *string
	Image      *string
	Candidates []CandidateInput
}

type PollService interface {
	Create(ctx context.Context, input CreatePollInput) (*domain.Poll, error)
	Update(ctx context.Context, input UpdatePollInput) (*domain.Poll, error)
	Delete(ctx context.Context, pollID, requester uuid.UUID) (*domain.Poll, error)
	ListDistinctNames(ctx context.Context) ([]domain.PollSummary, error)
	ListOwnedBy(ctx context.Context, ownerID uuid.UUID) ([]*domain.Poll, error)
	GetPoll(ctx context.Context, id uuid.UUID) (*domain.Poll, error)
	ListAll(ctx context.Context) ([]*domain.Poll, error)
	Results(ctx context.Context, id uuid.UUID) (*domain.PollResults, error)
	Vote(ctx context.Context, input VoteInput) (*domain.Poll, error)
}
