package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/organs/internal/core/domain"
)

type VoteInput struct {
	PollID    uuid.UUID
	VoterID   uuid.UUID
	Candidate string
}

type BallotService interface {
	CastVote(ctx context.Context, input VoteInput) (*domain.Poll, error)
}
