package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vncsmyrnk/organs/internal/core/domain"
	"github.com/vncsmyrnk/organs/internal/core/ports"
)

type ballotService struct {
	repo ports.PollRepository
	opts Options
}

func NewBallotService(repo ports.PollRepository, opts Options) ports.BallotService {
	return &ballotService{
		repo: repo,
		opts: opts.withDefaults(),
	}
}

// CastVote records one vote per identity per poll. The check on the voted set
// and the tally increment happen in a single conditional store update.
func (s *ballotService) CastVote(ctx context.Context, input ports.VoteInput) (*domain.Poll, error) {
	candidate := strings.TrimSpace(input.Candidate)
	if candidate == "" {
		return nil, domain.ErrNoVoteProvided
	}
	if input.VoterID == uuid.Nil {
		return nil, domain.ErrMissingToken
	}

	result, err := withStore(ctx, s.opts.StoreTimeout, func(ctx context.Context) (ports.VoteResult, error) {
		return s.repo.CastVote(ctx, input.PollID, input.VoterID, candidate)
	})
	if err != nil {
		s.opts.Recorder.VoteCast("error")
		return nil, fmt.Errorf("cast vote: %w", err)
	}
	s.opts.Recorder.VoteCast(result.Outcome.String())

	switch result.Outcome {
	case ports.VoteApplied:
		zerolog.Ctx(ctx).Debug().
			Stringer("poll_id", input.PollID).
			Stringer("voter_id", input.VoterID).
			Msg("vote recorded")
		return result.Poll, nil
	case ports.VoteAlreadyCast:
		return nil, domain.ErrAlreadyVoted
	case ports.VoteUnknownCandidate:
		return nil, domain.ErrUnknownCandidate
	default:
		return nil, fmt.Errorf("cast vote: unexpected outcome %d", result.Outcome)
	}
}
