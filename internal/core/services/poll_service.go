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

type pollService struct {
	repo   ports.PollRepository
	users  ports.UserRepository
	ballot ports.BallotService
	opts   Options
}

func NewPollService(repo ports.PollRepository, users ports.UserRepository, ballot ports.BallotService, opts Options) ports.PollService {
	return &pollService{
		repo:   repo,
		users:  users,
		ballot: ballot,
		opts:   opts.withDefaults(),
	}
}

func toCandidates(in []ports.CandidateInput) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(in))
	for _, c := range in {
		out = append(out, domain.Candidate{FullName: c.FullName, Description: c.Description})
	}
	return out
}

func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput) (*domain.Poll, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}
	candidates, err := domain.ValidateCandidates(toCandidates(input.Candidates))
	if err != nil {
		return nil, err
	}

	poll := domain.NewPoll(input.OwnerID, title, input.Image, candidates, s.opts.Now())

	err = withStoreErr(ctx, s.opts.StoreTimeout, func(ctx context.Context) error {
		return s.repo.Create(ctx, poll)
	})
	if err != nil {
		return nil, fmt.Errorf("create poll: %w", err)
	}

	s.opts.Recorder.PollCreated()
	zerolog.Ctx(ctx).Info().
		Stringer("poll_id", poll.ID).
		Stringer("owner_id", input.OwnerID).
		Int("candidates", len(poll.Candidates)).
		Msg("poll created")

	return poll, nil
}

// Update edits title, image or candidate list. Any authenticated identity may
// edit any poll.
func (s *pollService) Update(ctx context.Context, input ports.UpdatePollInput) (*domain.Poll, error) {
	changes := domain.PollChanges{Image: input.Image}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, domain.ErrTitleRequired
		}
		changes.Title = &title
	}
	if input.Candidates != nil {
		candidates, err := domain.ValidateCandidates(toCandidates(input.Candidates))
		if err != nil {
			return nil, err
		}
		changes.Candidates = candidates
	}

	poll, err := withStore(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*domain.Poll, error) {
		return s.repo.Update(ctx, input.PollID, changes)
	})
	if err != nil {
		return nil, fmt.Errorf("update poll: %w", err)
	}
	return poll, nil
}

// Delete removes a poll owned by requester and returns the removed record.
func (s *pollService) Delete(ctx context.Context, pollID, requester uuid.UUID) (*domain.Poll, error) {
	poll, err := s.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if poll.Owner.ID != requester {
		return nil, domain.ErrForbidden
	}

	err = withStoreErr(ctx, s.opts.StoreTimeout, func(ctx context.Context) error {
		return s.repo.Delete(ctx, pollID, requester)
	})
	if err != nil {
		return nil, fmt.Errorf("delete poll: %w", err)
	}

	s.opts.Recorder.PollDeleted()
	zerolog.Ctx(ctx).Info().Stringer("poll_id", pollID).Msg("poll deleted")
	return poll, nil
}

func (s *pollService) ListDistinctNames(ctx context.Context) ([]domain.PollSummary, error) {
	polls, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return domain.DistinctByTitle(polls), nil
}

func (s *pollService) ListOwnedBy(ctx context.Context, ownerID uuid.UUID) ([]*domain.Poll, error) {
	polls, err := withStore(ctx, s.opts.StoreTimeout, func(ctx context.Context) ([]*domain.Poll, error) {
		return s.repo.ListByOwner(ctx, ownerID)
	})
	if err != nil {
		return nil, fmt.Errorf("list owned polls: %w", err)
	}
	return polls, nil
}

// GetPoll loads a poll with its owner resolved to id and email.
func (s *pollService) GetPoll(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	poll, err := withStore(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*domain.Poll, error) {
		return s.repo.GetByID(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("get poll: %w", err)
	}

	owner, err := withStore(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*domain.User, error) {
		return s.users.GetByID(ctx, poll.Owner.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("get poll owner: %w", err)
	}
	if owner != nil {
		poll.Owner.Email = owner.Email
	}
	return poll, nil
}

func (s *pollService) ListAll(ctx context.Context) ([]*domain.Poll, error) {
	polls, err := withStore(ctx, s.opts.StoreTimeout, func(ctx context.Context) ([]*domain.Poll, error) {
		return s.repo.GetAll(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("list polls: %w", err)
	}
	return polls, nil
}

func (s *pollService) Results(ctx context.Context, id uuid.UUID) (*domain.PollResults, error) {
	poll, err := withStore(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*domain.Poll, error) {
		return s.repo.GetByID(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("poll results: %w", err)
	}
	return domain.TallyResults(poll), nil
}

func (s *pollService) Vote(ctx context.Context, input ports.VoteInput) (*domain.Poll, error) {
	return s.ballot.CastVote(ctx, input)
}
