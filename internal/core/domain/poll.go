package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Poll struct {
	ID         uuid.UUID   `json:"_id"`
	Owner      OwnerRef    `json:"user"`
	Title      string      `json:"orgname"`
	Image      string      `json:"organImg"`
	Candidates []Candidate `json:"candidates"`
	Voted      []uuid.UUID `json:"voted"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

type Candidate struct {
	ID          uuid.UUID `json:"_id"`
	FullName    string    `json:"fullname"`
	Description string    `json:"description"`
	Image       string    `json:"canImg"`
	Votes       int64     `json:"votes"`
}

// OwnerRef points at the identity that created a poll. Email is only set
// when the owner has been resolved; an unresolved ref encodes as the bare id.
type OwnerRef struct {
	ID    uuid.UUID
	Email string
}

type ownerProjection struct {
	ID    uuid.UUID `json:"_id"`
	Email string    `json:"email"`
}

func (o OwnerRef) MarshalJSON() ([]byte, error) {
	if o.Email == "" {
		return json.Marshal(o.ID)
	}
	return json.Marshal(ownerProjection{ID: o.ID, Email: o.Email})
}

func (o *OwnerRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		*o = OwnerRef{}
		return json.Unmarshal(data, &o.ID)
	}
	var p ownerProjection
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = OwnerRef{ID: p.ID, Email: p.Email}
	return nil
}

// PollSummary is the listing projection returned for distinct poll names.
type PollSummary struct {
	ID    uuid.UUID `json:"_id"`
	Title string    `json:"orgname"`
	Image string    `json:"organImg"`
}

// PollChanges describes an owner edit. Nil fields are left untouched and a
// nil Candidates slice keeps the current list.
type PollChanges struct {
	Title      *string
	Image      *string
	Candidates []Candidate
}

// NewPoll builds a poll with an empty voted set and zeroed tallies.
func NewPoll(owner uuid.UUID, title, image string, candidates []Candidate, now time.Time) *Poll {
	poll := &Poll{
		ID:         uuid.New(),
		Owner:      OwnerRef{ID: owner},
		Title:      title,
		Image:      image,
		Candidates: make([]Candidate, 0, len(candidates)),
		Voted:      []uuid.UUID{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, c := range candidates {
		c.ID = uuid.New()
		c.Votes = 0
		if c.Image == "" {
			c.Image = image
		}
		poll.Candidates = append(poll.Candidates, c)
	}
	return poll
}

// ValidateCandidates trims names and rejects empty or repeated full names,
// so that a vote key always designates a single candidate.
func ValidateCandidates(candidates []Candidate) ([]Candidate, error) {
	if len(candidates) == 0 {
		return nil, ErrCandidatesRequired
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		c.FullName = strings.TrimSpace(c.FullName)
		if c.FullName == "" {
			return nil, ErrCandidateNameRequired
		}
		if _, dup := seen[c.FullName]; dup {
			return nil, ErrDuplicateCandidate
		}
		seen[c.FullName] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

func (p *Poll) HasVoted(voter uuid.UUID) bool {
	for _, id := range p.Voted {
		if id == voter {
			return true
		}
	}
	return false
}

// CandidateIndex returns the position of the candidate with the given full
// name, or -1.
func (p *Poll) CandidateIndex(fullName string) int {
	for i, c := range p.Candidates {
		if c.FullName == fullName {
			return i
		}
	}
	return -1
}

// Apply replaces the edited fields. Replacement candidates whose full name
// matches a current candidate inherit its id and tally; tallies never go
// back to zero through an edit.
func (p *Poll) Apply(changes PollChanges, now time.Time) {
	if changes.Title != nil {
		p.Title = *changes.Title
	}
	if changes.Image != nil {
		p.Image = *changes.Image
	}
	if changes.Candidates != nil {
		current := make(map[string]Candidate, len(p.Candidates))
		for _, c := range p.Candidates {
			current[c.FullName] = c
		}

		next := make([]Candidate, 0, len(changes.Candidates))
		for _, c := range changes.Candidates {
			if prev, ok := current[c.FullName]; ok {
				c.ID = prev.ID
				c.Votes = prev.Votes
			} else {
				c.ID = uuid.New()
				c.Votes = 0
			}
			if c.Image == "" {
				c.Image = p.Image
			}
			next = append(next, c)
		}
		p.Candidates = next
	}
	p.UpdatedAt = now
}

func (p *Poll) Summary() PollSummary {
	return PollSummary{ID: p.ID, Title: p.Title, Image: p.Image}
}

// DistinctByTitle keeps the first poll seen for every title, preserving
// input order.
func DistinctByTitle(polls []*Poll) []PollSummary {
	seen := make(map[string]struct{}, len(polls))
	out := make([]PollSummary, 0, len(polls))
	for _, p := range polls {
		if _, dup := seen[p.Title]; dup {
			continue
		}
		seen[p.Title] = struct{}{}
		out = append(out, p.Summary())
	}
	return out
}
