package memory

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/organs/internal/core/domain"
)

// DB is an in-process store shared by the memory repositories. It keeps
// owned-poll lists on users the same way the document store does.
// Data is lost on restart.
type DB struct {
	mu sync.RWMutex

	polls  map[uuid.UUID]*domain.Poll
	order  []uuid.UUID // insertion order of polls
	users  map[uuid.UUID]*domain.User
	emails map[string]uuid.UUID // email -> user id
}

func New() *DB {
	return &DB{
		polls:  make(map[uuid.UUID]*domain.Poll),
		users:  make(map[uuid.UUID]*domain.User),
		emails: make(map[string]uuid.UUID),
	}
}

func clonePoll(p *domain.Poll) *domain.Poll {
	c := *p
	c.Candidates = slices.Clone(p.Candidates)
	c.Voted = slices.Clone(p.Voted)
	if c.Voted == nil {
		c.Voted = []uuid.UUID{}
	}
	return &c
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Organs = slices.Clone(u.Organs)
	if c.Organs == nil {
		c.Organs = []uuid.UUID{}
	}
	return &c
}
