package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/organs/internal/core/ports"
)

type OwnershipRepository struct {
	db *DB
}

func NewOwnershipRepository(db *DB) *OwnershipRepository {
	return &OwnershipRepository{db: db}
}

var _ ports.OwnershipRepository = (*OwnershipRepository)(nil)

func (r *OwnershipRepository) ListOwnerIDs(ctx context.Context) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(r.db.users))
	for id := range r.db.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *OwnershipRepository) ReconcileOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	owner, ok := r.db.users[ownerID]
	if !ok {
		return 0, nil
	}

	before := len(owner.Organs)
	owner.Organs = slices.DeleteFunc(owner.Organs, func(id uuid.UUID) bool {
		poll, ok := r.db.polls[id]
		return !ok || poll.Owner.ID != ownerID
	})
	repairs := before - len(owner.Organs)

	for _, id := range r.db.order {
		if r.db.polls[id].Owner.ID == ownerID && !slices.Contains(owner.Organs, id) {
			owner.Organs = append(owner.Organs, id)
			repairs++
		}
	}
	return repairs, nil
}
