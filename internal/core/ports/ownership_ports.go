package ports

import (
	"context"

	"github.com/google/uuid"
)

// OwnershipRepository repairs owned-poll sets kept as a separate list.
// Stores that derive ownership from the poll itself report no owners.
type OwnershipRepository interface {
	ListOwnerIDs(ctx context.Context) ([]uuid.UUID, error)
	// ReconcileOwner drops dangling ids from the owner's list, appends owned
	// polls missing from it and returns the number of repairs.
	ReconcileOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
}

type ReconcileService interface {
	ReconcileAll(ctx context.Context) (int, error)
}
