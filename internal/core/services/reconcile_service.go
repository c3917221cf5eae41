package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vncsmyrnk/organs/internal/core/ports"
)

type reconcileService struct {
	repo ports.OwnershipRepository
	opts Options
}

func NewReconcileService(repo ports.OwnershipRepository, opts Options) ports.ReconcileService {
	return &reconcileService{
		repo: repo,
		opts: opts.withDefaults(),
	}
}

// ReconcileAll repairs every owner's owned-poll list concurrently and returns
// the total number of repairs. Failures for one owner do not stop the others.
func (s *reconcileService) ReconcileAll(ctx context.Context) (int, error) {
	owners, err := withStore(ctx, s.opts.StoreTimeout, s.repo.ListOwnerIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to list owners: %w", err)
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
		errs  []error
	)

	for _, owner := range owners {
		wg.Add(1)
		go func(ownerID uuid.UUID) {
			defer wg.Done()
			n, err := withStore(ctx, s.opts.StoreTimeout, func(ctx context.Context) (int, error) {
				return s.repo.ReconcileOwner(ctx, ownerID)
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to reconcile owner %s: %w", ownerID, err))
				return
			}
			total += n
		}(owner)
	}

	wg.Wait()

	zerolog.Ctx(ctx).Info().
		Int("owners", len(owners)).
		Int("repairs", total).
		Int("failures", len(errs)).
		Msg("ownership reconciled")

	return total, errors.Join(errs...)
}
