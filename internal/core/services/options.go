package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vncsmyrnk/organs/internal/core/domain"
	"github.com/vncsmyrnk/organs/internal/core/ports"
)

const DefaultStoreTimeout = 5 * time.Second

type Options struct {
	// StoreTimeout bounds every store call made by a service operation.
	StoreTimeout time.Duration
	Recorder     ports.Recorder
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = DefaultStoreTimeout
	}
	if o.Recorder == nil {
		o.Recorder = noopRecorder{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type noopRecorder struct{}

func (noopRecorder) VoteCast(string) {}
func (noopRecorder) PollCreated()    {}
func (noopRecorder) PollDeleted()    {}
func (noopRecorder) SignedUp()       {}
func (noopRecorder) SignedIn(bool)   {}

// withStore runs fn under the store deadline and reports an expired deadline
// as an unavailable store.
func withStore[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := fn(ctx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrStoreUnavailable) {
		var zero T
		return zero, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return out, err
}

func withStoreErr(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	_, err := withStore(ctx, timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
