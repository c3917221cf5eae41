package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/organs/internal/core/domain"
	"go.mongodb.org/mongo-driver/mongo"
)

func mapMongoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case mongo.IsDuplicateKeyError(err):
		return domain.ErrEmailTaken
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	default:
		return err
	}
}
