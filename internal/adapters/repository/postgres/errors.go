package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"github.com/vncsmyrnk/organs/internal/core/domain"
)

// mapPostgresError translates driver errors into domain errors. Unknown
// errors are returned wrapped with the postgres details.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case pgerrcode.UniqueViolation:
		if pqErr.Constraint == "users_email_key" {
			return domain.ErrEmailTaken
		}
		if pqErr.Constraint == "candidates_poll_fullname_key" {
			return domain.ErrDuplicateCandidate
		}
		return fmt.Errorf("unique constraint violation: %s: %w", pqErr.Constraint, err)

	case pgerrcode.ForeignKeyViolation:
		if pqErr.Constraint == "polls_owner_id_fkey" {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("%w: %s", domain.ErrPollNotFound, pqErr.Detail)

	case pgerrcode.QueryCanceled,
		pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure,
		pgerrcode.CannotConnectNow,
		pgerrcode.AdminShutdown,
		pgerrcode.CrashShutdown,
		pgerrcode.TooManyConnections:
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)

	default:
		return fmt.Errorf("postgres error [%s]: %s (detail: %s): %w", pqErr.Code, pqErr.Message, pqErr.Detail, err)
	}
}
