package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/vncsmyrnk/organs/internal/core/domain"
	"github.com/vncsmyrnk/organs/internal/core/ports"
)

const selectPoll = `SELECT id, owner_id, title, image, created_at, updated_at FROM polls`

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

// Create writes the poll and its candidates in one transaction. Ownership is
// derived from polls.owner_id, so there is no second record to keep in sync.
func (r *pollRepository) Create(ctx context.Context, poll *domain.Poll) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapPostgresError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO polls (id, owner_id, title, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, poll.ID, poll.Owner.ID, poll.Title, poll.Image, poll.CreatedAt, poll.UpdatedAt)
	if err != nil {
		return mapPostgresError(err)
	}

	if err := insertCandidates(ctx, tx, poll.ID, poll.Candidates, 0); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapPostgresError(fmt.Errorf("failed to commit transaction: %w", err))
	}

	log.Ctx(ctx).Debug().Str("poll_id", poll.ID.String()).Msg("poll inserted")
	return nil
}

func insertCandidates(ctx context.Context, tx *sql.Tx, pollID uuid.UUID, candidates []domain.Candidate, offset int) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO candidates (id, poll_id, position, fullname, description, image, votes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return mapPostgresError(fmt.Errorf("failed to prepare candidate statement: %w", err))
	}
	defer stmt.Close()

	for i, c := range candidates {
		_, err = stmt.ExecContext(ctx, c.ID, pollID, offset+i, c.FullName, c.Description, c.Image, c.Votes)
		if err != nil {
			return mapPostgresError(err)
		}
	}
	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	return getPoll(ctx, r.db, id, false)
}

func getPoll(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*domain.Poll, error) {
	query := selectPoll + ` WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var poll domain.Poll
	err := q.QueryRowContext(ctx, query, id).Scan(
		&poll.ID, &poll.Owner.ID, &poll.Title, &poll.Image, &poll.CreatedAt, &poll.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, mapPostgresError(fmt.Errorf("failed to get poll: %w", err))
	}

	if err := loadChildren(ctx, q, []*domain.Poll{&poll}); err != nil {
		return nil, err
	}
	return &poll, nil
}

func (r *pollRepository) GetAll(ctx context.Context) ([]*domain.Poll, error) {
	rows, err := r.db.QueryContext(ctx, selectPoll+` ORDER BY seq`)
	if err != nil {
		return nil, mapPostgresError(fmt.Errorf("failed to get all polls: %w", err))
	}
	defer rows.Close()

	return r.scanPolls(ctx, rows)
}

func (r *pollRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Poll, error) {
	rows, err := r.db.QueryContext(ctx, selectPoll+` WHERE owner_id = $1 ORDER BY seq`, ownerID)
	if err != nil {
		return nil, mapPostgresError(fmt.Errorf("failed to list polls by owner: %w", err))
	}
	defer rows.Close()

	return r.scanPolls(ctx, rows)
}

func (r *pollRepository) scanPolls(ctx context.Context, rows *sql.Rows) ([]*domain.Poll, error) {
	polls := []*domain.Poll{}
	for rows.Next() {
		var poll domain.Poll
		if err := rows.Scan(&poll.ID, &poll.Owner.ID, &poll.Title, &poll.Image, &poll.CreatedAt, &poll.UpdatedAt); err != nil {
			return nil, mapPostgresError(fmt.Errorf("failed to scan poll: %w", err))
		}
		polls = append(polls, &poll)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(err)
	}
	rows.Close()

	if err := loadChildren(ctx, r.db, polls); err != nil {
		return nil, err
	}
	return polls, nil
}

// loadChildren fills candidates (by position) and voters (by vote time) for
// the given polls with one query each.
func loadChildren(ctx context.Context, q querier, polls []*domain.Poll) error {
	if len(polls) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Poll, len(polls))
	ids := make([]string, 0, len(polls))
	for _, p := range polls {
		p.Candidates = []domain.Candidate{}
		p.Voted = []uuid.UUID{}
		byID[p.ID] = p
		ids = append(ids, p.ID.String())
	}

	rows, err := q.QueryContext(ctx, `
		SELECT poll_id, id, fullname, description, image, votes
		FROM candidates
		WHERE poll_id = ANY($1::uuid[])
		ORDER BY poll_id, position
	`, pq.Array(ids))
	if err != nil {
		return mapPostgresError(fmt.Errorf("failed to get candidates: %w", err))
	}
	for rows.Next() {
		var pollID uuid.UUID
		var c domain.Candidate
		if err := rows.Scan(&pollID, &c.ID, &c.FullName, &c.Description, &c.Image, &c.Votes); err != nil {
			rows.Close()
			return mapPostgresError(fmt.Errorf("failed to scan candidate: %w", err))
		}
		byID[pollID].Candidates = append(byID[pollID].Candidates, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return mapPostgresError(err)
	}

	rows, err = q.QueryContext(ctx, `
		SELECT poll_id, user_id
		FROM poll_voters
		WHERE poll_id = ANY($1::uuid[])
		ORDER BY poll_id, voted_at, user_id
	`, pq.Array(ids))
	if err != nil {
		return mapPostgresError(fmt.Errorf("failed to get voters: %w", err))
	}
	defer rows.Close()
	for rows.Next() {
		var pollID, userID uuid.UUID
		if err := rows.Scan(&pollID, &userID); err != nil {
			return mapPostgresError(fmt.Errorf("failed to scan voter: %w", err))
		}
		byID[pollID].Voted = append(byID[pollID].Voted, userID)
	}
	return mapPostgresError(rows.Err())
}

// Update locks the poll row, applies the changes in memory and writes back
// the difference. Kept candidates are updated in place so their tallies and
// ids survive.
func (r *pollRepository) Update(ctx context.Context, id uuid.UUID, changes domain.PollChanges) (*domain.Poll, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapPostgresError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	poll, err := getPoll(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	poll.Apply(changes, time.Now())

	_, err = tx.ExecContext(ctx, `UPDATE polls SET title = $2, image = $3, updated_at = $4 WHERE id = $1`,
		poll.ID, poll.Title, poll.Image, poll.UpdatedAt)
	if err != nil {
		return nil, mapPostgresError(fmt.Errorf("failed to update poll: %w", err))
	}

	if changes.Candidates != nil {
		keep := make([]string, 0, len(poll.Candidates))
		for _, c := range poll.Candidates {
			keep = append(keep, c.ID.String())
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM candidates WHERE poll_id = $1 AND NOT (id = ANY($2::uuid[]))`, poll.ID, pq.Array(keep))
		if err != nil {
			return nil, mapPostgresError(fmt.Errorf("failed to remove candidates: %w", err))
		}

		for i, c := range poll.Candidates {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO candidates (id, poll_id, position, fullname, description, image, votes)
				VALUES ($1, $2, $3, $4, $5, $6, 0)
				ON CONFLICT (id) DO UPDATE
				SET position = EXCLUDED.position, description = EXCLUDED.description, image = EXCLUDED.image
			`, c.ID, poll.ID, i, c.FullName, c.Description, c.Image)
			if err != nil {
				return nil, mapPostgresError(fmt.Errorf("failed to upsert candidate: %w", err))
			}
		}
	}

	updated, err := getPoll(ctx, tx, id, false)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, mapPostgresError(fmt.Errorf("failed to commit transaction: %w", err))
	}

	log.Ctx(ctx).Debug().Str("poll_id", id.String()).Msg("poll updated")
	return updated, nil
}

func (r *pollRepository) Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return mapPostgresError(fmt.Errorf("failed to delete poll: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapPostgresError(err)
	}
	if n == 1 {
		log.Ctx(ctx).Debug().Str("poll_id", id.String()).Msg("poll deleted")
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM polls WHERE id = $1)`, id).Scan(&exists); err != nil {
		return mapPostgresError(err)
	}
	if exists {
		return domain.ErrForbidden
	}
	return domain.ErrPollNotFound
}

// CastVote claims the (poll, voter) row first. A concurrent claim for the same
// pair blocks on the primary key until this transaction ends, then inserts
// nothing. The transaction is rolled back for every outcome except Applied.
func (r *pollRepository) CastVote(ctx context.Context, pollID, voterID uuid.UUID, candidate string) (ports.VoteResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ports.VoteResult{}, mapPostgresError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE polls SET updated_at = NOW() WHERE id = $1`, pollID)
	if err != nil {
		return ports.VoteResult{}, mapPostgresError(fmt.Errorf("failed to touch poll: %w", err))
	}
	if n, err := res.RowsAffected(); err != nil {
		return ports.VoteResult{}, mapPostgresError(err)
	} else if n == 0 {
		return ports.VoteResult{}, domain.ErrPollNotFound
	}

	res, err = tx.ExecContext(ctx, `
		INSERT INTO poll_voters (poll_id, user_id) VALUES ($1, $2)
		ON CONFLICT (poll_id, user_id) DO NOTHING
	`, pollID, voterID)
	if err != nil {
		return ports.VoteResult{}, mapPostgresError(fmt.Errorf("failed to record voter: %w", err))
	}
	if n, err := res.RowsAffected(); err != nil {
		return ports.VoteResult{}, mapPostgresError(err)
	} else if n == 0 {
		return ports.VoteResult{Outcome: ports.VoteAlreadyCast}, nil
	}

	res, err = tx.ExecContext(ctx, `UPDATE candidates SET votes = votes + 1 WHERE poll_id = $1 AND fullname = $2`, pollID, candidate)
	if err != nil {
		return ports.VoteResult{}, mapPostgresError(fmt.Errorf("failed to increment tally: %w", err))
	}
	if n, err := res.RowsAffected(); err != nil {
		return ports.VoteResult{}, mapPostgresError(err)
	} else if n == 0 {
		return ports.VoteResult{Outcome: ports.VoteUnknownCandidate}, nil
	}

	poll, err := getPoll(ctx, tx, pollID, false)
	if err != nil {
		return ports.VoteResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return ports.VoteResult{}, mapPostgresError(fmt.Errorf("failed to commit transaction: %w", err))
	}

	return ports.VoteResult{Outcome: ports.VoteApplied, Poll: poll}, nil
}
