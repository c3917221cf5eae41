package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/organs/internal/core/domain"
	"github.com/vncsmyrnk/organs/internal/core/ports"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) ports.UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, `WHERE email = $1`, email)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getUser(ctx, `WHERE id = $1`, id)
}

func (r *userRepository) getUser(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `SELECT id, username, email, password_hash, profile_img, created_at FROM users ` + where

	var user domain.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.ProfileImage, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapPostgresError(fmt.Errorf("failed to get user: %w", err))
	}

	organs, err := r.ownedPollIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Organs = organs
	return &user, nil
}

// ownedPollIDs derives the owned-poll set from polls.owner_id.
func (r *userRepository) ownedPollIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM polls WHERE owner_id = $1 ORDER BY seq`, userID)
	if err != nil {
		return nil, mapPostgresError(fmt.Errorf("failed to get owned polls: %w", err))
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, mapPostgresError(err)
		}
		ids = append(ids, id)
	}
	return ids, mapPostgresError(rows.Err())
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, profile_img, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.ProfileImage, user.CreatedAt)
	if err != nil {
		return mapPostgresError(err)
	}
	return nil
}
