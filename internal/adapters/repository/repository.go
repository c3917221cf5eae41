// Package repository opens the configured poll and identity stores.
package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/vncsmyrnk/organs/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/organs/internal/adapters/repository/mongodb"
	"github.com/vncsmyrnk/organs/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/organs/internal/config"
	"github.com/vncsmyrnk/organs/internal/core/ports"
)

type Set struct {
	Polls     ports.PollRepository
	Users     ports.UserRepository
	Ownership ports.OwnershipRepository
}

// Open connects to the store selected by cfg. The returned cleanup releases
// the connection and is never nil.
func Open(ctx context.Context, cfg config.Store) (*Set, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, func() {}, err
	}

	switch cfg.Type {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, postgres.Config{
			ConnString:      cfg.Postgres.ConnString,
			MaxOpenConns:    cfg.Postgres.MaxConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.MaxConnLifetime,
		})
		if err != nil {
			return nil, func() {}, err
		}
		if cfg.Postgres.AutoMigrate {
			if err := postgres.RunMigrations(ctx, db); err != nil {
				db.Close()
				return nil, func() {}, err
			}
		}
		log.Info().Msg("using postgres store")
		return &Set{
			Polls:     postgres.NewPollRepository(db),
			Users:     postgres.NewUserRepository(db),
			Ownership: postgres.NewOwnershipRepository(),
		}, func() { db.Close() }, nil

	case config.StoreMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, func() {}, err
		}
		log.Info().Str("database", db.Name()).Msg("using mongo store")
		return &Set{
				Polls:     mongodb.NewPollRepository(db),
				Users:     mongodb.NewUserRepository(db),
				Ownership: mongodb.NewOwnershipRepository(db),
			}, func() {
				if err := client.Disconnect(context.Background()); err != nil {
					log.Warn().Err(err).Msg("failed to disconnect from mongo")
				}
			}, nil

	case config.StoreMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		db := memory.New()
		return &Set{
			Polls:     memory.NewPollRepository(db),
			Users:     memory.NewUserRepository(db),
			Ownership: memory.NewOwnershipRepository(db),
		}, func() {}, nil

	default:
		return nil, func() {}, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}
