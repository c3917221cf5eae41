package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	pollsCollection = "organs"
	usersCollection = "users"

	DefaultDatabase = "organs"
)

type Config struct {
	URI      string
	Database string

	ConnectAttempts uint
}

func (c *Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("mongo uri is required")
	}
	return nil
}

func (c *Config) ApplyDefaults() {
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.ConnectAttempts == 0 {
		c.ConnectAttempts = 5
	}
}

// Connect opens a client, waits for the primary and ensures indexes.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	cfg.ApplyDefaults()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			log.Warn().Err(err).Msg("mongo not ready")
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(cfg.ConnectAttempts))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	if err := EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, db, nil
}

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}

	_, err = db.Collection(pollsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create organs user index: %w", err)
	}
	return nil
}

// retry runs a compensating or follow-up write with exponential backoff.
func retry[T any](ctx context.Context, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	return backoff.Retry(ctx, op, backoff.WithBackOff(b), backoff.WithMaxTries(5))
}
