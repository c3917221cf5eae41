// Package config holds the command line and environment configuration shared
// by the organs commands. Values are parsed once in main and passed down.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

type Store struct {
	Type    string        `name:"store" help:"store type (memory, postgres or mongo)" default:"memory" env:"ORGANS_STORE_TYPE" enum:"memory,postgres,mongo"`
	Timeout time.Duration `name:"store-timeout" help:"timeout applied to every store call" default:"5s" env:"ORGANS_STORE_TIMEOUT"`

	Postgres PostgresFlags `embed:"" prefix:"postgres-"`
	Mongo    MongoFlags    `embed:"" prefix:"mongo-"`
}

func (s *Store) Validate() error {
	if s.Timeout <= 0 {
		return errors.New("store timeout must be positive (--store-timeout or ORGANS_STORE_TIMEOUT)")
	}
	switch s.Type {
	case StorePostgres:
		return s.Postgres.Validate()
	case StoreMongo:
		return s.Mongo.Validate()
	case StoreMemory:
		return nil
	default:
		return fmt.Errorf("unknown store type %q", s.Type)
	}
}

type PostgresFlags struct {
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	MaxConns        int           `help:"maximum number of open connections" default:"20"`
	MaxIdleConns    int           `help:"maximum number of idle connections" default:"5"`
	MaxConnLifetime time.Duration `help:"maximum connection lifetime" default:"1h"`

	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"ORGANS_POSTGRES_AUTO_MIGRATE"`
}

func (p *PostgresFlags) Validate() error {
	if p.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

type MongoFlags struct {
	URI      string `help:"MongoDB connection URI" env:"MONGO_URI"`
	Database string `help:"MongoDB database name" default:"organs" env:"MONGO_DATABASE"`
}

func (m *MongoFlags) Validate() error {
	if m.URI == "" {
		return errors.New("MongoDB URI is required (--mongo-uri or MONGO_URI)")
	}
	return nil
}

type Auth struct {
	JWTSecret string        `help:"secret used to sign session tokens" env:"JWT_SECRET"`
	TokenTTL  time.Duration `help:"session token lifetime" default:"1h" env:"ORGANS_TOKEN_TTL"`
}

func (a *Auth) Validate() error {
	if a.JWTSecret == "" {
		return errors.New("token signing secret is required (--jwt-secret or JWT_SECRET)")
	}
	if len(a.JWTSecret) < 16 {
		return errors.New("token signing secret must be at least 16 bytes")
	}
	if a.TokenTTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	return nil
}

type HTTP struct {
	Listen         string   `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"ORGANS_LISTEN"`
	PublicBaseURL  string   `help:"base URL used for uploaded image links, derived from the request when empty" env:"ORGANS_PUBLIC_BASE_URL"`
	UploadDir      string   `help:"directory where uploaded images are stored" default:"public" env:"ORGANS_UPLOAD_DIR"`
	CORSOrigins    []string `help:"allowed CORS origins" env:"ORGANS_CORS_ORIGINS"`
	MaxUploadBytes int64    `help:"maximum multipart request size in bytes" default:"10485760" env:"ORGANS_MAX_UPLOAD_BYTES"`
}

func (h *HTTP) Validate() error {
	if h.Listen == "" {
		return errors.New("listen address is required")
	}
	if h.UploadDir == "" {
		return errors.New("upload directory is required")
	}
	if h.MaxUploadBytes <= 0 {
		return errors.New("max upload size must be positive")
	}
	return nil
}
