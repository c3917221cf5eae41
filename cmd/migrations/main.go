package main

import (
	"context"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/vncsmyrnk/organs/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/organs/internal/config"
	"github.com/vncsmyrnk/organs/internal/logger"
)

var cli struct {
	Debug    bool                 `help:"Enable debug logging."`
	Timeout  time.Duration        `help:"overall migration timeout" default:"2m"`
	Postgres config.PostgresFlags `embed:"" prefix:"postgres-"`
}

func main() {
	_ = godotenv.Load()

	kctx := kong.Parse(&cli,
		kong.Name("organs-migrations"),
		kong.Description("Apply the embedded PostgreSQL migrations"),
	)
	kctx.FatalIfErrorf(run())
}

func run() error {
	log.Logger = logger.Setup(cli.Debug)

	if err := cli.Postgres.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cli.Timeout)
	defer cancel()

	db, err := postgres.Open(ctx, postgres.Config{
		ConnString:      cli.Postgres.ConnString,
		MaxOpenConns:    cli.Postgres.MaxConns,
		MaxIdleConns:    cli.Postgres.MaxIdleConns,
		ConnMaxLifetime: cli.Postgres.MaxConnLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.RunMigrations(ctx, db); err != nil {
		return err
	}

	log.Info().Msg("migrations applied")
	return nil
}
