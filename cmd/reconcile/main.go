package main

import (
	"context"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/vncsmyrnk/organs/internal/adapters/repository"
	"github.com/vncsmyrnk/organs/internal/config"
	"github.com/vncsmyrnk/organs/internal/core/services"
	"github.com/vncsmyrnk/organs/internal/logger"
)

var cli struct {
	Debug   bool          `help:"Enable debug logging."`
	Timeout time.Duration `help:"overall job timeout" default:"5m"`

	Store config.Store `embed:""`
}

func main() {
	_ = godotenv.Load()

	kctx := kong.Parse(&cli,
		kong.Name("organs-reconcile"),
		kong.Description("Repair owned-poll lists so they match the stored polls"),
	)
	kctx.FatalIfErrorf(run())
}

func run() error {
	log.Logger = logger.Setup(cli.Debug)

	// Bound the whole job so a stuck store cannot hang it.
	ctx, cancel := context.WithTimeout(context.Background(), cli.Timeout)
	defer cancel()
	ctx = log.Logger.WithContext(ctx)

	stores, closeStores, err := repository.Open(ctx, cli.Store)
	if err != nil {
		return err
	}
	defer closeStores()

	reconciler := services.NewReconcileService(stores.Ownership, services.Options{StoreTimeout: cli.Store.Timeout})

	log.Info().Str("store", cli.Store.Type).Msg("starting ownership reconciliation")
	repaired, err := reconciler.ReconcileAll(ctx)
	if err != nil {
		return err
	}

	log.Info().Int("repaired", repaired).Msg("ownership reconciliation completed")
	return nil
}
