package main

import (
	"context"
	"errors"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/vncsmyrnk/organs/internal/adapters/handler/http"
	"github.com/vncsmyrnk/organs/internal/adapters/repository"
	"github.com/vncsmyrnk/organs/internal/adapters/storage/local"
	"github.com/vncsmyrnk/organs/internal/config"
	"github.com/vncsmyrnk/organs/internal/core/services"
	"github.com/vncsmyrnk/organs/internal/logger"
	"github.com/vncsmyrnk/organs/internal/telemetry"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool `help:"Enable debug logging."`
		Version kong.VersionFlag

		Store config.Store `embed:""`
		Auth  config.Auth  `embed:""`
		HTTP  config.HTTP  `embed:""`
	}
)

func main() {
	_ = godotenv.Load()

	kctx := kong.Parse(&cli,
		kong.Name("organs-server"),
		kong.Description("Poll voting API"),
		kong.Vars{"version": version},
	)
	kctx.FatalIfErrorf(run())
}

func run() error {
	log.Logger = logger.Setup(cli.Debug)

	if err := cli.Auth.Validate(); err != nil {
		return err
	}
	if err := cli.HTTP.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, closeStores, err := repository.Open(ctx, cli.Store)
	if err != nil {
		return err
	}
	defer closeStores()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := services.Options{
		StoreTimeout: cli.Store.Timeout,
		Recorder:     telemetry.NewMetrics(reg),
	}

	authService := services.NewAuthService(stores.Users, []byte(cli.Auth.JWTSecret), cli.Auth.TokenTTL, opts)
	ballotService := services.NewBallotService(stores.Polls, opts)
	pollService := services.NewPollService(stores.Polls, stores.Users, ballotService, opts)
	userService := services.NewUserService(stores.Users, opts)

	images, err := local.NewImageStore(cli.HTTP.UploadDir)
	if err != nil {
		return err
	}
	uploader := http.NewUploader(images, cli.HTTP.PublicBaseURL, cli.HTTP.MaxUploadBytes)

	handler := http.NewHandler(http.RouterConfig{
		Logger:         log.Logger,
		Auth:           http.NewAuthHandler(authService, uploader),
		Polls:          http.NewPollHandler(pollService, uploader),
		Votes:          http.NewVoteHandler(ballotService),
		Users:          http.NewUserHandler(userService),
		Authenticator:  http.RequireAuth(authService),
		ImageDir:       images.Dir(),
		Metrics:        telemetry.Handler(reg),
		AllowedOrigins: cli.HTTP.CORSOrigins,
	})
	server := &stdhttp.Server{
		Addr:              cli.HTTP.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cli.HTTP.Listen).Str("store", cli.Store.Type).Str("version", version).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
