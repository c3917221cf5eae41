package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// RouterConfig carries the collaborators of NewHandler. ImageDir and
// Metrics are optional.
type RouterConfig struct {
	Logger         zerolog.Logger
	Auth           *AuthHandler
	Polls          *PollHandler
	Votes          *VoteHandler
	Users          *UserHandler
	Authenticator  func(http.Handler) http.Handler
	ImageDir       string
	Metrics        http.Handler
	AllowedOrigins []string
}

func NewHandler(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(cfg.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(withCORS(cfg.AllowedOrigins))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	if cfg.ImageDir != "" {
		r.Handle("/public/*", http.StripPrefix("/public/", http.FileServer(http.Dir(cfg.ImageDir))))
	}

	r.Post("/signup", cfg.Auth.SignUp)
	r.Post("/signin", cfg.Auth.SignIn)

	r.Get("/organs", cfg.Polls.ListDistinctNames)
	r.Get("/organs/all", cfg.Polls.ListAll)

	r.Group(func(r chi.Router) {
		r.Use(cfg.Authenticator)

		r.Get("/me", cfg.Users.GetMe)

		r.Post("/organs", cfg.Polls.CreatePoll)
		r.Get("/organs/mine", cfg.Polls.ListMine)
		r.Get("/organs/{id}", cfg.Polls.GetPoll)
		r.Put("/organs/{id}", cfg.Polls.UpdatePoll)
		r.Delete("/organs/{id}", cfg.Polls.DeletePoll)
		r.Post("/organs/{id}/vote", cfg.Votes.Vote)
		r.Get("/organs/{id}/results", cfg.Polls.Results)
	})

	return r
}

func withCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler
}
