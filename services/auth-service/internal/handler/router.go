package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/siwic-api/shared/response"
)

const maxRequestBody = 1 << 20

// RouterOptions carries what the router needs besides the handlers.
type RouterOptions struct {
	Logger        *zerolog.Logger
	AllowedOrigin string
	// Session verifies the session cookie and stores its claims in the
	// request context.
	Session func(http.Handler) http.Handler
}

// NewRouter wires the HTTP routes of the auth service.
func NewRouter(authHandler *AuthHandler, userHandler *UserHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(hlog.NewHandler(*opts.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("http request")
	}))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestSize(maxRequestBody))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: opts.AllowedOrigin != "*",
		MaxAge:           300,
	}))

	if opts.Session != nil {
		r.Use(opts.Session)
	}

	ok := func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, payload.StatusResponse{OK: true})
	}
	r.Get("/", ok)
	r.Get("/healthz", ok)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/session", authHandler.Session)
		r.Get("/{provider}", authHandler.Begin)
		r.Get("/{provider}/callback", authHandler.Callback)
		r.Get("/{provider}/failure", authHandler.Failure)
	})

	r.Route("/user", func(r chi.Router) {
		r.Get("/check-user", userHandler.CheckUser)
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
	})

	return r
}
