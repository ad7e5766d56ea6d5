package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/UgurOz1/portfolyo/internal/auth"
	"github.com/UgurOz1/portfolyo/internal/blog"
	"github.com/UgurOz1/portfolyo/internal/middleware"
	"github.com/UgurOz1/portfolyo/internal/portfolio"
)

type Deps struct {
	Service   *blog.Service
	Authz     *blog.Authorizer
	Tokens    *auth.Tokens
	Google    *auth.GoogleProvider
	Broker    *auth.Broker
	Composers *Composers
	Profile   portfolio.Profile
	Logger    *slog.Logger

	CorsAllowedOrigins []string
	FrontendURL        string
	SecureCookies      bool

	// Requests per minute per IP. Zero disables the limiter.
	RateLimitPublic int
	RateLimitLogin  int
}

func NewRouter(d Deps) http.Handler {
	if d.Composers == nil {
		d.Composers = NewComposers()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   d.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	r.Get("/health", Health)

	postsHandler := NewPostsHandler(d.Service, d.Logger)
	composerHandler := NewComposerHandler(d.Composers, d.Service, d.Authz)
	authHandler := NewAuthHandler(d.Google, d.Tokens, d.Broker, d.Authz, d.Composers, AuthConfig{
		FrontendURL:    d.FrontendURL,
		SecureCookies:  d.SecureCookies,
		AllowedOrigins: d.CorsAllowedOrigins,
	}, d.Logger)

	publicLimit := limiter(d.RateLimitPublic)
	loginLimit := limiter(d.RateLimitLogin)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Visitor(d.SecureCookies))
		r.Use(middleware.Identity(d.Tokens))

		r.Get("/profile", Profile(d.Profile))
		r.Get("/admin", Admin(d.Authz))

		r.With(publicLimit).Get("/posts", postsHandler.List)
		r.Get("/posts/{id}", postsHandler.Get)
		r.Post("/posts", postsHandler.Create)
		r.Put("/posts/{id}", postsHandler.Update)
		r.Delete("/posts/{id}", postsHandler.Delete)

		r.Route("/composer", func(r chi.Router) {
			r.Use(publicLimit)
			r.Get("/", composerHandler.Get)
			r.Put("/", composerHandler.SetFields)
			r.Post("/toggle", composerHandler.Toggle)
			r.Post("/edit/{id}", composerHandler.Edit)
			r.Post("/submit", composerHandler.Submit)
			r.Post("/cancel", composerHandler.Cancel)
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimit).Get("/google/login", authHandler.Login)
			r.With(loginLimit).Get("/google/callback", authHandler.Callback)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
			r.Get("/stream", authHandler.Stream)
		})
	})

	return r
}

func limiter(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.NewRateLimiter(perMinute, time.Minute).Limit
}
