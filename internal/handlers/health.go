package handlers

import (
	"net/http"

	"github.com/UgurOz1/portfolyo/internal/blog"
	"github.com/UgurOz1/portfolyo/internal/middleware"
	"github.com/UgurOz1/portfolyo/internal/portfolio"
)

func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Profile serves the portfolio sections.
func Profile(profile portfolio.Profile) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, profile)
	}
}

// Admin reports whether the caller may write posts.
func Admin(authz *blog.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		allowed := authz.Check(r.Context(), middleware.IdentityFrom(r.Context()))
		respondJSON(w, http.StatusOK, map[string]bool{"admin": allowed})
	}
}
