package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/UgurOz1/portfolyo/internal/blog"
	"github.com/UgurOz1/portfolyo/internal/db"
	"github.com/UgurOz1/portfolyo/internal/middleware"
	"github.com/UgurOz1/portfolyo/internal/models"
)

// Raw HTML in post content is escaped; WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

type PostsHandler struct {
	svc    *blog.Service
	logger *slog.Logger
}

type PostsResponse struct {
	Data    []models.Post `json:"data"`
	Total   int           `json:"total"`
	Source  blog.Source   `json:"source"`
	Notices []string      `json:"notices,omitempty"`
}

type PostDetail struct {
	models.Post
	ContentHTML string `json:"content_html"`
}

func NewPostsHandler(svc *blog.Service, logger *slog.Logger) *PostsHandler {
	return &PostsHandler{svc: svc, logger: logger}
}

// List reloads the posts and narrows them by the optional q parameter.
func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	l := h.svc.List(r.Context())
	posts := blog.Filter(l.Posts, r.URL.Query().Get("q"))
	respondJSON(w, http.StatusOK, PostsResponse{
		Data:   posts,
		Total:  len(posts),
		Source: l.Source,
	})
}

func (h *PostsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, ok := findPost(r, h.svc, id)
	if !ok {
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(post.Content), &buf); err != nil {
		h.logger.Error("failed to render post", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to render post")
		return
	}
	respondJSON(w, http.StatusOK, PostDetail{Post: post, ContentHTML: buf.String()})
}

func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.PostPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	n := newNotifier(r)
	l, err := h.svc.Create(r.Context(), middleware.IdentityFrom(r.Context()), req, n)
	h.respondWrite(w, http.StatusCreated, l, err, n)
}

func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.PostPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	n := newNotifier(r)
	l, err := h.svc.Update(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "id"), req, n)
	h.respondWrite(w, http.StatusOK, l, err, n)
}

func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	n := newNotifier(r)
	l, err := h.svc.Delete(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "id"), n)
	h.respondWrite(w, http.StatusOK, l, err, n)
}

func (h *PostsHandler) respondWrite(w http.ResponseWriter, status int, l blog.Listing, err error, n *requestNotifier) {
	if err != nil {
		respondWriteError(w, err, n)
		return
	}
	respondJSON(w, status, PostsResponse{
		Data:    l.Posts,
		Total:   len(l.Posts),
		Source:  l.Source,
		Notices: n.notices,
	})
}

// findPost looks in the loaded list first and reloads once on a miss, so a
// fresh process can serve detail pages before anyone listed.
func findPost(r *http.Request, svc *blog.Service, id string) (models.Post, bool) {
	if post, ok := svc.Find(id); ok {
		return post, true
	}
	for _, p := range svc.List(r.Context()).Posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

type writeErrorResponse struct {
	Error   string   `json:"error"`
	Confirm string   `json:"confirm,omitempty"`
	Notices []string `json:"notices"`
}

func respondWriteError(w http.ResponseWriter, err error, n *requestNotifier) {
	body := writeErrorResponse{Error: err.Error(), Notices: n.notices}
	if body.Notices == nil {
		body.Notices = []string{}
	}
	if errors.Is(err, blog.ErrNotConfirmed) {
		body.Confirm = n.prompt
	}
	respondJSON(w, writeStatus(err), body)
}

// writeStatus maps a failed post write to a status code. Store failures are
// reported as a bad gateway.
func writeStatus(err error) int {
	switch {
	case errors.Is(err, blog.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, blog.ErrNotConfirmed):
		return http.StatusConflict
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
