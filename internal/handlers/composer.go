package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/UgurOz1/portfolyo/internal/blog"
	"github.com/UgurOz1/portfolyo/internal/middleware"
	"github.com/UgurOz1/portfolyo/internal/models"
)

// ComposerIdleTTL is how long an untouched draft is kept.
const ComposerIdleTTL = 30 * time.Minute

// Composers keeps one post composer per granted visitor. Drafts idle for
// longer than the TTL are swept when a new one is stored.
type Composers struct {
	mu      sync.Mutex
	entries map[string]*composerEntry
	ttl     time.Duration
	now     func() time.Time
}

type composerEntry struct {
	mu       sync.Mutex
	c        *blog.Composer
	lastUsed time.Time
}

func NewComposers() *Composers {
	return &Composers{
		entries: make(map[string]*composerEntry),
		ttl:     ComposerIdleTTL,
		now:     time.Now,
	}
}

func (cs *Composers) entry(visitorID string) *composerEntry {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	now := cs.now()
	e, ok := cs.entries[visitorID]
	if !ok {
		cs.sweep(now)
		e = &composerEntry{c: blog.NewComposer()}
		cs.entries[visitorID] = e
	}
	e.lastUsed = now
	return e
}

// sweep drops idle entries. cs.mu must be held.
func (cs *Composers) sweep(now time.Time) {
	for id, e := range cs.entries {
		if now.Sub(e.lastUsed) > cs.ttl {
			delete(cs.entries, id)
		}
	}
}

// Invalidate drops the draft and authorization outcome of a visitor whose
// identity changed.
func (cs *Composers) Invalidate(visitorID string) {
	cs.mu.Lock()
	delete(cs.entries, visitorID)
	cs.mu.Unlock()
}

// Len reports how many drafts are held.
func (cs *Composers) Len() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.entries)
}

type ComposerHandler struct {
	composers *Composers
	svc       *blog.Service
	authz     *blog.Authorizer
}

type ComposerResponse struct {
	Composer blog.State    `json:"composer"`
	Data     []models.Post `json:"data,omitempty"`
	Notices  []string      `json:"notices,omitempty"`
}

type ComposerFields struct {
	Title   string `json:"title"`
	Tags    string `json:"tags"`
	Content string `json:"content"`
}

func NewComposerHandler(composers *Composers, svc *blog.Service, authz *blog.Authorizer) *ComposerHandler {
	return &ComposerHandler{composers: composers, svc: svc, authz: authz}
}

// with runs fn on the caller's composer after re-running the authorization
// check. Transitions other than viewing require a granted caller. Callers
// without a grant get a fresh composer that is never stored.
func (h *ComposerHandler) with(w http.ResponseWriter, r *http.Request, requireGrant bool, fn func(c *blog.Composer) (int, ComposerResponse)) {
	identity := middleware.IdentityFrom(r.Context())
	visitor := middleware.VisitorFrom(r.Context())

	if !h.authz.Check(r.Context(), identity) {
		h.composers.Invalidate(visitor)
		c := blog.NewComposer()
		c.Resolve(false)
		if requireGrant {
			respondJSON(w, http.StatusForbidden, ComposerResponse{Composer: c.State(identity != nil)})
			return
		}
		status, resp := fn(c)
		resp.Composer = c.State(identity != nil)
		respondJSON(w, status, resp)
		return
	}

	e := h.composers.entry(visitor)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.c.Resolve(true)
	status, resp := fn(e.c)
	resp.Composer = e.c.State(identity != nil)
	respondJSON(w, status, resp)
}

func (h *ComposerHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, false, func(*blog.Composer) (int, ComposerResponse) {
		return http.StatusOK, ComposerResponse{}
	})
}

func (h *ComposerHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, true, func(c *blog.Composer) (int, ComposerResponse) {
		c.Toggle()
		return http.StatusOK, ComposerResponse{}
	})
}

func (h *ComposerHandler) Edit(w http.ResponseWriter, r *http.Request) {
	post, ok := findPost(r, h.svc, chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	h.with(w, r, true, func(c *blog.Composer) (int, ComposerResponse) {
		c.Edit(post)
		return http.StatusOK, ComposerResponse{}
	})
}

func (h *ComposerHandler) SetFields(w http.ResponseWriter, r *http.Request) {
	var req ComposerFields
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	h.with(w, r, true, func(c *blog.Composer) (int, ComposerResponse) {
		c.SetFields(req.Title, req.Tags, req.Content)
		return http.StatusOK, ComposerResponse{}
	})
}

// Submit writes the draft through the post service. The service repeats the
// authorization check, so a grant revoked in between still fails closed.
func (h *ComposerHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFrom(r.Context())
	h.with(w, r, true, func(c *blog.Composer) (int, ComposerResponse) {
		n := newNotifier(r)
		l, err := c.Submit(r.Context(), h.svc, identity, n)
		if err != nil {
			return writeStatus(err), ComposerResponse{Notices: n.notices}
		}
		return http.StatusOK, ComposerResponse{Data: l.Posts, Notices: n.notices}
	})
}

func (h *ComposerHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, false, func(c *blog.Composer) (int, ComposerResponse) {
		c.Cancel()
		return http.StatusOK, ComposerResponse{}
	})
}
