package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/UgurOz1/portfolyo/internal/auth"
	"github.com/UgurOz1/portfolyo/internal/blog"
	"github.com/UgurOz1/portfolyo/internal/db"
	"github.com/UgurOz1/portfolyo/internal/middleware"
	"github.com/UgurOz1/portfolyo/internal/models"
	"github.com/UgurOz1/portfolyo/internal/portfolio"
)

const (
	testVisitor = "6f1c1f0e-4f5a-4d5e-9a3b-2c1d0e9f8a7b"
	adminUID    = "admin-uid"
)

type testEnv struct {
	store     *db.MemoryStore
	svc       *blog.Service
	composers *Composers
	tokens    *auth.Tokens
	broker    *auth.Broker
	google    *auth.GoogleProvider
	handler   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	env := &testEnv{
		store:     db.NewMemoryStore(logger, adminUID),
		tokens:    auth.NewTokens("test-secret", "portfolyo", time.Hour),
		broker:    auth.NewBroker(),
		google:    auth.NewGoogleProvider("", "", "http://localhost/api/auth/google/callback"),
		composers: NewComposers(),
	}
	authz := blog.NewAuthorizer(env.store, logger)
	env.svc = blog.NewService(env.store, authz, blog.DefaultSeed(), logger)
	env.handler = NewRouter(Deps{
		Service:            env.svc,
		Authz:              authz,
		Tokens:             env.tokens,
		Google:             env.google,
		Broker:             env.broker,
		Composers:          env.composers,
		Profile:            portfolio.Default(),
		Logger:             logger,
		CorsAllowedOrigins: []string{"*"},
		FrontendURL:        "http://localhost:5173",
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string, identity *models.Identity) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.AddCookie(&http.Cookie{Name: middleware.VisitorCookie, Value: testVisitor})
	if identity != nil {
		token, err := e.tokens.Issue(*identity)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response %d: %v", rec.Code, err)
	}
	return out
}

var (
	admin    = &models.Identity{ID: adminUID, Email: "admin@example.com"}
	stranger = &models.Identity{ID: "someone", Email: "someone@example.com"}
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("Unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/profile", "", nil)
	profile := decode[portfolio.Profile](t, rec)
	if len(profile.Projects) != 6 {
		t.Errorf("Expected 6 projects, got %d", len(profile.Projects))
	}
}

func TestPosts_SeedFallbackAndFilter(t *testing.T) {
	env := newTestEnv(t)

	resp := decode[PostsResponse](t, env.do(t, http.MethodGet, "/api/posts", "", nil))
	if resp.Total != 3 || resp.Source != blog.SourceSeed {
		t.Fatalf("Expected 3 seed posts, got %d from %s", resp.Total, resp.Source)
	}

	resp = decode[PostsResponse](t, env.do(t, http.MethodGet, "/api/posts?q=Vite", "", nil))
	if resp.Total != 1 || resp.Data[0].ID != "vite-ile-hizli-gelistirme" {
		t.Errorf("Expected only the Vite post, got %+v", resp.Data)
	}

	resp = decode[PostsResponse](t, env.do(t, http.MethodGet, "/api/posts?q=%20%20", "", nil))
	if resp.Total != 3 {
		t.Errorf("Expected blank query to keep all posts, got %d", resp.Total)
	}
}

func TestPosts_Get(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/posts/vite-ile-hizli-gelistirme", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	detail := decode[PostDetail](t, rec)
	if !strings.HasPrefix(detail.ContentHTML, "<p>Vite,") {
		t.Errorf("Expected rendered paragraph, got %q", detail.ContentHTML)
	}

	rec = env.do(t, http.MethodGet, "/api/posts/missing", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestPosts_WritesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	body := `{"title":"t","tags":["Go"],"content":"c"}`

	for _, identity := range []*models.Identity{nil, stranger} {
		rec := env.do(t, http.MethodPost, "/api/posts", body, identity)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("Expected 403, got %d", rec.Code)
		}
		resp := decode[writeErrorResponse](t, rec)
		if len(resp.Notices) != 1 || resp.Notices[0] != blog.NoticeCreateDenied {
			t.Errorf("Expected denial notice, got %v", resp.Notices)
		}
	}

	rec := env.do(t, http.MethodDelete, "/api/posts/x?confirm=true", "", stranger)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for delete, got %d", rec.Code)
	}

	posts, _ := env.store.ListPosts(context.Background(), 50)
	if len(posts) != 0 {
		t.Errorf("Expected no writes, got %d posts", len(posts))
	}
}

func TestPosts_AdminLifecycle(t *testing.T) {
	env := newTestEnv(t)
	content := strings.Repeat("a", 150)

	rec := env.do(t, http.MethodPost, "/api/posts", `{"title":"First","tags":["Go"," ",""],"content":"`+content+`"}`, admin)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[PostsResponse](t, rec)
	if resp.Source != blog.SourceRemote || resp.Total != 1 {
		t.Fatalf("Expected one remote post, got %d from %s", resp.Total, resp.Source)
	}
	created := resp.Data[0]
	if created.Excerpt != strings.Repeat("a", 140)+"…" {
		t.Errorf("Unexpected excerpt %q", created.Excerpt)
	}
	if len(created.Tags) != 1 || created.Tags[0] != "Go" {
		t.Errorf("Expected cleaned tags, got %v", created.Tags)
	}
	if len(resp.Notices) != 1 || resp.Notices[0] != blog.NoticeCreated {
		t.Errorf("Expected created notice, got %v", resp.Notices)
	}

	rec = env.do(t, http.MethodPut, "/api/posts/"+created.ID, `{"title":"Renamed","tags":["Go"],"content":"short"}`, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp = decode[PostsResponse](t, rec)
	if resp.Data[0].Title != "Renamed" || resp.Data[0].Excerpt != "short…" {
		t.Errorf("Unexpected updated post %+v", resp.Data[0])
	}

	rec = env.do(t, http.MethodPut, "/api/posts/missing", `{"title":"x"}`, admin)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing post, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/api/posts/"+created.ID, "", admin)
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected 409 without confirmation, got %d", rec.Code)
	}
	if errResp := decode[writeErrorResponse](t, rec); errResp.Confirm != blog.NoticeConfirmDelete {
		t.Errorf("Expected confirmation prompt, got %q", errResp.Confirm)
	}
	if posts, _ := env.store.ListPosts(context.Background(), 50); len(posts) != 1 {
		t.Fatalf("Expected post to survive unconfirmed delete")
	}

	rec = env.do(t, http.MethodDelete, "/api/posts/"+created.ID+"?confirm=true", "", admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	resp = decode[PostsResponse](t, rec)
	if resp.Source != blog.SourceSeed || resp.Total != 3 {
		t.Errorf("Expected seed fallback after deleting the last post, got %d from %s", resp.Total, resp.Source)
	}
}

func TestAdmin(t *testing.T) {
	env := newTestEnv(t)
	cases := []struct {
		identity *models.Identity
		want     bool
	}{
		{nil, false},
		{stranger, false},
		{admin, true},
	}
	for _, tc := range cases {
		got := decode[map[string]bool](t, env.do(t, http.MethodGet, "/api/admin", "", tc.identity))
		if got["admin"] != tc.want {
			t.Errorf("identity %v: expected admin=%v", tc.identity, tc.want)
		}
	}
}

func TestComposer_SignedOut(t *testing.T) {
	env := newTestEnv(t)

	resp := decode[ComposerResponse](t, env.do(t, http.MethodGet, "/api/composer", "", nil))
	if resp.Composer.View != blog.ViewSignIn {
		t.Errorf("Expected sign-in view, got %s", resp.Composer.View)
	}

	resp = decode[ComposerResponse](t, env.do(t, http.MethodGet, "/api/composer", "", stranger))
	if resp.Composer.View != blog.ViewSignOut || resp.Composer.Title != "" {
		t.Errorf("Expected sign-out view without form, got %+v", resp.Composer)
	}

	rec := env.do(t, http.MethodPost, "/api/composer/toggle", "", stranger)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", rec.Code)
	}
}

func TestComposer_CreateFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := decode[ComposerResponse](t, env.do(t, http.MethodGet, "/api/composer", "", admin))
	if resp.Composer.View != blog.ViewPanel || resp.Composer.Open {
		t.Fatalf("Expected closed panel, got %+v", resp.Composer)
	}

	resp = decode[ComposerResponse](t, env.do(t, http.MethodPost, "/api/composer/toggle", "", admin))
	if !resp.Composer.Open || resp.Composer.Tags != blog.DefaultTags {
		t.Fatalf("Expected open panel with default tags, got %+v", resp.Composer)
	}

	rec := env.do(t, http.MethodPut, "/api/composer", `{"title":"Hello","tags":"Go, chi","content":"Body"}`, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/composer/submit", "", admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp = decode[ComposerResponse](t, rec)
	if resp.Composer.Open || resp.Composer.Mode != blog.ModeCreate {
		t.Errorf("Expected closed create-mode panel after submit, got %+v", resp.Composer)
	}
	if len(resp.Data) != 1 || resp.Data[0].Title != "Hello" {
		t.Fatalf("Expected refreshed list with the new post, got %+v", resp.Data)
	}
	if tags := resp.Data[0].Tags; len(tags) != 2 || tags[1] != "chi" {
		t.Errorf("Expected parsed tags, got %v", tags)
	}
}

func TestComposer_EditFailureStillResets(t *testing.T) {
	env := newTestEnv(t)

	// Seed posts are not in the store, so updating one fails.
	resp := decode[ComposerResponse](t, env.do(t, http.MethodPost, "/api/composer/edit/vite-ile-hizli-gelistirme", "", admin))
	if resp.Composer.Mode != blog.ModeEdit || !resp.Composer.Open || resp.Composer.EditID != "vite-ile-hizli-gelistirme" {
		t.Fatalf("Expected edit mode for the Vite post, got %+v", resp.Composer)
	}
	if resp.Composer.Tags != "Vite,Build Tools,Developer Experience" {
		t.Errorf("Expected prefilled tags, got %q", resp.Composer.Tags)
	}

	rec := env.do(t, http.MethodPost, "/api/composer/submit", "", admin)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	resp = decode[ComposerResponse](t, rec)
	if resp.Composer.Open || resp.Composer.Mode != blog.ModeCreate {
		t.Errorf("Expected reset composer, got %+v", resp.Composer)
	}
	if len(resp.Notices) != 1 || !strings.Contains(resp.Notices[0], db.ErrNotFound.Error()) {
		t.Errorf("Expected raw error notice, got %v", resp.Notices)
	}

	rec = env.do(t, http.MethodPost, "/api/composer/edit/missing", "", admin)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown post, got %d", rec.Code)
	}
}

func TestComposer_OnlyGrantedDraftsAreKept(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/composer/cancel", nil)
		env.handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	env.do(t, http.MethodGet, "/api/composer", "", stranger)
	if n := env.composers.Len(); n != 0 {
		t.Fatalf("Expected no drafts for anonymous callers, got %d", n)
	}

	env.do(t, http.MethodPost, "/api/composer/toggle", "", admin)
	if n := env.composers.Len(); n != 1 {
		t.Fatalf("Expected one draft for the admin, got %d", n)
	}

	env.do(t, http.MethodPost, "/api/auth/logout", "", admin)
	if n := env.composers.Len(); n != 0 {
		t.Errorf("Expected sign-out to drop the draft, got %d", n)
	}
}

func TestComposers_IdleDraftsExpire(t *testing.T) {
	cs := NewComposers()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cs.now = func() time.Time { return now }

	draft := cs.entry("first").c
	draft.Resolve(true)
	draft.Toggle()
	now = now.Add(ComposerIdleTTL + time.Second)
	cs.entry("second")

	if n := cs.Len(); n != 1 {
		t.Fatalf("Expected the idle draft to be swept, got %d entries", n)
	}
	fresh := cs.entry("first").c
	fresh.Resolve(true)
	if st := fresh.State(true); st.Open {
		t.Errorf("Expected a fresh composer after expiry, got %+v", st)
	}
}

func TestAuth_MeAndLogout(t *testing.T) {
	env := newTestEnv(t)

	var mu sync.Mutex
	var events []*models.Identity
	cancel := env.broker.Subscribe(testVisitor, func(id *models.Identity) {
		mu.Lock()
		events = append(events, id)
		mu.Unlock()
	})
	defer cancel()

	me := decode[map[string]*models.Identity](t, env.do(t, http.MethodGet, "/api/auth/me", "", admin))
	if me["user"] == nil || me["user"].ID != adminUID {
		t.Errorf("Expected admin identity, got %+v", me["user"])
	}

	rec := env.do(t, http.MethodPost, "/api/auth/logout", "", admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Errorf("Expected session cookie to be cleared")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 || events[0] != nil {
		t.Errorf("Expected one sign-out event, got %v", events)
	}
}

func TestAuth_LoginNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/auth/google/login", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
}

func TestAuth_GoogleRedirectFlow(t *testing.T) {
	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			_ = r.ParseForm()
			if r.Form.Get("code") != "the-code" {
				http.Error(w, "bad code", http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "at", "token_type": "Bearer"})
		case "/profile":
			if r.Header.Get("Authorization") != "Bearer at" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"id": adminUID, "email": "admin@example.com"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer google.Close()

	env := newTestEnv(t)
	*env.google = *auth.NewGoogleProvider("client", "secret", "http://localhost/api/auth/google/callback")
	env.google.UseEndpoint(oauth2.Endpoint{
		AuthURL:   google.URL + "/auth",
		TokenURL:  google.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	})
	env.google.ProfileEndpoint = google.URL + "/profile"

	var signedIn *models.Identity
	cancel := env.broker.Subscribe(testVisitor, func(id *models.Identity) { signedIn = id })
	defer cancel()

	rec := env.do(t, http.MethodGet, "/api/auth/google/login?mode=redirect", "", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("Expected redirect to Google, got %d", rec.Code)
	}
	var state *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == stateCookie {
			state = c
		}
	}
	if state == nil || !strings.HasPrefix(state.Value, "redirect:") {
		t.Fatalf("Expected redirect-mode state cookie, got %v", state)
	}
	loc, _ := url.Parse(rec.Header().Get("Location"))
	if loc.Query().Get("state") != state.Value {
		t.Errorf("Expected state in consent URL")
	}

	callback := func(stateParam string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=the-code&state="+url.QueryEscape(stateParam), nil)
		req.AddCookie(&http.Cookie{Name: middleware.VisitorCookie, Value: testVisitor})
		req.AddCookie(state)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := callback("redirect:forged"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for mismatched state, got %d", rec.Code)
	}

	rec = callback(state.Value)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "http://localhost:5173/blog?auth=signed_in" {
		t.Fatalf("Expected redirect to blog, got %d %s", rec.Code, rec.Header().Get("Location"))
	}
	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			session = c
		}
	}
	if session == nil {
		t.Fatalf("Expected session cookie")
	}
	if id, err := env.tokens.Parse(session.Value); err != nil || id.ID != adminUID {
		t.Errorf("Expected valid admin session, got %v %v", id, err)
	}
	if signedIn == nil || signedIn.ID != adminUID {
		t.Errorf("Expected sign-in to be published, got %v", signedIn)
	}
}
