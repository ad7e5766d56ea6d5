package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/UgurOz1/portfolyo/internal/models"
)

type stubParser map[string]string

func (p stubParser) Parse(token string) (*models.Identity, error) {
	uid, ok := p[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &models.Identity{ID: uid}, nil
}

func TestIdentity(t *testing.T) {
	var got *models.Identity
	h := Identity(stubParser{"good": "u1"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFrom(r.Context())
	}))

	cases := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{"no token", func(*http.Request) {}, ""},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"}) }, "u1"},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, "u1"},
		{"lowercase bearer", func(r *http.Request) { r.Header.Set("Authorization", "bearer good") }, "u1"},
		{"invalid token", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "forged"}) }, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(req)
			h.ServeHTTP(httptest.NewRecorder(), req)

			switch {
			case tc.want == "" && got != nil:
				t.Errorf("Expected signed out, got %+v", got)
			case tc.want != "" && (got == nil || got.ID != tc.want):
				t.Errorf("Expected %s, got %+v", tc.want, got)
			}
		})
	}
}

func TestVisitor(t *testing.T) {
	var seen string
	h := Visitor(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = VisitorFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != VisitorCookie {
		t.Fatalf("Expected visitor cookie, got %v", cookies)
	}
	if seen != cookies[0].Value {
		t.Errorf("Expected context visitor %s, got %s", cookies[0].Value, seen)
	}

	first := seen
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	h.ServeHTTP(rec, req)
	if seen != first {
		t.Errorf("Expected visitor id to be reused")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Errorf("Expected no new cookie for a known visitor")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: "not-a-uuid"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "not-a-uuid" {
		t.Errorf("Expected malformed visitor id to be replaced")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":4321"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if call("1.1.1.1") != http.StatusOK || call("1.1.1.1") != http.StatusOK {
		t.Fatalf("Expected first two requests to pass")
	}
	if code := call("1.1.1.1"); code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", code)
	}
	if code := call("2.2.2.2"); code != http.StatusOK {
		t.Errorf("Expected other IP to pass, got %d", code)
	}

	now = now.Add(time.Minute)
	if code := call("1.1.1.1"); code != http.StatusOK {
		t.Errorf("Expected new window to pass, got %d", code)
	}
}

func TestRateLimiter_IgnoresForwardingHeaders(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	codes := make([]int, 0, 3)
	for i, spoofed := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		req.Header.Set("X-Forwarded-For", spoofed)
		req.Header.Set("X-Real-IP", fmt.Sprintf("10.0.0.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests || codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected rotating headers to share one budget, got %v", codes)
	}
}
