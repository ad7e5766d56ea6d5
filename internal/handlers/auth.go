package handlers

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/UgurOz1/portfolyo/internal/auth"
	"github.com/UgurOz1/portfolyo/internal/blog"
	"github.com/UgurOz1/portfolyo/internal/middleware"
	"github.com/UgurOz1/portfolyo/internal/models"
	"github.com/UgurOz1/portfolyo/internal/session"
)

const (
	stateCookie = "oauth_state"
	stateMaxAge = 10 * time.Minute

	modePopup    = "popup"
	modeRedirect = "redirect"

	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

// popupDone closes the sign-in popup and tells the opener to refresh.
var popupDone = template.Must(template.New("popup").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Signed in</title></head>
<body><script>
if (window.opener) { window.opener.postMessage({type: "auth", status: {{.Status}}}, {{.Origin}}); }
window.close();
</script><p>You can close this window.</p></body></html>
`))

type AuthConfig struct {
	FrontendURL    string
	SecureCookies  bool
	AllowedOrigins []string
}

type AuthHandler struct {
	google    *auth.GoogleProvider
	tokens    *auth.Tokens
	broker    *auth.Broker
	authz     *blog.Authorizer
	composers *Composers
	cfg       AuthConfig
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

type streamEvent struct {
	User  *models.Identity `json:"user"`
	Admin bool             `json:"admin"`
}

func NewAuthHandler(google *auth.GoogleProvider, tokens *auth.Tokens, broker *auth.Broker, authz *blog.Authorizer, composers *Composers, cfg AuthConfig, logger *slog.Logger) *AuthHandler {
	h := &AuthHandler{
		google:    google,
		tokens:    tokens,
		broker:    broker,
		authz:     authz,
		composers: composers,
		cfg:       cfg,
		logger:    logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *AuthHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return strings.EqualFold(origin, h.cfg.FrontendURL)
}

// Login starts the Google flow. The state carries the requested mode so the
// callback knows whether it runs in a popup.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.google.Configured() {
		respondError(w, http.StatusServiceUnavailable, "sign-in is not configured")
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode != modeRedirect {
		mode = modePopup
	}
	state := mode + ":" + uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth",
		MaxAge:   int(stateMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.google.AuthURL(state), http.StatusFound)
}

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := q.Get("state")
	mode, _, _ := strings.Cut(state, ":")

	c, err := r.Cookie(stateCookie)
	if err != nil || state == "" || c.Value != state {
		respondError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}
	h.clearCookie(w, stateCookie, "/api/auth")

	if reason := q.Get("error"); reason != "" {
		h.logger.Warn("google sign-in refused", "reason", reason)
		h.finish(w, r, mode, "error")
		return
	}

	tokens, err := h.google.ExchangeCode(r.Context(), q.Get("code"))
	if err != nil {
		h.logger.Error("code exchange failed", "error", err)
		h.finish(w, r, mode, "error")
		return
	}
	profile, err := h.google.GetUserProfile(r.Context(), tokens)
	if err != nil {
		h.logger.Error("profile fetch failed", "error", err)
		h.finish(w, r, mode, "error")
		return
	}

	identity := models.Identity{ID: profile.ProviderID, Email: profile.Email}
	signed, err := h.tokens.Issue(identity)
	if err != nil {
		h.logger.Error("failed to issue session", "error", err)
		respondError(w, http.StatusInternalServerError, "token error")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("signed in", "uid", identity.ID)
	h.changed(r.Context(), &identity)
	h.finish(w, r, mode, "signed_in")
}

func (h *AuthHandler) finish(w http.ResponseWriter, r *http.Request, mode, status string) {
	if mode == modeRedirect {
		http.Redirect(w, r, h.cfg.FrontendURL+"/blog?auth="+status, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := popupDone.Execute(w, struct{ Status, Origin string }{status, h.cfg.FrontendURL})
	if err != nil {
		h.logger.Error("failed to render popup page", "error", err)
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, middleware.SessionCookie, "/")
	if identity := middleware.IdentityFrom(r.Context()); identity != nil {
		h.logger.Info("signed out", "uid", identity.ID)
	}
	h.changed(r.Context(), nil)
	respondJSON(w, http.StatusOK, map[string]any{"user": nil})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"user": middleware.IdentityFrom(r.Context())})
}

func (h *AuthHandler) changed(ctx context.Context, identity *models.Identity) {
	visitor := middleware.VisitorFrom(ctx)
	h.composers.Invalidate(visitor)
	h.broker.Publish(visitor, identity)
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// Stream pushes the visitor's identity and admin flag on connect and after
// every sign-in or sign-out. All writes happen on this goroutine.
func (h *AuthHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	changed := make(chan struct{}, 1)
	tracker := session.NewTracker(middleware.IdentityFrom(r.Context()))
	tracker.OnChange(func(*models.Identity) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	tracker.Start(h.broker, middleware.VisitorFrom(r.Context()))
	defer tracker.Close()

	// The server's read timeout still applies to the hijacked connection.
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.send(ctx, conn, tracker.Current()); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-changed:
			if err := h.send(ctx, conn, tracker.Current()); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *AuthHandler) send(ctx context.Context, conn *websocket.Conn, identity *models.Identity) error {
	event := streamEvent{User: identity, Admin: h.authz.Check(ctx, identity)}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(event); err != nil {
		h.logger.Debug("stream write failed", "error", err)
		return err
	}
	return nil
}
