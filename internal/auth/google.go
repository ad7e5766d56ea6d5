package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/UgurOz1/portfolyo/internal/models"
)

const googleProfileURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleProvider implements the Google OAuth2 authorization code flow.
type GoogleProvider struct {
	config     *oauth2.Config
	httpClient *http.Client

	// ProfileEndpoint is overridable for tests.
	ProfileEndpoint string
}

// NewGoogleProvider creates a new Google OAuth2 provider.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		httpClient:      &http.Client{Timeout: 15 * time.Second},
		ProfileEndpoint: googleProfileURL,
	}
}

// UseEndpoint points the consent and token steps at another server.
func (g *GoogleProvider) UseEndpoint(ep oauth2.Endpoint) {
	g.config.Endpoint = ep
}

// Configured reports whether client credentials were provided.
func (g *GoogleProvider) Configured() bool {
	return g.config.ClientID != "" && g.config.ClientSecret != ""
}

// AuthURL returns the Google consent screen URL.
func (g *GoogleProvider) AuthURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// ExchangeCode exchanges an authorization code for tokens.
func (g *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := g.config.Exchange(g.clientContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("google: token exchange: %w", err)
	}
	return token, nil
}

// GetUserProfile fetches the Google user profile on behalf of token.
func (g *GoogleProvider) GetUserProfile(ctx context.Context, token *oauth2.Token) (*models.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.ProfileEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("google: create profile request: %w", err)
	}

	resp, err := g.config.Client(g.clientContext(ctx), token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("google: fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("google: profile fetch failed (%d): %s", resp.StatusCode, string(body))
	}

	var profile struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("google: decode profile: %w", err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("google: profile without id")
	}

	return &models.Profile{
		ProviderID: profile.ID,
		Email:      profile.Email,
		Name:       profile.Name,
		AvatarURL:  profile.Picture,
	}, nil
}

func (g *GoogleProvider) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}
