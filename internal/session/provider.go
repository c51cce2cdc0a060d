package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// User is the identity of a signed-in user.
type User struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

// Provider performs the interactive, provider-delegated part of login.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (User, error)
}

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleProvider signs users in with their Google account.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider creates a provider for the given OAuth client.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

// WithEndpoints overrides the OAuth and userinfo endpoints (useful for testing).
func (p *GoogleProvider) WithEndpoints(endpoint oauth2.Endpoint, userInfoURL string) *GoogleProvider {
	p.config.Endpoint = endpoint
	p.userInfoURL = userInfoURL
	return p
}

// AuthCodeURL returns the consent page URL carrying state.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type userInfo struct {
	Sub   string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Exchange trades the authorization code for the user's identity.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (User, error) {
	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return User{}, fmt.Errorf("failed to exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return User{}, err
	}
	resp, err := p.config.Client(ctx, tok).Do(req)
	if err != nil {
		return User{}, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return User{}, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return User{}, fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.Sub == "" {
		return User{}, fmt.Errorf("user info has no subject")
	}

	name := info.Name
	if name == "" {
		name = info.Email
	}
	return User{UID: info.Sub, DisplayName: name, Email: info.Email}, nil
}
