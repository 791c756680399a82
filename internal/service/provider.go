package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Identity is what an OAuth provider tells us about the signed-in
// person.
type Identity struct {
	ExternalID  string
	Provider    string
	DisplayName string
	Email       string
	Photo       string
}

// IdentityProvider abstracts the OAuth code flow so the auth service
// can be tested without a real provider.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Identity, error)
}

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleProvider implements IdentityProvider for Google sign-in.
type GoogleProvider struct {
	config *oauth2.Config
}

// NewGoogleProvider creates a Google provider. Login and account
// update use separate instances because each flow registers its own
// redirect URI.
func NewGoogleProvider(clientID, clientSecret, redirectURI string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthCodeURL builds the provider consent URL carrying state.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades the authorization code for the user's identity.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange failed: %v", ErrProviderError, err)
	}

	resp, err := p.config.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo request failed: %v", ErrProviderError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo returned status %d", ErrProviderError, resp.StatusCode)
	}

	var info struct {
		Sub     string `json:"sub"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decoding userinfo: %v", ErrProviderError, err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("%w: userinfo missing subject", ErrProviderError)
	}

	return &Identity{
		ExternalID:  info.Sub,
		Provider:    "google",
		DisplayName: info.Name,
		Email:       info.Email,
		Photo:       info.Picture,
	}, nil
}
