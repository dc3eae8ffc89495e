package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// Profile is the normalized identity assertion handed to the auth flow once
// the provider handshake has completed.
type Profile struct {
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}

// GoogleStrategy wraps the Google OAuth2 flow behind an explicitly
// constructed dependency. It is built once at startup with its configuration
// and passed into the routing layer; nothing here is process-global.
type GoogleStrategy struct {
	cfg *oauth2.Config
}

func NewGoogleStrategy(clientID, clientSecret, callbackURL string) *GoogleStrategy {
	return &GoogleStrategy{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

// NewState generates a random, URL-safe state token for CSRF protection.
func NewState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// AuthURL builds the consent URL for the given state. The account chooser is
// always shown so a user with multiple Google accounts picks explicitly.
func (s *GoogleStrategy) AuthURL(state string) string {
	return s.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// Exchange trades the authorization code for the user's profile. The token
// itself is discarded; only the normalized identity assertion leaves here.
func (s *GoogleStrategy) Exchange(ctx context.Context, code string) (*Profile, error) {
	tok, err := s.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}

	resp, err := s.cfg.Client(ctx, tok).Get(userinfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, errors.New("userinfo missing id or email")
	}

	name := info.Name
	if name == "" {
		name = "Google User"
	}
	return &Profile{
		ProviderID: info.ID,
		Email:      info.Email,
		Name:       name,
		AvatarURL:  info.Picture,
	}, nil
}
