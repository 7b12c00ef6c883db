package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// googleUserInfoURL is the OpenID Connect userinfo endpoint.
const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleProvider runs the OAuth 2.0 authorization code flow against Google
// and fetches the signed-in profile.
//
//  1. AuthURL: redirect the browser to Google with a CSRF state
//  2. Google redirects back with ?code=...&state=...
//  3. Exchange: trade the code for a token (server to server, using the
//     client secret) and read /userinfo with it
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider configures the flow. callbackURL must be registered in
// the Google Cloud console exactly as given.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoints.Google,
		},
		userInfoURL: googleUserInfoURL,
	}
}

// ClientID is the OAuth client ID, which is also the expected audience of
// Sign-In credentials.
func (p *GoogleProvider) ClientID() string {
	return p.config.ClientID
}

// AuthURL returns the consent page URL carrying state.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades code for the user's Google profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (GoogleUser, error) {
	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return GoogleUser{}, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return GoogleUser{}, fmt.Errorf("auth: building userinfo request: %w", err)
	}
	resp, err := p.config.Client(ctx, tok).Do(req)
	if err != nil {
		return GoogleUser{}, fmt.Errorf("auth: calling google userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GoogleUser{}, fmt.Errorf("auth: google userinfo returned status %d", resp.StatusCode)
	}

	var u GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return GoogleUser{}, fmt.Errorf("auth: decoding google userinfo: %w", err)
	}
	if u.Sub == "" || u.Email == "" {
		return GoogleUser{}, errors.New("auth: google returned a profile without sub or email")
	}
	return u, nil
}
