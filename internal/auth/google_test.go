package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/sakif/truassets/internal/model"
)

// googleCredential builds an ID-token-shaped JWT. The signing key is
// irrelevant since the signature is not checked.
func googleCredential(t *testing.T, c googleClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("irrelevant-signing-key"))
	require.NoError(t, err)
	return tok
}

func TestDecodeGoogleCredential(t *testing.T) {
	cred := googleCredential(t, googleClaims{
		Name:    "Asha Rao",
		Email:   "asha@gmail.com",
		Picture: "https://example.com/a.png",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  "1098765",
			Audience: jwt.ClaimStrings{"client-123.apps.googleusercontent.com"},
		},
	})

	g, err := DecodeGoogleCredential(cred, "client-123.apps.googleusercontent.com")
	require.NoError(t, err)
	assert.Equal(t, GoogleUser{Sub: "1098765", Name: "Asha Rao", Email: "asha@gmail.com", Picture: "https://example.com/a.png"}, g)

	u := g.AuthenticatedUser()
	assert.Equal(t, "1098765", u.ID)
	assert.Equal(t, model.RoleUser, u.Role)
}

func TestDecodeGoogleCredential_Rejects(t *testing.T) {
	wrongAud := googleCredential(t, googleClaims{
		Email:            "asha@gmail.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", Audience: jwt.ClaimStrings{"someone-else"}},
	})
	noEmail := googleCredential(t, googleClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}})

	tests := []struct {
		name, cred, aud string
	}{
		{"garbage", "not-a-token", ""},
		{"wrong audience", wrongAud, "client-123"},
		{"missing email", noEmail, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeGoogleCredential(tt.cred, tt.aud)
			assert.Error(t, err)
		})
	}
}

func TestMockGoogleUser(t *testing.T) {
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	a, b := MockGoogleUser(now), MockGoogleUser(now)

	assert.True(t, strings.HasPrefix(a.Sub, "user-"))
	assert.NotEqual(t, a.Sub, b.Sub)
	assert.Equal(t, MockEmail, a.Email)
	assert.Equal(t, MockName, a.Name)
	assert.Equal(t, MockPicture, a.Picture)
}

func TestGoogleProvider_Exchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "at-1", "token_type": "Bearer", "expires_in": 3600})
		case "/userinfo":
			if r.Header.Get("Authorization") != "Bearer at-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(GoogleUser{Sub: "42", Name: "Asha", Email: "asha@gmail.com"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewGoogleProvider("cid", "secret", "http://localhost/cb")
	p.config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	p.userInfoURL = srv.URL + "/userinfo"

	g, err := p.Exchange(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "42", g.Sub)
	assert.Equal(t, "asha@gmail.com", g.Email)

	assert.Contains(t, p.AuthURL("state-1"), "state=state-1")
	assert.Equal(t, "cid", p.ClientID())
}
