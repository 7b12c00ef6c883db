package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"

	"github.com/sakif/truassets/internal/model"
)

// GoogleUser is the profile carried by a Google ID token or returned by the
// userinfo endpoint.
type GoogleUser struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// AuthenticatedUser maps the Google profile to a regular (non-admin) session
// identity keyed by the Google subject.
func (g GoogleUser) AuthenticatedUser() model.AuthenticatedUser {
	return model.AuthenticatedUser{
		ID:      g.Sub,
		Name:    g.Name,
		Email:   g.Email,
		Picture: g.Picture,
		Role:    model.RoleUser,
	}
}

type googleClaims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// DecodeGoogleCredential reads the profile out of a Google Sign-In credential
// (an ID token).
//
// The signature is NOT verified; the credential is trusted as delivered by
// the Sign-In widget. When audience is not empty the token's "aud" must
// contain it, which rejects credentials minted for other applications.
func DecodeGoogleCredential(credential, audience string) (GoogleUser, error) {
	var c googleClaims
	if _, _, err := jwt.NewParser().ParseUnverified(credential, &c); err != nil {
		return GoogleUser{}, fmt.Errorf("auth: decoding google credential: %w", err)
	}
	if audience != "" {
		ok := false
		for _, aud := range c.Audience {
			if aud == audience {
				ok = true
				break
			}
		}
		if !ok {
			return GoogleUser{}, errors.New("auth: google credential has the wrong audience")
		}
	}
	if c.Subject == "" || c.Email == "" {
		return GoogleUser{}, errors.New("auth: google credential lacks sub or email")
	}
	return GoogleUser{Sub: c.Subject, Name: c.Name, Email: c.Email, Picture: c.Picture}, nil
}

// Mock identity used by the development login.
const (
	MockName    = "Test User"
	MockEmail   = "testuser@gmail.com"
	MockPicture = "https://ui-avatars.com/api/?name=Test+User&background=0D8ABC&color=fff"
)

// MockGoogleUser is the fixed profile used when Google sign-in is not
// configured. Each call gets a fresh subject, but the email is constant, so
// the directory keeps a single entry for it.
func MockGoogleUser(now time.Time) GoogleUser {
	return GoogleUser{
		Sub:     "user-" + xid.NewWithTime(now).String(),
		Name:    MockName,
		Email:   MockEmail,
		Picture: MockPicture,
	}
}
