// Package auth issues and checks the console's session tokens and verifies
// the identity assertions that lead to a login.
//
// LOGIN FLOW:
//  1. A login handler obtains an AuthenticatedUser, from the admin credential
//     check, a Google credential, or the Google OAuth callback
//  2. The service hands it to the session store (which publishes user_login)
//  3. A JWT naming the user is set as an HttpOnly "token" cookie
//  4. RequireAuth validates the cookie on every protected request and checks
//     the token still names the session's current user
//
// The token is a signed pointer to the session, not the session itself: after
// a logout or a login as someone else, old tokens stop working even though
// their signature is still valid.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/truassets/internal/model"
)

const (
	issuer = "truassets"

	// TokenTTL is the lifetime of a session cookie token.
	TokenTTL = 15 * time.Minute
)

// TokenService signs and validates HS256 session tokens.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a TokenService. Generate a secret with
// `openssl rand -hex 32`.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// claims is the token payload: "sub" carries the user ID and "role" the
// role at login time.
type claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Claims is what a valid token asserts.
type Claims struct {
	UserID string
	Role   model.Role
}

// Generate signs a token for u that expires after TokenTTL.
func (s *TokenService) Generate(u model.AuthenticatedUser) (string, error) {
	return s.GenerateWithDuration(u, TokenTTL)
}

// GenerateWithDuration signs a token for u with a custom lifetime. Tests use
// it to mint expired tokens.
func (s *TokenService) GenerateWithDuration(u model.AuthenticatedUser, d time.Duration) (string, error) {
	now := s.now()
	c := claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature, the HS256 algorithm, the issuer and the
// expiry, and returns the token's claims.
func (s *TokenService) Validate(tokenStr string) (Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, errors.New("auth: token expired")
		}
		return Claims{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Claims{}, errors.New("auth: invalid token claims")
	}
	if c.Subject == "" {
		return Claims{}, errors.New("auth: token has no subject")
	}
	return Claims{UserID: c.Subject, Role: c.Role}, nil
}
