// Package service holds the business rules between the HTTP handlers and the
// stores:
//
//	handler (HTTP) → service (rules, apperror) → repository interfaces → store
//
// Services never see http.Request or status codes. They return *AppError
// values that the handler layer maps to HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/truassets/internal/apperror"
	"github.com/sakif/truassets/internal/auth"
	"github.com/sakif/truassets/internal/model"
	"github.com/sakif/truassets/internal/repository"
)

// AuthService turns identity assertions into a session login plus a session
// token.
//
// Every login path ends in sessions.Login, which publishes user_login and so
// reconciles the user directory before the method returns.
type AuthService struct {
	sessions repository.Sessions
	tokens   *auth.TokenService
	admin    *auth.AdminAuthenticator
	google   *auth.GoogleProvider // nil when Google sign-in is not configured
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthService wires the login paths. google may be nil; the development
// login is available only then.
func NewAuthService(
	sessions repository.Sessions,
	tokens *auth.TokenService,
	admin *auth.AdminAuthenticator,
	google *auth.GoogleProvider,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		sessions: sessions,
		tokens:   tokens,
		admin:    admin,
		google:   google,
		logger:   logger,
		now:      time.Now,
	}
}

// AuthResult is the logged-in identity and its session token.
type AuthResult struct {
	User  model.AuthenticatedUser `json:"user"`
	Token string                  `json:"-"`
}

// AdminLogin checks the admin credentials.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "email and password are required")
	}

	u, err := s.admin.Authenticate(email, password)
	if err != nil {
		s.logger.Warn("admin login failed", slog.String("email", email))
		return nil, apperror.Unauthorized("invalid email or password")
	}
	return s.login(ctx, u, "admin")
}

// GoogleCredentialLogin logs in with a Google Sign-In credential.
func (s *AuthService) GoogleCredentialLogin(ctx context.Context, credential string) (*AuthResult, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, apperror.ValidationFailed("credential", "credential is required")
	}
	audience := ""
	if s.google != nil {
		audience = s.google.ClientID()
	}
	g, err := auth.DecodeGoogleCredential(credential, audience)
	if err != nil {
		s.logger.Warn("google credential rejected", slog.String("error", err.Error()))
		return nil, apperror.Unauthorized("invalid google credential")
	}
	return s.login(ctx, g.AuthenticatedUser(), "google")
}

// GoogleAuthURL starts the OAuth code flow.
func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", apperror.NotFound("login provider", "google")
	}
	return s.google.AuthURL(state), nil
}

// GoogleCallbackLogin completes the OAuth code flow.
func (s *AuthService) GoogleCallbackLogin(ctx context.Context, code string) (*AuthResult, error) {
	if s.google == nil {
		return nil, apperror.NotFound("login provider", "google")
	}
	g, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google callback: %w", err)
	}
	return s.login(ctx, g.AuthenticatedUser(), "google")
}

// DevLoginEnabled reports whether the mock Google login is available.
func (s *AuthService) DevLoginEnabled() bool {
	return s.google == nil
}

// DevLogin logs in as the fixed mock Google user. It is refused once real
// Google sign-in is configured.
func (s *AuthService) DevLogin(ctx context.Context) (*AuthResult, error) {
	if !s.DevLoginEnabled() {
		return nil, apperror.Forbidden("development login is disabled")
	}
	return s.login(ctx, auth.MockGoogleUser(s.now()).AuthenticatedUser(), "dev")
}

// Logout ends the session.
func (s *AuthService) Logout(ctx context.Context) {
	s.sessions.Logout(ctx)
}

// Current returns the session's identity.
func (s *AuthService) Current() (model.AuthenticatedUser, error) {
	u, ok := s.sessions.Current()
	if !ok {
		return model.AuthenticatedUser{}, apperror.Unauthorized("no active session")
	}
	return u, nil
}

func (s *AuthService) login(ctx context.Context, u model.AuthenticatedUser, method string) (*AuthResult, error) {
	token, err := s.tokens.Generate(u)
	if err != nil {
		return nil, fmt.Errorf("issuing token for %s: %w", u.ID, err)
	}

	s.sessions.Login(ctx, u)
	s.logger.Info("login succeeded",
		slog.String("userID", u.ID),
		slog.String("method", method),
	)
	return &AuthResult{User: u, Token: token}, nil
}
