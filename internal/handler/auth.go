package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/truassets/internal/auth"
	"github.com/sakif/truassets/internal/service"
)

const stateCookieName = "oauth_state"

// AuthHandler runs the login paths and sets the session cookie.
//
//   - HandleAdminLogin       → email/password check for the admin console
//   - HandleGoogleCredential → Google Sign-In credential from the browser
//   - HandleGoogleLogin      → redirect to Google's consent page
//   - HandleGoogleCallback   → receive the code, log in, redirect home
//   - HandleDevLogin         → fixed mock identity when Google is not set up
//   - HandleLogout           → end the session and clear the cookie
//   - HandleMe               → the current session's identity
type AuthHandler struct {
	auth   *service.AuthService
	secure bool // set the Secure flag on cookies (HTTPS deployments)
	logger *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, secure: secureCookies, logger: logger}
}

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type credentialRequest struct {
	Credential string `json:"credential"`
}

// HandleAdminLogin checks the admin credentials.
//
// HTTP: POST /auth/admin/login  {"email": "...", "password": "..."}
func (h *AuthHandler) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.auth.AdminLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	h.setTokenCookie(w, res.Token)
	writeJSON(w, http.StatusOK, res)
}

// HandleGoogleCredential logs in with a Google Sign-In credential (an ID
// token obtained by the browser).
//
// HTTP: POST /auth/google/credential  {"credential": "<jwt>"}
func (h *AuthHandler) HandleGoogleCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.auth.GoogleCredentialLogin(r.Context(), req.Credential)
	if err != nil {
		writeError(w, err)
		return
	}
	h.setTokenCookie(w, res.Token)
	writeJSON(w, http.StatusOK, res)
}

// HandleGoogleLogin redirects the browser to Google.
//
// HTTP: GET /auth/google/login
//
// A random state is stored in a short-lived HttpOnly cookie and checked on
// the callback, so only flows started here can complete.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()
	url, err := h.auth.GoogleAuthURL(state)
	if err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the code flow.
//
// HTTP: GET /auth/google/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("google callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	// Single use.
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("google callback: authorization denied", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	res, err := h.auth.GoogleCallbackLogin(r.Context(), code)
	if err != nil {
		h.logger.Error("google callback failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	h.setTokenCookie(w, res.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleDevLogin logs in as the mock Google user.
//
// HTTP: POST /auth/dev/login
func (h *AuthHandler) HandleDevLogin(w http.ResponseWriter, r *http.Request) {
	res, err := h.auth.DevLogin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.setTokenCookie(w, res.Token)
	writeJSON(w, http.StatusOK, res)
}

// HandleLogout ends the session. Tokens issued for it stop validating at
// once, because RequireAuth also checks the session's current user.
//
// HTTP: POST /auth/logout (behind RequireAuth)
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context())
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the identity RequireAuth placed in the context.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		var err error
		if u, err = h.auth.Current(); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
