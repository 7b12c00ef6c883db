package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/truassets/internal/auth"
	"github.com/sakif/truassets/internal/handler"
	"github.com/sakif/truassets/internal/kv"
	"github.com/sakif/truassets/internal/service"
	"github.com/sakif/truassets/internal/store"
)

const (
	adminEmail    = "admin@truassets.com"
	adminPassword = "Admin@123"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

// testApp is the console's HTTP surface over real stores on an in-memory kv.
type testApp struct {
	router   http.Handler
	kv       *kv.Memory
	props    *store.PropertyStore
	dir      *store.DirectoryStore
	sessions *store.SessionStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()
	mem := kv.NewMemory()
	sessions := store.NewSessionStore(mem, store.Options{})
	props := store.NewPropertyStore(ctx, mem, store.Options{})
	dir := store.NewDirectoryStore(ctx, mem, sessions, store.Options{})
	t.Cleanup(dir.Close)

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789")
	require.NoError(t, err)
	admin, err := auth.NewAdminAuthenticator(adminEmail, adminPassword, auth.NewPasswordServiceForTest(bcrypt.MinCost))
	require.NoError(t, err)

	authH := handler.NewAuthHandler(service.NewAuthService(sessions, tokens, admin, nil, logger), false, logger)
	propH := handler.NewPropertyHandler(service.NewPropertyService(props, logger), logger)
	userH := handler.NewUserHandler(service.NewDirectoryService(dir, logger), logger)
	repH := handler.NewReportHandler(service.NewReportService(props, logger), logger)

	requireAuth := auth.RequireAuth(tokens, sessions)

	r := chi.NewRouter()
	r.Post("/auth/admin/login", authH.HandleAdminLogin)
	r.Post("/auth/google/credential", authH.HandleGoogleCredential)
	r.Get("/auth/google/login", authH.HandleGoogleLogin)
	r.Post("/auth/dev/login", authH.HandleDevLogin)
	r.With(requireAuth).Post("/auth/logout", authH.HandleLogout)
	r.Route("/api", func(r chi.Router) {
		r.Get("/properties", propH.HandleList)
		r.Get("/properties/featured", propH.HandleFeatured)
		r.Get("/properties/stats", propH.HandleStats)
		r.Get("/properties/{id}", propH.HandleGet)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authH.HandleMe)
			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				r.Post("/properties", propH.HandleCreate)
				r.Patch("/properties/{id}", propH.HandleUpdate)
				r.Delete("/properties/{id}", propH.HandleDelete)
				r.Get("/users", userH.HandleList)
				r.Get("/users/stats", userH.HandleStats)
				r.Post("/users", userH.HandleCreate)
				r.Get("/users/{id}", userH.HandleGet)
				r.Patch("/users/{id}", userH.HandleUpdate)
				r.Delete("/users/{id}", userH.HandleDelete)
				r.Post("/users/{id}/{action}", userH.HandleModerate)
				r.Get("/reports", repH.HandleReport)
				r.Get("/reports/export", repH.HandleExport)
				r.Get("/analytics", repH.HandleAnalytics)
			})
		})
	})

	return &testApp{router: r, kv: mem, props: props, dir: dir, sessions: sessions}
}

// do sends a request with an optional JSON body and cookie.
func (a *testApp) do(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

// loginAdmin returns the session cookie of a fresh admin login.
func (a *testApp) loginAdmin(t *testing.T) *http.Cookie {
	t.Helper()
	rr := a.do(http.MethodPost, "/auth/admin/login", map[string]string{"email": adminEmail, "password": adminPassword}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return tokenCookie(t, rr)
}

func tokenCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("no token cookie set")
	return nil
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}
