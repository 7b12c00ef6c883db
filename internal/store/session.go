package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sakif/truassets/internal/kv"
	"github.com/sakif/truassets/internal/model"
	"github.com/sakif/truassets/internal/repository"
)

// EventUserLogin names the cross-store login event in logs.
const EventUserLogin = "user_login"

// SessionStore holds at most one AuthenticatedUser.
//
// STATE MACHINE:
//
//	anonymous --Login(u)--> authenticated   (persist, publish user_login)
//	authenticated --Logout--> anonymous     (remove key, no event)
//	start --Restore, record ok--> authenticated (publish user_login)
//	start --Restore, record corrupt--> anonymous (remove key)
//
// A second Login while authenticated replaces the identity and publishes
// again.
type SessionStore struct {
	mu      sync.RWMutex
	user    *model.AuthenticatedUser
	persist persister
	logins  broadcaster[model.AuthenticatedUser]
	logger  *slog.Logger
}

// NewSessionStore returns an anonymous session store. Call Restore after the
// dependent stores have subscribed so they see the cold-start login event.
func NewSessionStore(store kv.Store, opts Options) *SessionStore {
	opts = opts.withDefaults()
	return &SessionStore{
		persist: persister{kv: store, key: KeySession, logger: opts.Logger, metrics: opts.Metrics},
		logger:  opts.Logger,
	}
}

// Subscribe registers fn for login events. fn runs synchronously inside
// Login/Restore, in registration order.
func (s *SessionStore) Subscribe(fn func(model.AuthenticatedUser)) (unsubscribe func()) {
	return s.logins.subscribe(fn)
}

// Restore loads the persisted session. When a record is found the store
// becomes authenticated and publishes the login event, exactly as an
// interactive login would. It reports whether a session was restored.
func (s *SessionStore) Restore(ctx context.Context) bool {
	var rec *model.AuthenticatedUser
	s.mu.Lock()
	if !load(ctx, s.persist, &rec) || rec == nil {
		s.mu.Unlock()
		return false
	}
	u := *rec
	s.user = &u
	s.mu.Unlock()

	s.logger.Info("session restored",
		slog.String("userID", u.ID),
		slog.String("role", string(u.Role)),
	)
	s.publish(u)
	return true
}

// Login makes u the current identity, persists it and publishes the login
// event. Subscribers have finished by the time Login returns.
func (s *SessionStore) Login(ctx context.Context, u model.AuthenticatedUser) {
	s.mu.Lock()
	rec := u
	s.user = &rec
	s.persist.save(ctx, rec)
	s.mu.Unlock()

	s.logger.Info("user logged in",
		slog.String("userID", u.ID),
		slog.String("role", string(u.Role)),
	)
	s.publish(u)
}

// Logout clears the identity and its persisted record.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	prev := s.user
	s.user = nil
	s.persist.remove(ctx)
	s.mu.Unlock()

	if prev != nil {
		s.logger.Info("user logged out", slog.String("userID", prev.ID))
	}
}

// Current returns the authenticated identity, if any.
func (s *SessionStore) Current() (model.AuthenticatedUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.AuthenticatedUser{}, false
	}
	return *s.user, true
}

// IsAuthenticated reports whether a session is present.
func (s *SessionStore) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

// IsAdmin reports whether the current identity has the admin role.
func (s *SessionStore) IsAdmin() bool {
	u, ok := s.Current()
	return ok && u.IsAdmin()
}

func (s *SessionStore) publish(u model.AuthenticatedUser) {
	s.logger.Debug("publishing event", slog.String("event", EventUserLogin), slog.String("userID", u.ID))
	s.logins.publish(u)
}

var _ repository.Sessions = (*SessionStore)(nil)
