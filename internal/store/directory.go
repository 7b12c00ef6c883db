package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/truassets/internal/kv"
	"github.com/sakif/truassets/internal/model"
	"github.com/sakif/truassets/internal/repository"
)

const userIDPrefix = "user-"

// Outcomes of a login sync, used as the metrics label.
const (
	SyncIgnored = "ignored"
	SyncUpdated = "updated"
	SyncCreated = "created"
)

// LoginSource publishes login events. *SessionStore implements it.
type LoginSource interface {
	Subscribe(fn func(model.AuthenticatedUser)) (unsubscribe func())
}

// DirectoryStore owns the platform-user directory, newest first, and keeps it
// in step with logins.
type DirectoryStore struct {
	mu           sync.RWMutex
	users        []model.PlatformUser
	persist      persister
	persistEmpty bool
	now          func() time.Time
	logger       *slog.Logger
	metrics      Recorder
	unsubscribe  func()
}

// NewDirectoryStore loads the persisted directory and, when logins is not
// nil, subscribes to it. The subscription is in place before NewDirectoryStore
// returns, so a later logins.Restore is reconciled.
func NewDirectoryStore(ctx context.Context, store kv.Store, logins LoginSource, opts Options) *DirectoryStore {
	opts = opts.withDefaults()
	s := &DirectoryStore{
		persist:      persister{kv: store, key: KeyUsers, logger: opts.Logger, metrics: opts.Metrics},
		persistEmpty: opts.PersistEmpty,
		now:          opts.Now,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
	}
	if load(ctx, s.persist, &s.users) {
		s.logger.Info("user directory loaded", slog.Int("count", len(s.users)))
	}
	if logins != nil {
		// The event carries no context; the sync write is short and local to
		// the store, so it runs under a fresh background context.
		s.unsubscribe = logins.Subscribe(func(u model.AuthenticatedUser) {
			s.SyncAuthUser(context.Background(), u)
		})
	}
	return s
}

// Close detaches the directory from its login source.
func (s *DirectoryStore) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// SyncAuthUser reconciles one login with the directory:
//
//   - admins are never directory entries and are ignored
//   - an entry with the same email (exact match) gets the login's name and a
//     fresh LastActive; its ID, Status, JoinedDate and TotalInvestments stay
//   - otherwise a new active entry is prepended, keyed by the login's ID
//
// Replaying the same login converges to the same directory modulo LastActive.
// It returns the outcome (SyncIgnored, SyncUpdated or SyncCreated).
func (s *DirectoryStore) SyncAuthUser(ctx context.Context, u model.AuthenticatedUser) string {
	if u.IsAdmin() {
		s.metrics.LoginSync(SyncIgnored)
		return SyncIgnored
	}
	now := s.now().UTC()

	s.mu.Lock()
	outcome := SyncCreated
	if i := s.emailIndexLocked(u.Email); i >= 0 {
		s.users[i].Name = u.Name
		s.users[i].LastActive = now
		outcome = SyncUpdated
	} else {
		s.users = slices.Insert(s.users, 0, model.PlatformUser{
			ID:         u.ID,
			Name:       u.Name,
			Email:      u.Email,
			Role:       u.Role,
			Status:     model.UserActive,
			LastActive: now,
			JoinedDate: now,
		})
	}
	s.commitLocked(ctx)
	s.mu.Unlock()

	s.logger.Info("directory synced with login",
		slog.String("email", u.Email),
		slog.String("outcome", outcome),
	)
	s.metrics.LoginSync(outcome)
	return outcome
}

// Add creates an entry from d. Role and Status default to user and active.
func (s *DirectoryStore) Add(ctx context.Context, d model.UserDraft) model.PlatformUser {
	u := s.newEntry(d)
	s.mu.Lock()
	s.insertLocked(ctx, u)
	s.mu.Unlock()
	s.added(u)
	return u
}

// AddIfAbsent is Add unless an entry already holds d.Email. In that case it
// returns that entry and false, and changes nothing. The check and the insert
// happen under one lock, so a concurrent login sync cannot slip in between.
func (s *DirectoryStore) AddIfAbsent(ctx context.Context, d model.UserDraft) (model.PlatformUser, bool) {
	u := s.newEntry(d)
	s.mu.Lock()
	if i := s.emailIndexLocked(d.Email); i >= 0 {
		holder := s.users[i]
		s.mu.Unlock()
		return holder, false
	}
	s.insertLocked(ctx, u)
	s.mu.Unlock()
	s.added(u)
	return u, true
}

func (s *DirectoryStore) newEntry(d model.UserDraft) model.PlatformUser {
	now := s.now().UTC()
	u := model.PlatformUser{
		ID:               userIDPrefix + xid.New().String(),
		Name:             d.Name,
		Email:            d.Email,
		Role:             d.Role,
		Status:           d.Status,
		LastActive:       d.LastActive.UTC(),
		JoinedDate:       now,
		TotalInvestments: d.TotalInvestments,
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	if u.Status == "" {
		u.Status = model.UserActive
	}
	if d.LastActive.IsZero() {
		u.LastActive = now
	}
	return u
}

func (s *DirectoryStore) insertLocked(ctx context.Context, u model.PlatformUser) {
	s.users = slices.Insert(s.users, 0, u)
	s.commitLocked(ctx)
}

func (s *DirectoryStore) added(u model.PlatformUser) {
	s.logger.Info("user added", slog.String("userID", u.ID), slog.String("email", u.Email))
	s.metrics.Mutation(KeyUsers, "add")
}

// Update merges patch into the entry with the given ID. It reports false, and
// changes nothing, when the ID is unknown.
func (s *DirectoryStore) Update(ctx context.Context, id string, patch model.UserPatch) (model.PlatformUser, bool) {
	u, found, _ := s.update(ctx, id, patch, false)
	return u, found
}

// UpdateUnique is Update that refuses to give the entry an email another
// entry already holds. holder is that other entry's ID, or "" when the update
// went through or the ID is unknown.
func (s *DirectoryStore) UpdateUnique(ctx context.Context, id string, patch model.UserPatch) (u model.PlatformUser, found bool, holder string) {
	return s.update(ctx, id, patch, true)
}

func (s *DirectoryStore) update(ctx context.Context, id string, patch model.UserPatch, unique bool) (model.PlatformUser, bool, string) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return model.PlatformUser{}, false, ""
	}
	if unique && patch.Email != nil {
		if j := s.emailIndexLocked(*patch.Email); j >= 0 && j != i {
			holder := s.users[j].ID
			s.mu.Unlock()
			return model.PlatformUser{}, true, holder
		}
	}
	patch.Apply(&s.users[i])
	updated := s.users[i]
	s.commitLocked(ctx)
	s.mu.Unlock()

	s.logger.Info("user updated", slog.String("userID", id))
	s.metrics.Mutation(KeyUsers, "update")
	return updated, true, ""
}

// Remove deletes the entry with the given ID and reports whether it existed.
func (s *DirectoryStore) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.users = slices.Delete(s.users, i, i+1)
	s.commitLocked(ctx)
	s.mu.Unlock()

	s.logger.Info("user removed", slog.String("userID", id))
	s.metrics.Mutation(KeyUsers, "remove")
	return true
}

// Block sets the entry's status to blocked.
func (s *DirectoryStore) Block(ctx context.Context, id string) (model.PlatformUser, bool) {
	return s.setStatus(ctx, id, model.UserBlocked)
}

// Unblock sets the entry's status back to active.
func (s *DirectoryStore) Unblock(ctx context.Context, id string) (model.PlatformUser, bool) {
	return s.setStatus(ctx, id, model.UserActive)
}

// Hold sets the entry's status to on-hold.
func (s *DirectoryStore) Hold(ctx context.Context, id string) (model.PlatformUser, bool) {
	return s.setStatus(ctx, id, model.UserOnHold)
}

func (s *DirectoryStore) setStatus(ctx context.Context, id string, status model.UserStatus) (model.PlatformUser, bool) {
	return s.Update(ctx, id, model.UserPatch{Status: &status})
}

// Get returns the entry with the given ID.
func (s *DirectoryStore) Get(id string) (model.PlatformUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return model.PlatformUser{}, false
	}
	return s.users[i], true
}

// FindByEmail returns the entry whose email equals email exactly.
func (s *DirectoryStore) FindByEmail(email string) (model.PlatformUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.emailIndexLocked(email)
	if i < 0 {
		return model.PlatformUser{}, false
	}
	return s.users[i], true
}

// All returns a copy of the directory in store order.
func (s *DirectoryStore) All() []model.PlatformUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PlatformUser, len(s.users))
	copy(out, s.users)
	return out
}

// Stats counts entries per status.
func (s *DirectoryStore) Stats() model.UserStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := model.UserStats{Total: len(s.users)}
	for _, u := range s.users {
		switch u.Status {
		case model.UserActive:
			stats.Active++
		case model.UserBlocked:
			stats.Blocked++
		case model.UserOnHold:
			stats.OnHold++
		}
	}
	return stats
}

func (s *DirectoryStore) emailIndexLocked(email string) int {
	return slices.IndexFunc(s.users, func(u model.PlatformUser) bool { return u.Email == email })
}

func (s *DirectoryStore) indexLocked(id string) int {
	return slices.IndexFunc(s.users, func(u model.PlatformUser) bool { return u.ID == id })
}

func (s *DirectoryStore) commitLocked(ctx context.Context) {
	if len(s.users) == 0 && !s.persistEmpty {
		return
	}
	users := s.users
	if users == nil {
		users = []model.PlatformUser{}
	}
	s.persist.save(ctx, users)
}

var _ repository.Directory = (*DirectoryStore)(nil)
