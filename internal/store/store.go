// Package store holds the three stateful collections of the console: the
// authenticated session, the property catalog and the platform-user
// directory.
//
// OWNERSHIP:
// Each store exclusively owns one collection and is the only writer of one
// key in the durable kv.Store:
//
//	SessionStore   → "session"     (one JSON object, or absent)
//	PropertyStore  → "properties"  (JSON array, newest first)
//	DirectoryStore → "users"       (JSON array, newest first)
//
// Every mutation follows the same steps, under the store's mutex:
//
//  1. update the in-memory collection
//  2. rewrite the whole collection under its key
//
// then, after the mutex is released, notify subscribers synchronously.
// Readers get copies; nothing outside a store holds a reference into its
// collection.
//
// CROSS-STORE SYNC:
// SessionStore publishes a login event (the full AuthenticatedUser) on every
// Login and on a successful Restore. DirectoryStore subscribes at
// construction and reconciles its entries before Login returns.
package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/sakif/truassets/internal/kv"
)

// Keys under which the collections are persisted.
const (
	KeySession    = "session"
	KeyProperties = "properties"
	KeyUsers      = "users"
)

// Recorder receives store events for metrics. *metrics.Registry implements
// it.
type Recorder interface {
	Mutation(store, op string)
	WriteFailure(key string)
	LoginSync(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) Mutation(string, string) {}
func (nopRecorder) WriteFailure(string)     {}
func (nopRecorder) LoginSync(string)        {}

// Options are shared by all store constructors. The zero value is usable.
type Options struct {
	Logger  *slog.Logger
	Metrics Recorder

	// PersistEmpty makes the collection stores write "[]" when they are
	// drained. When false (the default) an emptied collection is not
	// written, so the previous non-empty snapshot is what a restart loads.
	PersistEmpty bool

	// Now overrides the clock; tests use it to pin timestamps.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Metrics == nil {
		o.Metrics = nopRecorder{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// persister writes one value under one key. Write errors are logged and
// counted, never returned: a failed write leaves the in-memory state
// authoritative until the next successful one.
type persister struct {
	kv      kv.Store
	key     string
	logger  *slog.Logger
	metrics Recorder
}

func (p persister) save(ctx context.Context, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("encoding collection failed",
			slog.String("key", p.key),
			slog.String("error", err.Error()),
		)
		p.metrics.WriteFailure(p.key)
		return
	}
	if err := p.kv.Set(ctx, p.key, string(data)); err != nil {
		p.logger.Error("persisting collection failed",
			slog.String("key", p.key),
			slog.String("error", err.Error()),
		)
		p.metrics.WriteFailure(p.key)
	}
}

func (p persister) remove(ctx context.Context) {
	if err := p.kv.Remove(ctx, p.key); err != nil {
		p.logger.Error("removing key failed",
			slog.String("key", p.key),
			slog.String("error", err.Error()),
		)
		p.metrics.WriteFailure(p.key)
	}
}

// load decodes the value under the key into dst and reports whether it did.
//
// A value that does not decode is treated as corrupt: the key is removed and
// load returns false, leaving dst untouched. A backend read error is logged
// and also returns false, but the key is kept since it may well be intact.
func load[T any](ctx context.Context, p persister, dst *T) bool {
	raw, ok, err := p.kv.Get(ctx, p.key)
	if err != nil {
		p.logger.Error("reading persisted value failed",
			slog.String("key", p.key),
			slog.String("error", err.Error()),
		)
		return false
	}
	if !ok {
		return false
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		p.logger.Warn("discarding corrupt persisted value",
			slog.String("key", p.key),
			slog.String("error", err.Error()),
		)
		p.remove(ctx)
		return false
	}
	*dst = v
	return true
}

// broadcaster delivers values to subscribers synchronously, in registration
// order, on the publishing goroutine.
type broadcaster[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// subscribe registers fn and returns a function that unregisters it.
func (b *broadcaster[T]) subscribe(fn func(T)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber[T]{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.subs = slices.DeleteFunc(b.subs, func(s subscriber[T]) bool { return s.id == id })
	}
}

// publish calls every subscriber with v. The subscriber list is copied first
// so a handler may subscribe or unsubscribe without deadlocking.
func (b *broadcaster[T]) publish(v T) {
	b.mu.Lock()
	subs := slices.Clone(b.subs)
	b.mu.Unlock()
	for _, s := range subs {
		s.fn(v)
	}
}
