// Package kv defines the durable key/value medium the stores persist to.
//
// The contract is deliberately small: string keys, string values, no
// transactions across keys. Each store keeps its whole collection under one
// key, so a crash between two writes can never leave a single collection
// half-written.
//
// Backends live in sub-packages (sqlite, postgres, redis, s3). This package
// holds the interface, the in-memory backend used by tests, and a key
// prefixing decorator.
package kv

import (
	"context"
	"maps"
	"sync"
)

// Store is a durable string-keyed medium.
//
// Get returns ok=false (and a nil error) when the key is absent. Remove of an
// absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Closer is implemented by backends that hold a connection.
type Closer interface {
	Close() error
}

// Memory is an in-process Store. Contents are lost when the process exits.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Snapshot returns a copy of every key/value pair. Used by tests.
func (m *Memory) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.data)
}

// Prefixed namespaces every key of an underlying Store.
type Prefixed struct {
	Store
	Prefix string
}

// WithPrefix wraps s so that key "users" is stored as prefix+"users".
// An empty prefix returns s unchanged.
func WithPrefix(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &Prefixed{Store: s, Prefix: prefix}
}

func (p *Prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.Store.Get(ctx, p.Prefix+key)
}

func (p *Prefixed) Set(ctx context.Context, key, value string) error {
	return p.Store.Set(ctx, p.Prefix+key, value)
}

func (p *Prefixed) Remove(ctx context.Context, key string) error {
	return p.Store.Remove(ctx, p.Prefix+key)
}
