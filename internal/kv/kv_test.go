package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok, "absent key should report ok=false")

	require.NoError(t, m.Set(ctx, "users", `[]`))
	v, ok, err := m.Get(ctx, "users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)

	require.NoError(t, m.Set(ctx, "users", `[{"id":"u1"}]`))
	v, _, _ = m.Get(ctx, "users")
	assert.Equal(t, `[{"id":"u1"}]`, v, "Set should overwrite")

	require.NoError(t, m.Remove(ctx, "users"))
	_, ok, _ = m.Get(ctx, "users")
	assert.False(t, ok)

	// removing an absent key is not an error
	assert.NoError(t, m.Remove(ctx, "users"))
}

func TestWithPrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	p := WithPrefix(m, "truassets_")

	require.NoError(t, p.Set(ctx, "session", `{"id":"a"}`))

	assert.Equal(t, map[string]string{"truassets_session": `{"id":"a"}`}, m.Snapshot())

	v, ok, err := p.Get(ctx, "session")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"a"}`, v)

	require.NoError(t, p.Remove(ctx, "session"))
	assert.Empty(t, m.Snapshot())
}

func TestWithPrefix_EmptyPrefixIsIdentity(t *testing.T) {
	m := NewMemory()
	assert.Same(t, Store(m), WithPrefix(m, ""))
}
