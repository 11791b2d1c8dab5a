package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryExpiry(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	m := NewMemory()
	m.Now = func() time.Time { return current }
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "a", "1", time.Minute))
	require.NoError(t, m.Put(ctx, "b", "2", 0))

	_, ok, err := m.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)

	current = current.Add(2 * time.Minute)

	// TTL'd entry is gone, the untimed one survives
	_, ok, err = m.Get(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok)

	v, ok, err := m.Get(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2", v)
}

func TestMemoryJSONRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	type entry struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, m.PutJSON(ctx, "e", entry{Name: "x", Count: 3}, 0))

	var got entry
	ok, err := m.GetJSON(ctx, "e", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, entry{Name: "x", Count: 3}, got)

	ok, err = m.GetJSON(ctx, "missing", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "k", "v", 0))
	require.NoError(t, m.Delete(ctx, "k"))
	require.NoError(t, m.Delete(ctx, "k"))

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}
