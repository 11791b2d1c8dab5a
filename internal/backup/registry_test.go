package backup

import (
	"context"
	"fmt"
	"testing"
	"time"

	"firemail/mail-api/internal/blob"
	"firemail/mail-api/internal/kv"

	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, capacity int) *Registry {
	t.Helper()

	bs, err := blob.NewDisk(t.TempDir())
	require.NoError(t, err)

	return &Registry{KV: kv.NewMemory(), Blob: bs, Cap: capacity}
}

func putSnapshot(t *testing.T, r *Registry, n int) Record {
	t.Helper()
	ctx := context.Background()

	rec := Record{
		ID:        fmt.Sprintf("backup_1_%d", n),
		Path:      fmt.Sprintf("backups/users/1/backup_1_%d.json", n),
		CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Hour),
		Items:     n,
	}

	require.NoError(t, r.Blob.Put(ctx, rec.Path, []byte(`{}`), "application/json"))
	require.NoError(t, r.Register(ctx, UserKey(1), rec))

	return rec
}

func TestRegisterAndList(t *testing.T) {
	r := newTestRegistry(t, 10)
	ctx := context.Background()

	first := putSnapshot(t, r, 1)
	second := putSnapshot(t, r, 2)

	list, err := r.List(ctx, UserKey(1))
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Newest first
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, first.ID, list[1].ID)
}

func TestListEmptyKey(t *testing.T) {
	r := newTestRegistry(t, 10)

	list, err := r.List(context.Background(), UserKey(99))
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestRegisterEvictsOldest(t *testing.T) {
	r := newTestRegistry(t, 10)
	ctx := context.Background()

	var recs []Record
	for n := 1; n <= 11; n++ {
		recs = append(recs, putSnapshot(t, r, n))
	}

	list, err := r.List(ctx, UserKey(1))
	require.NoError(t, err)
	require.Len(t, list, 10)

	// The oldest entry fell out of the registry
	for _, rec := range list {
		require.NotEqual(t, recs[0].ID, rec.ID)
	}

	// and its backing object is gone, while the newest survives
	_, ok, err := r.Blob.Get(ctx, recs[0].Path)
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = r.Blob.Get(ctx, recs[10].Path)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRegistriesAreIsolated(t *testing.T) {
	r := newTestRegistry(t, 10)
	ctx := context.Background()

	putSnapshot(t, r, 1)

	require.NoError(t, r.Register(ctx, SystemKey, Record{ID: "system_backup_x", Path: "backups/system/x.json"}))

	userList, err := r.List(ctx, UserKey(1))
	require.NoError(t, err)
	require.Len(t, userList, 1)

	sysList, err := r.List(ctx, SystemKey)
	require.NoError(t, err)
	require.Len(t, sysList, 1)
	require.Equal(t, "system_backup_x", sysList[0].ID)
}
