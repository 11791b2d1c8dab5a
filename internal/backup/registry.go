package backup

import (
	"context"
	"fmt"
	"sort"

	"firemail/mail-api/internal/blob"
	"firemail/mail-api/internal/fail"
	"firemail/mail-api/internal/kv"

	"go.uber.org/zap"
)

type registryList struct {
	Backups []Record `json:"backups"`
}

// Registry is the bounded snapshot index. Entries are kept oldest-first;
// appending beyond Cap evicts the oldest entry and deletes its backing
// object, so at most Cap snapshots stay referenced and alive.
type Registry struct {
	KV   kv.Store
	Blob blob.Store
	Cap  int
}

func (r *Registry) Register(ctx context.Context, key string, rec Record) error {
	var list registryList

	if _, err := r.KV.GetJSON(ctx, key, &list); err != nil {
		return fmt.Errorf("%w: %v", fail.ErrStoreUnavailable, err)
	}

	list.Backups = append(list.Backups, rec)

	// Evict before the list write lands so an over-cap entry never
	// survives a crash between the two
	for len(list.Backups) > r.Cap {
		oldest := list.Backups[0]
		list.Backups = list.Backups[1:]

		if err := r.Blob.Delete(ctx, oldest.Path); err != nil {
			zap.L().Warn("Failed to delete evicted snapshot object",
				zap.String("id", oldest.ID),
				zap.String("path", oldest.Path),
				zap.Error(err))
		}
	}

	if err := r.KV.PutJSON(ctx, key, list, 0); err != nil {
		return fmt.Errorf("%w: %v", fail.ErrStoreUnavailable, err)
	}

	return nil
}

// List returns the registry entries newest-first regardless of how they
// were stored.
func (r *Registry) List(ctx context.Context, key string) ([]Record, error) {
	var list registryList

	if _, err := r.KV.GetJSON(ctx, key, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", fail.ErrStoreUnavailable, err)
	}

	if list.Backups == nil {
		list.Backups = []Record{}
	}

	sort.Slice(list.Backups, func(i, j int) bool {
		return list.Backups[i].CreatedAt.After(list.Backups[j].CreatedAt)
	})

	return list.Backups, nil
}
