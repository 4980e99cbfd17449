package snapshot

import (
	"fmt"

	"github.com/microcosm-cc/avatars/cache"
	e "github.com/microcosm-cc/avatars/errors"
	"github.com/microcosm-cc/avatars/models"
)

// MemcacheStore keeps the snapshot in memcache under a single key. Memcache
// may evict it at any time, in which case the next start is a cold one.
type MemcacheStore struct {
	Key string
}

// NewMemcacheStore returns a MemcacheStore for key. cache.InitCache must have
// been called.
func NewMemcacheStore(key string) (*MemcacheStore, error) {
	if !cache.ValidKey(key) {
		return nil, e.New(
			"snapshot.NewMemcacheStore",
			e.SnapshotFailure,
			fmt.Sprintf("invalid memcache key %q", key),
		)
	}

	return &MemcacheStore{Key: key}, nil
}

// Load implements models.SnapshotStore
func (s *MemcacheStore) Load() (*models.StoreSnapshot, error) {
	snap := &models.StoreSnapshot{}

	ok, err := cache.Get(s.Key, snap)
	if err != nil {
		return nil, e.Wrap("snapshot.MemcacheStore.Load", e.SnapshotFailure, err)
	}
	if !ok {
		return nil, nil
	}

	return snap, nil
}

// Save implements models.SnapshotStore. The snapshot never expires.
func (s *MemcacheStore) Save(snap *models.StoreSnapshot) error {
	err := cache.Set(s.Key, snap, 0)
	if err != nil {
		return e.Wrap("snapshot.MemcacheStore.Save", e.SnapshotFailure, err)
	}

	return nil
}
