package snapshot

import (
	"os"
	"path/filepath"

	"github.com/golang/glog"

	e "github.com/microcosm-cc/avatars/errors"
	"github.com/microcosm-cc/avatars/models"
)

// FileStore keeps the snapshot in a gob file
type FileStore struct {
	Path string
}

// NewFileStore returns a FileStore writing to path
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the snapshot file. A missing file is not an error.
func (s *FileStore) Load() (*models.StoreSnapshot, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, e.Wrap("snapshot.FileStore.Load", e.SnapshotFailure, err)
	}

	snap, err := models.DecodeSnapshot(data)
	if err != nil {
		return nil, e.Wrap("snapshot.FileStore.Load", e.SnapshotFailure, err)
	}

	return snap, nil
}

// Save writes the snapshot to a temporary file in the same directory and
// renames it over the previous one, so a crash leaves either the old or the
// new snapshot behind
func (s *FileStore) Save(snap *models.StoreSnapshot) error {
	data, err := models.EncodeSnapshot(snap)
	if err != nil {
		return e.Wrap("snapshot.FileStore.Save", e.SnapshotFailure, err)
	}

	dir, base := filepath.Split(s.Path)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, base+".*.tmp")
	if err != nil {
		return e.Wrap("snapshot.FileStore.Save", e.SnapshotFailure, err)
	}
	tmp := f.Name()

	_, err = f.Write(data)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, s.Path)
	}
	if err != nil {
		os.Remove(tmp)
		return e.Wrap("snapshot.FileStore.Save", e.SnapshotFailure, err)
	}

	if glog.V(2) {
		glog.Infof("Saved %d avatars to %s", len(snap.Avatars), s.Path)
	}

	return nil
}
