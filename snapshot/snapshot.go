/*
Package snapshot persists the contents of an avatar store so that a restarted
process does not need to fetch every avatar again.

Every backend implements models.SnapshotStore. The backend in use is chosen by
the snapshot_backend config key.
*/
package snapshot

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/microcosm-cc/avatars/cache"
	conf "github.com/microcosm-cc/avatars/config"
	e "github.com/microcosm-cc/avatars/errors"
	h "github.com/microcosm-cc/avatars/helpers"
	"github.com/microcosm-cc/avatars/models"
)

// Backend names accepted by New
const (
	BackendNone     = "none"
	BackendFile     = "file"
	BackendMemcache = "memcache"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// NullStore never saves anything and always loads nothing
type NullStore struct{}

// Load implements models.SnapshotStore
func (NullStore) Load() (*models.StoreSnapshot, error) {
	return nil, nil
}

// Save implements models.SnapshotStore
func (NullStore) Save(*models.StoreSnapshot) error {
	return nil
}

// New returns the snapshot store for backend, configured from the config
// package
func New(backend string) (models.SnapshotStore, error) {
	if glog.V(2) {
		glog.Infof("Using %s snapshot backend", backend)
	}

	switch backend {
	case BackendNone, "":
		return NullStore{}, nil

	case BackendFile:
		return NewFileStore(conf.ConfigStrings[conf.SnapshotFile]), nil

	case BackendMemcache:
		if !cache.Enabled() {
			cache.InitCache(
				conf.ConfigStrings[conf.MemcachedHost],
				conf.ConfigInt64s[conf.MemcachedPort],
			)
		}
		return NewMemcacheStore(conf.ConfigStrings[conf.SnapshotKey])

	case BackendPostgres:
		db, err := h.OpenDBConnection(h.DBConfig{
			Host:     conf.ConfigStrings[conf.DatabaseHost],
			Port:     conf.ConfigInt64s[conf.DatabasePort],
			Database: conf.ConfigStrings[conf.DatabaseName],
			Username: conf.ConfigStrings[conf.DatabaseUsername],
			Password: conf.ConfigStrings[conf.DatabasePassword],
		})
		if err != nil {
			return nil, e.Wrap("snapshot.New", e.SnapshotFailure, err)
		}
		return NewPostgresStore(db, conf.ConfigStrings[conf.SnapshotKey])

	case BackendS3:
		return NewMinioStore(MinioConfig{
			Endpoint:        conf.ConfigStrings[conf.S3Endpoint],
			AccessKeyID:     conf.ConfigStrings[conf.S3AccessKeyID],
			SecretAccessKey: conf.ConfigStrings[conf.S3SecretAccessKey],
			Bucket:          conf.ConfigStrings[conf.S3BucketName],
			Object:          conf.ConfigStrings[conf.SnapshotKey],
			UseSSL:          conf.ConfigBool[conf.S3UseSSL],
		})

	default:
		return nil, e.New(
			"snapshot.New",
			e.SnapshotFailure,
			fmt.Sprintf("unknown snapshot backend %q", backend),
		)
	}
}
