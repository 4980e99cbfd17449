package models

import (
	"bytes"
	"encoding/gob"
	"time"
)

// StoreSnapshot is the persistent form of a Store
type StoreSnapshot struct {
	URL         string
	LastRefresh time.Time
	Avatars     []AvatarType
}

// SnapshotStore persists snapshots. Load returns nil and no error when no
// snapshot has been saved yet.
type SnapshotStore interface {
	Load() (*StoreSnapshot, error)
	Save(snapshot *StoreSnapshot) error
}

// EncodeSnapshot serialises a snapshot with encoding/gob
func EncodeSnapshot(s *StoreSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot reverses EncodeSnapshot
func DecodeSnapshot(data []byte) (*StoreSnapshot, error) {
	s := &StoreSnapshot{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(s); err != nil {
		return nil, err
	}
	return s, nil
}
