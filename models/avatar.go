package models

import (
	"time"

	h "github.com/microcosm-cc/avatars/helpers"
)

// AvatarType is an avatar image as fetched from the avatar service. Values are
// immutable once constructed: a refresh replaces the record in the cache, it
// never modifies it.
type AvatarType struct {
	Hash        string    `json:"hash"`
	LastUpdated time.Time `json:"lastUpdated"`
	MimeType    string    `json:"mimeType,omitempty"`
	Bytes       []byte    `json:"-"`
}

// NewAvatar returns an avatar that owns a private copy of data
func NewAvatar(hash string, lastUpdated time.Time, mimeType string, data []byte) AvatarType {
	b := make([]byte, len(data))
	copy(b, data)

	return AvatarType{
		Hash:        hash,
		LastUpdated: lastUpdated,
		MimeType:    mimeType,
		Bytes:       b,
	}
}

// GetBytes returns a copy of the image data
func (m AvatarType) GetBytes() []byte {
	b := make([]byte, len(m.Bytes))
	copy(b, m.Bytes)
	return b
}

// Size is the number of bytes in the image
func (m AvatarType) Size() int {
	return len(m.Bytes)
}

// AvatarSummaryType describes a cached avatar without its image data
type AvatarSummaryType struct {
	Hash        string       `json:"hash"`
	LastUpdated time.Time    `json:"lastUpdated"`
	MimeType    string       `json:"mimeType,omitempty"`
	Size        int          `json:"size"`
	Links       []h.LinkType `json:"links,omitempty"`
}

// Summary returns the summary of the avatar
func (m AvatarType) Summary() AvatarSummaryType {
	return AvatarSummaryType{
		Hash:        m.Hash,
		LastUpdated: m.LastUpdated,
		MimeType:    m.MimeType,
		Size:        m.Size(),
		Links:       []h.LinkType{h.GetAvatarLink("self", m.Hash)},
	}
}
