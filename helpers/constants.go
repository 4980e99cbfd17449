package helpers

import (
	"crypto"
	"time"
)

const (
	// DefaultURL is the first part of the URL which Gravatar uses to serve
	// avatars. The hash is appended to it.
	DefaultURL string = "https://gravatar.com/avatar/"

	// DefaultTimeout bounds both connecting to and reading from the avatar
	// service
	DefaultTimeout time.Duration = 1000 * time.Millisecond

	// HashLength is the number of hex digits in an avatar hash (SHA-256)
	HashLength int = 64

	// HashAlgorithmName is the name of HashAlgorithm as reported in errors
	HashAlgorithmName string = "SHA-256"

	// MaxAvatarSize is the largest response body accepted as an avatar
	MaxAvatarSize int64 = 1024 * 1024

	// DefaultStoreName is the file name used by the file snapshot store
	DefaultStoreName string = "avatars.gob"
)

// HashAlgorithm is the digest used to turn an email address into an avatar hash
var HashAlgorithm = crypto.SHA256

// APITypeAvatar is the base path of the avatar API
const APITypeAvatar string = "/api/v1/avatars"
