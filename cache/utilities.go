package cache

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxItemSize is the largest value stored under a single memcache key. The
// server default is 1MiB including the item header, so leave some room.
const MaxItemSize int = 1024*1024 - 1024

// MaxKeyLength is the longest key memcache accepts
const MaxKeyLength int = 250

// ErrNotEnabled is returned when InitCache has not been called
var ErrNotEnabled = errors.New("cache: not enabled")

// ChunkKey returns the key of the i-th chunk of a value stored under key
func ChunkKey(key string, i int) string {
	return fmt.Sprintf("%s:%d", key, i)
}

// ValidKey returns true if key can be used with memcache, including the
// suffix added to chunk keys
func ValidKey(key string) bool {
	if key == "" || len(ChunkKey(key, 9999)) > MaxKeyLength {
		return false
	}

	for _, r := range key {
		if r <= ' ' || r == 0x7f {
			return false
		}
	}

	return true
}

// split cuts value into pieces of at most size bytes. An empty value is one
// empty chunk.
func split(value []byte, size int) [][]byte {
	if len(value) == 0 {
		return [][]byte{{}}
	}

	chunks := make([][]byte, 0, (len(value)+size-1)/size)
	for len(value) > size {
		chunks = append(chunks, value[:size])
		value = value[size:]
	}

	return append(chunks, value)
}

func encodeManifest(count int, size int) []byte {
	return []byte(fmt.Sprintf("%d %d", count, size))
}

func decodeManifest(b []byte) (int, int, error) {
	parts := strings.Fields(string(b))
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("cache: malformed manifest %q", b)
	}

	count, err := strconv.Atoi(parts[0])
	if err != nil || count < 1 {
		return 0, 0, fmt.Errorf("cache: malformed chunk count %q", parts[0])
	}

	size, err := strconv.Atoi(parts[1])
	if err != nil || size < 0 {
		return 0, 0, fmt.Errorf("cache: malformed size %q", parts[1])
	}

	return count, size, nil
}
