package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/golang/glog"
)

var (
	mc      *memcache.Client
	enabled bool
)

// InitCache creates the cache client and enables the cache functions
// within this package. It is the responsibility of whatever has the values for
// this function (usually main.go shortly after reading the config file) to call
// this.
func InitCache(host string, port int64) {
	mc = memcache.New(fmt.Sprintf("%s:%d", host, port))
	enabled = true
}

// Enabled returns true once InitCache has been called
func Enabled() bool {
	return enabled
}

// Set puts the given value into the cache, gob encoded
func Set(key string, data interface{}, timeToLive int32) error {
	if !enabled {
		return ErrNotEnabled
	}

	// Encode the data for serialisation in memcache
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	err := enc.Encode(data)
	if err != nil {
		glog.Errorf("enc.Encode(data) %+v", err)
		return err
	}

	return SetBytes(key, buf.Bytes(), timeToLive)
}

// Get decodes the value for the given key into dst, which must be a pointer.
// It returns false and no error on a cache miss.
func Get(key string, dst interface{}) (bool, error) {
	if !enabled {
		return false, ErrNotEnabled
	}

	value, ok, err := GetBytes(key)
	if err != nil || !ok {
		return false, err
	}

	dec := gob.NewDecoder(bytes.NewReader(value))
	err = dec.Decode(dst)
	if err != nil {
		glog.Errorf("dec.Decode(dst) %+v", err)
		return false, err
	}

	return true, nil
}

// SetBytes puts raw bytes into the cache. Values larger than a memcache item
// are split across several keys.
func SetBytes(key string, value []byte, timeToLive int32) error {
	if !enabled {
		return ErrNotEnabled
	}

	chunks := split(value, MaxItemSize)

	for i, chunk := range chunks {
		err := mc.Set(
			&memcache.Item{
				Key:        ChunkKey(key, i),
				Value:      chunk,
				Expiration: timeToLive, // time in seconds
			},
		)
		if err != nil {
			glog.Errorf("mc.Set(%s) %+v", ChunkKey(key, i), err)
			return err
		}
	}

	// The manifest goes last so readers never see a partial value
	err := mc.Set(
		&memcache.Item{
			Key:        key,
			Value:      encodeManifest(len(chunks), len(value)),
			Expiration: timeToLive,
		},
	)
	if err != nil {
		glog.Errorf("mc.Set(%s) %+v", key, err)
		return err
	}

	if glog.V(2) {
		glog.Infof("Cached %s, %d bytes in %d chunks", key, len(value), len(chunks))
	}

	return nil
}

// GetBytes returns the raw bytes for the given key. It returns false and no
// error on a cache miss, including when any chunk has been evicted.
func GetBytes(key string) ([]byte, bool, error) {
	if !enabled {
		return nil, false, ErrNotEnabled
	}

	item, err := mc.Get(key)
	if err != nil {
		// Cache misses are expected, but other errors are returned.
		if err == memcache.ErrCacheMiss {
			return nil, false, nil
		}
		glog.Warningf("mc.Get(%s) %+v", key, err)
		return nil, false, err
	}

	count, size, err := decodeManifest(item.Value)
	if err != nil {
		return nil, false, err
	}

	keys := make([]string, count)
	for i := range keys {
		keys[i] = ChunkKey(key, i)
	}

	items, err := mc.GetMulti(keys)
	if err != nil {
		glog.Warningf("mc.GetMulti(%s) %+v", key, err)
		return nil, false, err
	}

	value := make([]byte, 0, size)
	for _, k := range keys {
		chunk, ok := items[k]
		if !ok {
			if glog.V(2) {
				glog.Infof("Chunk %s evicted, treating %s as a miss", k, key)
			}
			return nil, false, nil
		}
		value = append(value, chunk.Value...)
	}

	if len(value) != size {
		return nil, false, fmt.Errorf("%s: expected %d bytes, got %d", key, size, len(value))
	}

	return value, true, nil
}

// Delete removes items matching the given key from the cache, if it is in
// the cache
func Delete(key string) {
	if !enabled {
		return
	}

	err := mc.Delete(key)
	if err != nil && err != memcache.ErrCacheMiss {
		glog.Warningf("mc.Delete(key) %+v", err)
	}
}
