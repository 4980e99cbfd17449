package config

import (
	"os"
	"path/filepath"
	"testing"

	h "github.com/microcosm-cc/avatars/helpers"
)

func TestDefaults(t *testing.T) {
	Reset()

	if ConfigStrings[AvatarURL] != h.DefaultURL {
		t.Errorf("ConfigStrings[AvatarURL] = %q should be %q", ConfigStrings[AvatarURL], h.DefaultURL)
	}
	if ConfigInt64s[FetchTimeoutMS] != 1000 {
		t.Errorf("ConfigInt64s[FetchTimeoutMS] = %d should be 1000", ConfigInt64s[FetchTimeoutMS])
	}
	if ConfigStrings[SnapshotBackend] != "file" {
		t.Errorf("ConfigStrings[SnapshotBackend] = %q should be file", ConfigStrings[SnapshotBackend])
	}
}

func TestLoad(t *testing.T) {
	Reset()
	defer Reset()

	path := filepath.Join(t.TempDir(), "avatars.conf")
	content := `[avatars]
avatar_url = http://localhost:9999/avatar
fetch_timeout_ms = 250
listen_port = 9090
snapshot_backend = memcache
s3_use_ssl = false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Load(path); err != nil {
		t.Fatalf("Load(%s) returned error %+v", path, err)
	}

	if ConfigStrings[AvatarURL] != "http://localhost:9999/avatar" {
		t.Errorf("ConfigStrings[AvatarURL] = %q", ConfigStrings[AvatarURL])
	}
	if ConfigInt64s[FetchTimeoutMS] != 250 {
		t.Errorf("ConfigInt64s[FetchTimeoutMS] = %d should be 250", ConfigInt64s[FetchTimeoutMS])
	}
	if ConfigInt64s[ListenPort] != 9090 {
		t.Errorf("ConfigInt64s[ListenPort] = %d should be 9090", ConfigInt64s[ListenPort])
	}
	if ConfigStrings[SnapshotBackend] != "memcache" {
		t.Errorf("ConfigStrings[SnapshotBackend] = %q should be memcache", ConfigStrings[SnapshotBackend])
	}
	if ConfigBool[S3UseSSL] {
		t.Error("ConfigBool[S3UseSSL] should be false")
	}

	// Untouched keys keep their defaults
	if ConfigInt64s[MemcachedPort] != 11211 {
		t.Errorf("ConfigInt64s[MemcachedPort] = %d should be 11211", ConfigInt64s[MemcachedPort])
	}
}

func TestLoadBadValue(t *testing.T) {
	Reset()
	defer Reset()

	path := filepath.Join(t.TempDir(), "avatars.conf")
	content := "[avatars]\nfetch_timeout_ms = soon\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Load(path); err == nil {
		t.Error("Load() with a non-numeric timeout should fail")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "nope.conf")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}
