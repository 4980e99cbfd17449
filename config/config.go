package config

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/robfig/config"

	h "github.com/microcosm-cc/avatars/helpers"
)

// ConfigFilePath is the default path to the config file
const ConfigFilePath string = "/etc/avatars/avatars.conf"

// AvatarsSection is the [avatars] section of the config file
const AvatarsSection string = "avatars"

// Config file keys
const (
	AvatarURL      = "avatar_url"
	FetchTimeoutMS = "fetch_timeout_ms"
	MaxWidth       = "avatar_max_width"
	MaxHeight      = "avatar_max_height"
	Workers        = "workers"

	ListenPort = "listen_port"

	RefreshSchedule  = "refresh_schedule"
	SnapshotSchedule = "snapshot_schedule"

	// SnapshotBackend is one of: none, file, memcache, postgres, s3
	SnapshotBackend = "snapshot_backend"
	SnapshotFile    = "snapshot_file"
	SnapshotKey     = "snapshot_key"

	MemcachedHost = "memcached_host"
	MemcachedPort = "memcached_port"

	DatabaseHost     = "database_host"
	DatabasePort     = "database_port"
	DatabaseName     = "database_database"
	DatabaseUsername = "database_username"
	DatabasePassword = "database_password"

	S3Endpoint        = "s3_endpoint"
	S3AccessKeyID     = "s3_access_key_id"
	S3SecretAccessKey = "s3_secret_access_key"
	S3BucketName      = "s3_bucket"
	S3UseSSL          = "s3_use_ssl"
)

var defaultStrings = map[string]string{
	AvatarURL:         h.DefaultURL,
	RefreshSchedule:   "0 0 */6 * * *",
	SnapshotSchedule:  "0 */15 * * * *",
	SnapshotBackend:   "file",
	SnapshotFile:      h.DefaultStoreName,
	SnapshotKey:       "avatars",
	MemcachedHost:     "localhost",
	DatabaseHost:      "localhost",
	DatabaseName:      "avatars",
	DatabaseUsername:  "avatars",
	DatabasePassword:  "",
	S3Endpoint:        "",
	S3AccessKeyID:     "",
	S3SecretAccessKey: "",
	S3BucketName:      "avatars",
}

var defaultInt64s = map[string]int64{
	FetchTimeoutMS: int64(h.DefaultTimeout.Milliseconds()),
	MaxWidth:       0,
	MaxHeight:      0,
	Workers:        0,
	ListenPort:     8080,
	MemcachedPort:  11211,
	DatabasePort:   5432,
}

var defaultBools = map[string]bool{
	S3UseSSL: true,
}

// ConfigStrings contains the string values for the given config keys
var ConfigStrings = map[string]string{}

// ConfigInt64s contains the int64 values for the given config keys
var ConfigInt64s = map[string]int64{}

// ConfigBool contains the bool values for the given config keys
var ConfigBool = map[string]bool{}

func init() {
	Reset()
}

// Reset restores every key to its default value
func Reset() {
	for k, v := range defaultStrings {
		ConfigStrings[k] = v
	}
	for k, v := range defaultInt64s {
		ConfigInt64s[k] = v
	}
	for k, v := range defaultBools {
		ConfigBool[k] = v
	}
}

// Load reads the config file at path over the defaults. Keys that are absent
// from the file keep their default value, keys with a value of the wrong type
// are an error.
func Load(path string) error {
	c, err := config.ReadDefault(path)
	if err != nil {
		return fmt.Errorf("config.ReadDefault(%s) %+v", path, err)
	}

	for key := range defaultStrings {
		if !c.HasOption(AvatarsSection, key) {
			continue
		}
		s, err := c.String(AvatarsSection, key)
		if err != nil {
			return fmt.Errorf("%s: %+v", key, err)
		}
		ConfigStrings[key] = s
	}

	for key := range defaultInt64s {
		if !c.HasOption(AvatarsSection, key) {
			continue
		}
		i, err := c.Int(AvatarsSection, key)
		if err != nil {
			return fmt.Errorf("%s: %+v", key, err)
		}
		ConfigInt64s[key] = int64(i)
	}

	for key := range defaultBools {
		if !c.HasOption(AvatarsSection, key) {
			continue
		}
		b, err := c.Bool(AvatarsSection, key)
		if err != nil {
			return fmt.Errorf("%s: %+v", key, err)
		}
		ConfigBool[key] = b
	}

	if glog.V(2) {
		glog.Infof("Loaded config from %s", path)
	}

	return nil
}
